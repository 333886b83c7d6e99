package feed

import (
	"context"
	"errors"

	"github.com/realtorist/realtorist-api/internal/store"
)

// CompositeFlow runs several flows in order. A failing flow does not stop
// the ones after it; all errors are joined.
type CompositeFlow struct {
	flows []Flow
}

// NewCompositeFlow creates a CompositeFlow over flows.
func NewCompositeFlow(flows ...Flow) *CompositeFlow {
	return &CompositeFlow{flows: flows}
}

var _ Flow = (*CompositeFlow)(nil)

// Len returns the number of wrapped flows.
func (c *CompositeFlow) Len() int {
	return len(c.flows)
}

// Launch implements Flow. The returned Result sums the results of every flow.
func (c *CompositeFlow) Launch(ctx context.Context, listings store.ListingStore) (Result, error) {
	var (
		total Result
		errs  []error
	)
	for _, flow := range c.flows {
		result, err := flow.Launch(ctx, listings)
		total.Add(result)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return total, errors.Join(errs...)
}
