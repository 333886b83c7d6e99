package feed

import (
	"context"
	"errors"
	"testing"

	"github.com/realtorist/realtorist-api/internal/mocks"
	"github.com/realtorist/realtorist-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory_New(t *testing.T) {
	f := newTestFactory(t)

	_, err := f.New(Config{ListingSource: "user", URL: "https://feed.example.com"})
	assert.ErrorIs(t, err, ErrReservedSource)

	_, err = f.New(Config{ListingSource: "crea", URL: "not a url"})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = f.New(Config{URL: "https://feed.example.com"})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	flow, err := f.New(Config{ListingSource: "crea", URL: "https://feed.example.com/listings.json"})
	require.NoError(t, err)
	assert.IsType(t, &HTTPFlow{}, flow)
}

func TestFactory_NewComposite(t *testing.T) {
	f := newTestFactory(t)

	composite, err := f.NewComposite([]Config{
		{ListingSource: "crea", URL: "https://a.example.com"},
		{ListingSource: "treb", URL: "https://b.example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, composite.Len())

	_, err = f.NewComposite([]Config{{ListingSource: "user", URL: "https://a.example.com"}})
	assert.ErrorIs(t, err, ErrReservedSource)
}

type stubFlow struct {
	result Result
	err    error
	ran    *int
}

func (s stubFlow) Launch(context.Context, store.ListingStore) (Result, error) {
	*s.ran++
	return s.result, s.err
}

func TestCompositeFlow_JoinsErrors(t *testing.T) {
	errA := errors.New("feed a down")
	errC := errors.New("feed c down")
	ran := 0

	composite := NewCompositeFlow(
		stubFlow{result: Result{Upserted: 1}, err: errA, ran: &ran},
		stubFlow{result: Result{Upserted: 5, Removed: 2}, ran: &ran},
		stubFlow{err: errC, ran: &ran},
	)

	result, err := composite.Launch(context.Background(), mocks.NewMockListingStore())

	assert.Equal(t, 3, ran, "a failing flow does not stop the rest")
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errC)
	assert.Equal(t, 6, result.Upserted)
	assert.EqualValues(t, 2, result.Removed)
}

func TestCompositeFlow_Empty(t *testing.T) {
	result, err := NewCompositeFlow().Launch(context.Background(), mocks.NewMockListingStore())
	assert.NoError(t, err)
	assert.Equal(t, Result{}, result)
}
