package feed

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/realtorist/realtorist-api/internal/domain"
)

// DefaultHTTPTimeout bounds a single feed request.
const DefaultHTTPTimeout = 2 * time.Minute

var validate = validator.New()

// Factory builds flows for feed configurations.
type Factory struct {
	client    *http.Client
	describer Describer
	locks     *sourceLocks
	logger    *slog.Logger
	now       func() time.Time
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithHTTPClient sets the client used to fetch feeds.
func WithHTTPClient(client *http.Client) FactoryOption {
	return func(f *Factory) { f.client = client }
}

// WithDescriber enables generated descriptions for listings without one.
func WithDescriber(d Describer) FactoryOption {
	return func(f *Factory) { f.describer = d }
}

// WithClock overrides the clock used to stamp listings.
func WithClock(now func() time.Time) FactoryOption {
	return func(f *Factory) { f.now = now }
}

// NewFactory creates a Factory.
func NewFactory(logger *slog.Logger, opts ...FactoryOption) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Factory{
		client: &http.Client{Timeout: DefaultHTTPTimeout},
		locks:  newSourceLocks(),
		logger: logger.With("component", "feed"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// New returns the flow for cfg. The reserved "user" source is refused.
func (f *Factory) New(cfg Config) (Flow, error) {
	if cfg.ListingSource == domain.ListingSourceUser {
		return nil, ErrReservedSource
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return &HTTPFlow{
		cfg:       cfg,
		client:    f.client,
		describer: f.describer,
		locks:     f.locks,
		logger:    f.logger,
		now:       f.now,
	}, nil
}

// NewComposite returns a CompositeFlow over every configuration.
func (f *Factory) NewComposite(cfgs []Config) (*CompositeFlow, error) {
	flows := make([]Flow, 0, len(cfgs))
	for _, cfg := range cfgs {
		flow, err := f.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("feed %q: %w", cfg.ListingSource, err)
		}
		flows = append(flows, flow)
	}
	return NewCompositeFlow(flows...), nil
}
