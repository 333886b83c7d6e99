package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/realtorist/realtorist-api/internal/domain"
	"github.com/realtorist/realtorist-api/internal/mocks"
	"github.com/realtorist/realtorist-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoListings = `[
	{"id": "C100", "street": "10 Queen St", "city": "Toronto", "price": 650000, "bedrooms": 2, "bathrooms": 1},
	{"id": "C200", "street": "20 King St", "city": "Toronto", "price": 990000, "bedrooms": 3, "bathrooms": 2,
	 "latitude": 43.65, "longitude": -79.38, "description": "Penthouse"}
]`

type fakeDescriber struct {
	calls atomic.Int32
	err   error
}

func (d *fakeDescriber) Describe(_ context.Context, listing *domain.Listing) (string, error) {
	d.calls.Add(1)
	if d.err != nil {
		return "", d.err
	}
	return "Bright home on " + listing.Address.Street, nil
}

func feedServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "broker" || pass != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestFactory(t *testing.T, opts ...FactoryOption) *Factory {
	t.Helper()
	log, _ := logger.NewTestLogger()
	return NewFactory(log, opts...)
}

func TestHTTPFlow_Launch(t *testing.T) {
	srv := feedServer(t, http.StatusOK, twoListings)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	stale := &domain.Listing{
		ID: uuid.New(), Source: "crea", ExternalID: "OLD",
		Address:     domain.Address{Street: "1 Gone Rd", City: "Toronto"},
		LastUpdated: now.Add(-time.Hour),
	}
	featured := &domain.Listing{
		ID: uuid.New(), Source: "crea", ExternalID: "C100", Featured: true,
		Address:     domain.Address{Street: "10 Queen St", City: "Toronto"},
		Description: "Existing copy",
		LastUpdated: now.Add(-time.Hour),
	}
	manual := &domain.Listing{
		ID: uuid.New(), Source: domain.ListingSourceUser,
		Address:     domain.Address{Street: "5 Side St", City: "Toronto"},
		LastUpdated: now.Add(-time.Hour),
	}
	listings := mocks.NewMockListingStore(stale, featured, manual)
	describer := &fakeDescriber{}

	flow, err := newTestFactory(t, WithClock(func() time.Time { return now }), WithDescriber(describer)).
		New(Config{ListingSource: "crea", URL: srv.URL, Username: "broker", Password: "s3cret"})
	require.NoError(t, err)

	result, err := flow.Launch(context.Background(), listings)
	require.NoError(t, err)

	assert.Equal(t, domain.ListingSource("crea"), result.Source)
	assert.Equal(t, 2, result.Fetched)
	assert.Equal(t, 2, result.Upserted)
	assert.Equal(t, 1, result.Inserted)
	assert.EqualValues(t, 1, result.Removed)
	assert.Equal(t, 0, result.Described, "stored and feed descriptions are reused")
	assert.EqualValues(t, 0, describer.calls.Load())

	updated, err := listings.GetByExternalID(context.Background(), "crea", "C100")
	require.NoError(t, err)
	assert.Equal(t, featured.ID, updated.ID)
	assert.True(t, updated.Featured, "admin flags survive a feed update")
	assert.Equal(t, 650000.0, updated.Price)
	assert.Equal(t, "Existing copy", updated.Description)
	assert.Equal(t, now, updated.LastUpdated)

	_, err = listings.GetByExternalID(context.Background(), "crea", "OLD")
	assert.Error(t, err, "listings missing from the feed are removed")

	_, err = listings.GetByID(context.Background(), manual.ID)
	assert.NoError(t, err, "other sources are untouched")
}

func TestHTTPFlow_DescribesNewListings(t *testing.T) {
	srv := feedServer(t, http.StatusOK, twoListings)
	listings := mocks.NewMockListingStore()
	describer := &fakeDescriber{}

	flow, err := newTestFactory(t, WithDescriber(describer)).
		New(Config{ListingSource: "crea", URL: srv.URL, Username: "broker", Password: "s3cret"})
	require.NoError(t, err)

	result, err := flow.Launch(context.Background(), listings)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Described)
	created, err := listings.GetByExternalID(context.Background(), "crea", "C100")
	require.NoError(t, err)
	assert.Equal(t, "Bright home on 10 Queen St", created.Description)
}

func TestHTTPFlow_DescriberFailureIsNotFatal(t *testing.T) {
	srv := feedServer(t, http.StatusOK, twoListings)
	listings := mocks.NewMockListingStore()

	flow, err := newTestFactory(t, WithDescriber(&fakeDescriber{err: errors.New("quota exceeded")})).
		New(Config{ListingSource: "crea", URL: srv.URL, Username: "broker", Password: "s3cret"})
	require.NoError(t, err)

	result, err := flow.Launch(context.Background(), listings)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Upserted)
	assert.Equal(t, 0, result.Described)
}

func TestHTTPFlow_SkipsInvalidListings(t *testing.T) {
	srv := feedServer(t, http.StatusOK, `[{"id": "C1", "street": "", "city": "Toronto"}, {"id": "", "street": "x", "city": "y"}]`)
	listings := mocks.NewMockListingStore()

	flow, err := newTestFactory(t).New(Config{ListingSource: "crea", URL: srv.URL, Username: "broker", Password: "s3cret"})
	require.NoError(t, err)

	result, err := flow.Launch(context.Background(), listings)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Skipped)
	assert.Empty(t, listings.All())
}

func TestHTTPFlow_EmptyFeedKeepsListings(t *testing.T) {
	srv := feedServer(t, http.StatusOK, `[]`)
	existing := &domain.Listing{
		ID: uuid.New(), Source: "crea", ExternalID: "C1",
		Address:     domain.Address{Street: "1 Main St", City: "Toronto"},
		LastUpdated: time.Now().Add(-time.Hour),
	}
	listings := mocks.NewMockListingStore(existing)

	flow, err := newTestFactory(t).New(Config{ListingSource: "crea", URL: srv.URL, Username: "broker", Password: "s3cret"})
	require.NoError(t, err)

	result, err := flow.Launch(context.Background(), listings)
	require.NoError(t, err)
	assert.EqualValues(t, 0, result.Removed)
	assert.Len(t, listings.All(), 1)
}

func TestHTTPFlow_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		user    string
		wantErr error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "oops", user: "broker", wantErr: ErrFeedUnavailable},
		{name: "bad credentials", status: http.StatusOK, body: "[]", user: "intruder", wantErr: ErrFeedUnavailable},
		{name: "malformed body", status: http.StatusOK, body: "{not json", user: "broker"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := feedServer(t, tc.status, tc.body)
			flow, err := newTestFactory(t).New(Config{ListingSource: "crea", URL: srv.URL, Username: tc.user, Password: "s3cret"})
			require.NoError(t, err)

			_, err = flow.Launch(context.Background(), mocks.NewMockListingStore())

			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestHTTPFlow_StoreFailure(t *testing.T) {
	srv := feedServer(t, http.StatusOK, twoListings)
	listings := mocks.NewMockListingStore()
	storeErr := errors.New("disk full")
	listings.UpsertErr = storeErr

	flow, err := newTestFactory(t).New(Config{ListingSource: "crea", URL: srv.URL, Username: "broker", Password: "s3cret"})
	require.NoError(t, err)

	_, err = flow.Launch(context.Background(), listings)
	assert.ErrorIs(t, err, storeErr)
}

func TestHTTPFlow_SameSourceRunsOneAtATime(t *testing.T) {
	entered := make(chan string, 4)
	gate := make(chan struct{})
	var openGate sync.Once
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entered <- r.URL.Path
		<-gate
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(twoListings))
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { openGate.Do(func() { close(gate) }) })

	factory := newTestFactory(t)
	first, err := factory.New(Config{ListingSource: "crea", URL: srv.URL + "/crea"})
	require.NoError(t, err)
	second, err := factory.New(Config{ListingSource: "crea", URL: srv.URL + "/crea"})
	require.NoError(t, err)
	other, err := factory.New(Config{ListingSource: "ddf", URL: srv.URL + "/ddf"})
	require.NoError(t, err)

	listings := mocks.NewMockListingStore()
	firstDone := make(chan error, 1)
	go func() {
		_, err := first.Launch(context.Background(), listings)
		firstDone <- err
	}()
	require.Equal(t, "/crea", <-entered)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = second.Launch(ctx, listings)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, entered, "second update of the same source must wait")

	otherDone := make(chan error, 1)
	go func() {
		_, err := other.Launch(context.Background(), listings)
		otherDone <- err
	}()
	select {
	case path := <-entered:
		assert.Equal(t, "/ddf", path)
	case <-time.After(5 * time.Second):
		t.Fatal("update of another source was blocked")
	}

	openGate.Do(func() { close(gate) })
	require.NoError(t, <-firstDone)
	require.NoError(t, <-otherDone)

	result, err := second.Launch(context.Background(), listings)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Upserted)
	assert.Len(t, listings.All(), 4)
}
