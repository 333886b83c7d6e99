package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// ContextKey keys request-scoped values set by the API middleware.
type ContextKey string

const (
	// AdminEmailContextKey holds the email of the authenticated admin.
	AdminEmailContextKey ContextKey = "adminEmail"

	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the number of bytes used to generate the trace ID
	TraceIDLength = 16 // 32 hex characters

	failureKey ContextKey = "failure"
)

// SetTraceID adds a fresh trace ID to the context.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// GetTraceID retrieves the trace ID from the context, or "".
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}

// SetAdminEmail marks the request as authenticated for email.
func SetAdminEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, AdminEmailContextKey, email)
}

// GetAdminEmail returns the authenticated admin's email, if any.
func GetAdminEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(AdminEmailContextKey).(string)
	return email, ok && email != ""
}

// Failure collects the error behind a server-side failure response so
// middleware further out can record it.
type Failure struct {
	mu  sync.Mutex
	err error
}

// WithFailure returns a context carrying a fresh Failure.
func WithFailure(ctx context.Context) (context.Context, *Failure) {
	f := &Failure{}
	return context.WithValue(ctx, failureKey, f), f
}

// RecordFailure stores err in the request's Failure, if there is one.
// The first error wins.
func RecordFailure(ctx context.Context, err error) {
	f, ok := ctx.Value(failureKey).(*Failure)
	if !ok || err == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err == nil {
		f.err = err
	}
}

// Err returns the recorded error, or nil.
func (f *Failure) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// generateTraceID returns 32 hex characters. If crypto/rand fails it falls
// back to a random UUID rather than a static value.
func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	if _, err := rand.Read(b); err != nil {
		slog.Error("failed to generate secure random trace ID",
			"error", err,
			"fallback", "uuid")
		id := uuid.New()
		return hex.EncodeToString(id[:])
	}
	return hex.EncodeToString(b)
}
