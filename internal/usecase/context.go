package usecase

import "context"

type requestIDKey struct{}

// WithRequestID returns a context carrying the request correlation id.
// The transport layer sets it; audit records pick it up.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request correlation id, or "" for
// work that did not originate from a request.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
