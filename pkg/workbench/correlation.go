package workbench

import "context"

// HeaderCorrelationID is the header used to propagate a correlation
// identifier for distributed tracing. When no identifier is present in the
// caller's context an empty value is sent.
const HeaderCorrelationID = "X-Request-ID"

type correlationIDKey struct{}

// WithCorrelationID returns a context carrying the given correlation
// identifier. Every request issued with the returned context propagates the
// identifier in the X-Request-ID header.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// CorrelationID returns the correlation identifier carried by ctx, or the
// empty string when none is set.
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}
