// Package requestid carries a request identifier in a context so outbound
// upstream calls can be correlated with the inbound request that caused them.
package requestid

import "context"

type ctxKey struct{}

// NewContext returns a copy of ctx carrying the request identifier.
func NewContext(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the request identifier, or "" when none is set.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}
