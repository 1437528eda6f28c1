package session

import "context"

type contextKey struct{}

// WithHandle returns a context carrying the request's session handle
func WithHandle(ctx context.Context, h *Handle) context.Context {
	return context.WithValue(ctx, contextKey{}, h)
}

// FromContext returns the request's session handle, nil if none
func FromContext(ctx context.Context) *Handle {
	h, _ := ctx.Value(contextKey{}).(*Handle)
	return h
}
