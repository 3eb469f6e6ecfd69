package service

import (
	"context"
	"net/http"
)

type requestContextKeyType struct{}

var requestKey = requestContextKeyType{}

// WithRequest attaches the inbound request so hooks can read additional
// trusted proxy headers.
func WithRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, requestKey, r)
}

// RequestFromContext returns the request attached by WithRequest.
func RequestFromContext(ctx context.Context) (*http.Request, bool) {
	r, ok := ctx.Value(requestKey).(*http.Request)
	return r, ok && r != nil
}
