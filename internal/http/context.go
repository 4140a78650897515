package http

import (
	"context"
	"net/http"
)

type contextKey string

const (
	usernameKey  contextKey = "username"
	requestIDKey contextKey = "requestID"
)

// UsernameFrom retrieves the authenticated username from the request context.
func UsernameFrom(r *http.Request) string {
	if v, ok := r.Context().Value(usernameKey).(string); ok {
		return v
	}
	return ""
}

// RequestIDFrom retrieves the request id from the request context.
func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

func contextWithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}

func contextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}
