package httputil

import (
	"context"
	"net/http"
)

type contextKey struct{ name string }

var userIDKey = &contextKey{"user-id"}

// WithUserID returns r with the authenticated user id attached.
func WithUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userIDKey, userID))
}

// GetUserID returns the authenticated user id, or "" for anonymous requests.
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}
