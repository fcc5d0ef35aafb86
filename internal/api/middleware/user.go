package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const (
	// UserIDKey is the context key for the user ID.
	UserIDKey contextKey = "userID"
	// UserHeader is the HTTP header name for the user ID.
	UserHeader = "X-Gantry-User"
	// DefaultUserID is used when no user header is provided.
	DefaultUserID = "anonymous"
)

// UserID middleware extracts the X-Gantry-User header and adds it to context.
func UserID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(UserHeader)
		if userID == "" {
			userID = DefaultUserID
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID retrieves the user ID from context.
func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(UserIDKey).(string); ok {
		return userID
	}
	return DefaultUserID
}
