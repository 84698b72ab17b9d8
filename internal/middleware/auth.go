package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/quicknotes/quicknotes-go/internal/crypto"
)

type contextKey string

const userIDKey contextKey = "userID"

// AccessTokenCookie is the cookie read as a fallback when cookie-based
// delivery is enabled.
const AccessTokenCookie = "accessToken"

// JWTAuth returns middleware that validates the access token from the
// Authorization header, falling back to the accessToken cookie. On success
// the verified user ID is placed in the request context; downstream
// handlers must take the caller identity from there, never from the body.
func JWTAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeJSONError(w, http.StatusUnauthorized, "missing or invalid authorization")
				return
			}

			claims, err := crypto.ValidateAccessToken(token, secret)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			return ""
		}
		return token
	}
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// UserIDFromContext extracts the authenticated user ID from the request context.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
