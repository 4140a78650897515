package http

import (
	"net/http"
	"strings"

	"bookcatalog/internal/auth"
)

// RequireToken guards the book endpoints. A missing or non-Bearer
// Authorization header yields 403; a present but invalid or expired
// token yields 401. Runs before any store access.
func RequireToken(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeError(w, http.StatusForbidden, "a token is required for authentication")
				return
			}
			token := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := auth.ParseToken(secret, token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := contextWithUsername(r.Context(), claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
