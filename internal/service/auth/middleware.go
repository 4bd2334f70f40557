package auth

import (
	"context"
	"net/http"
	"strings"

	svcErr "github.com/OTRONTO-F/Rinsohot/internal/errors"
	"github.com/gorilla/mux"
)

type contextKey struct{}

var userIDKey contextKey

// Middleware extracts and verifies the bearer token, injecting the
// authenticated user id into the request context. Handlers behind it can
// rely on UserID never failing.
func Middleware(tm *TokenManager) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				svcErr.WriteHTTP(w, svcErr.Unauthenticated("missing bearer token"))
				return
			}

			claims, err := tm.Parse(token)
			if err != nil {
				svcErr.WriteHTTP(w, svcErr.Unauthenticated("invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the authenticated user id stored by Middleware.
func UserID(ctx context.Context) (uint64, bool) {
	id, ok := ctx.Value(userIDKey).(uint64)
	return id, ok
}
