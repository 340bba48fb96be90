package auth

import (
	"context"
	"net/http"

	"Storefront/pkg/kit"
)

type ctxKey string

const adminKey ctxKey = "admin"

// AdminFromContext returns the username of the admin a request was authorised for.
func AdminFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(adminKey).(string)
	return v, ok
}

// RequireAdmin guards the admin surface: the bearer token must be valid and
// belong to the session the gate currently has open.
func RequireAdmin(g *Gate, jwt *TokenMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := kit.BearerToken(r)
			if !ok {
				kit.WriteError(w, r, http.StatusUnauthorized, "missing token", nil)
				return
			}

			claims, err := jwt.Parse(tok)
			if err != nil {
				kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
				return
			}

			gen, open := g.Session()
			if !open || claims.Generation != gen {
				kit.WriteError(w, r, http.StatusUnauthorized, "session closed", nil)
				return
			}

			ctx := context.WithValue(r.Context(), adminKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
