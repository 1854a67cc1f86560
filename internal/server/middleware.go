package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/dockgate/dockgate/internal/auth"
)

type ctxKey string

const ctxUsername ctxKey = "username"

func (a *App) withAuthContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if username := a.readAuth(r); username != "" {
			r = r.WithContext(context.WithValue(r.Context(), ctxUsername, username))
		}
		next.ServeHTTP(w, r)
	})
}

func (a *App) readAuth(r *http.Request) string {
	// Prefer cookie.
	if c, err := r.Cookie(a.cookieName); err == nil && c.Value != "" {
		if cl, err := auth.ParseHS256(a.secret, c.Value); err == nil {
			return cl.Username
		}
	}
	// Fallback: Authorization: Bearer <token>
	authz := r.Header.Get("Authorization")
	if authz != "" {
		parts := strings.SplitN(authz, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			if cl, err := auth.ParseHS256(a.secret, strings.TrimSpace(parts[1])); err == nil {
				return cl.Username
			}
		}
	}
	return ""
}

func usernameFrom(r *http.Request) string {
	if v := r.Context().Value(ctxUsername); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func (a *App) requireAuth(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if usernameFrom(r) == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		h(w, r)
	}
}

// requireAdmin consults the registry rather than the token's admin claim,
// so a demotion takes effect on the next request instead of at token
// expiry.
func (a *App) requireAdmin(h http.HandlerFunc) http.HandlerFunc {
	return a.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		acct, ok := a.reg.Account(usernameFrom(r))
		if !ok || !acct.IsAdmin {
			writeError(w, http.StatusForbidden, "Admin access required")
			return
		}
		h(w, r)
	})
}
