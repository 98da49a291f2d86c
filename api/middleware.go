/*
middleware.go - Authentication middleware

PURPOSE:
  Extracts the session identity from the Authorization header, loads the
  profile, and rejects disabled accounts before any handler runs. Admin-only
  routes add a second gate on the role flag.

CONTEXT:
  The authenticated profile travels in the request context under a private
  key; handlers read it with currentUser().
*/
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/ablelink/invest-engine/invest"
)

type contextKey int

const userContextKey contextKey = iota

// currentUser returns the authenticated profile placed by RequireUser.
func currentUser(ctx context.Context) invest.UserProfile {
	u, _ := ctx.Value(userContextKey).(invest.UserProfile)
	return u
}

// RequireUser authenticates the request: Bearer token, live account.
func (h *Handler) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "Missing bearer token", nil)
			return
		}

		claims, err := h.Tokens.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid session", nil)
			return
		}

		user, err := h.Store.GetUser(r.Context(), claims.Subject)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid session", nil)
			return
		}
		if user.Disabled {
			writeError(w, http.StatusUnauthorized, "Account disabled", nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(
			context.WithValue(r.Context(), userContextKey, user)))
	})
}

// RequireAdmin gates admin routes. Must run after RequireUser.
func (h *Handler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !currentUser(r.Context()).Admin {
			writeError(w, http.StatusUnauthorized, "Admin access required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
