package api

import (
	"context"
	"net/http"
	"strings"

	"devwell-dashboard/internal/auth"
)

type ctxKey int

const sessionKey ctxKey = iota

// sessionAuth validates the Bearer session token, stores the session in the
// request context, and reports the sighting to the hub so the sync trigger
// sees sign-ins and token rotations.
func (h *Handler) sessionAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			respondWithError(w, http.StatusUnauthorized, "Missing bearer token")
			return
		}

		session, err := h.parser.Parse(raw)
		if err != nil {
			h.logger.Debug("Rejected session token", "error", err)
			respondWithError(w, http.StatusUnauthorized, "Invalid session token")
			return
		}

		h.hub.Observe(session)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, session)))
	})
}

// sessionFrom returns the authenticated session stored by sessionAuth.
func sessionFrom(ctx context.Context) *auth.Session {
	s, _ := ctx.Value(sessionKey).(*auth.Session)
	return s
}
