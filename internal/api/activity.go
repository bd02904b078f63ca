package api

import (
	"net/http"

	"devwell-dashboard/internal/model"
)

// listCommits handles GET /v1/commits?start=&end=
func (h *Handler) listCommits(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	start, end, err := rangeFromQuery(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid date range. Use YYYY-MM-DD.")
		return
	}

	records := h.commits.GetRecords(r.Context(), session.UserID, start, end)
	if records == nil {
		records = []model.CommitRecord{}
	}
	respondWithJSON(w, http.StatusOK, records)
}

// getCommitStats handles GET /v1/commits/stats?date=YYYY-MM-DD
func (h *Handler) getCommitStats(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	day, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid 'date' parameter. Use YYYY-MM-DD.")
		return
	}

	respondWithJSON(w, http.StatusOK, h.commits.GetCommitStats(r.Context(), session.UserID, day))
}

// listInsights handles GET /v1/insights?start=&end=
func (h *Handler) listInsights(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	start, end, err := rangeFromQuery(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid date range. Use YYYY-MM-DD.")
		return
	}

	insights := h.insights.GetRecords(r.Context(), session.UserID, start, end)
	if insights == nil {
		insights = []model.ActivityInsight{}
	}
	respondWithJSON(w, http.StatusOK, insights)
}

// triggerSync handles POST /v1/sync. Sync failures are reported, not fatal;
// commits written before the failure are kept.
func (h *Handler) triggerSync(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())

	if err := h.sync.SyncCommits(r.Context(), session.UserID); err != nil {
		h.logger.Error("Manual sync failed", "user_id", session.UserID, "error", err)
		respondWithJSON(w, http.StatusBadGateway, map[string]any{
			"synced": false,
			"error":  "Commit sync failed; partial results may have been stored",
		})
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"synced": true})
}

// signOut handles POST /v1/auth/signout.
func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	h.hub.SignOut(session.UserID)
	w.WriteHeader(http.StatusNoContent)
}
