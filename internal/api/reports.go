package api

import (
	"net/http"
	"strconv"
	"time"

	"devwell-dashboard/internal/metrics"
	"devwell-dashboard/internal/model"
)

// getDailyReport handles GET /v1/reports/daily?date=YYYY-MM-DD
func (h *Handler) getDailyReport(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	day, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid 'date' parameter. Use YYYY-MM-DD.")
		return
	}

	var insight *model.ActivityInsight
	if found := h.insights.GetRecords(r.Context(), session.UserID, day, day.AddDate(0, 0, 1)); len(found) > 0 {
		insight = &found[0]
	}
	stats := h.commits.GetCommitStats(r.Context(), session.UserID, day)

	respondWithJSON(w, http.StatusOK, metrics.NewDailySummary(day, insight, stats))
}

// getMonthlyReport handles GET /v1/reports/monthly?year=&month=
func (h *Handler) getMonthlyReport(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 2000 || year > 2200 {
		respondWithError(w, http.StatusBadRequest, "Invalid 'year' parameter")
		return
	}
	monthNum, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || monthNum < 1 || monthNum > 12 {
		respondWithError(w, http.StatusBadRequest, "Invalid 'month' parameter. Must be 1-12.")
		return
	}
	month := time.Month(monthNum)

	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	prevStart := monthStart.AddDate(0, -1, 0)
	monthEnd := monthStart.AddDate(0, 1, 0)

	current := h.insights.GetRecords(r.Context(), session.UserID, monthStart, monthEnd)
	previous := h.insights.GetRecords(r.Context(), session.UserID, prevStart, monthStart)

	respondWithJSON(w, http.StatusOK, metrics.BuildMonthlyReport(year, month, current, previous))
}
