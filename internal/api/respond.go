package api

import (
	"encoding/json"
	"net/http"
	"time"
)

func respondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	respondWithJSON(w, status, map[string]string{"error": message})
}

// parseDate reads a YYYY-MM-DD query value.
func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

// rangeFromQuery reads optional start/end date parameters, defaulting to
// the 30 days ending tomorrow so "today" is always included.
func rangeFromQuery(r *http.Request) (time.Time, time.Time, error) {
	end := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -30)

	if v := r.URL.Query().Get("start"); v != "" {
		parsed, err := parseDate(v)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = parsed
	}
	if v := r.URL.Query().Get("end"); v != "" {
		parsed, err := parseDate(v)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		// Inclusive end date: extend to the next day boundary.
		end = parsed.AddDate(0, 0, 1)
	}
	return start, end, nil
}
