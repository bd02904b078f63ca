package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"devwell-dashboard/internal/apperr"
	"devwell-dashboard/internal/model"
)

var validate = validator.New()

type sleepRequest struct {
	Date      string    `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	Quality   int       `json:"quality" validate:"gte=0,lte=100"`
	Notes     *string   `json:"notes,omitempty"`
}

// listSleepRecords handles GET /v1/sleep?start=&end=
func (h *Handler) listSleepRecords(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	start, end, err := rangeFromQuery(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid date range. Use YYYY-MM-DD.")
		return
	}

	records := h.sleep.GetRecords(r.Context(), session.UserID, start, end)
	if records == nil {
		records = []model.SleepRecord{}
	}
	respondWithJSON(w, http.StatusOK, records)
}

// createSleepRecord handles POST /v1/sleep
func (h *Handler) createSleepRecord(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())

	var req sleepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}
	date, _ := parseDate(req.Date)

	record, err := h.sleep.Create(r.Context(), model.SleepRecord{
		UserID:    session.UserID,
		Date:      date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Quality:   req.Quality,
		Notes:     req.Notes,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrDuplicate) {
			respondWithError(w, http.StatusConflict, "A sleep record already exists for that date")
			return
		}
		h.logger.Error("Failed to create sleep record", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusCreated, record)
}

// updateSleepRecord handles PUT /v1/sleep/{id}
func (h *Handler) updateSleepRecord(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	id := chi.URLParam(r, "id")

	var req sleepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	// Date is immutable on update; the unique (user, date) key stays put.
	if err := validate.StructExcept(req, "Date"); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	record, err := h.sleep.Update(r.Context(), model.SleepRecord{
		ID:        id,
		UserID:    session.UserID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Quality:   req.Quality,
		Notes:     req.Notes,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Sleep record not found")
			return
		}
		h.logger.Error("Failed to update sleep record", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, record)
}

// deleteSleepRecord handles DELETE /v1/sleep/{id}
func (h *Handler) deleteSleepRecord(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.sleep.Delete(r.Context(), session.UserID, id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Sleep record not found")
			return
		}
		h.logger.Error("Failed to delete sleep record", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
