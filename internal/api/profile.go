package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"devwell-dashboard/internal/apperr"
	"devwell-dashboard/internal/model"
)

type profileUpdateRequest struct {
	DisplayName     *string `json:"display_name" validate:"omitempty,max=120"`
	SleepGoalHours  float64 `json:"sleep_goal_hours" validate:"gte=0,lte=24"`
	CommitGoalDaily int     `json:"commit_goal_daily" validate:"gte=0,lte=100"`
}

// getProfile handles GET /v1/profile, provisioning the profile row on the
// identity's first sign-in.
func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())

	profile := h.profiles.Get(r.Context(), session.UserID)
	if profile == nil {
		if err := h.profiles.Upsert(r.Context(), &model.Profile{UserID: session.UserID}); err != nil {
			h.logger.Error("Failed to provision profile", "user_id", session.UserID, "error", err)
			respondWithError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		profile = h.profiles.Get(r.Context(), session.UserID)
	}
	if profile == nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, profile)
}

// updateProfile handles PUT /v1/profile
func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())

	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	profile, err := h.profiles.Update(r.Context(), &model.Profile{
		UserID:          session.UserID,
		DisplayName:     req.DisplayName,
		SleepGoalHours:  req.SleepGoalHours,
		CommitGoalDaily: req.CommitGoalDaily,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Profile not found")
			return
		}
		h.logger.Error("Failed to update profile", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, profile)
}
