// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
)

// HeartHandler handles heart-disease assessment requests.
type HeartHandler struct {
	deps Dependencies
}

// NewHeartHandler creates a new heart handler.
func NewHeartHandler(deps Dependencies) *HeartHandler {
	return &HeartHandler{deps: deps}
}

// HandlePredictHeart handles POST /api/v1/predict/heart requests.
func (h *HeartHandler) HandlePredictHeart(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict_heart"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	assessment, story, err := h.deps.AssessHeart(r.Context(), payload)
	if err != nil {
		writeAssessmentError(r.Context(), w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, newAssessmentResponse(assessment, story))
}
