// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lifescan/aila/internal/adapters/predictor"
	"github.com/lifescan/aila/pkg/logger"
)

// StrokeHandler handles stroke assessment requests.
type StrokeHandler struct {
	deps Dependencies
}

// NewStrokeHandler creates a new stroke handler.
func NewStrokeHandler(deps Dependencies) *StrokeHandler {
	return &StrokeHandler{deps: deps}
}

// HandlePredictStroke handles POST /api/v1/predict/stroke requests.
func (h *StrokeHandler) HandlePredictStroke(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict_stroke"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	assessment, story, err := h.deps.AssessStroke(r.Context(), payload)
	if err != nil {
		writeAssessmentError(r.Context(), w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, newAssessmentResponse(assessment, story))
}

// writeAssessmentError maps pipeline failures onto the error taxonomy shared
// by the predict endpoints. The underlying cause is logged here with full
// detail; the caller only sees the generic body.
func writeAssessmentError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	if errors.Is(err, predictor.ErrModelUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "model_unavailable", NewKind(op, predictor.ErrModelUnavailable))
		return
	}
	logger.Named("api").Error(ctx, "assessment pipeline failed",
		logger.String("op", op), logger.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", nil)
}
