// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"time"
)

// ModelsHandler reports per-domain model availability.
type ModelsHandler struct {
	deps Dependencies
}

// NewModelsHandler creates a new models handler.
func NewModelsHandler(deps Dependencies) *ModelsHandler {
	return &ModelsHandler{deps: deps}
}

type modelsResponse struct {
	Status    string          `json:"status"`
	Timestamp string          `json:"timestamp"`
	Models    map[string]bool `json:"models"`
	Features  map[string]bool `json:"features"`
}

// HandleModels handles GET /api/v1/models requests.
func (h *ModelsHandler) HandleModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	writeJSON(w, http.StatusOK, modelsResponse{
		Status:    "online",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Models:    h.deps.ModelsAvailable(),
		Features: map[string]bool{
			"clinical_adjustment": true,
			"chat":                true,
		},
	})
}
