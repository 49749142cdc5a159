// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// Canned high-risk sample cases run through the full assessment pipeline.
// Useful for smoke-testing a deployment without crafting payloads by hand.
var (
	strokeExamplePayload = map[string]any{
		"gender":            "Female",
		"age":               67.0,
		"hypertension":      1.0,
		"heart_disease":     0.0,
		"ever_married":      "Yes",
		"work_type":         "Private",
		"Residence_type":    "Urban",
		"avg_glucose_level": 228.69,
		"bmi":               36.6,
		"smoking_status":    "formerly smoked",
	}

	heartExamplePayload = map[string]any{
		"Age":            40.0,
		"Sex":            "M",
		"ChestPainType":  "ATA",
		"RestingBP":      140.0,
		"Cholesterol":    289.0,
		"FastingBS":      0.0,
		"RestingECG":     "Normal",
		"MaxHR":          172.0,
		"ExerciseAngina": "N",
		"Oldpeak":        0.0,
		"ST_Slope":       "Up",
		"HeartDisease":   0.0,
	}
)

// ExamplesHandler serves the canned example assessments.
type ExamplesHandler struct {
	deps Dependencies
}

// NewExamplesHandler creates a new examples handler.
func NewExamplesHandler(deps Dependencies) *ExamplesHandler {
	return &ExamplesHandler{deps: deps}
}

type exampleResponse struct {
	TestCase  string             `json:"test_case"`
	InputData map[string]any     `json:"input_data"`
	Result    assessmentResponse `json:"result"`
}

// HandleStrokeExample handles GET /api/v1/examples/stroke requests.
func (h *ExamplesHandler) HandleStrokeExample(w http.ResponseWriter, r *http.Request) {
	const op = "api.example_stroke"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	assessment, story, err := h.deps.AssessStroke(r.Context(), strokeExamplePayload)
	if err != nil {
		writeAssessmentError(r.Context(), w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, exampleResponse{
		TestCase:  "Stroke - high risk",
		InputData: strokeExamplePayload,
		Result:    newAssessmentResponse(assessment, story),
	})
}

// HandleHeartExample handles GET /api/v1/examples/heart requests.
func (h *ExamplesHandler) HandleHeartExample(w http.ResponseWriter, r *http.Request) {
	const op = "api.example_heart"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	assessment, story, err := h.deps.AssessHeart(r.Context(), heartExamplePayload)
	if err != nil {
		writeAssessmentError(r.Context(), w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, exampleResponse{
		TestCase:  "Heart - sample case",
		InputData: heartExamplePayload,
		Result:    newAssessmentResponse(assessment, story),
	})
}
