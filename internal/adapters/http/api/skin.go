// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/lifescan/aila/internal/domain/triage"
)

// rankedClassCount bounds the probability list in the response.
const rankedClassCount = 3

// allowedImageExtensions is the upload extension allow-list.
var allowedImageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
}

// SkinHandler handles skin-lesion classification requests.
type SkinHandler struct {
	deps           Dependencies
	maxUploadBytes int64
}

// NewSkinHandler creates a new skin handler.
func NewSkinHandler(deps Dependencies, maxUploadBytes int64) *SkinHandler {
	return &SkinHandler{deps: deps, maxUploadBytes: maxUploadBytes}
}

// skinResponse mirrors the response schema for POST /api/v1/predict/skin.
type skinResponse struct {
	Success        bool                      `json:"success"`
	Prediction     skinPrediction            `json:"prediction"`
	Recommendation string                    `json:"recommendation"`
	Explanation    string                    `json:"explanation"`
	Probabilities  []triage.ClassProbability `json:"probabilities"`
	Visual         skinVisual                `json:"visual"`
}

type skinPrediction struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
	RiskLevel  string  `json:"risk_level"`
	Urgency    string  `json:"urgency"`
}

type skinVisual struct {
	Color string `json:"color"`
}

// HandlePredictSkin handles POST /api/v1/predict/skin requests. The image
// arrives as multipart form field "image".
func (h *SkinHandler) HandlePredictSkin(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict_skin"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	image, ok := h.readImageUpload(w, r, op)
	if !ok {
		return
	}

	classification, grade, err := h.deps.AssessSkin(r.Context(), image)
	if err != nil {
		writeAssessmentError(r.Context(), w, op, err)
		return
	}

	writeJSON(w, http.StatusOK, skinResponse{
		Success: true,
		Prediction: skinPrediction{
			Class:      classification.Label,
			Confidence: classification.Confidence,
			RiskLevel:  string(grade.RiskLevel),
			Urgency:    grade.Urgency,
		},
		Recommendation: grade.Recommendation,
		Explanation:    grade.Explanation,
		Probabilities:  triage.RankClasses(classification.Distribution, rankedClassCount),
		Visual:         skinVisual{Color: grade.ColorToken},
	})
}

// skinDebugResponse is the diagnostic counterpart of skinResponse: the full
// ranked distribution instead of the top classes.
type skinDebugResponse struct {
	Debug          bool                      `json:"debug"`
	AllPredictions []triage.ClassProbability `json:"all_predictions"`
	TopPrediction  triage.ClassProbability   `json:"top_prediction"`
	RiskLevel      string                    `json:"risk_level"`
	Why            string                    `json:"why"`
}

// HandleSkinDebug handles POST /api/v1/predict/skin/debug requests. It runs
// the same pipeline as the predict endpoint but exposes every class
// probability, for inspecting what the classifier actually returns.
func (h *SkinHandler) HandleSkinDebug(w http.ResponseWriter, r *http.Request) {
	const op = "api.skin_debug"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	image, ok := h.readImageUpload(w, r, op)
	if !ok {
		return
	}

	classification, grade, err := h.deps.AssessSkin(r.Context(), image)
	if err != nil {
		writeAssessmentError(r.Context(), w, op, err)
		return
	}

	ranked := triage.RankClasses(classification.Distribution, 0)
	writeJSON(w, http.StatusOK, skinDebugResponse{
		Debug:          true,
		AllPredictions: ranked,
		TopPrediction:  ranked[0],
		RiskLevel:      string(grade.RiskLevel),
		Why: fmt.Sprintf("class %q with %.1f%% confidence",
			classification.Label, classification.Confidence*100),
	})
}

// readImageUpload extracts and validates the multipart "image" field. On
// failure the error response has already been written and ok is false.
func (h *SkinHandler) readImageUpload(w http.ResponseWriter, r *http.Request, op string) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "unsupported_media", WrapKind(op, ErrUnsupportedMedia, err))
		return nil, false
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "unsupported_media",
			WrapKind(op, ErrUnsupportedMedia, errors.New("missing image field")))
		return nil, false
	}
	defer func() { _ = file.Close() }()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if header.Filename == "" || !allowedImageExtensions[ext] {
		writeError(w, http.StatusBadRequest, "unsupported_media",
			WrapKind(op, ErrUnsupportedMedia, errors.New("unsupported image format")))
		return nil, false
	}

	image, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unsupported_media", WrapKind(op, ErrUnsupportedMedia, err))
		return nil, false
	}
	return image, true
}
