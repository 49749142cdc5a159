// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/lifescan/aila/internal/domain/adjust"
	"github.com/lifescan/aila/internal/domain/model"
	"github.com/lifescan/aila/internal/domain/narrative"
	"github.com/lifescan/aila/internal/domain/triage"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Assessment pipeline: normalize -> model verdict -> clinical
	// adjustment -> narrative.
	AssessStroke(ctx context.Context, payload map[string]any) (adjust.Assessment, narrative.RiskNarrative, error)
	AssessHeart(ctx context.Context, payload map[string]any) (adjust.Assessment, narrative.RiskNarrative, error)
	AssessSkin(ctx context.Context, image []byte) (model.ImageClassification, triage.Grade, error)

	// Chat surface.
	Chat(ctx context.Context, conversationID, message string) (ChatReply, error)
	ChatHistory(conversationID string) ([]model.Message, int)
	NewConversation(userID string) string
	ChatStatus() ChatStatus

	// ModelsAvailable reports per-domain model availability.
	ModelsAvailable() map[string]bool
}

// ChatReply is the outcome of one chat exchange.
type ChatReply struct {
	Response       string
	ConversationID string
	FromModel      bool
	MessageCount   int
}

// ChatStatus is a point-in-time snapshot of the chat subsystem.
type ChatStatus struct {
	ModelAvailable      bool
	Model               string
	ActiveConversations int
	TotalMessages       int
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	metricsHandler  *MetricsHandler
	statsHandler    *StatsHandler
	strokeHandler   *StrokeHandler
	heartHandler    *HeartHandler
	skinHandler     *SkinHandler
	chatHandler     *ChatHandler
	modelsHandler   *ModelsHandler
	examplesHandler *ExamplesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxUploadBytes int64) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		metricsHandler:  NewMetricsHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		strokeHandler:   NewStrokeHandler(deps),
		heartHandler:    NewHeartHandler(deps),
		skinHandler:     NewSkinHandler(deps, maxUploadBytes),
		chatHandler:     NewChatHandler(deps),
		modelsHandler:   NewModelsHandler(deps),
		examplesHandler: NewExamplesHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.metricsHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("/api/v1/predict/stroke", MetricsMiddleware(s.strokeHandler.HandlePredictStroke, "predict_stroke"))
	mux.HandleFunc("/api/v1/predict/heart", MetricsMiddleware(s.heartHandler.HandlePredictHeart, "predict_heart"))
	mux.HandleFunc("/api/v1/predict/skin", MetricsMiddleware(s.skinHandler.HandlePredictSkin, "predict_skin"))
	mux.HandleFunc("/api/v1/predict/skin/debug", MetricsMiddleware(s.skinHandler.HandleSkinDebug, "skin_debug"))
	mux.HandleFunc("/api/v1/models", MetricsMiddleware(s.modelsHandler.HandleModels, "models"))

	mux.HandleFunc("/api/v1/chat/send", MetricsMiddleware(s.chatHandler.HandleSend, "chat_send"))
	mux.HandleFunc("/api/v1/chat/history", MetricsMiddleware(s.chatHandler.HandleHistory, "chat_history"))
	mux.HandleFunc("/api/v1/chat/new", MetricsMiddleware(s.chatHandler.HandleNew, "chat_new"))
	mux.HandleFunc("/api/v1/chat/status", MetricsMiddleware(s.chatHandler.HandleStatus, "chat_status"))

	mux.HandleFunc("/api/v1/examples/stroke", MetricsMiddleware(s.examplesHandler.HandleStrokeExample, "example_stroke"))
	mux.HandleFunc("/api/v1/examples/heart", MetricsMiddleware(s.examplesHandler.HandleHeartExample, "example_heart"))
}

// assessmentResponse mirrors the response schema for the predict endpoints.
type assessmentResponse struct {
	Success         bool              `json:"success"`
	Prediction      int               `json:"prediction"`
	Probability     float64           `json:"probability"`
	RiskLevel       string            `json:"risk_level"`
	RiskDescription string            `json:"risk_description"`
	RiskColor       string            `json:"risk_color"`
	Condition       string            `json:"condition"`
	Factors         []string          `json:"factors"`
	AdjustmentNote  string            `json:"adjustment_note"`
	DebugInfo       assessmentDebug   `json:"debug_info"`
}

type assessmentDebug struct {
	OriginalPrediction   int     `json:"original_prediction"`
	OriginalProbability  float64 `json:"original_probability"`
	WasAdjusted          bool    `json:"was_adjusted"`
	RiskMultiplier       float64 `json:"risk_multiplier"`
	ClinicalFactorsCount int     `json:"clinical_factors_count"`
}

// newAssessmentResponse assembles the wire shape shared by the predict and
// example endpoints.
func newAssessmentResponse(a adjust.Assessment, n narrative.RiskNarrative) assessmentResponse {
	factors := a.ClinicalFactors
	if factors == nil {
		factors = []string{}
	}
	return assessmentResponse{
		Success:         true,
		Prediction:      a.Prediction,
		Probability:     a.Probability,
		RiskLevel:       string(n.RiskLevel),
		RiskDescription: n.Description,
		RiskColor:       n.ColorToken,
		Condition:       n.Condition,
		Factors:         factors,
		AdjustmentNote:  n.AdjustmentNote,
		DebugInfo: assessmentDebug{
			OriginalPrediction:   a.RawPrediction,
			OriginalProbability:  a.BaseProbability,
			WasAdjusted:          n.WasAdjusted,
			RiskMultiplier:       a.RiskMultiplier,
			ClinicalFactorsCount: a.TotalFactors,
		},
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
