// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/lifescan/aila/internal/adapters/assistant"
	"github.com/lifescan/aila/internal/adapters/history"
	"github.com/lifescan/aila/internal/adapters/http/api"
	"github.com/lifescan/aila/internal/adapters/predictor"
	"github.com/lifescan/aila/internal/domain/adjust"
	"github.com/lifescan/aila/internal/domain/model"
	"github.com/lifescan/aila/internal/domain/narrative"
	"github.com/lifescan/aila/internal/domain/record"
	"github.com/lifescan/aila/internal/domain/triage"
	"github.com/lifescan/aila/pkg/logger"
	"github.com/lifescan/aila/pkg/metrics"
)

// floorEpsilon separates genuine floor activations from float noise when
// comparing the final probability against the multiplicative product.
const floorEpsilon = 1e-9

// Service implements the API dependencies for the risk assessment system.
type Service struct {
	mu sync.RWMutex

	// Core components
	registry *predictor.Registry
	assist   *assistant.Client
	chats    *history.Store

	// Configuration
	strokeEnabled    bool
	heartEnabled     bool
	skinEnabled      bool
	inferenceMin     time.Duration
	inferenceMax     time.Duration
	assistantBaseURL string
	assistantAPIKey  string
	assistantModel   string
	assistantTimeout time.Duration
	maxChatHistory   int
	contextWindow    int

	// State
	started bool
	startAt time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithModelsEnabled controls which prediction domains the registry loads.
func WithModelsEnabled(stroke, heart, skin bool) Option {
	return func(s *Service) {
		s.strokeEnabled = stroke
		s.heartEnabled = heart
		s.skinEnabled = skin
	}
}

// WithInferenceLatencyRange sets the simulated model inference latency window.
func WithInferenceLatencyRange(minLatency, maxLatency time.Duration) Option {
	return func(s *Service) {
		if minLatency > 0 && maxLatency > minLatency {
			s.inferenceMin = minLatency
			s.inferenceMax = maxLatency
		}
	}
}

// WithAssistant configures the upstream chat completion proxy.
func WithAssistant(baseURL, apiKey, modelName string, timeout time.Duration) Option {
	return func(s *Service) {
		if baseURL != "" {
			s.assistantBaseURL = baseURL
		}
		s.assistantAPIKey = apiKey
		if modelName != "" {
			s.assistantModel = modelName
		}
		if timeout > 0 {
			s.assistantTimeout = timeout
		}
	}
}

// WithMaxChatHistory bounds messages retained per conversation.
func WithMaxChatHistory(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxChatHistory = n
		}
	}
}

// WithChatContextWindow sets how many stored messages accompany each
// upstream chat request.
func WithChatContextWindow(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.contextWindow = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		strokeEnabled:    true,
		heartEnabled:     true,
		skinEnabled:      true,
		inferenceMin:     20 * time.Millisecond,
		inferenceMax:     60 * time.Millisecond,
		assistantBaseURL: "",
		assistantModel:   "",
		assistantTimeout: 30 * time.Second,
		maxChatHistory:   20,
		contextWindow:    5,
		logger:           nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting assessment service...")

	s.registry = predictor.NewRegistry(
		predictor.WithStrokeEnabled(s.strokeEnabled),
		predictor.WithHeartEnabled(s.heartEnabled),
		predictor.WithSkinEnabled(s.skinEnabled),
		predictor.WithLatencyRange(s.inferenceMin, s.inferenceMax),
	)

	assistantOpts := []assistant.Option{
		assistant.WithAPIKey(s.assistantAPIKey),
		assistant.WithTimeout(s.assistantTimeout),
	}
	if s.assistantBaseURL != "" {
		assistantOpts = append(assistantOpts, assistant.WithBaseURL(s.assistantBaseURL))
	}
	if s.assistantModel != "" {
		assistantOpts = append(assistantOpts, assistant.WithModel(s.assistantModel))
	}
	s.assist = assistant.NewClient(assistantOpts...)

	s.chats = history.NewStore(
		history.WithMaxMessages(s.maxChatHistory),
	)

	s.started = true
	s.startAt = time.Now()
	s.logger.Info(ctx, "assessment service started",
		logger.Bool("strokeModel", s.strokeEnabled),
		logger.Bool("heartModel", s.heartEnabled),
		logger.Bool("skinModel", s.skinEnabled),
		logger.Bool("assistant", s.assist.Available()),
		logger.Int("maxChatHistory", s.maxChatHistory),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.started = false
	s.logger.Info(context.Background(), "assessment service stopped")
}

// AssessStroke runs one stroke record through the full pipeline:
// normalize, model verdict, clinical adjustment, narrative.
func (s *Service) AssessStroke(ctx context.Context, payload map[string]any) (adjust.Assessment, narrative.RiskNarrative, error) {
	mdl, err := s.registry.Stroke()
	if err != nil {
		metrics.RecordAssessmentError(predictor.DomainStroke)
		return adjust.Assessment{}, narrative.RiskNarrative{}, err
	}

	rec := record.NormalizeStroke(payload)
	verdict, err := mdl.Predict(ctx, rec)
	if err != nil {
		metrics.RecordAssessmentError(predictor.DomainStroke)
		return adjust.Assessment{}, narrative.RiskNarrative{}, fmt.Errorf("stroke predict: %w", err)
	}

	a := adjust.Stroke(rec, verdict)
	n := narrative.Compose(a, narrative.DomainStroke)
	s.recordAssessment(ctx, predictor.DomainStroke, a)
	return a, n, nil
}

// AssessHeart runs one heart record through the full pipeline.
func (s *Service) AssessHeart(ctx context.Context, payload map[string]any) (adjust.Assessment, narrative.RiskNarrative, error) {
	mdl, err := s.registry.Heart()
	if err != nil {
		metrics.RecordAssessmentError(predictor.DomainHeart)
		return adjust.Assessment{}, narrative.RiskNarrative{}, err
	}

	rec := record.NormalizeHeart(payload)
	verdict, err := mdl.Predict(ctx, rec)
	if err != nil {
		metrics.RecordAssessmentError(predictor.DomainHeart)
		return adjust.Assessment{}, narrative.RiskNarrative{}, fmt.Errorf("heart predict: %w", err)
	}

	a := adjust.Heart(rec, verdict)
	n := narrative.Compose(a, narrative.DomainHeart)
	s.recordAssessment(ctx, predictor.DomainHeart, a)
	return a, n, nil
}

// recordAssessment emits the per-assessment metrics shared by both domains.
func (s *Service) recordAssessment(ctx context.Context, domain string, a adjust.Assessment) {
	metrics.RecordAssessment(domain, strconv.Itoa(a.Prediction))
	metrics.RecordAdjustmentMagnitude(a.Probability - a.BaseProbability)

	// A final probability above the multiplicative product means a safety
	// floor fired, since caps only ever pull the value down.
	if a.Probability > a.BaseProbability*a.RiskMultiplier+floorEpsilon {
		metrics.RecordRiskFloorActivation(domain)
	}

	s.logger.Debug(ctx, "assessment complete",
		logger.String("domain", domain),
		logger.Int("prediction", a.Prediction),
		logger.Float64("probability", a.Probability),
		logger.Float64("riskMultiplier", a.RiskMultiplier),
		logger.Int("clinicalFactors", a.TotalFactors),
	)
}

// AssessSkin classifies a lesion image and grades it for triage.
func (s *Service) AssessSkin(ctx context.Context, image []byte) (model.ImageClassification, triage.Grade, error) {
	mdl, err := s.registry.Skin()
	if err != nil {
		metrics.RecordAssessmentError(predictor.DomainSkin)
		return model.ImageClassification{}, triage.Grade{}, err
	}

	classification, err := mdl.Classify(ctx, image)
	if err != nil {
		metrics.RecordAssessmentError(predictor.DomainSkin)
		return model.ImageClassification{}, triage.Grade{}, fmt.Errorf("skin classify: %w", err)
	}

	grade := triage.Lesion(classification)
	metrics.RecordAssessment(predictor.DomainSkin, string(grade.RiskLevel))
	metrics.RecordSkinGrade(string(grade.RiskLevel))

	s.logger.Debug(ctx, "skin classification complete",
		logger.String("class", classification.Label),
		logger.Float64("confidence", classification.Confidence),
		logger.String("riskLevel", string(grade.RiskLevel)),
		logger.String("urgency", grade.Urgency),
	)
	return classification, grade, nil
}

// Chat dispatches one user message to the assistant with bounded
// conversation context and records both turns in history.
func (s *Service) Chat(ctx context.Context, conversationID, message string) (api.ChatReply, error) {
	metrics.RecordChatRequest()

	var prior []model.Message
	if s.contextWindow > 0 {
		prior = s.chats.Recent(conversationID, s.contextWindow)
	}
	reply := s.assist.Ask(ctx, message, prior)

	s.chats.Append(conversationID,
		model.Message{Role: model.RoleUser, Content: message},
		model.Message{Role: model.RoleAssistant, Content: reply.Content},
	)
	metrics.UpdateActiveConversations(s.chats.Conversations())

	return api.ChatReply{
		Response:       reply.Content,
		ConversationID: conversationID,
		FromModel:      reply.FromModel,
		MessageCount:   s.chats.Len(conversationID),
	}, nil
}

// ChatHistory returns the retained messages for a conversation.
func (s *Service) ChatHistory(conversationID string) ([]model.Message, int) {
	return s.chats.Recent(conversationID, s.maxChatHistory), s.chats.Len(conversationID)
}

// NewConversation opens a fresh conversation for a user.
func (s *Service) NewConversation(userID string) string {
	id := s.chats.New(userID)
	metrics.UpdateActiveConversations(s.chats.Conversations())
	return id
}

// ChatStatus reports a point-in-time snapshot of the chat subsystem.
func (s *Service) ChatStatus() api.ChatStatus {
	return api.ChatStatus{
		ModelAvailable:      s.assist.Available(),
		Model:               s.assist.Model(),
		ActiveConversations: s.chats.Conversations(),
		TotalMessages:       s.chats.TotalMessages(),
	}
}

// ModelsAvailable reports per-domain model availability.
func (s *Service) ModelsAvailable() map[string]bool {
	return s.registry.Available()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":           s.started,
		"max_chat_history":  s.maxChatHistory,
		"context_window":    s.contextWindow,
		"inference_min_ms":  s.inferenceMin.Milliseconds(),
		"inference_max_ms":  s.inferenceMax.Milliseconds(),
	}

	if s.started {
		stats["uptime_seconds"] = int64(time.Since(s.startAt).Seconds())
		stats["models"] = s.registry.Available()
		stats["assistant_available"] = s.assist.Available()
		stats["active_conversations"] = s.chats.Conversations()
		stats["total_messages"] = s.chats.TotalMessages()
	}

	return stats
}
