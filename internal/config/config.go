// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file and env.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StrokeModelEnabled, HeartModelEnabled and SkinModelEnabled control
	// which model handles the predictor registry loads at startup.
	StrokeModelEnabled bool `koanf:"stroke_model_enabled"`
	HeartModelEnabled  bool `koanf:"heart_model_enabled"`
	SkinModelEnabled   bool `koanf:"skin_model_enabled"`

	// InferenceLatencyMinMS and InferenceLatencyMaxMS bound the simulated
	// model inference latency window.
	InferenceLatencyMinMS int `koanf:"inference_latency_min_ms"`
	InferenceLatencyMaxMS int `koanf:"inference_latency_max_ms"`

	// MaxUploadBytes caps the size of skin lesion image uploads.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// Assistant settings for the conversational proxy.
	AssistantBaseURL   string `koanf:"assistant_base_url"`
	AssistantAPIKey    string `koanf:"assistant_api_key"`
	AssistantModel     string `koanf:"assistant_model"`
	AssistantTimeoutMS int    `koanf:"assistant_timeout_ms"`

	// MaxChatHistory bounds messages retained per conversation.
	MaxChatHistory int `koanf:"max_chat_history"`

	// ChatContextWindow is the number of stored turns sent upstream as context.
	ChatContextWindow int `koanf:"chat_context_window"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":9090",
		StrokeModelEnabled:    true,
		HeartModelEnabled:     true,
		SkinModelEnabled:      true,
		InferenceLatencyMinMS: 20,
		InferenceLatencyMaxMS: 60,
		MaxUploadBytes:        10 << 20,
		AssistantBaseURL:      "https://api.openai.com/v1",
		AssistantAPIKey:       "",
		AssistantModel:        "gpt-3.5-turbo",
		AssistantTimeoutMS:    30_000,
		MaxChatHistory:        20,
		ChatContextWindow:     5,
	}
}
