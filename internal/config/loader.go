package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if AILA_CONFIG is set
//  3. env (prefix AILA_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("AILA_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: AILA_ADDR, AILA_MAX_CHAT_HISTORY, ...
	// Map env keys like AILA_MAX_CHAT_HISTORY -> max_chat_history (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("AILA_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "aila_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	switch {
	case cfg.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.InferenceLatencyMinMS < 0 || cfg.InferenceLatencyMaxMS < cfg.InferenceLatencyMinMS:
		return fmt.Errorf("%w: inference latency window is inverted", ErrInvalidConfig)
	case cfg.MaxChatHistory < 1:
		return fmt.Errorf("%w: max_chat_history must be positive", ErrInvalidConfig)
	case cfg.ChatContextWindow < 0 || cfg.ChatContextWindow > cfg.MaxChatHistory:
		return fmt.Errorf("%w: chat_context_window must fit within max_chat_history", ErrInvalidConfig)
	case cfg.MaxUploadBytes < 1:
		return fmt.Errorf("%w: max_upload_bytes must be positive", ErrInvalidConfig)
	}
	return nil
}
