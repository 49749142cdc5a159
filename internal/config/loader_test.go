package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/lifescan/aila/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with no file and no environment overrides", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.StrokeModelEnabled, convey.ShouldBeTrue)
				convey.So(cfg.HeartModelEnabled, convey.ShouldBeTrue)
				convey.So(cfg.SkinModelEnabled, convey.ShouldBeTrue)
				convey.So(cfg.MaxChatHistory, convey.ShouldEqual, 20)
				convey.So(cfg.ChatContextWindow, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When loading config with environment overrides", func() {
			_ = os.Setenv("AILA_ADDR", ":8080")
			_ = os.Setenv("AILA_MAX_CHAT_HISTORY", "50")
			_ = os.Setenv("AILA_INFERENCE_LATENCY_MIN_MS", "5")
			_ = os.Setenv("AILA_INFERENCE_LATENCY_MAX_MS", "10")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then the environment should win over the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MaxChatHistory, convey.ShouldEqual, 50)
				convey.So(cfg.InferenceLatencyMinMS, convey.ShouldEqual, 5)
				convey.So(cfg.InferenceLatencyMaxMS, convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When loading config from a YAML file", func() {
			yamlContent := `
addr: ":7070"
assistant_model: "gpt-4o-mini"
max_chat_history: 40
chat_context_window: 8
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("AILA_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then the file values should merge over the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.AssistantModel, convey.ShouldEqual, "gpt-4o-mini")
				convey.So(cfg.MaxChatHistory, convey.ShouldEqual, 40)
				convey.So(cfg.ChatContextWindow, convey.ShouldEqual, 8)
				convey.So(cfg.StrokeModelEnabled, convey.ShouldBeTrue)
				convey.So(cfg.MaxUploadBytes, convey.ShouldEqual, int64(10<<20))
			})
		})

		convey.Convey("When both a YAML file and environment variables are set", func() {
			yamlContent := `
addr: ":7070"
max_chat_history: 40
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("AILA_CONFIG", tmpFile)
			_ = os.Setenv("AILA_ADDR", ":6060")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then the environment should win over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
				convey.So(cfg.MaxChatHistory, convey.ShouldEqual, 40)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("AILA_CONFIG", "/nonexistent/aila.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the config file contains invalid YAML", func() {
			tmpFile := createTempConfigFile("addr: [unclosed")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("AILA_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigLoaderValidation(t *testing.T) {
	convey.Convey("Given config validation rules", t, func() {
		ctx := context.Background()

		convey.Convey("When addr is empty", func() {
			yamlContent := `
addr: ""
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("AILA_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the inference latency window is inverted", func() {
			_ = os.Setenv("AILA_INFERENCE_LATENCY_MIN_MS", "100")
			_ = os.Setenv("AILA_INFERENCE_LATENCY_MAX_MS", "10")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When max_chat_history is zero", func() {
			_ = os.Setenv("AILA_MAX_CHAT_HISTORY", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the chat context window exceeds the history cap", func() {
			_ = os.Setenv("AILA_MAX_CHAT_HISTORY", "4")
			_ = os.Setenv("AILA_CHAT_CONTEXT_WINDOW", "10")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When max_upload_bytes is not positive", func() {
			_ = os.Setenv("AILA_MAX_UPLOAD_BYTES", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"AILA_CONFIG",
		"AILA_ADDR",
		"AILA_LOG_LEVEL",
		"AILA_MAX_CHAT_HISTORY",
		"AILA_CHAT_CONTEXT_WINDOW",
		"AILA_MAX_UPLOAD_BYTES",
		"AILA_INFERENCE_LATENCY_MIN_MS",
		"AILA_INFERENCE_LATENCY_MAX_MS",
		"AILA_ASSISTANT_BASE_URL",
		"AILA_ASSISTANT_API_KEY",
		"AILA_ASSISTANT_MODEL",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "aila-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
