// Package assistant proxies a conversational medical assistant to an
// OpenAI-compatible chat completions API. When no API key is configured, or
// the upstream call fails, it falls back to canned preventive-health
// guidance so the chat surface stays usable offline.
package assistant

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/lifescan/aila/internal/domain/model"
	"github.com/lifescan/aila/pkg/logger"
	"github.com/lifescan/aila/pkg/metrics"
)

// Defaults for the upstream API.
const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-3.5-turbo"
	defaultTimeout = 30 * time.Second
	retryCount     = 2

	completionTemperature = 0.7
	completionMaxTokens   = 500
	completionTopP        = 0.9
)

// systemPrompt frames every upstream conversation. The assistant educates
// and triages toward professionals; it never diagnoses or prescribes.
const systemPrompt = `You are Aila Assistant, an AI medical assistant specialized in preventive health.

YOUR ROLE:
1. Provide general, educational medical information
2. Help interpret medical terms
3. Offer healthy lifestyle advice
4. Explain common medical conditions
5. Guide on when to seek medical attention

IMPORTANT RULES:
- NEVER give medical diagnoses
- NEVER prescribe treatments
- ALWAYS recommend consulting medical professionals
- Be empathetic, clear and precise
- Use accessible medical language
- Prioritize patient safety

RESPONSE FORMAT:
- Structure answers in short, clearly titled sections
- Highlight important information with bullet points
- Separate ideas with blank lines
- Keep a professional but warm tone
- Avoid unexplained technical jargon

Now answer the following query:`

// fallbackReplies are served when the upstream API is unreachable or not
// configured.
var fallbackReplies = []string{
	"General information\n\nI understand your health question. To give you the best guidance:\n\n- Could you share more detail about your situation?\n- Which specific symptoms are you experiencing?\n- Since when have you had them?\n\nRemember: this information is educational. For diagnosis and treatment, consult a medical professional.",

	"Medical assistance\n\nYour health matters. Based on your question:\n\nGeneral recommendations:\n- Keep a detailed record of symptoms\n- Schedule a visit with your primary care physician\n- Keep up with regular preventive checkups\n\nWarning signs that need immediate attention: sudden intense pain, persistent high fever, difficulty breathing, unexplained bleeding.",

	"Preventive health advice\n\nTo maintain good health:\n\n- Balanced diet rich in fruits and vegetables\n- Regular exercise (30 minutes a day)\n- Adequate sleep (7-9 hours)\n- Effective stress management\n\nFor your specific question, write down your doubts, bring them to your doctor, and ask for a personalized evaluation.",
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL points the client at an OpenAI-compatible API root.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithAPIKey sets the bearer token. An empty key keeps the client in
// fallback-only mode.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithModel selects the upstream completion model.
func WithModel(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.model = name
		}
	}
}

// WithTimeout bounds a single upstream call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// Client talks to the upstream completions API.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	timeout time.Duration

	http *resty.Client
	log  logger.Logger
}

// Reply is one assistant answer.
type Reply struct {
	Content   string
	FromModel bool // false when a canned fallback was served
}

// NewClient creates an assistant client with configuration options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		model:   defaultModel,
		timeout: defaultTimeout,
		log:     logger.Named("assistant"),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.http = resty.New().
		SetBaseURL(c.baseURL).
		SetTimeout(c.timeout).
		SetRetryCount(retryCount).
		SetHeader("Content-Type", "application/json")
	if c.apiKey != "" {
		c.http.SetAuthToken(c.apiKey)
	}

	return c
}

// Available reports whether the upstream API is configured.
func (c *Client) Available() bool {
	return c.apiKey != ""
}

// Model returns the active model name, or "demo" in fallback-only mode.
func (c *Client) Model() string {
	if !c.Available() {
		return "demo"
	}
	return c.model
}

// chatRequest is the completions request body.
type chatRequest struct {
	Model       string          `json:"model"`
	Messages    []model.Message `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
	TopP        float64         `json:"top_p"`
}

// chatResponse is the subset of the completions response we read.
type chatResponse struct {
	Choices []struct {
		Message model.Message `json:"message"`
	} `json:"choices"`
}

// Ask answers a user message, sending prior turns as conversational context.
// Upstream failures degrade to a canned reply rather than an error.
func (c *Client) Ask(ctx context.Context, message string, prior []model.Message) Reply {
	if !c.Available() {
		metrics.RecordChatFallback()
		return Reply{Content: fallbackReply()}
	}

	messages := make([]model.Message, 0, len(prior)+2)
	messages = append(messages, model.Message{Role: model.RoleSystem, Content: systemPrompt})
	messages = append(messages, prior...)
	messages = append(messages, model.Message{Role: model.RoleUser, Content: message})

	var out chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model:       c.model,
			Messages:    messages,
			Temperature: completionTemperature,
			MaxTokens:   completionMaxTokens,
			TopP:        completionTopP,
		}).
		SetResult(&out).
		Post("/chat/completions")

	switch {
	case err != nil:
		metrics.RecordChatError()
		c.log.Warn(ctx, "completions call failed", logger.Error(err))
	case resp.IsError():
		metrics.RecordChatError()
		c.log.Warn(ctx, "completions call rejected",
			logger.Int("status", resp.StatusCode()))
	case len(out.Choices) == 0:
		c.log.Warn(ctx, "completions response had no choices")
	default:
		return Reply{Content: out.Choices[0].Message.Content, FromModel: true}
	}

	metrics.RecordChatFallback()
	return Reply{Content: fallbackReply()}
}

func fallbackReply() string {
	return fallbackReplies[rand.Intn(len(fallbackReplies))] //nolint:gosec // cosmetic variety, not security sensitive
}

// String implements fmt.Stringer for debug logging without leaking the key.
func (c *Client) String() string {
	return fmt.Sprintf("assistant{model=%s, configured=%t}", c.model, c.Available())
}
