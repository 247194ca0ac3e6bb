// Package llm adapts an OpenAI-compatible chat model to the narrative
// generator port.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"

	"journal/internal/domain"
)

const (
	defaultModel   = "gpt-3.5-turbo"
	defaultTimeout = 30 * time.Second
	maxTokens      = 500
	temperature    = 0.7
	burst          = 1
)

// ErrNoChoices is returned when the model responds without any content.
var ErrNoChoices = errors.New("model returned no choices")

// contentGenerator is the slice of the langchaingo model API this package uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// Config configures the OpenAI generator.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	// Timeout bounds a single generation call.
	Timeout time.Duration
	// RatePerSecond caps outbound requests across all users.
	RatePerSecond float64
}

// Generator calls a chat model once per request. It does not retry.
type Generator struct {
	model   contentGenerator
	limiter *rate.Limiter
	timeout time.Duration
}

var _ domain.NarrativeGenerator = (*Generator)(nil)

// New creates a Generator for cfg. It returns (nil, nil) when no API key is
// configured so callers can treat generation as unavailable.
func New(cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	return newGenerator(client, cfg.Timeout, cfg.RatePerSecond), nil
}

func newGenerator(model contentGenerator, timeout time.Duration, perSecond float64) *Generator {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &Generator{
		model:   model,
		limiter: rate.NewLimiter(limit, burst),
		timeout: timeout,
	}
}

// Generate sends system and prompt as a two-message chat and returns the
// first choice.
func (g *Generator) Generate(ctx context.Context, system, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	resp, err := g.model.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeSystem, system),
			llms.TextParts(llms.ChatMessageTypeHuman, prompt),
		},
		llms.WithMaxTokens(maxTokens),
		llms.WithTemperature(temperature),
	)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Content, nil
}
