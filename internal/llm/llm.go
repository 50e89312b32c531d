// Package llm provides the chat completion client used by the study agents.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/rcliao/study-assistant/internal/config"
)

// ErrNoAPIKey is returned when no API key is configured.
var ErrNoAPIKey = errors.New("no API key configured (set OPENROUTER_API_KEY)")

// ChatService turns a prompt into a completion.
type ChatService interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// OpenRouter is a ChatService backed by an OpenAI-compatible endpoint.
type OpenRouter struct {
	model       llms.Model
	name        string
	temperature float64
	maxTokens   int
	log         logrus.FieldLogger
}

// NewOpenRouter creates a client from cfg.
func NewOpenRouter(cfg config.LLM, log logrus.FieldLogger) (*OpenRouter, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	client, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("create llm client: %w", err)
	}
	return &OpenRouter{
		model:       client,
		name:        cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		log:         log.WithField("component", "llm"),
	}, nil
}

// Complete implements ChatService. A non-positive maxTokens uses the
// configured default.
func (o *OpenRouter) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = o.maxTokens
	}
	out, err := llms.GenerateFromSinglePrompt(ctx, o.model, prompt,
		llms.WithMaxTokens(maxTokens),
		llms.WithTemperature(o.temperature),
	)
	if err != nil {
		o.log.WithField("model", o.name).WithError(err).Warn("completion failed")
		return "", fmt.Errorf("completion: %w", err)
	}
	return strings.TrimSpace(out), nil
}
