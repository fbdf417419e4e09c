// Package llm adapts remote language models to the single request/response
// call the assistant and FIR pipeline need.
package llm

import (
	"context"
	"errors"
	"fmt"

	"safevoice-backend/config"
	"safevoice-backend/models"
)

// ErrEmptyResponse is returned when the model produced no text
var ErrEmptyResponse = errors.New("model returned empty content")

// Request is one generation call
type Request struct {
	// SystemPrompt is sent as the model's system instruction, if any.
	SystemPrompt string

	// History is the conversation so far, oldest first. It does not include Prompt.
	History []models.ChatTurn

	// Prompt is the new user message.
	Prompt string
}

// Generator produces a text reply for a request
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// NewGenerator builds the generator selected by cfg.Provider
func NewGenerator(ctx context.Context, cfg config.LLMConfig) (Generator, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.Temperature)
	case config.ProviderOllama:
		return NewOllamaGenerator(cfg.OllamaHost, cfg.OllamaModel, cfg.Temperature)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.Provider)
	}
}
