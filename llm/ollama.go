package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"safevoice-backend/models"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"
)

// OllamaGenerator calls a local Ollama server's chat endpoint
type OllamaGenerator struct {
	client      *api.Client
	model       string
	temperature float32
}

// NewOllamaGenerator creates a client for host, or OLLAMA_HOST's default when host is empty
func NewOllamaGenerator(host, model string, temperature float32) (*OllamaGenerator, error) {
	hostURL := envconfig.Host()
	if host != "" {
		parsed, err := url.Parse(host)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
		}
		hostURL = parsed
	}

	return &OllamaGenerator{
		client:      api.NewClient(hostURL, http.DefaultClient),
		model:       model,
		temperature: temperature,
	}, nil
}

// Generate sends the conversation to Ollama and returns the reply text
func (o *OllamaGenerator) Generate(ctx context.Context, req Request) (string, error) {
	stream := false
	chatReq := &api.ChatRequest{
		Model:    o.model,
		Messages: toOllamaMessages(req),
		Stream:   &stream,
		Options: map[string]interface{}{
			"temperature": o.temperature,
		},
	}

	var builder strings.Builder
	err := o.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		builder.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}

	result := strings.TrimSpace(builder.String())
	if result == "" {
		return "", ErrEmptyResponse
	}
	return result, nil
}

func toOllamaMessages(req Request) []api.Message {
	messages := make([]api.Message, 0, len(req.History)+2)
	if req.SystemPrompt != "" {
		messages = append(messages, api.Message{Role: "system", Content: req.SystemPrompt})
	}
	for _, turn := range req.History {
		messages = append(messages, api.Message{Role: string(turn.Role), Content: turn.Text})
	}
	messages = append(messages, api.Message{Role: string(models.RoleUser), Content: req.Prompt})
	return messages
}
