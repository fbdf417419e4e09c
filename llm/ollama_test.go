package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"safevoice-backend/config"
	"safevoice-backend/models"

	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaGenerator_Generate(t *testing.T) {
	var got api.ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.ChatResponse{
			Model:   "llama3",
			Message: api.Message{Role: "assistant", Content: " You can approach a Protection Officer. "},
			Done:    true,
		})
	}))
	defer server.Close()

	gen, err := NewOllamaGenerator(server.URL, "llama3", 0.2)
	require.NoError(t, err)

	reply, err := gen.Generate(context.Background(), Request{
		SystemPrompt: "be kind",
		History: []models.ChatTurn{
			{Role: models.RoleAssistant, Text: "Hello"},
		},
		Prompt: "Who can help me?",
	})

	require.NoError(t, err)
	assert.Equal(t, "You can approach a Protection Officer.", reply)
	assert.Equal(t, "llama3", got.Model)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "assistant", got.Messages[1].Role)
	assert.Equal(t, "user", got.Messages[2].Role)
	assert.Equal(t, "Who can help me?", got.Messages[2].Content)
	require.NotNil(t, got.Stream)
	assert.False(t, *got.Stream)
}

func TestOllamaGenerator_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model not loaded"}`))
	}))
	defer server.Close()

	gen, err := NewOllamaGenerator(server.URL, "llama3", 0.2)
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), Request{Prompt: "hi"})
	assert.ErrorContains(t, err, "ollama chat")
}

func TestNewGenerator_UnknownProvider(t *testing.T) {
	_, err := NewGenerator(context.Background(), config.LLMConfig{Provider: "parrot"})
	assert.ErrorContains(t, err, "unknown LLM provider")
}
