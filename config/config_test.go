package config

import (
	"testing"

	"safevoice-backend/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "DATABASE_URL", "LOG_LEVEL", "LOG_JSON", "LLM_PROVIDER", "GEMINI_MODEL",
		"OLLAMA_HOST", "OLLAMA_MODEL", "LLM_TEMPERATURE", "SEARCH_API_KEY", "SEARCH_ENGINE_ID",
		"SEARCH_MAX_RESULTS", "DOCUMENT_DATE_LAYOUT", "DOCUMENT_TIMEZONE", "RENDER_MODE",
		"RENDER_BROWSER_BIN", "STORAGE_TYPE", "STORAGE_LOCAL_PATH", "AWS_S3_BUCKET", "AWS_REGION",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("GEMINI_API_KEY", "test-key")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "test-key", cfg.LLM.GeminiAPIKey)
	assert.InDelta(t, 0.4, cfg.LLM.Temperature, 0.0001)
	assert.Equal(t, 5, cfg.Search.MaxResults)
	assert.False(t, cfg.Search.Enabled())
	assert.Equal(t, "02/01/2006", cfg.Document.DateLayout)
	assert.NotNil(t, cfg.Document.Location)
	assert.Equal(t, RenderModePDF, cfg.Render.Mode)
	assert.Equal(t, storage.StorageTypeLocal, cfg.Storage.Type)
	assert.Equal(t, "./storage/files", cfg.Storage.LocalPath)
	assert.True(t, cfg.LogJSON)
}

func TestLoad_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LLM_PROVIDER", "OLLAMA")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OLLAMA_MODEL", "mistral")
	t.Setenv("SEARCH_API_KEY", "search-key")
	t.Setenv("SEARCH_ENGINE_ID", "cx")
	t.Setenv("SEARCH_MAX_RESULTS", "3")
	t.Setenv("DOCUMENT_TIMEZONE", "Asia/Kolkata")
	t.Setenv("RENDER_MODE", "html")
	t.Setenv("LOG_JSON", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, ProviderOllama, cfg.LLM.Provider)
	assert.Equal(t, "mistral", cfg.LLM.OllamaModel)
	assert.True(t, cfg.Search.Enabled())
	assert.Equal(t, 3, cfg.Search.MaxResults)
	assert.Equal(t, "Asia/Kolkata", cfg.Document.Location.String())
	assert.Equal(t, RenderModeHTML, cfg.Render.Mode)
	assert.False(t, cfg.LogJSON)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("gemini without key", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("GEMINI_API_KEY", "")
		_, err := Load()
		assert.ErrorContains(t, err, "GEMINI_API_KEY")
	})

	t.Run("unknown provider", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("LLM_PROVIDER", "parrot")
		_, err := Load()
		assert.ErrorContains(t, err, "unknown LLM provider")
	})

	t.Run("bad number", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("SEARCH_MAX_RESULTS", "many")
		_, err := Load()
		assert.ErrorContains(t, err, "SEARCH_MAX_RESULTS")
	})

	t.Run("bad timezone", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("DOCUMENT_TIMEZONE", "Mars/Olympus")
		_, err := Load()
		assert.ErrorContains(t, err, "DOCUMENT_TIMEZONE")
	})

	t.Run("s3 without bucket", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("STORAGE_TYPE", "s3")
		_, err := Load()
		assert.ErrorContains(t, err, "AWS_S3_BUCKET")
	})

	t.Run("unknown render mode", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("RENDER_MODE", "docx")
		_, err := Load()
		assert.ErrorContains(t, err, "unknown render mode")
	})
}
