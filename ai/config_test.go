package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "http://localhost:11434/v1", cfg.ReasoningHost)
	assert.Equal(t, "text-embedding-004", cfg.EmbeddingModel)
	assert.Equal(t, "gemini-2.0-flash", cfg.ReasoningModel)
	assert.Equal(t, []string{"v1beta"}, cfg.APIVersions)
	assert.Equal(t, 60, cfg.RequestsPerMinute)
	assert.Equal(t, uint32(5), cfg.BreakerFailures)
	assert.Equal(t, 30*time.Second, cfg.BreakerTimeout)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("with custom host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://custom:8080/v1"))

		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://custom:8080/v1", cfg.ReasoningHost)
	})

	t.Run("with separate hosts", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://embed:8080/v1"),
			WithReasoningHost("http://reason:9090/v1"),
		)

		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://reason:9090/v1", cfg.ReasoningHost)
	})

	t.Run("with custom models", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingModel("gemini-embedding-001"),
			WithReasoningModel("gemini-2.5-pro"),
		)

		assert.Equal(t, "gemini-embedding-001", cfg.EmbeddingModel)
		assert.Equal(t, "gemini-2.5-pro", cfg.ReasoningModel)
	})

	t.Run("with transport settings", func(t *testing.T) {
		cfg := NewConfig(
			WithProvider(ProviderOpenAI),
			WithAPIKey("secret"),
			WithAPIVersions("v1beta", "v1"),
			WithRequestsPerMinute(10),
			WithBreaker(2, time.Minute),
		)

		assert.Equal(t, ProviderOpenAI, cfg.Provider)
		assert.Equal(t, "secret", cfg.APIKey)
		assert.Equal(t, []string{"v1beta", "v1"}, cfg.APIVersions)
		assert.Equal(t, 10, cfg.RequestsPerMinute)
		assert.Equal(t, uint32(2), cfg.BreakerFailures)
		assert.Equal(t, time.Minute, cfg.BreakerTimeout)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		expected string
	}{
		{"already has /v1", "http://localhost:11434/v1", "http://localhost:11434/v1"},
		{"missing /v1", "http://localhost:11434", "http://localhost:11434/v1"},
		{"trailing slash", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"empty host", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{EmbeddingHost: tt.host, ReasoningHost: tt.host}
			cfg.Normalize()

			assert.Equal(t, tt.expected, cfg.EmbeddingHost)
			assert.Equal(t, tt.expected, cfg.ReasoningHost)
		})
	}

	t.Run("provider and api versions", func(t *testing.T) {
		cfg := &Config{Provider: " Gemini ", APIVersions: []string{" ", ""}}
		cfg.Normalize()

		assert.Equal(t, ProviderGemini, cfg.Provider)
		assert.Equal(t, []string{"v1beta"}, cfg.APIVersions)
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    []ConfigOption
		wantErr error
	}{
		{
			name: "valid gemini config",
			opts: []ConfigOption{WithAPIKey("key")},
		},
		{
			name:    "gemini without key",
			opts:    nil,
			wantErr: ErrAPIKeyRequired,
		},
		{
			name: "openai without key",
			opts: []ConfigOption{WithProvider(ProviderOpenAI)},
		},
		{
			name:    "openai without host",
			opts:    []ConfigOption{WithProvider(ProviderOpenAI), WithHost("")},
			wantErr: ErrHostRequired,
		},
		{
			name:    "unknown provider",
			opts:    []ConfigOption{WithProvider("cohere"), WithAPIKey("key")},
			wantErr: ErrUnknownProvider,
		},
		{
			name:    "missing embedding model",
			opts:    []ConfigOption{WithAPIKey("key"), WithEmbeddingModel("")},
			wantErr: ErrModelRequired,
		},
		{
			name:    "missing reasoning model",
			opts:    []ConfigOption{WithAPIKey("key"), WithReasoningModel("")},
			wantErr: ErrModelRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfig(tt.opts...).Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("negative rate", func(t *testing.T) {
		err := NewConfig(WithAPIKey("key"), WithRequestsPerMinute(-1)).Validate()
		assert.Error(t, err)
	})
}
