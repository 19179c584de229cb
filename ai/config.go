// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"fmt"
	"strings"
	"time"
)

// Config holds configuration for AI service providers.
type Config struct {
	// Provider selects the backend: "gemini" or "openai".
	// Default: "gemini"
	Provider string `yaml:"provider"`

	// APIKey authenticates against hosted services. Required for gemini.
	// OpenAI-compatible local servers accept any value.
	APIKey string `yaml:"api_key"`

	// EmbeddingHost is the base URL of an OpenAI-compatible embedding service.
	// Example: "http://localhost:11434/v1"
	EmbeddingHost string `yaml:"embedding_host"`

	// ReasoningHost is the base URL of an OpenAI-compatible chat service.
	ReasoningHost string `yaml:"reasoning_host"`

	// EmbeddingModel is the preferred embedding model.
	// Example: "text-embedding-004", "gemini-embedding-001"
	EmbeddingModel string `yaml:"embedding_model"`

	// ReasoningModel is the model used to judge candidates.
	// Example: "gemini-2.0-flash", "qwen2.5:7b"
	ReasoningModel string `yaml:"reasoning_model"`

	// APIVersions lists the API versions each preferred embedding model is
	// tried on, in order. Default: ["v1beta"]
	APIVersions []string `yaml:"api_versions"`

	// RequestsPerMinute caps calls to a hosted provider. Zero disables limiting.
	RequestsPerMinute int `yaml:"requests_per_minute"`

	// BreakerFailures is the number of consecutive failures that opens the
	// circuit breaker. Zero disables the breaker.
	BreakerFailures uint32 `yaml:"breaker_failures"`

	// BreakerTimeout is how long the breaker stays open before probing again.
	BreakerTimeout time.Duration `yaml:"breaker_timeout"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithProvider selects the provider backend.
func WithProvider(provider string) ConfigOption {
	return func(c *Config) {
		c.Provider = provider
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithHost sets both embedding and reasoning hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.ReasoningHost = host
	}
}

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithReasoningHost sets the reasoning service host URL.
func WithReasoningHost(host string) ConfigOption {
	return func(c *Config) {
		c.ReasoningHost = host
	}
}

// WithEmbeddingModel sets the preferred embedding model.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithReasoningModel sets the reasoning model.
func WithReasoningModel(model string) ConfigOption {
	return func(c *Config) {
		c.ReasoningModel = model
	}
}

// WithAPIVersions sets the API versions tried for preferred models.
func WithAPIVersions(versions ...string) ConfigOption {
	return func(c *Config) {
		c.APIVersions = versions
	}
}

// WithRequestsPerMinute sets the request rate cap.
func WithRequestsPerMinute(rpm int) ConfigOption {
	return func(c *Config) {
		c.RequestsPerMinute = rpm
	}
}

// WithBreaker configures the circuit breaker.
func WithBreaker(failures uint32, timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.BreakerFailures = failures
		c.BreakerTimeout = timeout
	}
}

// DefaultConfig returns a Config targeting the Gemini API.
// The hosts point at a local OpenAI-compatible server for when the
// provider is switched to "openai".
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		Provider:          ProviderGemini,
		EmbeddingHost:     defaultHost,
		ReasoningHost:     defaultHost,
		EmbeddingModel:    "text-embedding-004",
		ReasoningModel:    "gemini-2.0-flash",
		APIVersions:       []string{DefaultAPIVersion},
		RequestsPerMinute: 60,
		BreakerFailures:   5,
		BreakerTimeout:    30 * time.Second,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithAPIKey(os.Getenv("GEMINI_API_KEY")),
//	    WithEmbeddingModel("gemini-embedding-001"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// Provider names are lowercased, blank API versions are dropped, and
// OpenAI-compatible hosts get the /v1 suffix most servers require.
func (c *Config) Normalize() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))

	versions := make([]string, 0, len(c.APIVersions))
	for _, v := range c.APIVersions {
		if v = strings.TrimSpace(v); v != "" {
			versions = append(versions, v)
		}
	}
	if len(versions) == 0 {
		versions = []string{DefaultAPIVersion}
	}
	c.APIVersions = versions

	c.EmbeddingHost = normalizeHost(c.EmbeddingHost)
	c.ReasoningHost = normalizeHost(c.ReasoningHost)
}

func normalizeHost(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Provider {
	case ProviderGemini:
		if c.APIKey == "" {
			return fmt.Errorf("ai config: %w for provider %q", ErrAPIKeyRequired, c.Provider)
		}
	case ProviderOpenAI:
		if c.EmbeddingHost == "" {
			return fmt.Errorf("ai config: embedding %w", ErrHostRequired)
		}
		if c.ReasoningHost == "" {
			return fmt.Errorf("ai config: reasoning %w", ErrHostRequired)
		}
	default:
		return fmt.Errorf("ai config: %w: %q", ErrUnknownProvider, c.Provider)
	}

	if c.EmbeddingModel == "" {
		return fmt.Errorf("ai config: embedding %w", ErrModelRequired)
	}
	if c.ReasoningModel == "" {
		return fmt.Errorf("ai config: reasoning %w", ErrModelRequired)
	}
	if c.RequestsPerMinute < 0 {
		return fmt.Errorf("ai config: RequestsPerMinute must not be negative")
	}
	return nil
}
