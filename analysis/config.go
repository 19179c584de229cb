package analysis

import (
	"fmt"
	"time"

	"github.com/poiesic/rankmatch/extract"
)

// Config holds the tunables of an analysis run.
type Config struct {
	// DownloadRoot holds one document folder per rank.
	DownloadRoot string `yaml:"download_root"`

	// Extensions lists the document types indexed and scanned.
	// Default: [".pdf", ".txt"]
	Extensions []string `yaml:"extensions"`

	// MinSimilarity drops vector matches scoring below it. Default: 0.25
	MinSimilarity float64 `yaml:"min_similarity"`

	// ChunkWindow and ChunkOverlap size the indexing chunks in words.
	// Defaults: 400 and 50
	ChunkWindow  int `yaml:"chunk_window"`
	ChunkOverlap int `yaml:"chunk_overlap"`

	SubQueryTopK int `yaml:"subquery_top_k"`
	SimpleTopK   int `yaml:"simple_top_k"`
	FallbackTopK int `yaml:"fallback_top_k"`

	// ConfidenceThreshold is the lowest confidence reported as verified.
	// Default: 0.7
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`

	// ReasoningDelay separates consecutive reasoning calls. Default: 2.5s
	ReasoningDelay time.Duration `yaml:"reasoning_delay"`

	// ReasoningAttempts and RetryDelay control retries of a failed
	// reasoning call. Defaults: 1 and 1s
	ReasoningAttempts int           `yaml:"reasoning_attempts"`
	RetryDelay        time.Duration `yaml:"retry_delay"`

	// FailureStreak consecutive embedding failures abort indexing. Default: 3
	FailureStreak int `yaml:"failure_streak"`

	// MinTextLength is the shortest extracted text worth indexing. Default: 100
	MinTextLength int `yaml:"min_text_length"`

	FeedbackLimit      int `yaml:"feedback_limit"`
	FallbackChunkChars int `yaml:"fallback_chunk_chars"`
	SubQueryWorkers    int `yaml:"subquery_workers"`
	EventBuffer        int `yaml:"event_buffer"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithDownloadRoot sets the folder holding the rank folders.
func WithDownloadRoot(root string) ConfigOption {
	return func(c *Config) {
		c.DownloadRoot = root
	}
}

// WithReasoningDelay sets the pause between reasoning calls.
func WithReasoningDelay(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.ReasoningDelay = d
	}
}

// WithConfidenceThreshold sets the verified/uncertain boundary.
func WithConfidenceThreshold(threshold float64) ConfigOption {
	return func(c *Config) {
		c.ConfidenceThreshold = threshold
	}
}

// WithMinSimilarity sets the vector match cut-off.
func WithMinSimilarity(score float64) ConfigOption {
	return func(c *Config) {
		c.MinSimilarity = score
	}
}

// WithExtensions sets the document types handled.
func WithExtensions(exts ...string) ConfigOption {
	return func(c *Config) {
		c.Extensions = exts
	}
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		DownloadRoot:        "downloads",
		Extensions:          append([]string(nil), extract.DefaultExtensions...),
		MinSimilarity:       0.25,
		ChunkWindow:         400,
		ChunkOverlap:        50,
		SubQueryTopK:        60,
		SimpleTopK:          50,
		FallbackTopK:        50,
		ConfidenceThreshold: 0.7,
		ReasoningDelay:      2500 * time.Millisecond,
		ReasoningAttempts:   1,
		RetryDelay:          time.Second,
		FailureStreak:       3,
		MinTextLength:       100,
		FeedbackLimit:       5,
		FallbackChunkChars:  12000,
		SubQueryWorkers:     4,
		EventBuffer:         32,
	}
}

// NewConfig creates a new Config with the given options applied to defaults.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Validate checks that every tunable is in range.
func (c *Config) Validate() error {
	switch {
	case c.DownloadRoot == "":
		return fmt.Errorf("%w: download root is required", ErrInvalidConfig)
	case len(c.Extensions) == 0:
		return fmt.Errorf("%w: at least one extension is required", ErrInvalidConfig)
	case c.MinSimilarity < -1 || c.MinSimilarity > 1:
		return fmt.Errorf("%w: min similarity %v outside [-1, 1]", ErrInvalidConfig, c.MinSimilarity)
	case c.ChunkWindow <= 0 || c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkWindow:
		return fmt.Errorf("%w: chunk window %d with overlap %d", ErrInvalidConfig, c.ChunkWindow, c.ChunkOverlap)
	case c.SubQueryTopK <= 0 || c.SimpleTopK <= 0 || c.FallbackTopK <= 0:
		return fmt.Errorf("%w: top k values must be positive", ErrInvalidConfig)
	case c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1:
		return fmt.Errorf("%w: confidence threshold %v outside [0, 1]", ErrInvalidConfig, c.ConfidenceThreshold)
	case c.ReasoningDelay < 0 || c.RetryDelay < 0:
		return fmt.Errorf("%w: delays must not be negative", ErrInvalidConfig)
	case c.ReasoningAttempts <= 0:
		return fmt.Errorf("%w: reasoning attempts must be positive", ErrInvalidConfig)
	case c.FailureStreak <= 0:
		return fmt.Errorf("%w: failure streak must be positive", ErrInvalidConfig)
	case c.MinTextLength < 0 || c.FeedbackLimit < 0:
		return fmt.Errorf("%w: limits must not be negative", ErrInvalidConfig)
	case c.FallbackChunkChars <= 0 || c.SubQueryWorkers <= 0 || c.EventBuffer <= 0:
		return fmt.Errorf("%w: sizes must be positive", ErrInvalidConfig)
	}
	return nil
}
