// Package config assembles rankmatch configuration from defaults, a YAML
// file, an optional .env file and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/poiesic/rankmatch/ai"
	"github.com/poiesic/rankmatch/analysis"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvConfigPath     = "RANKMATCH_CONFIG"
	EnvGeminiAPIKey   = "GEMINI_API_KEY"
	EnvDownloadRoot   = "RANKMATCH_DOWNLOAD_ROOT"
	EnvDBPath         = "RANKMATCH_DB_PATH"
	EnvEmbeddingModel = "RANKMATCH_EMBEDDING_MODEL"
	EnvReasoningModel = "RANKMATCH_REASONING_MODEL"
	EnvProvider       = "RANKMATCH_PROVIDER"
)

// DefaultConfigFile is looked up in the working directory when no path is given.
const DefaultConfigFile = "rankmatch.yaml"

// ErrStoragePathRequired is returned when an on-disk store has no path.
var ErrStoragePathRequired = errors.New("storage path required")

// StorageConfig locates the badger database.
type StorageConfig struct {
	Path        string `yaml:"path"`
	InMemory    bool   `yaml:"in_memory"`
	VectorIndex string `yaml:"vector_index"`
}

// Config is the complete rankmatch configuration.
type Config struct {
	Storage  StorageConfig   `yaml:"storage"`
	AI       ai.Config       `yaml:"ai"`
	Analysis analysis.Config `yaml:"analysis"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Storage: StorageConfig{
			Path:        "rankmatch-data",
			VectorIndex: "resumes",
		},
		AI:       *ai.DefaultConfig(),
		Analysis: *analysis.DefaultConfig(),
	}
}

// Load builds the configuration in layers:
//  1. Built-in defaults
//  2. YAML file (explicit path, RANKMATCH_CONFIG, ./rankmatch.yaml)
//  3. .env in the working directory, without overriding the environment
//  4. Environment variable overrides
//  5. Validation
func Load(path string) (*Config, error) {
	return load(path, ".env")
}

func load(path, dotenv string) (*Config, error) {
	cfg := Defaults()

	if file := discoverConfigFile(path); file != "" {
		if err := loadYAMLFile(file, cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", file, err)
		}
	}

	if _, err := os.Stat(dotenv); err == nil {
		if err := godotenv.Load(dotenv); err != nil {
			return nil, fmt.Errorf("loading %s: %w", dotenv, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func discoverConfigFile(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env
	}
	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile
	}
	return ""
}

// loadYAMLFile parses a YAML file over cfg. Absent fields keep their values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvGeminiAPIKey); v != "" {
		cfg.AI.APIKey = v
	}
	if v := os.Getenv(EnvDownloadRoot); v != "" {
		cfg.Analysis.DownloadRoot = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv(EnvEmbeddingModel); v != "" {
		cfg.AI.EmbeddingModel = v
	}
	if v := os.Getenv(EnvReasoningModel); v != "" {
		cfg.AI.ReasoningModel = v
	}
	if v := os.Getenv(EnvProvider); v != "" {
		cfg.AI.Provider = v
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if !c.Storage.InMemory && c.Storage.Path == "" {
		return ErrStoragePathRequired
	}
	if c.Storage.VectorIndex == "" {
		c.Storage.VectorIndex = "resumes"
	}
	if err := c.AI.Validate(); err != nil {
		return err
	}
	return c.Analysis.Validate()
}
