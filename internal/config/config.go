// Package config provides configuration loading and structs for the NextStep service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/nextstep/internal/models"
	"github.com/hyperjump/nextstep/internal/ranking"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Search    SearchConfig    `yaml:"search"`
	Dataset   DatasetConfig   `yaml:"dataset"`
	Agent     AgentConfig     `yaml:"agent"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// MaxConversations caps open conversations; the least recently used is evicted.
	MaxConversations int `yaml:"max_conversations"`
	// ConversationTTL drops conversations idle for longer than this.
	ConversationTTL time.Duration `yaml:"conversation_ttl"`
	// MaxBodyBytes limits request bodies.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// EmbeddingConfig holds embedding service settings. The service is used only
// when the environment variable named by APIKeyEnv is set.
type EmbeddingConfig struct {
	BaseURL            string        `yaml:"base_url"`
	Model              string        `yaml:"model"`
	APIKeyEnv          string        `yaml:"api_key_env"`
	Timeout            time.Duration `yaml:"timeout"`
	FallbackDimensions int           `yaml:"fallback_dimensions"`
	CacheSize          int           `yaml:"cache_size"`
	RequestsPerSecond  float64       `yaml:"requests_per_second"`
	InitConcurrency    int           `yaml:"init_concurrency"`
}

// APIKey reads the key from the configured environment variable.
func (e EmbeddingConfig) APIKey() string {
	return os.Getenv(e.APIKeyEnv)
}

// LLMConfig holds chat-completion settings.
type LLMConfig struct {
	BaseURL                  string        `yaml:"base_url"`
	Model                    string        `yaml:"model"`
	APIKeyEnv                string        `yaml:"api_key_env"`
	Timeout                  time.Duration `yaml:"timeout"`
	UnderstandingTemperature *float64      `yaml:"understanding_temperature"`
	ReplyTemperature         *float64      `yaml:"reply_temperature"`
	RequestsPerSecond        float64       `yaml:"requests_per_second"`
}

// APIKey reads the key from the configured environment variable.
func (l LLMConfig) APIKey() string {
	return os.Getenv(l.APIKeyEnv)
}

// SearchConfig holds retrieval scoring settings.
type SearchConfig struct {
	Ranking ranking.RankingConfig `yaml:"ranking"`
	// FuzzyText enables fuzzy matching for catalog text search.
	FuzzyText bool `yaml:"fuzzy_text"`
}

// DatasetConfig points at the resource catalog. An empty path uses the built-in catalog.
// Path resolves like other config paths: "./x" is relative to the config file's
// directory, while "x" and "~/x" are relative to the home directory.
type DatasetConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// AgentConfig holds conversation settings.
type AgentConfig struct {
	Background          models.Background `yaml:"background"`
	MaxContextResources int               `yaml:"max_context_resources"`
}

// LogConfig holds optional rotating log file settings. Empty File logs to stderr only.
type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := newConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(cfg)

	configDir := filepath.Dir(path)
	if cfg.Dataset.Path != "" {
		cfg.Dataset.Path = expandPath(cfg.Dataset.Path, configDir)
	}
	if cfg.Log.File != "" {
		cfg.Log.File = expandPath(cfg.Log.File, configDir)
	}

	return cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := newConfig()
	ApplyDefaults(cfg)
	return cfg
}

// newConfig returns a Config prefilled with the ranking defaults. The YAML
// decoder keeps prefilled values for absent keys, so an explicit zero weight
// or gate in the file survives.
func newConfig() *Config {
	return &Config{Search: SearchConfig{Ranking: *ranking.DefaultRankingConfig()}}
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir.
// A leading "~/" and any other relative path (such as "data/resources.json") resolve
// against the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, strings.TrimPrefix(path, "~/"))
	}
	return path
}
