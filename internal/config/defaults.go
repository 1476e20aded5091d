package config

import (
	"time"

	"github.com/hyperjump/nextstep/internal/agent"
	"github.com/hyperjump/nextstep/internal/embedding"
	"github.com/hyperjump/nextstep/internal/llm"
	"github.com/hyperjump/nextstep/internal/understanding"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MaxConversations == 0 {
		cfg.Server.MaxConversations = 1000
	}
	if cfg.Server.ConversationTTL == 0 {
		cfg.Server.ConversationTTL = 30 * time.Minute
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 1 << 20
	}

	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = embedding.DefaultOpenAIBaseURL
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = embedding.DefaultOpenAIModel
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Embedding.Timeout == 0 {
		cfg.Embedding.Timeout = 30 * time.Second
	}
	if cfg.Embedding.FallbackDimensions == 0 {
		cfg.Embedding.FallbackDimensions = embedding.DefaultHashDimensions
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.InitConcurrency == 0 {
		cfg.Embedding.InitConcurrency = 4
	}

	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = llm.DefaultBaseURL
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = llm.DefaultModel
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = llm.DefaultTimeout
	}
	// Explicit zero temperatures are kept.
	if cfg.LLM.UnderstandingTemperature == nil {
		t := understanding.DefaultTemperature
		cfg.LLM.UnderstandingTemperature = &t
	}
	if cfg.LLM.ReplyTemperature == nil {
		t := agent.DefaultTemperature
		cfg.LLM.ReplyTemperature = &t
	}

	cfg.Search.Ranking.ApplyDefaults()

	if cfg.Agent.MaxContextResources == 0 {
		cfg.Agent.MaxContextResources = agent.DefaultContextLength
	}

	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = 50
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = 3
	}
	if cfg.Log.MaxAgeDays == 0 {
		cfg.Log.MaxAgeDays = 28
	}
}
