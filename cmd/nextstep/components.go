package main

import (
	"context"
	"fmt"

	"github.com/hyperjump/nextstep/internal/agent"
	"github.com/hyperjump/nextstep/internal/catalog"
	"github.com/hyperjump/nextstep/internal/config"
	"github.com/hyperjump/nextstep/internal/dataset"
	"github.com/hyperjump/nextstep/internal/embedding"
	"github.com/hyperjump/nextstep/internal/keyword"
	"github.com/hyperjump/nextstep/internal/llm"
	"github.com/hyperjump/nextstep/internal/ranking"
	"github.com/hyperjump/nextstep/internal/search"
	"github.com/hyperjump/nextstep/internal/understanding"
	"github.com/hyperjump/nextstep/internal/watcher"
	"go.uber.org/zap"
)

// Components holds the wired services shared by every command.
type Components struct {
	Embeddings   *embedding.Provider
	KeywordIndex keyword.TextIndex
	Catalog      *catalog.Catalog
	Engine       *search.Engine
	Agent        *agent.Agent
	Watcher      *watcher.Watcher
}

// Close releases the embedding client, the text index and the watcher.
func (c *Components) Close() {
	if c.Watcher != nil {
		c.Watcher.Stop()
	}
	if c.Embeddings != nil {
		_ = c.Embeddings.Close()
	}
	if c.KeywordIndex != nil {
		_ = c.KeywordIndex.Close()
	}
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	var primary embedding.Embedder
	if key := cfg.Embedding.APIKey(); key != "" {
		e, err := embedding.NewOpenAIEmbedder(embedding.OpenAIConfig{
			BaseURL:           cfg.Embedding.BaseURL,
			APIKey:            key,
			Model:             cfg.Embedding.Model,
			Timeout:           cfg.Embedding.Timeout,
			RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize embedder: %w", err)
		}
		primary = e
	} else {
		logger.Warn("No embedding API key, using hash embeddings", zap.String("env", cfg.Embedding.APIKeyEnv))
	}
	provider := embedding.NewProvider(primary, embedding.NewHashEmbedder(cfg.Embedding.FallbackDimensions),
		embedding.WithLogger(logger), embedding.WithCache(cfg.Embedding.CacheSize))

	var chat llm.ChatClient
	if key := cfg.LLM.APIKey(); key != "" {
		c, err := llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:            key,
			BaseURL:           cfg.LLM.BaseURL,
			Model:             cfg.LLM.Model,
			Timeout:           cfg.LLM.Timeout,
			RequestsPerSecond: cfg.LLM.RequestsPerSecond,
		})
		if err != nil {
			_ = provider.Close()
			return nil, fmt.Errorf("failed to initialize completion client: %w", err)
		}
		chat = c
	} else {
		logger.Warn("No completion API key, replies will use fixed messages", zap.String("env", cfg.LLM.APIKeyEnv))
	}

	textIndex, err := keyword.NewBleveIndex()
	if err != nil {
		_ = provider.Close()
		return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
	}
	components := &Components{Embeddings: provider, KeywordIndex: textIndex}

	records, err := dataset.Load(cfg.Dataset.Path)
	if err != nil {
		components.Close()
		return nil, err
	}
	cat := catalog.New(provider,
		catalog.WithLogger(logger),
		catalog.WithTextIndex(textIndex),
		catalog.WithConcurrency(cfg.Embedding.InitConcurrency))
	if err := cat.Initialize(ctx, records); err != nil {
		components.Close()
		return nil, fmt.Errorf("failed to initialize catalog: %w", err)
	}
	components.Catalog = cat

	rankCfg := cfg.Search.Ranking
	engine := search.NewEngine(cat, provider, ranking.NewRanker(&rankCfg), search.WithLogger(logger))
	components.Engine = engine

	parser := understanding.NewParser(chat,
		understanding.WithLogger(logger),
		understanding.WithModel(cfg.LLM.Model),
		understanding.WithTemperature(*cfg.LLM.UnderstandingTemperature))
	components.Agent = agent.New(parser, engine, chat,
		agent.WithLogger(logger),
		agent.WithBackground(cfg.Agent.Background),
		agent.WithModel(cfg.LLM.Model),
		agent.WithTemperature(*cfg.LLM.ReplyTemperature),
		agent.WithMaxContextResources(cfg.Agent.MaxContextResources))

	logger.Info("Catalog ready",
		zap.Int("resources", cat.Len()),
		zap.Bool("embedding_service", provider.HasPrimary()),
		zap.Bool("completion_service", chat != nil))
	return components, nil
}

// startDatasetWatch reloads the dataset file into the catalog whenever it changes.
func startDatasetWatch(ctx context.Context, c *Components, cfg *config.Config, logger *zap.Logger) error {
	if !cfg.Dataset.Watch || cfg.Dataset.Path == "" {
		return nil
	}
	w := watcher.New([]string{cfg.Dataset.Path}, func(path string) {
		n, err := dataset.Reload(ctx, path, c.Catalog)
		if err != nil {
			logger.Warn("Dataset reload failed", zap.String("path", path), zap.Error(err))
			return
		}
		logger.Info("Dataset reloaded", zap.String("path", path), zap.Int("resources", n))
	}, watcher.WithLogger(logger))
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to start dataset watcher: %w", err)
	}
	c.Watcher = w
	return nil
}
