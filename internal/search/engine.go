// Package search runs retrieval over the resource catalog.
package search

import (
	"context"
	"time"

	"github.com/hyperjump/nextstep/internal/models"
	"github.com/hyperjump/nextstep/internal/ranking"
	"go.uber.org/zap"
)

// ResourceSource lists the resources to score.
type ResourceSource interface {
	GetAllResources() []*models.Resource
}

// QueryEmbedder embeds query text. It must not fail.
type QueryEmbedder interface {
	Generate(ctx context.Context, text string) []float32
}

// Engine scores every catalog resource against a query.
type Engine struct {
	resources ResourceSource
	embedder  QueryEmbedder
	ranker    *ranking.Ranker
	logger    *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates a search engine with the given dependencies.
func NewEngine(resources ResourceSource, embedder QueryEmbedder, ranker *ranking.Ranker, opts ...Option) *Engine {
	if ranker == nil {
		ranker = ranking.NewRanker(nil)
	}
	e := &Engine{
		resources: resources,
		embedder:  embedder,
		ranker:    ranker,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SearchResources embeds the query text, ranks every resource and returns at
// most MaxResults results in non-increasing score order.
func (e *Engine) SearchResources(ctx context.Context, query *models.Query) ([]*models.RetrievalResult, error) {
	if err := ProcessQuery(query); err != nil {
		return nil, err
	}
	var queryEmbedding []float32
	if query.Text != "" {
		queryEmbedding = e.embedder.Generate(ctx, query.Text)
	}
	results := e.ranker.Rank(query, queryEmbedding, e.resources.GetAllResources())
	e.logger.Debug("Ranked resources",
		zap.String("query", query.Text),
		zap.Strings("categories", categoryStrings(query.Categories)),
		zap.Int("results", len(results)))
	return results, nil
}

// Search wraps SearchResources with timing for API responses.
func (e *Engine) Search(ctx context.Context, query *models.Query) (*models.SearchResponse, error) {
	start := time.Now()
	results, err := e.SearchResources(ctx, query)
	if err != nil {
		return nil, err
	}
	return &models.SearchResponse{
		Query:     *query,
		Results:   results,
		Total:     len(results),
		QueryTime: time.Since(start).Milliseconds(),
	}, nil
}

// Ranker returns the ranker used by the engine.
func (e *Engine) Ranker() *ranking.Ranker {
	return e.ranker
}

func categoryStrings(cats []models.Category) []string {
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = string(c)
	}
	return out
}
