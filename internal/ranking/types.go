// Package ranking scores catalog resources against a query and produces the ranked, explained shortlist.
package ranking

import (
	"strings"

	"github.com/hyperjump/nextstep/internal/keyword"
	"github.com/hyperjump/nextstep/internal/models"
)

// ScoringContext provides all the context needed for scoring one resource.
type ScoringContext struct {
	// Query is the (possibly enriched) user query.
	Query *models.Query
	// QueryEmbedding is the embedding of Query.Text.
	QueryEmbedding []float32
	// Keywords are the query keywords, stop words removed.
	Keywords []string
	// Resource is the resource being scored.
	Resource *models.Resource
	// ResourceText is the lower-cased searchable text of Resource.
	ResourceText string
}

// NewScoringContext builds a context for one resource. keywords are shared across resources of a query.
func NewScoringContext(query *models.Query, queryEmbedding []float32, keywords []string, r *models.Resource) *ScoringContext {
	return &ScoringContext{
		Query:          query,
		QueryEmbedding: queryEmbedding,
		Keywords:       keywords,
		Resource:       r,
		ResourceText:   strings.ToLower(r.SearchableText()),
	}
}

// QueryKeywords extracts the keywords used by the keyword scorer.
func QueryKeywords(q *models.Query) []string {
	return keyword.ExtractKeywords(q.Text)
}

// Signal is one scorer's weighted contribution.
type Signal struct {
	// Score is the weighted contribution to the relevance score.
	Score float64
	// Raw is the unweighted measure (cosine similarity, keyword ratio); zero for flat boosts.
	Raw float64
	// Reason is the match reason, empty when the signal did not fire.
	Reason string
	// Matched lists the query keywords found in the resource text.
	Matched []string
}

// Scorer is the interface for all scoring components.
type Scorer interface {
	// Score calculates the signal for a resource given the scoring context.
	Score(ctx *ScoringContext) Signal
	// Name returns the name of the scorer for debugging/logging.
	Name() string
}
