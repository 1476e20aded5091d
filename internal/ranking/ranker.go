package ranking

import (
	"sort"
	"strings"

	"github.com/hyperjump/nextstep/internal/models"
)

// Ranker combines the four scorers, applies the relevance gate and orders results.
type Ranker struct {
	config         *RankingConfig
	semanticScorer *SemanticScorer
	categoryScorer *CategoryScorer
	keywordScorer  *KeywordScorer
	locationScorer *LocationScorer
}

// NewRanker creates a new Ranker with the given configuration.
func NewRanker(config *RankingConfig) *Ranker {
	if config == nil {
		config = DefaultRankingConfig()
	}
	config.ApplyDefaults()

	return &Ranker{
		config:         config,
		semanticScorer: NewSemanticScorer(config),
		categoryScorer: NewCategoryScorer(config),
		keywordScorer:  NewKeywordScorer(config),
		locationScorer: NewLocationScorer(config),
	}
}

// Config returns the effective configuration.
func (r *Ranker) Config() RankingConfig {
	return *r.config
}

// Score computes the breakdown and the comma-joined match reason for one resource.
// Reasons are listed in scorer order: semantic, category, keyword, location.
func (r *Ranker) Score(ctx *ScoringContext) (models.ScoreBreakdown, string) {
	semantic := r.semanticScorer.Score(ctx)
	category := r.categoryScorer.Score(ctx)
	kw := r.keywordScorer.Score(ctx)
	location := r.locationScorer.Score(ctx)

	breakdown := models.ScoreBreakdown{
		Similarity:      semantic.Raw,
		Semantic:        semantic.Score,
		Category:        category.Score,
		Keyword:         kw.Score,
		Location:        location.Score,
		MatchedKeywords: kw.Matched,
	}

	reasons := make([]string, 0, 4)
	for _, sig := range []Signal{semantic, category, kw, location} {
		if sig.Reason != "" {
			reasons = append(reasons, sig.Reason)
		}
	}
	return breakdown, strings.Join(reasons, ", ")
}

// Rank scores every resource, drops those at or below MinRelevance, sorts by
// score descending and truncates to MaxResults. Equal scores keep the input order.
func (r *Ranker) Rank(query *models.Query, queryEmbedding []float32, resources []*models.Resource) []*models.RetrievalResult {
	keywords := QueryKeywords(query)
	results := make([]*models.RetrievalResult, 0)
	for _, res := range resources {
		breakdown, reason := r.Score(NewScoringContext(query, queryEmbedding, keywords, res))
		score := breakdown.Total()
		if score <= r.config.MinRelevance {
			continue
		}
		results = append(results, &models.RetrievalResult{
			Resource:       res,
			RelevanceScore: score,
			MatchReason:    reason,
			Breakdown:      breakdown,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})
	if len(results) > r.config.MaxResults {
		results = results[:r.config.MaxResults]
	}
	for i, res := range results {
		res.Rank = i + 1
	}
	return results
}
