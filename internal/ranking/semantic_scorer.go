package ranking

import "github.com/hyperjump/nextstep/internal/vector"

// SemanticScorer weights the cosine similarity between query and resource embeddings.
type SemanticScorer struct {
	config *RankingConfig
}

// NewSemanticScorer creates a new SemanticScorer with the given config.
func NewSemanticScorer(config *RankingConfig) *SemanticScorer {
	return &SemanticScorer{config: config}
}

// Name returns the scorer name.
func (s *SemanticScorer) Name() string {
	return "semantic"
}

// Score always adds the weighted similarity; the reason needs similarity above the threshold.
func (s *SemanticScorer) Score(ctx *ScoringContext) Signal {
	if len(ctx.QueryEmbedding) == 0 || len(ctx.Resource.Embedding) == 0 {
		return Signal{}
	}
	sim := vector.CosineSimilarity(ctx.Resource.Embedding, ctx.QueryEmbedding)
	sig := Signal{Score: sim * s.config.SemanticWeight, Raw: sim}
	if sim > s.config.SemanticReasonThreshold {
		sig.Reason = "semantic similarity"
	}
	return sig
}
