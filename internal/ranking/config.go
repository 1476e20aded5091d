package ranking

// RankingConfig holds the weights and gates of the relevance score.
type RankingConfig struct {
	// Semantic component: cosine similarity times SemanticWeight. The reason
	// string is attached only when the raw similarity exceeds SemanticReasonThreshold.
	SemanticWeight          float64 `yaml:"semantic_weight" json:"semantic_weight"`                     // default: 0.6
	SemanticReasonThreshold float64 `yaml:"semantic_reason_threshold" json:"semantic_reason_threshold"` // default: 0.3

	// Flat boost when the resource category is one of the query's categories.
	CategoryBoost float64 `yaml:"category_boost" json:"category_boost"` // default: 0.8

	// Keyword component: matched/total query keywords times KeywordWeight.
	KeywordWeight float64 `yaml:"keyword_weight" json:"keyword_weight"` // default: 0.4

	// Flat boost on a location match.
	LocationBoost float64 `yaml:"location_boost" json:"location_boost"` // default: 0.3

	// Results must score strictly above MinRelevance.
	MinRelevance float64 `yaml:"min_relevance" json:"min_relevance"` // default: 0.2

	// MaxResults caps the ranked list.
	MaxResults int `yaml:"max_results" json:"max_results"` // default: 10
}

// DefaultRankingConfig returns the default ranking configuration.
func DefaultRankingConfig() *RankingConfig {
	return &RankingConfig{
		SemanticWeight:          0.6,
		SemanticReasonThreshold: 0.3,
		CategoryBoost:           0.8,
		KeywordWeight:           0.4,
		LocationBoost:           0.3,
		MinRelevance:            0.2,
		MaxResults:              10,
	}
}

// ApplyDefaults fills in a non-positive MaxResults. Weights, boosts and the
// relevance gate are taken as given, so zero disables a signal or the gate;
// start from DefaultRankingConfig to override single fields.
func (c *RankingConfig) ApplyDefaults() {
	if c.MaxResults <= 0 {
		c.MaxResults = DefaultRankingConfig().MaxResults
	}
}
