package ranking

// CategoryScorer adds a flat boost when the resource is in one of the query's categories.
type CategoryScorer struct {
	config *RankingConfig
}

// NewCategoryScorer creates a new CategoryScorer with the given config.
func NewCategoryScorer(config *RankingConfig) *CategoryScorer {
	return &CategoryScorer{config: config}
}

// Name returns the scorer name.
func (s *CategoryScorer) Name() string {
	return "category"
}

// Score returns the category boost on an exact category match. There is no partial credit.
func (s *CategoryScorer) Score(ctx *ScoringContext) Signal {
	if !ctx.Query.HasCategory(ctx.Resource.Category) {
		return Signal{}
	}
	return Signal{Score: s.config.CategoryBoost, Reason: "category match"}
}
