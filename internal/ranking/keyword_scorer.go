package ranking

import "strings"

// KeywordScorer rewards query keywords that appear as substrings of the resource text.
type KeywordScorer struct {
	config *RankingConfig
}

// NewKeywordScorer creates a new KeywordScorer with the given config.
func NewKeywordScorer(config *RankingConfig) *KeywordScorer {
	return &KeywordScorer{config: config}
}

// Name returns the scorer name.
func (s *KeywordScorer) Name() string {
	return "keyword"
}

// Score is matched/total keywords times the keyword weight. A query without keywords scores 0.
func (s *KeywordScorer) Score(ctx *ScoringContext) Signal {
	if len(ctx.Keywords) == 0 {
		return Signal{}
	}
	var matched []string
	for _, kw := range ctx.Keywords {
		if strings.Contains(ctx.ResourceText, kw) {
			matched = append(matched, kw)
		}
	}
	if len(matched) == 0 {
		return Signal{}
	}
	ratio := float64(len(matched)) / float64(len(ctx.Keywords))
	return Signal{
		Score:   ratio * s.config.KeywordWeight,
		Raw:     ratio,
		Reason:  "keyword matches: " + strings.Join(matched, ", "),
		Matched: matched,
	}
}
