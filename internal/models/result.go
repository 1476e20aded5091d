package models

// ScoreBreakdown records each weighted signal that went into a relevance score.
type ScoreBreakdown struct {
	// Similarity is the raw cosine similarity before weighting.
	Similarity      float64  `json:"similarity"`
	Semantic        float64  `json:"semantic"`
	Category        float64  `json:"category"`
	Keyword         float64  `json:"keyword"`
	Location        float64  `json:"location"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
}

// Total sums the weighted components.
func (b ScoreBreakdown) Total() float64 {
	return b.Semantic + b.Category + b.Keyword + b.Location
}

// RetrievalResult is one ranked resource for a query.
type RetrievalResult struct {
	Resource       *Resource      `json:"resource"`
	RelevanceScore float64        `json:"relevance_score"`
	MatchReason    string         `json:"match_reason"`
	Breakdown      ScoreBreakdown `json:"breakdown"`
	Rank           int            `json:"rank"`
}

// SearchResponse wraps the results of a retrieval pass.
type SearchResponse struct {
	Query     Query              `json:"query"`
	Results   []*RetrievalResult `json:"results"`
	Total     int                `json:"total"`
	QueryTime int64              `json:"query_time_ms"`
}
