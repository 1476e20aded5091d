package ranking

import "strings"

// LocationScorer adds a flat boost when the query location and the resource's
// city/state overlap by substring in either direction.
type LocationScorer struct {
	config *RankingConfig
}

// NewLocationScorer creates a new LocationScorer with the given config.
func NewLocationScorer(config *RankingConfig) *LocationScorer {
	return &LocationScorer{config: config}
}

// Name returns the scorer name.
func (s *LocationScorer) Name() string {
	return "location"
}

// Score fires when "city state" contains the query location, or the query
// location contains the city alone. Both sides are lower-cased. An empty city
// never matches by the second rule.
func (s *LocationScorer) Score(ctx *ScoringContext) Signal {
	if ctx.Query.Location == "" {
		return Signal{}
	}
	queryLoc := strings.ToLower(ctx.Query.Location)
	resourceLoc := strings.ToLower(ctx.Resource.CityState())
	city := strings.ToLower(ctx.Resource.Location.City)
	if strings.Contains(resourceLoc, queryLoc) || (city != "" && strings.Contains(queryLoc, city)) {
		return Signal{Score: s.config.LocationBoost, Reason: "location match"}
	}
	return Signal{}
}
