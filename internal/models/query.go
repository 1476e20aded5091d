package models

import "strings"

// Urgency is how pressing the user's need is.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// ParseUrgency maps s onto a known urgency level. ok is false for anything else.
func ParseUrgency(s string) (u Urgency, ok bool) {
	switch Urgency(strings.ToLower(strings.TrimSpace(s))) {
	case UrgencyLow:
		return UrgencyLow, true
	case UrgencyMedium:
		return UrgencyMedium, true
	case UrgencyHigh:
		return UrgencyHigh, true
	}
	return "", false
}

// Query is one user turn's search input. It is built fresh per turn and never stored.
type Query struct {
	Text       string     `json:"text"`
	Location   string     `json:"location,omitempty"`
	Urgency    Urgency    `json:"urgency,omitempty"`
	Categories []Category `json:"categories,omitempty"`
}

// HasCategory reports whether c is one of the query's target categories.
func (q *Query) HasCategory(c Category) bool {
	for _, qc := range q.Categories {
		if qc == c {
			return true
		}
	}
	return false
}
