package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hyperjump/nextstep/internal/models"
)

var (
	// ErrEmptyQuery is returned when a query has no text, location or categories.
	ErrEmptyQuery = errors.New("query is empty")
	// ErrInvalidUrgency is returned for urgency values that are not a known level.
	ErrInvalidUrgency = errors.New("invalid urgency")
)

// ProcessQuery trims the query, validates its categories and urgency, and drops duplicate categories.
func ProcessQuery(query *models.Query) error {
	query.Text = strings.TrimSpace(query.Text)
	query.Location = strings.TrimSpace(query.Location)

	if query.Urgency != "" {
		u, ok := models.ParseUrgency(string(query.Urgency))
		if !ok {
			return fmt.Errorf("%w %q", ErrInvalidUrgency, query.Urgency)
		}
		query.Urgency = u
	}

	seen := make(map[models.Category]struct{}, len(query.Categories))
	cats := make([]models.Category, 0, len(query.Categories))
	for _, raw := range query.Categories {
		c, err := models.ParseCategory(string(raw))
		if err != nil {
			return err
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		cats = append(cats, c)
	}
	query.Categories = cats

	if query.Text == "" && query.Location == "" && len(query.Categories) == 0 {
		return ErrEmptyQuery
	}
	return nil
}
