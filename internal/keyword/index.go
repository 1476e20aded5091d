// Package keyword provides text tokenization and a full-text index over catalog resources.
package keyword

import (
	"context"

	"github.com/hyperjump/nextstep/internal/models"
)

// SearchOptions optional parameters for full-text search. Nil means use defaults.
type SearchOptions struct {
	// NameBoost multiplies the score contribution from matches in the resource name.
	// Values > 1 make name matches rank higher. Use 1.0 for no boost.
	NameBoost float64
	// Category restricts hits to one category when set.
	Category models.Category
	// FuzzyEnabled enables fuzzy matching for typo tolerance.
	FuzzyEnabled bool
	// Fuzziness is the maximum Levenshtein edit distance (1 or 2). Default is 2 when FuzzyEnabled is true.
	Fuzziness int
}

// TextIndex is a full-text index of resources used for browsing the catalog.
type TextIndex interface {
	Index(ctx context.Context, r *models.Resource) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*KeywordResult, error)
	Delete(ctx context.Context, id string) error
	DocCount() (uint64, error)
	Close() error
}

// KeywordResult is a single full-text hit.
type KeywordResult struct {
	ID    string
	Score float64
}
