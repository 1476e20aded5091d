package understanding

import (
	"strings"

	"github.com/hyperjump/nextstep/internal/models"
)

// synonyms maps lower-cased labels onto categories. Canonical category values
// are added in init.
var synonyms = map[string]models.Category{
	"food":            models.CategoryFood,
	"housing":         models.CategoryHousing,
	"shelter":         models.CategoryHousing,
	"healthcare":      models.CategoryHealthcare,
	"medical":         models.CategoryHealthcare,
	"job":             models.CategoryEmployment,
	"employment":      models.CategoryEmployment,
	"work":            models.CategoryEmployment,
	"transport":       models.CategoryTransportation,
	"transportation":  models.CategoryTransportation,
	"childcare":       models.CategoryChildcare,
	"mental health":   models.CategoryMentalHealth,
	"counseling":      models.CategoryMentalHealth,
	"substance abuse": models.CategorySubstanceAbuse,
	"addiction":       models.CategorySubstanceAbuse,
	"recovery":        models.CategorySubstanceAbuse,
	"legal":           models.CategoryLegal,
	"education":       models.CategoryEducation,
}

func init() {
	for _, c := range models.Categories() {
		synonyms[string(c)] = c
	}
}

// LookupCategory maps one label to a category, ignoring case and surrounding space.
func LookupCategory(label string) (models.Category, bool) {
	c, ok := synonyms[strings.ToLower(strings.TrimSpace(label))]
	return c, ok
}

// MapCategories maps labels through the synonym table. Unknown labels are
// dropped and duplicates are removed, keeping first-seen order.
func MapCategories(labels []string) []models.Category {
	out := make([]models.Category, 0, len(labels))
	seen := make(map[models.Category]struct{}, len(labels))
	for _, l := range labels {
		c, ok := LookupCategory(l)
		if !ok {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
