// Package e2e checks retrieval quality over the built-in catalog.
package e2e

import "github.com/hyperjump/nextstep/internal/models"

// QueryTestCase is a query and the resource that must rank first for it.
type QueryTestCase struct {
	Description string
	Query       models.Query
	ExpectedTop string
}

// Cases returns queries whose top result is fixed by category, location and keyword
// signals alone, independent of which embedder is in use.
func Cases() []QueryTestCase {
	return []QueryTestCase{
		{
			Description: "rent relief in Houston",
			Query: models.Query{
				Text:       "rental assistance eviction",
				Location:   "Houston",
				Categories: []models.Category{models.CategoryHousing},
			},
			ExpectedTop: "housing-002",
		},
		{
			Description: "tenant legal aid",
			Query: models.Query{
				Text:       "free legal help with eviction court",
				Location:   "Austin, TX",
				Categories: []models.Category{models.CategoryLegal},
			},
			ExpectedTop: "legal-001",
		},
		{
			Description: "addiction treatment",
			Query: models.Query{
				Text:       "addiction treatment",
				Categories: []models.Category{models.CategorySubstanceAbuse},
			},
			ExpectedTop: "substance-001",
		},
		{
			Description: "GED classes in Houston",
			Query: models.Query{
				Text:       "GED classes",
				Location:   "Houston",
				Categories: []models.Category{models.CategoryEducation},
			},
			ExpectedTop: "education-001",
		},
		{
			Description: "childcare for working parents",
			Query: models.Query{
				Text:       "childcare for working parents",
				Categories: []models.Category{models.CategoryChildcare},
			},
			ExpectedTop: "childcare-001",
		},
	}
}
