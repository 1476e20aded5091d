// Package models defines core data structures for resources, queries, retrieval results, and conversations.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownCategory is returned when a category string is outside the closed enumeration.
var ErrUnknownCategory = errors.New("unknown category")

// Category is the kind of help a resource provides. The set is closed.
type Category string

const (
	CategoryFood           Category = "food"
	CategoryHousing        Category = "housing"
	CategoryHealthcare     Category = "healthcare"
	CategoryEmployment     Category = "employment"
	CategoryTransportation Category = "transportation"
	CategoryChildcare      Category = "childcare"
	CategoryMentalHealth   Category = "mental_health"
	CategorySubstanceAbuse Category = "substance_abuse"
	CategoryLegal          Category = "legal"
	CategoryEducation      Category = "education"
)

var allCategories = []Category{
	CategoryFood,
	CategoryHousing,
	CategoryHealthcare,
	CategoryEmployment,
	CategoryTransportation,
	CategoryChildcare,
	CategoryMentalHealth,
	CategorySubstanceAbuse,
	CategoryLegal,
	CategoryEducation,
}

// Categories returns every category in declaration order.
func Categories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// Valid reports whether c is part of the enumeration.
func (c Category) Valid() bool {
	for _, known := range allCategories {
		if c == known {
			return true
		}
	}
	return false
}

// String returns the wire value of the category.
func (c Category) String() string {
	return string(c)
}

// ParseCategory validates s against the enumeration. Surrounding space and case are ignored.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// Coordinates is an optional geographic position.
type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Location is the structured street address of a resource.
type Location struct {
	Address     string       `json:"address" yaml:"address"`
	City        string       `json:"city" yaml:"city"`
	State       string       `json:"state" yaml:"state"`
	ZipCode     string       `json:"zipCode" yaml:"zipCode"`
	Coordinates *Coordinates `json:"coordinates,omitempty" yaml:"coordinates,omitempty"`
}

// Contact holds optional ways to reach a resource.
type Contact struct {
	Phone   string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Email   string `json:"email,omitempty" yaml:"email,omitempty"`
	Website string `json:"website,omitempty" yaml:"website,omitempty"`
}

// Resource describes one social-service provider. The catalog treats it as immutable once stored.
type Resource struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Category     Category  `json:"category"`
	Services     []string  `json:"services"`
	Eligibility  []string  `json:"eligibility"`
	Location     Location  `json:"location"`
	Contact      Contact   `json:"contact"`
	Hours        string    `json:"hours"`
	Requirements []string  `json:"requirements"`
	WaitTime     string    `json:"waitTime,omitempty"`
	Capacity     *int      `json:"capacity,omitempty"`
	LastUpdated  time.Time `json:"lastUpdated"`
	// Embedding is derived at ingestion from SearchableText.
	Embedding []float32 `json:"-"`
}

// SearchableText is the text embedded and keyword-matched for the resource:
// name, description, services and category joined by spaces.
func (r *Resource) SearchableText() string {
	return r.Name + " " + r.Description + " " + strings.Join(r.Services, " ") + " " + string(r.Category)
}

// CityState returns "city state" as used for location matching.
func (r *Resource) CityState() string {
	return r.Location.City + " " + r.Location.State
}

// Clone returns a deep copy so callers cannot mutate catalog state.
func (r *Resource) Clone() *Resource {
	if r == nil {
		return nil
	}
	c := *r
	c.Services = cloneStrings(r.Services)
	c.Eligibility = cloneStrings(r.Eligibility)
	c.Requirements = cloneStrings(r.Requirements)
	if r.Capacity != nil {
		n := *r.Capacity
		c.Capacity = &n
	}
	if r.Location.Coordinates != nil {
		coords := *r.Location.Coordinates
		c.Location.Coordinates = &coords
	}
	if r.Embedding != nil {
		c.Embedding = make([]float32, len(r.Embedding))
		copy(c.Embedding, r.Embedding)
	}
	return &c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
