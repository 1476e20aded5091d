package keyword

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/hyperjump/nextstep/internal/models"
)

var _ TextIndex = (*BleveIndex)(nil)

// textFields are searched by every query; category is only used as a filter.
var textFields = []string{"name", "description", "services", "city"}

// BleveIndex implements TextIndex with an in-memory Bleve index.
type BleveIndex struct {
	index bleve.Index
}

// NewBleveIndex creates an in-memory Bleve index for resources. It is rebuilt
// from the catalog on every start.
func NewBleveIndex() (*BleveIndex, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer lowercases and tokenizes without stemming, which keeps
	// service names like "wic" or "snap" matchable as typed.
	textFieldMapping.Analyzer = standard.Name
	for _, f := range textFields {
		docMapping.AddFieldMappingsAt(f, textFieldMapping)
	}
	categoryMapping := bleve.NewTextFieldMapping()
	categoryMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("category", categoryMapping)
	im.AddDocumentMapping("resource", docMapping)
	im.DefaultType = "resource"
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Index adds or replaces the resource document keyed by its id.
func (b *BleveIndex) Index(ctx context.Context, r *models.Resource) error {
	doc := map[string]interface{}{
		"name":        r.Name,
		"description": r.Description,
		"services":    strings.Join(r.Services, " "),
		"city":        r.Location.City,
		"category":    string(r.Category),
	}
	return b.index.Index(r.ID, doc)
}

// Search runs a disjunction over the text fields and returns up to limit hits.
// Name matches are boosted by opts.NameBoost; opts.Category adds a required category term.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*KeywordResult, error) {
	nameBoost := 1.0
	fuzziness := 0
	var category models.Category
	if opts != nil {
		if opts.NameBoost > 0 {
			nameBoost = opts.NameBoost
		}
		if opts.FuzzyEnabled {
			fuzziness = 2
			if opts.Fuzziness > 0 {
				fuzziness = opts.Fuzziness
			}
		}
		category = opts.Category
	}
	if limit <= 0 {
		limit = 10
	}

	fieldQueries := make([]blevequery.Query, 0, len(textFields))
	for _, field := range textFields {
		var q blevequery.Query
		if fuzziness > 0 {
			q = buildFuzzyQuery(query, fuzziness, field)
		} else {
			mq := bleve.NewMatchQuery(query)
			mq.SetField(field)
			q = mq
		}
		if field == "name" {
			if bq, ok := q.(blevequery.BoostableQuery); ok {
				bq.SetBoost(nameBoost)
			}
		}
		fieldQueries = append(fieldQueries, q)
	}

	var q blevequery.Query = bleve.NewDisjunctionQuery(fieldQueries...)
	if category != "" {
		cq := bleve.NewTermQuery(string(category))
		cq.SetField("category")
		q = bleve.NewConjunctionQuery(q, cq)
	}

	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*KeywordResult, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = &KeywordResult{ID: hit.ID, Score: hit.Score}
	}
	return out, nil
}

// buildFuzzyQuery creates a disjunction of FuzzyQueries, one per query term, on field.
func buildFuzzyQuery(queryStr string, fuzziness int, field string) blevequery.Query {
	terms := strings.Fields(strings.ToLower(queryStr))
	if len(terms) == 0 {
		mq := bleve.NewMatchQuery(queryStr)
		mq.SetField(field)
		return mq
	}
	if len(terms) == 1 {
		fq := bleve.NewFuzzyQuery(terms[0])
		fq.SetFuzziness(fuzziness)
		fq.SetField(field)
		return fq
	}
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzziness)
		fq.SetField(field)
		queries = append(queries, fq)
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// Delete removes a resource from the index.
func (b *BleveIndex) Delete(ctx context.Context, id string) error {
	return b.index.Delete(id)
}

// DocCount returns the number of indexed resources.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
