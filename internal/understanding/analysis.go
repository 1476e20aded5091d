// Package understanding enriches a raw query with categories, location and
// urgency inferred by a language model, degrading to pass-through on failure.
package understanding

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hyperjump/nextstep/internal/models"
)

// ErrNotObject is reported when the reply is valid JSON but not an object.
var ErrNotObject = errors.New("analysis is not a JSON object")

// Analysis is the parsed outcome of an understanding call: either Understood or Unparsed.
type Analysis interface {
	isAnalysis()
}

// Understood is a reply that decoded into the expected shape.
type Understood struct {
	// Categories are the labels that mapped onto known categories, without duplicates.
	Categories []models.Category
	// Labels are the raw category labels from the reply.
	Labels       []string
	Location     string
	Urgency      models.Urgency
	Requirements []string
}

// Unparsed is a reply that could not be trusted.
type Unparsed struct {
	Raw string
	Err error
}

func (Understood) isAnalysis() {}
func (Unparsed) isAnalysis()   {}

type wireAnalysis struct {
	Categories   json.RawMessage `json:"categories"`
	Location     *string         `json:"location"`
	Urgency      *string         `json:"urgency"`
	Requirements []string        `json:"requirements"`
}

// ParseReply decodes a model reply. Surrounding markdown code fences are
// stripped. Categories may be a string or a list of strings; an unknown urgency
// is dropped. Any other shape mismatch yields Unparsed.
func ParseReply(content string) Analysis {
	body := stripFences(content)
	if body == "" {
		return Unparsed{Raw: content, Err: errors.New("empty reply")}
	}
	if !strings.HasPrefix(body, "{") {
		return Unparsed{Raw: content, Err: ErrNotObject}
	}

	var w wireAnalysis
	if err := json.Unmarshal([]byte(body), &w); err != nil {
		return Unparsed{Raw: content, Err: fmt.Errorf("decode analysis: %w", err)}
	}
	labels, err := decodeLabels(w.Categories)
	if err != nil {
		return Unparsed{Raw: content, Err: err}
	}

	a := Understood{
		Labels:       labels,
		Categories:   MapCategories(labels),
		Requirements: w.Requirements,
	}
	if w.Location != nil {
		a.Location = strings.TrimSpace(*w.Location)
	}
	if w.Urgency != nil {
		if u, ok := models.ParseUrgency(*w.Urgency); ok {
			a.Urgency = u
		}
	}
	return a
}

func decodeLabels(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var one string
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, fmt.Errorf("decode categories: %w", err)
		}
		return []string{one}, nil
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return many, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// Drop the info string, e.g. "json".
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Enrich returns q with the analysis applied. Inferred categories are added to
// the query's own; inferred location and urgency win when present. Unparsed
// leaves q unchanged.
func Enrich(q models.Query, a Analysis) models.Query {
	u, ok := a.(Understood)
	if !ok {
		return q
	}
	out := q
	out.Categories = mergeCategories(q.Categories, u.Categories)
	if u.Location != "" {
		out.Location = u.Location
	}
	if u.Urgency != "" {
		out.Urgency = u.Urgency
	}
	return out
}

func mergeCategories(a, b []models.Category) []models.Category {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[models.Category]struct{}, len(a)+len(b))
	out := make([]models.Category, 0, len(a)+len(b))
	for _, list := range [][]models.Category{a, b} {
		for _, c := range list {
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}
