// Package dataset loads the static resource catalog from JSON.
package dataset

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/hyperjump/nextstep/internal/models"
)

// ErrInvalidRecord is returned for records that are missing required fields,
// carry an unparseable date, or repeat an id.
var ErrInvalidRecord = errors.New("invalid resource record")

//go:embed resources.json
var defaultResources []byte

// dateLayouts are tried in order for lastUpdated.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

type record struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Services     []string        `json:"services"`
	Eligibility  []string        `json:"eligibility"`
	Location     models.Location `json:"location"`
	Contact      models.Contact  `json:"contact"`
	Hours        string          `json:"hours"`
	Requirements []string        `json:"requirements"`
	WaitTime     string          `json:"waitTime"`
	Capacity     *int            `json:"capacity"`
	LastUpdated  string          `json:"lastUpdated"`
}

// Load reads resources from path. An empty path loads the embedded default catalog.
func Load(path string) ([]*models.Resource, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Default returns the embedded catalog.
func Default() ([]*models.Resource, error) {
	return Parse(bytes.NewReader(defaultResources))
}

// Parse decodes a JSON array of resource records. A category outside the
// enumeration fails the whole load with models.ErrUnknownCategory.
func Parse(r io.Reader) ([]*models.Resource, error) {
	var records []record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}

	seen := make(map[string]struct{}, len(records))
	out := make([]*models.Resource, 0, len(records))
	for i, rec := range records {
		res, err := rec.toResource()
		if err != nil {
			return nil, fmt.Errorf("record %d (%s): %w", i, rec.ID, err)
		}
		if _, dup := seen[res.ID]; dup {
			return nil, fmt.Errorf("record %d: %w: duplicate id %q", i, ErrInvalidRecord, res.ID)
		}
		seen[res.ID] = struct{}{}
		out = append(out, res)
	}
	return out, nil
}

func (rec record) toResource() (*models.Resource, error) {
	if strings.TrimSpace(rec.ID) == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidRecord)
	}
	if strings.TrimSpace(rec.Name) == "" {
		return nil, fmt.Errorf("%w: missing name", ErrInvalidRecord)
	}
	cat, err := models.ParseCategory(rec.Category)
	if err != nil {
		return nil, err
	}
	var updated time.Time
	if rec.LastUpdated != "" {
		updated, err = parseDate(rec.LastUpdated)
		if err != nil {
			return nil, err
		}
	}
	return &models.Resource{
		ID:           rec.ID,
		Name:         rec.Name,
		Description:  rec.Description,
		Category:     cat,
		Services:     rec.Services,
		Eligibility:  rec.Eligibility,
		Location:     rec.Location,
		Contact:      rec.Contact,
		Hours:        rec.Hours,
		Requirements: rec.Requirements,
		WaitTime:     rec.WaitTime,
		Capacity:     rec.Capacity,
		LastUpdated:  updated,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable lastUpdated %q", ErrInvalidRecord, s)
}

// Sink receives reloaded resources.
type Sink interface {
	AddResource(ctx context.Context, r *models.Resource) (*models.Resource, error)
}

// Reload reads path and upserts every record into sink. Nothing is written
// when the file fails to parse. Records removed from the file stay in sink.
func Reload(ctx context.Context, path string, sink Sink) (int, error) {
	resources, err := Load(path)
	if err != nil {
		return 0, err
	}
	for i, r := range resources {
		if _, err := sink.AddResource(ctx, r); err != nil {
			return i, fmt.Errorf("failed to upsert %s: %w", r.ID, err)
		}
	}
	return len(resources), nil
}
