// Package catalog is the in-memory resource store with category and location indexes.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hyperjump/nextstep/internal/keyword"
	"github.com/hyperjump/nextstep/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNotFound is returned when no resource has the requested id.
	ErrNotFound = errors.New("resource not found")
	// ErrTextSearchDisabled is returned by TextSearch when no full-text index is attached.
	ErrTextSearchDisabled = errors.New("full-text search is not enabled")
)

// EmbeddingSource produces the vector stored on each resource. It must not fail.
type EmbeddingSource interface {
	Generate(ctx context.Context, text string) []float32
}

type idSet map[string]struct{}

// Catalog holds every resource plus its category and location indexes.
// Each stored id is in exactly one category bucket and one location bucket.
type Catalog struct {
	mu         sync.RWMutex
	resources  map[string]*models.Resource
	position   map[string]int
	order      []string
	byCategory map[models.Category]idSet
	byLocation map[string]idSet

	embedder    EmbeddingSource
	textIndex   keyword.TextIndex
	concurrency int
	logger      *zap.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTextIndex mirrors every stored resource into a full-text index.
func WithTextIndex(idx keyword.TextIndex) Option {
	return func(c *Catalog) {
		c.textIndex = idx
	}
}

// WithConcurrency bounds the number of embeddings computed in parallel by Initialize.
func WithConcurrency(n int) Option {
	return func(c *Catalog) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// New creates an empty catalog. Every category has an (empty) bucket.
func New(embedder EmbeddingSource, opts ...Option) *Catalog {
	c := &Catalog{
		resources:   make(map[string]*models.Resource),
		position:    make(map[string]int),
		byCategory:  make(map[models.Category]idSet),
		byLocation:  make(map[string]idSet),
		embedder:    embedder,
		concurrency: 4,
		logger:      zap.NewNop(),
	}
	for _, cat := range models.Categories() {
		c.byCategory[cat] = make(idSet)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LocationKey is the location index key: lower-cased city and state joined by "_".
func LocationKey(city, state string) string {
	return strings.ToLower(city) + "_" + strings.ToLower(state)
}

// Initialize stores records in bulk. Embeddings are computed in parallel; the
// records are then inserted in input order under a single write lock.
func (c *Catalog) Initialize(ctx context.Context, records []*models.Resource) error {
	prepared := make([]*models.Resource, len(records))
	for i, r := range records {
		p, err := prepare(r)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		prepared[i] = p
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for _, r := range prepared {
		r := r
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r.Embedding = c.embedder.Generate(gctx, r.SearchableText())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to embed resources: %w", err)
	}

	c.mu.Lock()
	for _, r := range prepared {
		c.upsertLocked(r)
	}
	c.mu.Unlock()

	for _, r := range prepared {
		c.indexText(ctx, r)
	}
	c.logger.Info("Catalog initialized", zap.Int("resources", len(prepared)), zap.Int("total", c.Len()))
	return nil
}

// AddResource embeds and stores r, replacing any resource with the same id.
// A missing id is assigned. The stored copy is returned.
func (c *Catalog) AddResource(ctx context.Context, r *models.Resource) (*models.Resource, error) {
	p, err := prepare(r)
	if err != nil {
		return nil, err
	}
	p.Embedding = c.embedder.Generate(ctx, p.SearchableText())

	c.mu.Lock()
	replaced := c.upsertLocked(p)
	c.mu.Unlock()

	c.indexText(ctx, p)
	c.logger.Debug("Resource stored", zap.String("id", p.ID), zap.Bool("replaced", replaced))
	return p.Clone(), nil
}

func prepare(r *models.Resource) (*models.Resource, error) {
	if r == nil {
		return nil, errors.New("nil resource")
	}
	if !r.Category.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownCategory, r.Category)
	}
	p := r.Clone()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return p, nil
}

// upsertLocked stores r and moves its id out of any stale buckets. A replaced
// id keeps its original position. Caller holds c.mu.
func (c *Catalog) upsertLocked(r *models.Resource) bool {
	prev, replaced := c.resources[r.ID]
	if replaced {
		delete(c.byCategory[prev.Category], r.ID)
		prevKey := LocationKey(prev.Location.City, prev.Location.State)
		if bucket := c.byLocation[prevKey]; bucket != nil {
			delete(bucket, r.ID)
			if len(bucket) == 0 {
				delete(c.byLocation, prevKey)
			}
		}
	} else {
		c.position[r.ID] = len(c.order)
		c.order = append(c.order, r.ID)
	}
	c.resources[r.ID] = r

	c.byCategory[r.Category][r.ID] = struct{}{}
	key := LocationKey(r.Location.City, r.Location.State)
	if c.byLocation[key] == nil {
		c.byLocation[key] = make(idSet)
	}
	c.byLocation[key][r.ID] = struct{}{}
	return replaced
}

func (c *Catalog) indexText(ctx context.Context, r *models.Resource) {
	if c.textIndex == nil {
		return
	}
	if err := c.textIndex.Index(ctx, r); err != nil {
		c.logger.Warn("Failed to index resource text", zap.String("id", r.ID), zap.Error(err))
	}
}

// GetResource returns a copy of the resource with the given id.
func (c *Catalog) GetResource(id string) (*models.Resource, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.resources[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r.Clone(), nil
}

// GetAllResources returns copies of every resource in insertion order.
func (c *Catalog) GetAllResources() []*models.Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*models.Resource, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.resources[id].Clone())
	}
	return out
}

// GetResourcesByCategory returns the resources in category's bucket in insertion order.
// Ids without a stored resource are skipped.
func (c *Catalog) GetResourcesByCategory(category models.Category) []*models.Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.collectLocked(c.byCategory[category])
}

// ResourcesByLocation returns the resources whose city and state match exactly (case-insensitive).
func (c *Catalog) ResourcesByLocation(city, state string) []*models.Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.collectLocked(c.byLocation[LocationKey(city, state)])
}

func (c *Catalog) collectLocked(ids idSet) []*models.Resource {
	out := make([]*models.Resource, 0, len(ids))
	for id := range ids {
		if r, ok := c.resources[id]; ok {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return c.position[out[i].ID] < c.position[out[j].ID]
	})
	for i, r := range out {
		out[i] = r.Clone()
	}
	return out
}

// Len returns the number of stored resources.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.resources)
}

// Stats summarizes the catalog indexes.
type Stats struct {
	Total      int                     `json:"total"`
	ByCategory map[models.Category]int `json:"by_category"`
	Locations  int                     `json:"locations"`
}

// Stats returns per-category counts and the number of distinct locations.
func (c *Catalog) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := Stats{
		Total:      len(c.resources),
		ByCategory: make(map[models.Category]int, len(c.byCategory)),
		Locations:  len(c.byLocation),
	}
	for cat, ids := range c.byCategory {
		s.ByCategory[cat] = len(ids)
	}
	return s
}

// TextSearch runs a full-text query against the attached index and returns matching resources in hit order.
func (c *Catalog) TextSearch(ctx context.Context, query string, limit int, opts *keyword.SearchOptions) ([]*models.Resource, error) {
	if c.textIndex == nil {
		return nil, ErrTextSearchDisabled
	}
	hits, err := c.textIndex.Search(ctx, query, limit, opts)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*models.Resource, 0, len(hits))
	for _, h := range hits {
		if r, ok := c.resources[h.ID]; ok {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}
