package embedding

import (
	"context"

	"go.uber.org/zap"
)

// Provider embeds text with a primary Embedder and falls back to a HashEmbedder
// on any primary failure. Primary results are cached by text.
type Provider struct {
	primary  Embedder
	fallback *HashEmbedder
	cache    *EmbeddingCache
	logger   *zap.Logger
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithLogger sets the logger used to report fallbacks.
func WithLogger(l *zap.Logger) ProviderOption {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithCache enables an LRU cache of primary embeddings with the given capacity.
func WithCache(capacity int) ProviderOption {
	return func(p *Provider) {
		p.cache = NewEmbeddingCache(capacity)
	}
}

// NewProvider builds a Provider. primary may be nil, in which case every call uses the fallback.
func NewProvider(primary Embedder, fallback *HashEmbedder, opts ...ProviderOption) *Provider {
	if fallback == nil {
		fallback = NewHashEmbedder(DefaultHashDimensions)
	}
	p := &Provider{
		primary:  primary,
		fallback: fallback,
		cache:    NewEmbeddingCache(0),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Generate returns an embedding for text. It never fails: service errors and
// empty replies produce the deterministic fallback vector.
func (p *Provider) Generate(ctx context.Context, text string) []float32 {
	if p.primary == nil {
		return p.fallback.Vector(text)
	}
	if cached, ok := p.cache.Get(text); ok {
		return copyVector(cached)
	}
	emb, err := p.primary.Embed(ctx, text)
	if err == nil && len(emb) > 0 {
		p.cache.Set(text, emb)
		return copyVector(emb)
	}
	if err == nil {
		p.logger.Warn("Embedding service returned an empty vector, using fallback")
	} else {
		p.logger.Warn("Embedding service failed, using fallback", zap.Error(err))
	}
	return p.fallback.Vector(text)
}

// HasPrimary reports whether an external embedding service is configured.
func (p *Provider) HasPrimary() bool {
	return p.primary != nil
}

// Close closes the primary embedder.
func (p *Provider) Close() error {
	if p.primary == nil {
		return nil
	}
	return p.primary.Close()
}

func copyVector(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
