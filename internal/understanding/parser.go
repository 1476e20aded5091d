package understanding

import (
	"context"
	"strings"

	"github.com/hyperjump/nextstep/internal/llm"
	"github.com/hyperjump/nextstep/internal/models"
	"go.uber.org/zap"
)

// DefaultTemperature is the sampling temperature for understanding calls.
const DefaultTemperature = 0.1

const systemPrompt = `You are a hospital chatbot guiding underserved patients to find social services resources.
Analyze the user's query and identify:
1. What type of help they need (food, housing, healthcare, employment, transportation, childcare, mental health, substance abuse, legal, education)
2. Any location mentioned
3. Urgency level (low, medium or high)
4. Special circumstances or requirements

Respond with only a JSON object of the form:
{"categories": ["..."], "location": "...", "urgency": "low|medium|high", "requirements": ["..."]}`

// Parser asks a ChatClient to classify a query.
type Parser struct {
	client      llm.ChatClient
	model       string
	temperature float64
	logger      *zap.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used to report degraded parses.
func WithLogger(l *zap.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithModel overrides the client's default model.
func WithModel(model string) Option {
	return func(p *Parser) {
		p.model = model
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(p *Parser) {
		p.temperature = t
	}
}

// NewParser creates a Parser. A nil client makes every parse a pass-through.
func NewParser(client llm.ChatClient, opts ...Option) *Parser {
	p := &Parser{
		client:      client,
		temperature: DefaultTemperature,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Messages builds the understanding request for q.
func Messages(q models.Query) []llm.Message {
	var b strings.Builder
	b.WriteString("Message: ")
	b.WriteString(q.Text)
	if q.Location != "" {
		b.WriteString("\nLocation: ")
		b.WriteString(q.Location)
	}
	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: b.String()},
	}
}

// Analyze sends q to the model and parses the reply. Call failures become Unparsed.
func (p *Parser) Analyze(ctx context.Context, q models.Query) Analysis {
	if p.client == nil {
		return Unparsed{}
	}
	opts := []llm.Option{llm.WithTemperature(p.temperature)}
	if p.model != "" {
		opts = append(opts, llm.WithModel(p.model))
	}
	reply, err := p.client.Complete(ctx, Messages(q), opts...)
	if err != nil {
		return Unparsed{Err: err}
	}
	return ParseReply(reply)
}

// ParseQuery returns q enriched with the model's analysis, or q unchanged if
// the call fails or the reply cannot be parsed. It never returns an error.
func (p *Parser) ParseQuery(ctx context.Context, q models.Query) models.Query {
	a := p.Analyze(ctx, q)
	if u, ok := a.(Unparsed); ok {
		if u.Err != nil {
			p.logger.Warn("Query understanding degraded to pass-through",
				zap.Error(u.Err), zap.String("reply", u.Raw))
		}
		return q
	}
	enriched := Enrich(q, a)
	p.logger.Debug("Query understood",
		zap.Any("categories", enriched.Categories),
		zap.String("location", enriched.Location),
		zap.String("urgency", string(enriched.Urgency)))
	return enriched
}
