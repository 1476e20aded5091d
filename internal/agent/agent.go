// Package agent runs conversation turns: understanding, retrieval, then reply generation.
package agent

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/hyperjump/nextstep/internal/llm"
	"github.com/hyperjump/nextstep/internal/models"
	"go.uber.org/zap"
)

// ErrEmptyQuery is returned for empty or whitespace-only user text.
var ErrEmptyQuery = errors.New("query text is empty")

var errNoChatClient = errors.New("no completion client configured")

// Fixed replies used when generation fails or comes back empty.
const (
	UnavailableMessage  = "Sorry, I'm having trouble finding resources for you right now. Please try again later."
	ResultsFallbackText = "I found some resources that might help you. Let me share the details."
	EmptyReplyMessage   = "I'm here to help you find the resources you need."
)

const (
	DefaultTemperature   = 0.2
	DefaultContextLength = 5

	moreInfoQuestion    = "Would you like more information about any of these resources?"
	fallbackResourceCap = 3
)

// Understander enriches a raw query. It must not fail.
type Understander interface {
	ParseQuery(ctx context.Context, q models.Query) models.Query
}

// Retriever ranks catalog resources for a query.
type Retriever interface {
	SearchResources(ctx context.Context, q *models.Query) ([]*models.RetrievalResult, error)
}

// Conversation is the state carried between turns. Values are never mutated;
// each turn returns a new Conversation.
type Conversation struct {
	History models.History `json:"history"`
	// FollowUps are the questions suggested after the last turn, offered to the next prompt.
	FollowUps []string `json:"follow_up_questions"`
}

// Response is the outcome of one turn.
type Response struct {
	Message           string                    `json:"message"`
	Resources         []*models.RetrievalResult `json:"resources"`
	FollowUpQuestions []string                  `json:"follow_up_questions,omitempty"`
	UrgentNotice      string                    `json:"urgent_notice,omitempty"`
	// Query is the enriched query used for retrieval; nil for the intro turn.
	Query *models.Query `json:"query,omitempty"`
}

// Agent owns one conversation and processes its turns one at a time.
type Agent struct {
	mu   sync.Mutex
	conv Conversation

	understander Understander
	retriever    Retriever
	chat         llm.ChatClient
	background   models.Background
	model        string
	temperature  float64
	maxContext   int
	logger       *zap.Logger
}

// Option configures an Agent.
type Option func(*Agent)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Agent) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithBackground sets the intake survey answers used by the intro and no-results prompts.
func WithBackground(bg models.Background) Option {
	return func(a *Agent) {
		a.background = bg
	}
}

// WithModel overrides the chat client's default model.
func WithModel(model string) Option {
	return func(a *Agent) {
		a.model = model
	}
}

// WithTemperature sets the reply sampling temperature.
func WithTemperature(t float64) Option {
	return func(a *Agent) {
		a.temperature = t
	}
}

// WithMaxContextResources caps how many results go into the prompt and the response.
func WithMaxContextResources(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxContext = n
		}
	}
}

// New creates an Agent. A nil chat client makes every reply a fallback message.
func New(understander Understander, retriever Retriever, chat llm.ChatClient, opts ...Option) *Agent {
	a := &Agent{
		understander: understander,
		retriever:    retriever,
		chat:         chat,
		temperature:  DefaultTemperature,
		maxContext:   DefaultContextLength,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// HandleQuery processes one user message. An empty location falls back to the
// background location. Turns are serialized so history order is processing order.
func (a *Agent) HandleQuery(ctx context.Context, text, location string) (*Response, error) {
	if location == "" {
		location = a.background.Location
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	resp, next, err := a.Turn(ctx, a.conv, models.Query{Text: text, Location: location})
	if err != nil {
		return nil, err
	}
	a.conv = next
	return resp, nil
}

// Introduce generates the greeting from the background. Only the assistant turn is recorded.
func (a *Agent) Introduce(ctx context.Context) *Response {
	a.mu.Lock()
	defer a.mu.Unlock()

	resp, next := a.Intro(ctx, a.conv)
	a.conv = next
	return resp
}

// Clear resets the conversation.
func (a *Agent) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.conv = Conversation{}
}

// Conversation returns the current conversation state.
func (a *Agent) Conversation() Conversation {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.conv
}

// Background returns the configured intake answers.
func (a *Agent) Background() models.Background {
	return a.background
}

// Intro runs the intro turn against conv without touching the agent's own state.
func (a *Agent) Intro(ctx context.Context, conv Conversation) (*Response, Conversation) {
	resp := &Response{Resources: []*models.RetrievalResult{}}
	reply, err := a.complete(ctx, introMessages(a.background))
	if err != nil {
		a.logger.Warn("Intro generation failed", zap.Error(err))
		resp.Message = UnavailableMessage
	} else {
		resp.Message = reply
		if resp.Message == "" {
			resp.Message = UnavailableMessage
		}
		resp.FollowUpQuestions = conv.FollowUps
	}
	next := Conversation{
		History:   conv.History.Append(models.Turn{Role: models.RoleAssistant, Content: resp.Message}),
		FollowUps: conv.FollowUps,
	}
	return resp, next
}

// Turn runs understanding, retrieval and generation for q against conv and
// returns the response with the next conversation state. conv is not modified.
func (a *Agent) Turn(ctx context.Context, conv Conversation, q models.Query) (*Response, Conversation, error) {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return nil, conv, ErrEmptyQuery
	}

	enriched := q
	if a.understander != nil {
		enriched = a.understander.ParseQuery(ctx, q)
	}
	results, err := a.retriever.SearchResources(ctx, &enriched)
	if err != nil {
		a.logger.Warn("Retrieval failed, answering without resources", zap.Error(err))
		results = nil
	}

	var resp *Response
	followUps := conv.FollowUps
	if len(results) == 0 {
		resp, followUps = a.replyWithoutResults(ctx, q.Text, enriched, conv)
	} else {
		resp, followUps = a.replyWithResults(ctx, q.Text, enriched, results, conv)
	}
	if IsUrgent(q.Text) {
		resp.UrgentNotice = UrgentNotice
	}
	resp.Query = &enriched

	next := Conversation{
		History: conv.History.Append(
			models.Turn{Role: models.RoleUser, Content: q.Text},
			models.Turn{Role: models.RoleAssistant, Content: resp.Message},
		),
		FollowUps: followUps,
	}
	return resp, next, nil
}

func (a *Agent) replyWithoutResults(ctx context.Context, text string, q models.Query, conv Conversation) (*Response, []string) {
	resp := &Response{Resources: []*models.RetrievalResult{}}
	reply, err := a.complete(ctx, noResultsMessages(text, conv, a.background))
	if err != nil {
		a.logger.Warn("Reply generation failed", zap.Error(err))
		resp.Message = UnavailableMessage
		return resp, conv.FollowUps
	}
	resp.Message = reply
	if resp.Message == "" {
		resp.Message = UnavailableMessage
	}
	followUps := noResultsFollowUps(q)
	resp.FollowUpQuestions = followUps
	return resp, followUps
}

func (a *Agent) replyWithResults(ctx context.Context, text string, q models.Query, results []*models.RetrievalResult, conv Conversation) (*Response, []string) {
	top := results
	if len(top) > a.maxContext {
		top = top[:a.maxContext]
	}
	reply, err := a.complete(ctx, resultsMessages(text, top, conv))
	if err != nil {
		a.logger.Warn("Reply generation failed, listing resources", zap.Error(err))
		shown := results
		if len(shown) > fallbackResourceCap {
			shown = shown[:fallbackResourceCap]
		}
		return &Response{
			Message:           ResultsFallbackText,
			Resources:         shown,
			FollowUpQuestions: []string{moreInfoQuestion},
		}, conv.FollowUps
	}
	if reply == "" {
		reply = EmptyReplyMessage
	}
	followUps := GenerateFollowUps(q, results)
	return &Response{
		Message:           reply,
		Resources:         top,
		FollowUpQuestions: followUps,
	}, followUps
}

func (a *Agent) complete(ctx context.Context, messages []llm.Message) (string, error) {
	if a.chat == nil {
		return "", errNoChatClient
	}
	opts := []llm.Option{llm.WithTemperature(a.temperature)}
	if a.model != "" {
		opts = append(opts, llm.WithModel(a.model))
	}
	return a.chat.Complete(ctx, messages, opts...)
}
