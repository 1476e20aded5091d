// Package llm is the narrow text-completion interface used for query
// understanding and reply generation, plus an OpenAI-compatible client.
package llm

import (
	"context"
	"errors"
)

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrNoChoices is returned when the service replies without any completion choice.
var ErrNoChoices = errors.New("no completion choices returned")

// Message is a chat message in a provider-agnostic format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options holds per-call parameters.
type Options struct {
	Temperature *float64
	MaxTokens   int
	Model       string // Override default model
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = &temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// ApplyOptions folds opts into an Options value.
func ApplyOptions(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ChatClient sends an ordered message list and returns the first choice's content.
type ChatClient interface {
	Complete(ctx context.Context, messages []Message, opts ...Option) (string, error)
}
