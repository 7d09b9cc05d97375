// Package llm generates the reader-facing explanation through a chat
// completion provider, falling back to a fixed template when none answers.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Kind identifies how a provider is reached
type Kind string

const (
	KindDirect     Kind = "openai"     // OpenAI-compatible API with a bearer key
	KindGateway    Kind = "gateway"    // Azure-style deployment gateway
	KindAggregator Kind = "openrouter" // Multi-vendor aggregator
)

// Provider produces a completion for a system instruction and user prompt
type Provider interface {
	Kind() Kind
	Model() string
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// ConfigError reports a provider that was requested but cannot be built
type ConfigError struct {
	Provider string
	Missing  []string
	Err      error
}

func (e *ConfigError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("llm provider %q: missing %s", e.Provider, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("llm provider %q: %v", e.Provider, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// CompletionError wraps a failed or empty completion
type CompletionError struct {
	Kind  Kind
	Model string
	Err   error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("%s completion (%s): %v", e.Kind, e.Model, e.Err)
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}
