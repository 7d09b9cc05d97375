package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/factcompanion/internal/model"
)

// chatProvider is a Provider backed by a go-openai client. The three kinds
// differ only in how the client is configured.
type chatProvider struct {
	client      *openai.Client
	kind        Kind
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	user        string
}

func newChatProvider(kind Kind, clientConfig openai.ClientConfig, modelName string, cfg model.LLMConfig) *chatProvider {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 800
	}

	return &chatProvider{
		client:      openai.NewClientWithConfig(clientConfig),
		kind:        kind,
		model:       modelName,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		timeout:     timeout,
	}
}

func (p *chatProvider) Kind() Kind {
	return p.kind
}

func (p *chatProvider) Model() string {
	return p.model
}

// Complete sends one system and one user message. An empty answer is an error.
func (p *chatProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
		User:        p.user,
	})
	if err != nil {
		return "", &CompletionError{Kind: p.kind, Model: p.model, Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &CompletionError{Kind: p.kind, Model: p.model, Err: errors.New("no choices returned")}
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &CompletionError{Kind: p.kind, Model: p.model, Err: errors.New("empty completion")}
	}
	return text, nil
}

// NewDirectProvider talks to the OpenAI API, or any compatible endpoint when
// openai_base_url is set
func NewDirectProvider(cfg model.LLMConfig) (Provider, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, &ConfigError{Provider: string(KindDirect), Missing: []string{"openai_api_key"}}
	}

	clientConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.OpenAIBaseURL, "/")
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = openai.GPT4oMini
	}
	return newChatProvider(KindDirect, clientConfig, modelName, cfg), nil
}

// NewOpenRouterProvider talks to the OpenRouter aggregator
func NewOpenRouterProvider(cfg model.LLMConfig) (Provider, error) {
	if cfg.OpenRouterAPIKey == "" {
		return nil, &ConfigError{Provider: string(KindAggregator), Missing: []string{"openrouter_api_key"}}
	}

	clientConfig := openai.DefaultConfig(cfg.OpenRouterAPIKey)
	clientConfig.BaseURL = "https://openrouter.ai/api/v1"
	if cfg.OpenRouterBaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.OpenRouterBaseURL, "/")
	}
	clientConfig.HTTPClient = &http.Client{
		Transport: &headerTransport{headers: map[string]string{"X-Title": "factcompanion"}},
	}

	modelName := cfg.OpenRouterModel
	if modelName == "" {
		modelName = "openai/" + cfg.Model
	}
	return newChatProvider(KindAggregator, clientConfig, modelName, cfg), nil
}

// headerTransport adds fixed headers to every request
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
