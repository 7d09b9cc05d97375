package llm

import (
	"errors"
	"testing"

	"github.com/ppiankov/factcompanion/internal/model"
)

func TestSelectProvider_AutoPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.LLMConfig)
		want   Kind
	}{
		{"direct beats all", func(c *model.LLMConfig) {
			c.OpenAIAPIKey = "k"
			c.GatewayAPIKey, c.GatewayEndpoint = "g", "https://gw.example"
			c.OpenRouterAPIKey = "o"
		}, KindDirect},
		{"gateway beats aggregator", func(c *model.LLMConfig) {
			c.GatewayAPIKey, c.GatewayEndpoint = "g", "https://gw.example"
			c.OpenRouterAPIKey = "o"
		}, KindGateway},
		{"gateway needs endpoint", func(c *model.LLMConfig) {
			c.GatewayAPIKey = "g"
			c.OpenRouterAPIKey = "o"
		}, KindAggregator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := model.DefaultConfig().LLM
			tt.mutate(&cfg)

			p, err := SelectProvider(cfg)
			if err != nil {
				t.Fatalf("SelectProvider failed: %v", err)
			}
			if p == nil || p.Kind() != tt.want {
				t.Errorf("Expected %s, got %v", tt.want, p)
			}
		})
	}
}

func TestSelectProvider_NoCredentials(t *testing.T) {
	p, err := SelectProvider(model.DefaultConfig().LLM)
	if err != nil || p != nil {
		t.Errorf("Expected no provider and no error, got %v %v", p, err)
	}
}

func TestSelectProvider_None(t *testing.T) {
	cfg := model.DefaultConfig().LLM
	cfg.Provider = "none"
	cfg.OpenAIAPIKey = "k"

	p, err := SelectProvider(cfg)
	if err != nil || p != nil {
		t.Errorf("Expected generation disabled, got %v %v", p, err)
	}
}

func TestSelectProvider_ForcedMissingCredentials(t *testing.T) {
	for _, name := range []string{"openai", "gateway", "openrouter"} {
		t.Run(name, func(t *testing.T) {
			cfg := model.DefaultConfig().LLM
			cfg.Provider = name
			cfg.OpenAIAPIKey = ""

			_, err := SelectProvider(cfg)
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("Expected *ConfigError, got %v", err)
			}
			if len(cerr.Missing) == 0 {
				t.Errorf("Expected missing fields to be reported")
			}
		})
	}
}

func TestSelectProvider_Unknown(t *testing.T) {
	cfg := model.DefaultConfig().LLM
	cfg.Provider = "carrier-pigeon"

	_, err := SelectProvider(cfg)
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("Expected *ConfigError, got %v", err)
	}
}

func TestSelectProvider_ForcedKind(t *testing.T) {
	cfg := model.DefaultConfig().LLM
	cfg.Provider = "openrouter"
	cfg.OpenAIAPIKey = "k"
	cfg.OpenRouterAPIKey = "o"

	p, err := SelectProvider(cfg)
	if err != nil {
		t.Fatalf("SelectProvider failed: %v", err)
	}
	if p.Kind() != KindAggregator {
		t.Errorf("Expected forced aggregator, got %s", p.Kind())
	}
}
