package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/factcompanion/internal/model"
)

// SelectProvider builds the configured provider.
//
//   - "auto" (or empty) picks the first credentialed kind: direct, gateway,
//     aggregator; with no credentials at all it returns (nil, nil)
//   - "openai", "gateway", "openrouter" force a kind and fail with
//     *ConfigError when its credentials are missing
//   - "none" disables generation
func SelectProvider(cfg model.LLMConfig) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))

	switch name {
	case "", "auto":
		switch {
		case cfg.OpenAIAPIKey != "":
			return NewDirectProvider(cfg)
		case cfg.GatewayAPIKey != "" && cfg.GatewayEndpoint != "":
			return NewGatewayProvider(cfg)
		case cfg.OpenRouterAPIKey != "":
			return NewOpenRouterProvider(cfg)
		}
		return nil, nil

	case string(KindDirect):
		return NewDirectProvider(cfg)

	case string(KindGateway), "azure":
		return NewGatewayProvider(cfg)

	case string(KindAggregator):
		return NewOpenRouterProvider(cfg)

	case "none", "off":
		return nil, nil

	default:
		return nil, &ConfigError{
			Provider: cfg.Provider,
			Err:      fmt.Errorf("unknown provider (supported: auto, openai, gateway, openrouter, none)"),
		}
	}
}
