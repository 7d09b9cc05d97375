package llm

import (
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/factcompanion/internal/model"
)

// Deployment names per region, keyed by logical model name
var (
	mainRegionDeployments = map[string]string{
		"o4-mini":      "pdue-aoai-002-o4-mini",
		"o3-mini":      "pdue-aoai-002-o3mini",
		"o3":           "pdue-aoai-002-o3",
		"o1-mini":      "pdue-aoai-002-o1mini",
		"o1":           "pdue-aoai-002-o1",
		"gpt-4.1-mini": "pdue-aoai-002-gpt-4.1-mini",
		"gpt-4.1":      "pdue-aoai-002-gpt-4.1",
		"gpt-4o-mini":  "pdue-aoai-001-gpt4o-mini",
		"gpt-4o":       "pdue-aoai-004-gpt4o",
	}
	fallbackRegionDeployments = map[string]string{
		"o4-mini":      "dvue-aoai-001-o4-mini",
		"o3-mini":      "dvue-aoai-001-o3mini",
		"o3":           "dvue-aoai-001-o3",
		"o1-mini":      "dvue-aoai-001-o1mini",
		"o1":           "dvue-aoai-001-o1",
		"gpt-4.1-mini": "dvue-aoai-001-gpt-4.1-mini",
		"gpt-4.1":      "dvue-aoai-001-gpt-4.1",
	}
)

// DeploymentFor maps a logical model name to a gateway deployment: main
// region, then fallback region, then the templated default
func DeploymentFor(modelName string) string {
	if d, ok := mainRegionDeployments[modelName]; ok {
		return d
	}
	if d, ok := fallbackRegionDeployments[modelName]; ok {
		return d
	}
	return "pdue-aoai-002-" + modelName
}

// NewGatewayProvider talks to an Azure-style deployment gateway. The key is
// sent both as api-key and as the APIM subscription header.
func NewGatewayProvider(cfg model.LLMConfig) (Provider, error) {
	var missing []string
	if cfg.GatewayAPIKey == "" {
		missing = append(missing, "gateway_api_key")
	}
	if cfg.GatewayEndpoint == "" {
		missing = append(missing, "gateway_endpoint")
	}
	if len(missing) > 0 {
		return nil, &ConfigError{Provider: string(KindGateway), Missing: missing}
	}

	clientConfig := openai.DefaultAzureConfig(cfg.GatewayAPIKey, strings.TrimSuffix(cfg.GatewayEndpoint, "/"))
	if cfg.GatewayAPIVersion != "" {
		clientConfig.APIVersion = cfg.GatewayAPIVersion
	}
	clientConfig.AzureModelMapperFunc = DeploymentFor

	user := cfg.GatewayUser
	if user == "" {
		user = "factcheck-bot"
	}
	clientConfig.HTTPClient = &http.Client{
		Transport: &headerTransport{headers: map[string]string{
			"Ocp-Apim-Subscription-Key": cfg.GatewayAPIKey,
			"user":                      user,
		}},
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = openai.GPT4oMini
	}
	p := newChatProvider(KindGateway, clientConfig, modelName, cfg)
	p.user = user
	return p, nil
}
