package model

import "time"

// Config is the process-wide configuration. It is built once at startup
// (defaults, then config file, then environment, then flags) and handed to
// each component constructor.
type Config struct {
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Evidence     EvidenceConfig     `yaml:"evidence" mapstructure:"evidence"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Store        StoreConfig        `yaml:"store" mapstructure:"store"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Debug        bool               `yaml:"debug" mapstructure:"debug"`
}

// LLMConfig selects and configures the explanation provider
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"` // auto, openai, gateway, openrouter, none
	Model       string  `yaml:"model" mapstructure:"model"`       // Logical model name
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32 `yaml:"temperature" mapstructure:"temperature"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"` // seconds

	OpenAIAPIKey  string `yaml:"openai_api_key,omitempty" mapstructure:"openai_api_key"`
	OpenAIBaseURL string `yaml:"openai_base_url,omitempty" mapstructure:"openai_base_url"`

	GatewayAPIKey     string `yaml:"gateway_api_key,omitempty" mapstructure:"gateway_api_key"`
	GatewayEndpoint   string `yaml:"gateway_endpoint,omitempty" mapstructure:"gateway_endpoint"`
	GatewayAPIVersion string `yaml:"gateway_api_version" mapstructure:"gateway_api_version"`
	GatewayUser       string `yaml:"gateway_user,omitempty" mapstructure:"gateway_user"`

	OpenRouterAPIKey  string `yaml:"openrouter_api_key,omitempty" mapstructure:"openrouter_api_key"`
	OpenRouterModel   string `yaml:"openrouter_model" mapstructure:"openrouter_model"`
	OpenRouterBaseURL string `yaml:"openrouter_base_url" mapstructure:"openrouter_base_url"`
}

// EvidenceConfig configures the fact-check and search providers
type EvidenceConfig struct {
	FactCheckAPIKey string        `yaml:"factcheck_api_key,omitempty" mapstructure:"factcheck_api_key"`
	FactCheckURL    string        `yaml:"factcheck_url" mapstructure:"factcheck_url"`
	LanguageCode    string        `yaml:"language_code" mapstructure:"language_code"`
	SearchAPIKey    string        `yaml:"search_api_key,omitempty" mapstructure:"search_api_key"`
	SearchURL       string        `yaml:"search_url" mapstructure:"search_url"`
	TrustedDomains  []string      `yaml:"trusted_domains" mapstructure:"trusted_domains"`
	Timeout         time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// HTTPConfig configures outbound page fetching
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// CacheConfig configures the evidence cache
type CacheConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL      time.Duration `yaml:"ttl" mapstructure:"ttl"`
	Dir      string        `yaml:"dir" mapstructure:"dir"`                       // Disk layer, empty disables it
	RedisURL string        `yaml:"redis_url,omitempty" mapstructure:"redis_url"` // Replaces the local layers when set
}

// RateLimitingConfig bounds outbound request rate per host
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// StoreConfig configures the anonymized query log
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // SQLite file, empty disables logging
}

// ServerConfig configures the webhook and dashboard server
type ServerConfig struct {
	Addr         string `yaml:"addr" mapstructure:"addr"`
	DashboardURL string `yaml:"dashboard_url,omitempty" mapstructure:"dashboard_url"` // Public link shown in the welcome message
}

// ConcurrencyConfig configures batch processing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig configures CLI output
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultTrustedDomains is the allow-list used for news search
var DefaultTrustedDomains = []string{
	"reuters.com",
	"apnews.com",
	"bbc.com",
	"bbc.co.uk",
	"snopes.com",
	"factcheck.org",
	"politifact.com",
	"npr.org",
	"theguardian.com",
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:          "auto",
			Model:             "gpt-4o-mini",
			MaxTokens:         800,
			Temperature:       0.7,
			Timeout:           30,
			GatewayAPIVersion: "2024-10-21",
			GatewayUser:       "factcheck-bot",
			OpenRouterModel:   "openai/gpt-4o-mini",
			OpenRouterBaseURL: "https://openrouter.ai/api/v1",
		},
		Evidence: EvidenceConfig{
			FactCheckURL:   "https://factchecktools.googleapis.com/v1alpha1/claims:search",
			LanguageCode:   "en",
			SearchURL:      "https://google.serper.dev/search",
			TrustedDomains: append([]string(nil), DefaultTrustedDomains...),
			Timeout:        10 * time.Second,
		},
		HTTP: HTTPConfig{
			Timeout:      15 * time.Second,
			UserAgent:    "Mozilla/5.0 (compatible; factcompanion/0.1; +https://github.com/ppiankov/factcompanion)",
			MaxBodyBytes: 6 << 20,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     6 * time.Hour,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 5,
			BurstSize:         5,
		},
		Server: ServerConfig{
			Addr: ":8000",
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
	}
}
