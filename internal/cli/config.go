package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/factcompanion/internal/model"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Fact-Check Companion configuration",
	Long: `Manage Fact-Check Companion configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (FACTCOMPANION_*, plus OPENAI_API_KEY, GOOGLE_API_KEY, ...)
3. Config file (~/.factcompanion/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration from all sources (defaults, config file, env vars, flags). Secrets are redacted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig()
		if err != nil {
			return err
		}

		configFile := viper.ConfigFileUsed()
		if configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults and environment)\n\n")
		}

		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println("  Current Configuration")
		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println()

		yamlData, err := yaml.Marshal(redactConfig(cfg))
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}

		fmt.Println(string(yamlData))

		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println()
		fmt.Println("Configuration hierarchy (highest to lowest priority):")
		fmt.Println("  1. CLI flags")
		fmt.Println("  2. Environment variables (FACTCOMPANION_*, OPENAI_API_KEY, OPENROUTER_API_KEY,")
		fmt.Println("     LLM_API_KEY, LLM_ENDPOINT, GOOGLE_API_KEY, SERPER_API_KEY, DASHBOARD_URL)")
		fmt.Println("  3. Config file (~/.factcompanion/config.yaml)")
		fmt.Println("  4. Defaults")
		fmt.Println()

		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.factcompanion/config.yaml with all available options.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("error finding home directory: %w", err)
		}

		configPath := filepath.Join(home, ".factcompanion", "config.yaml")
		if err := writeDefaultConfig(configPath); err != nil {
			return err
		}

		fmt.Printf("✓ Created default configuration: %s\n", configPath)
		fmt.Printf("\nTo view the configuration:\n")
		fmt.Printf("  factcompanion config show\n")
		fmt.Printf("\nTo customize, edit the file with your preferred editor:\n")
		fmt.Printf("  $EDITOR %s\n", configPath)
		fmt.Printf("\n")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

// writeDefaultConfig writes the documented default configuration to path. It
// refuses to overwrite an existing file.
func writeDefaultConfig(configPath string) (err error) {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s\nUse 'factcompanion config show' to view it, or delete it first to recreate", configPath)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	f, err := os.OpenFile(configPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close config file: %w", closeErr)
		}
	}()

	// Helper for writing with error checking
	printf := func(format string, a ...any) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(f, format, a...)
	}

	printf("# Fact-Check Companion Configuration File\n")
	printf("#\n")
	printf("# Configuration hierarchy (highest to lowest priority):\n")
	printf("#   1. CLI flags\n")
	printf("#   2. Environment variables (FACTCOMPANION_*)\n")
	printf("#   3. This config file\n")
	printf("#   4. Built-in defaults\n\n")

	yamlData, mErr := yaml.Marshal(model.DefaultConfig())
	if mErr != nil {
		return fmt.Errorf("error marshaling config: %w", mErr)
	}
	printf("%s", yamlData)

	printf("\n# API keys (recommended to use environment variables instead):\n")
	printf("#   export OPENAI_API_KEY=sk-...           # direct provider\n")
	printf("#   export LLM_API_KEY=... LLM_ENDPOINT=https://...  # deployment gateway\n")
	printf("#   export OPENROUTER_API_KEY=sk-or-...    # aggregator\n")
	printf("#   export GOOGLE_API_KEY=...              # fact-check lookup\n")
	printf("#   export SERPER_API_KEY=...              # trusted news search\n")

	return err
}

const redacted = "[redacted]"

// redactConfig returns a copy of cfg with credentials masked
func redactConfig(cfg *model.Config) *model.Config {
	out := *cfg
	out.Evidence.TrustedDomains = append([]string(nil), cfg.Evidence.TrustedDomains...)

	for _, secret := range []*string{
		&out.LLM.OpenAIAPIKey,
		&out.LLM.GatewayAPIKey,
		&out.LLM.OpenRouterAPIKey,
		&out.Evidence.FactCheckAPIKey,
		&out.Evidence.SearchAPIKey,
		&out.Cache.RedisURL,
	} {
		if *secret != "" {
			*secret = redacted
		}
	}
	return &out
}

var durationType = reflect.TypeOf(time.Duration(0))

// flattenConfig returns every leaf of cfg keyed by its dotted mapstructure
// path, e.g. "llm.max_tokens"
func flattenConfig(cfg *model.Config) map[string]any {
	out := make(map[string]any)
	flattenStruct(reflect.ValueOf(cfg).Elem(), "", out)
	return out
}

func flattenStruct(v reflect.Value, prefix string, out map[string]any) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := strings.Split(field.Tag.Get("mapstructure"), ",")[0]
		if name == "" || name == "-" {
			continue
		}

		key := name
		if prefix != "" {
			key = prefix + "." + name
		}

		fv := v.Field(i)
		if fv.Kind() == reflect.Struct && fv.Type() != durationType {
			flattenStruct(fv, key, out)
			continue
		}
		out[key] = fv.Interface()
	}
}
