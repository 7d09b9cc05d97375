package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/factcompanion/internal/model"
)

// Set at build time with -ldflags "-X github.com/ppiankov/factcompanion/internal/cli.version=..."
var version = "v0.1.0"

var (
	cfgFile string
	verbose bool
	debug   bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "factcompanion",
	Short: "Fact-Check Companion - research shared videos and explain what the evidence says",
	Long: `Fact-Check Companion researches a shared YouTube or TikTok link for
someone worried about what they just watched.

It extracts what the video claims, checks the creator's recent uploads for
alarmist patterns, looks for formal fact-checks and trusted news coverage,
and writes a short, sourced explanation with a confidence label.

It does not decide what is true. Every explanation cites the evidence it
was built from, or says plainly that none was found.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(verbose)
	},
}

// Execute runs the root command. Cancelling ctx stops long-running
// commands such as serve and batch.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of Fact-Check Companion.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("factcompanion %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.factcompanion/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "include error detail in replies and output")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	v := viper.GetViper()

	if cfgFile != "" {
		// Use config file from the flag
		v.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
		} else {
			// Search for config in home directory
			v.AddConfigPath(filepath.Join(home, ".factcompanion"))
			v.SetConfigType("yaml")
			v.SetConfigName("config")
		}
	}

	configureViper(v)

	// If a config file is found, read it in
	if err := v.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", v.ConfigFileUsed())
	}
}

// envAliases are the conventional unprefixed variable names accepted for
// provider credentials, next to the FACTCOMPANION_* form
var envAliases = map[string]string{
	"llm.openai_api_key":         "OPENAI_API_KEY",
	"llm.openrouter_api_key":     "OPENROUTER_API_KEY",
	"llm.gateway_api_key":        "LLM_API_KEY",
	"llm.gateway_endpoint":       "LLM_ENDPOINT",
	"evidence.factcheck_api_key": "GOOGLE_API_KEY",
	"evidence.search_api_key":    "SERPER_API_KEY",
	"server.dashboard_url":       "DASHBOARD_URL",
}

// configureViper registers defaults and environment bindings. Every key in
// model.DefaultConfig gets a default so FACTCOMPANION_* variables resolve
// through Unmarshal.
func configureViper(v *viper.Viper) {
	v.SetEnvPrefix("FACTCOMPANION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range flattenConfig(model.DefaultConfig()) {
		v.SetDefault(key, value)
	}

	for key, alias := range envAliases {
		prefixed := "FACTCOMPANION_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, prefixed, alias)
	}
}

// LoadConfig resolves the effective configuration: defaults, then config
// file, then environment, then flags
func LoadConfig() (*model.Config, error) {
	return loadConfig(viper.GetViper())
}

func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// setupLogging installs the process-wide slog handler on stderr
func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
