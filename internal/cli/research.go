package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/factcompanion/internal/model"
	"github.com/ppiankov/factcompanion/internal/pipeline"
)

var (
	researchJSON    bool
	researchTimeout time.Duration
	noCache         bool
)

// researchCmd represents the research command
var researchCmd = &cobra.Command{
	Use:   "research <url>",
	Short: "Research a single video link and explain what the evidence says",
	Long: `Research runs the full pipeline for one YouTube or TikTok link:
- Extract title, creator, description and transcript
- Check the creator's recent uploads for alarmist patterns
- Look up formal fact-checks, then trusted news coverage
- Write a short, sourced explanation with a confidence label

Example:
  factcompanion research https://youtu.be/dQw4w9WgXcQ
  factcompanion research https://www.tiktok.com/@user/video/123 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runResearch,
}

func init() {
	rootCmd.AddCommand(researchCmd)

	researchCmd.Flags().BoolVar(&researchJSON, "json", false, "print the full result as JSON")
	researchCmd.Flags().DurationVar(&researchTimeout, "timeout", 2*time.Minute, "overall research timeout")
	researchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the evidence cache")
}

func runResearch(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	if noCache {
		cfg.Cache.Enabled = false
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), researchTimeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Researching: %s\n", args[0])
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", researchTimeout)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	result, err := p.Research(ctx, args[0])
	if err != nil {
		return err
	}

	if researchJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResult(cmd.OutOrStdout(), result)
	return nil
}

// printResult writes the human-readable form of a result
func printResult(w io.Writer, r *model.ResearchResult) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  %s\n", r.VideoTitle)
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Platform:    %s\n", r.Platform)
	fmt.Fprintf(w, "  Creator:     %s\n", r.VideoCreator)
	fmt.Fprintf(w, "  Confidence:  %s\n", r.Confidence)
	fmt.Fprintf(w, "  Evidence:    %d fact-checks, %d news results\n", r.FactChecksFound, r.SearchResultsFound)
	if r.ChannelIsSuspect {
		fmt.Fprintf(w, "  ⚠️  This creator frequently posts alarmist content\n")
	}
	fmt.Fprintf(w, "\n%s\n", r.Explanation)

	if len(r.Sources) > 0 {
		fmt.Fprintf(w, "\nSources:\n")
		for _, src := range r.Sources {
			fmt.Fprintf(w, "  - %s\n", src)
		}
	}
	fmt.Fprintf(w, "\n")
}
