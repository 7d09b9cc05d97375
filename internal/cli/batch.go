package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/factcompanion/internal/model"
	"github.com/ppiankov/factcompanion/internal/pipeline"
	"github.com/ppiankov/factcompanion/internal/worker"
)

var (
	concurrency  int
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Research multiple video links from a file in parallel",
	Long: `Batch researches many links concurrently:
- Read links from input file (one per line, # comments skipped)
- Research links in parallel with a configurable worker count
- Write one JSON object per link to stdout, in input order

Example:
  factcompanion batch links.txt
  factcompanion batch links.txt --concurrency 8 > results.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the evidence cache")
}

// batchLine is one JSON line of batch output
type batchLine struct {
	URL        string                `json:"url"`
	Result     *model.ResearchResult `json:"result,omitempty"`
	Error      string                `json:"error,omitempty"`
	DurationMS int64                 `json:"duration_ms"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Fact-Check Companion Batch Research\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	p, err := pipeline.New(cfg)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers)

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	successCount := 0
	failureCount := 0

	for _, res := range results {
		line := batchLine{
			URL:        res.URL,
			Result:     res.Result,
			DurationMS: res.Duration.Milliseconds(),
		}
		if res.Error != nil {
			failureCount++
			line.Error = res.Error.Error()
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", res.URL, res.Error)
		} else {
			successCount++
			fmt.Fprintf(os.Stderr, "✓ %s (%s confidence)\n", res.URL, res.Result.Confidence)
		}

		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d links\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}
