package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ppiankov/factcompanion/internal/model"
	"github.com/ppiankov/factcompanion/internal/store"
)

var (
	queriesLimit int
	queriesJSON  bool
)

// queriesCmd represents the queries command
var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "Show recent logged checks and totals",
	Long: `Queries reads the anonymized query log written by serve and prints
totals (by platform and confidence, suspect channels) and the most recent
checks.

Example:
  factcompanion queries --db ~/.factcompanion/queries.db --limit 10
  factcompanion queries --json`,
	Args: cobra.NoArgs,
	RunE: runQueries,
}

func init() {
	rootCmd.AddCommand(queriesCmd)

	queriesCmd.Flags().StringVar(&dbPath, "db", "", "query log SQLite path (default: store.path)")
	queriesCmd.Flags().IntVar(&queriesLimit, "limit", 20, "number of recent checks to show")
	queriesCmd.Flags().BoolVar(&queriesJSON, "json", false, "print stats and checks as JSON")
}

func runQueries(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	if dbPath != "" {
		cfg.Store.Path = dbPath
	}
	if cfg.Store.Path == "" {
		return errors.New("no query log configured (set store.path or pass --db)")
	}

	ctx := cmd.Context()
	st, err := store.Open(ctx, cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open query log: %w", err)
	}
	defer func() { _ = st.Close() }()

	stats, err := st.Stats(ctx)
	if err != nil {
		return err
	}
	records, err := st.Recent(ctx, queriesLimit)
	if err != nil {
		return err
	}

	if queriesJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Stats   *store.Stats        `json:"stats"`
			Queries []store.QueryRecord `json:"queries"`
		}{stats, records})
	}

	printQueries(cmd.OutOrStdout(), stats, records)
	return nil
}

func printQueries(w io.Writer, stats *store.Stats, records []store.QueryRecord) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Total checks:      %d\n", stats.Total)
	fmt.Fprintf(w, "  High confidence:   %d\n", stats.ByConfidence[string(model.ConfidenceHigh)])
	fmt.Fprintf(w, "  YouTube / TikTok:  %d / %d\n",
		stats.ByPlatform[string(model.PlatformYouTube)], stats.ByPlatform[string(model.PlatformTikTok)])
	fmt.Fprintf(w, "  Suspect channels:  %d\n", stats.SuspectChannels)
	fmt.Fprintf(w, "\n")

	if len(records) == 0 {
		fmt.Fprintf(w, "No checks logged yet.\n")
		return
	}

	for _, rec := range records {
		suspect := ""
		if rec.ChannelIsSuspect {
			suspect = " ⚠️"
		}
		fmt.Fprintf(w, "%s  %-6s  %-8s  %s (%s)%s\n",
			rec.CreatedAt.Format("2006-01-02 15:04"), rec.Confidence, rec.Platform,
			model.Truncate(rec.VideoTitle, 60), rec.VideoCreator, suspect)
	}
	fmt.Fprintf(w, "\n")
}
