package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ppiankov/factcompanion/internal/model"
	"github.com/ppiankov/factcompanion/internal/pipeline"
	"github.com/ppiankov/factcompanion/internal/server"
	"github.com/ppiankov/factcompanion/internal/store"
)

var (
	serveAddr string
	dbPath    string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the messaging webhook and public dashboard",
	Long: `Serve starts the HTTP server:
- POST /api/webhook   messaging webhook (form fields Body, From), replies as XML
- GET  /dashboard     recent checks and totals from the query log
- GET  /api/queries   recent checks as JSON (?limit=N)
- GET  /api/stats     totals as JSON
- GET  /health        configured services

Only what was checked and what was found is logged. Sender identifiers are
never stored.

Example:
  factcompanion serve --addr :8000 --db ~/.factcompanion/queries.db`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr)")
	serveCmd.Flags().StringVar(&dbPath, "db", "", "query log SQLite path (default: store.path, empty disables logging)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if dbPath != "" {
		cfg.Store.Path = dbPath
	}

	ctx := cmd.Context()

	p, err := pipeline.New(cfg)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	var queries server.QueryLog
	if cfg.Store.Path != "" {
		st, err := store.Open(ctx, cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("open query log: %w", err)
		}
		defer func() { _ = st.Close() }()
		queries = st
		slog.Info("serve: query log enabled", slog.String("path", st.Path()))
	} else {
		slog.Warn("serve: query log disabled, dashboard will be empty")
	}

	srv, err := server.New(p, queries, server.Options{
		Debug:        cfg.Debug,
		DashboardURL: cfg.Server.DashboardURL,
		Services:     serviceStatus(cfg, p),
	})
	if err != nil {
		return err
	}

	return srv.Run(ctx, cfg.Server.Addr)
}

// serviceStatus reports which external services are configured
func serviceStatus(cfg *model.Config, p *pipeline.Pipeline) map[string]bool {
	return map[string]bool{
		"fact_check":  cfg.Evidence.FactCheckAPIKey != "",
		"news_search": cfg.Evidence.SearchAPIKey != "",
		"llm":         p.Provider() != nil,
		"cache":       cfg.Cache.Enabled,
	}
}
