// Command siteindex manages the search index snapshots outside the server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"catalogsite/internal/config"
	"catalogsite/internal/database"
)

var (
	cfg config.Config
	db  *pgxpool.Pool
)

var rootCmd = &cobra.Command{
	Use:   "siteindex",
	Short: "Build and query the site search index",
	Long: `siteindex rebuilds the per-locale search index from the CMS and runs
queries against the stored snapshots.

Examples:
  siteindex build                     # Rebuild every supported locale
  siteindex build --locale en         # Rebuild one locale
  siteindex search "red shoe" -l en   # Query the stored en snapshot
  siteindex status                    # List stored snapshots`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		if db, err = database.Connect(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.SetFlags(0)
		log.Fatalf("siteindex: %v", err)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
