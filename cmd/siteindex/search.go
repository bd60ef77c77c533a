package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"catalogsite/internal/index"
	"catalogsite/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a query against a stored snapshot",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringP("locale", "l", "", "snapshot locale (default: DEFAULT_LOCALE)")
	searchCmd.Flags().Int("page", 1, "result page")
	searchCmd.Flags().Int("page-size", 10, "results per page, 0 for all")
}

func runSearch(cmd *cobra.Command, args []string) error {
	locale, _ := cmd.Flags().GetString("locale")
	if locale == "" {
		locale = cfg.DefaultLocale
	}
	page, _ := cmd.Flags().GetInt("page")
	pageSize, _ := cmd.Flags().GetInt("page-size")

	query := args[0]
	for _, a := range args[1:] {
		query += " " + a
	}
	return searchSnapshot(cmd.Context(), cmd.OutOrStdout(), index.NewStore(db), locale, query, search.Page{Page: page, PageSize: pageSize})
}

type snapshotGetter interface {
	Get(ctx context.Context, locale string) (index.Snapshot, error)
}

func searchSnapshot(ctx context.Context, w io.Writer, store snapshotGetter, locale, query string, p search.Page) error {
	snap, err := store.Get(ctx, locale)
	if err != nil {
		return fmt.Errorf("no usable %s snapshot, run build first: %w", locale, err)
	}
	return printJSON(w, search.Search(query, snap.Items, p))
}
