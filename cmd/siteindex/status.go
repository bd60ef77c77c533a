package main

import (
	"github.com/spf13/cobra"

	"catalogsite/internal/contact"
	"catalogsite/internal/index"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List stored index snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := index.NewStore(db).List(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), list)
	},
}

var inquiriesCmd = &cobra.Command{
	Use:   "inquiries",
	Short: "Show the most recent contact inquiries",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		list, err := contact.NewRepository(db).Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), list)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(inquiriesCmd)
	inquiriesCmd.Flags().Int("limit", 20, "number of inquiries to show")
}
