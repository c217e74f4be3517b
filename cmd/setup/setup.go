// Package setup implements the setup subcommand: store initialization and
// header self-healing without running a harvest.
package setup

import (
	"github.com/spf13/cobra"
	"github.com/tphakala/reviewharvest-go/internal/conf"
	"github.com/tphakala/reviewharvest-go/internal/logging"
	"github.com/tphakala/reviewharvest-go/internal/sheetstore"
)

// Command returns the setup subcommand
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Initialize the review sheet and repair its header",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := sheetstore.New(ctx, &settings.Sheet)
			if err != nil {
				return err
			}
			if err := store.EnsureWorksheet(ctx); err != nil {
				return err
			}

			logging.Info("Review sheet ready",
				"spreadsheet_id", settings.Sheet.SpreadsheetID,
				"worksheet", settings.Sheet.WorksheetName)
			return nil
		},
	}
}
