// Package cmd wires the command line interface.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tphakala/reviewharvest-go/cmd/harvest"
	"github.com/tphakala/reviewharvest-go/cmd/setup"
	"github.com/tphakala/reviewharvest-go/internal/conf"
	"github.com/tphakala/reviewharvest-go/internal/logging"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "reviewharvest",
		Short: "Incremental Play Store review harvester",
		Long:  "Harvests user reviews for the tracked apps and appends new ones to the review sheet.",
	}

	if err := setupFlags(rootCmd, settings); err != nil {
		// Flag binding only fails on programmer error.
		panic(err)
	}

	subcommands := []*cobra.Command{
		harvest.Command(settings),
		setup.Command(settings),
	}
	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		// Re-initialize logging so --debug from the command line wins over
		// the config file.
		logging.Init(settings.Debug)
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Sheet.SpreadsheetID, "sheet-id", viper.GetString("sheet.spreadsheetid"), "Spreadsheet id of the review store")
	rootCmd.PersistentFlags().StringVar(&settings.Sheet.WorksheetName, "worksheet", viper.GetString("sheet.worksheetname"), "Worksheet name inside the spreadsheet")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
