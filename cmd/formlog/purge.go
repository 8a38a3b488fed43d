package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var purgeDays int

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete old log entries",
	Long: `Delete entries created more than --days days ago.

Without --days the RETENTION_DAYS setting is used. This is the same purge the
server runs on RETENTION_SCHEDULE.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		days := purgeDays
		if days == 0 {
			days = cfg.Retention.Days
		}
		if days <= 0 {
			return fmt.Errorf("nothing to purge: set --days or RETENTION_DAYS")
		}

		ctx := cmd.Context()
		svc, closeDB, err := openService(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeDB()

		purged, err := svc.PurgeEntries(ctx, days)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "purged %d entries older than %d days\n", purged, days)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(purgeCmd)
	purgeCmd.Flags().IntVar(&purgeDays, "days", 0, "delete entries older than this many days")
}
