package main

import (
	"fmt"

	"github.com/JonMunkholm/formlog/internal/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the form log schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := database.Migrate(ctx, pool); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "schema applied to %s\n", database.Name(cfg.Database.URL))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
