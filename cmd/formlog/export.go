package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/formlog/internal/core"
	"github.com/spf13/cobra"
)

var exportFlags struct {
	profile    string
	outDir     string
	lang       string
	identifier string
	pageID     string
	since      string
	until      string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export log entries to a file",
	Long: `Export log entries through an export profile.

The file is written to {out-dir}/{fileBasename}.{ext}. It appears only once
every row has been written; a failed export leaves any previous file alone.

Dates for --since and --until are YYYY-MM-DD or RFC 3339. A date-only
--until includes that whole day.

Examples:
  # Everything through the default profile
  formlog export

  # One form, German headers, February 2022
  formlog export --profile contacts --identifier contact --lang de \
    --since 2022-02-01 --until 2022-02-28`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFlags.profile, "profile", "p", core.DefaultProfileName, "export profile name")
	exportCmd.Flags().StringVarP(&exportFlags.outDir, "out-dir", "o", "", "output directory (default: EXPORT_OUTPUT_DIR)")
	exportCmd.Flags().StringVar(&exportFlags.lang, "lang", "", "header language (default: EXPORT_DEFAULT_LANGUAGE)")
	exportCmd.Flags().StringVar(&exportFlags.identifier, "identifier", "", "only entries of this form")
	exportCmd.Flags().StringVar(&exportFlags.pageID, "page-id", "", "only entries logged on this page")
	exportCmd.Flags().StringVar(&exportFlags.since, "since", "", "only entries created at or after this date")
	exportCmd.Flags().StringVar(&exportFlags.until, "until", "", "only entries created before this date")
}

func runExport(cmd *cobra.Command, _ []string) error {
	filter, err := core.ParseEntryFilter(exportFlags.identifier, exportFlags.pageID, exportFlags.since, exportFlags.until)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	svc, closeDB, err := openService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	outDir := exportFlags.outDir
	if outDir == "" {
		outDir = cfg.Export.OutputDir
	}
	lang := exportFlags.lang
	if lang == "" {
		lang = cfg.Export.DefaultLanguage
	}

	result, err := svc.ExportToDir(ctx, outDir, core.ExportRequest{
		Profile:  exportFlags.profile,
		Language: lang,
		Filter:   filter,
	})
	if err != nil {
		slog.Error("export failed", "profile", exportFlags.profile, "error", err)
		return errors.New(core.FormatUserError(err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", result.Rows, result.Path)
	return nil
}
