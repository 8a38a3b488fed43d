package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/JonMunkholm/formlog/internal/core"
	"github.com/JonMunkholm/formlog/internal/i18n"
	"github.com/spf13/cobra"
)

var profilesFlags struct {
	file   string
	labels string
	lang   string
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List and validate export profiles",
	Long: `Load export profiles, validate them and list their columns.

With --file the given profile file is checked without touching the
environment or the database, which makes it usable in CI.`,
	Args: cobra.NoArgs,
	RunE: runProfiles,
}

func init() {
	rootCmd.AddCommand(profilesCmd)

	profilesCmd.Flags().StringVarP(&profilesFlags.file, "file", "f", "", "profile file (default: EXPORT_PROFILES_FILE)")
	profilesCmd.Flags().StringVar(&profilesFlags.labels, "labels", "", "label file (default: EXPORT_LABELS_FILE)")
	profilesCmd.Flags().StringVar(&profilesFlags.lang, "lang", i18n.DefaultLanguage, "header language")
}

func runProfiles(cmd *cobra.Command, _ []string) error {
	profileFile, labelFile := profilesFlags.file, profilesFlags.labels
	if profileFile == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		profileFile = cfg.Export.ProfilesFile
		if labelFile == "" {
			labelFile = cfg.Export.LabelsFile
		}
	}

	profiles, err := core.LoadProfiles(profileFile)
	if err != nil {
		return err
	}
	catalog, err := i18n.Load(labelFile, i18n.DefaultLanguage)
	if err != nil {
		return err
	}

	// Exporters need no store; the service only resolves profiles here.
	svc := core.NewService(nil, core.WithProfiles(profiles), core.WithLabels(catalog))

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tFORMAT\tFILE\tCOLUMNS")
	fmt.Fprintln(w, "----\t------\t----\t-------")

	for _, name := range profiles.Names() {
		exp, _, err := svc.Exporter(name, profilesFlags.lang)
		if err != nil {
			return err
		}
		headers, err := exp.Headers()
		if err != nil {
			return fmt.Errorf("export profile %q: %w", name, err)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, exp.Format().Name(), exp.OutputFilename(), strings.Join(headers, ", "))
	}

	return w.Flush()
}
