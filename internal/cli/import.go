package cli

import (
	"github.com/spf13/cobra"

	"coin-insights/internal/app"
)

var (
	importPath    string
	importTarget  string
	importReplace bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Bulk-load a CSV price file into PostgreSQL or ClickHouse",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Import(cmd.Context(), app.ImportOptions{
			Path:    importPath,
			Target:  importTarget,
			Replace: importReplace,
		})
	},
}

func init() {
	importCmd.Flags().StringVar(&importPath, "file", "", "CSV file (defaults to data.csv_path)")
	importCmd.Flags().StringVar(&importTarget, "target", "", "postgres or clickhouse (defaults to data.source)")
	importCmd.Flags().BoolVar(&importReplace, "replace", false, "Delete existing rows of the imported coins first (postgres only)")
}
