package cli

import (
	"github.com/spf13/cobra"

	"coin-insights/internal/app"
)

var (
	digestOnce bool
	digestYear int
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Send the volatility and top-picks digest on a schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Digest(cmd.Context(), app.DigestOptions{
			Once: digestOnce,
			Year: digestYear,
		})
	},
}

func init() {
	digestCmd.Flags().BoolVar(&digestOnce, "once", false, "Send one digest and exit")
	digestCmd.Flags().IntVar(&digestYear, "year", 0, "Year to report (defaults to digest.year, then chat.default_year, then the latest year)")
}
