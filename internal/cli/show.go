package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"coin-insights/internal/app"
)

var (
	showCoin  string
	showLimit int
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display a coin's recent rows or a per-coin overview",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}

		return getApp().Show(cmd.Context(), app.ShowOptions{
			Coin:  showCoin,
			Limit: showLimit,
		})
	},
}

func init() {
	showCmd.Flags().StringVar(&showCoin, "coin", "", "Coin symbol; omit for an overview of every coin")
	showCmd.Flags().IntVar(&showLimit, "limit", 20, "Number of rows to display")
}
