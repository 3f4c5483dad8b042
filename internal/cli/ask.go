package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"coin-insights/internal/app"
)

var (
	askNotify bool
	askYear   int
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the assistant a question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Ask(cmd.Context(), app.AskOptions{
			Question: strings.Join(args, " "),
			Notify:   askNotify,
			Year:     askYear,
		})
	},
}

func init() {
	askCmd.Flags().BoolVar(&askNotify, "notify", false, "Send the reply through the configured notifier")
	askCmd.Flags().IntVar(&askYear, "year", 0, "Year for top picks and volatility (defaults to chat.default_year, then the latest year)")
}
