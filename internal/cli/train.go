package cli

import (
	"github.com/spf13/cobra"

	"coin-insights/internal/app"
)

var (
	trainDataPath  string
	trainModelPath string
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the intent classifier and write the model artifact",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Train(cmd.Context(), app.TrainOptions{
			DataPath:  trainDataPath,
			ModelPath: trainModelPath,
		})
	},
}

func init() {
	trainCmd.Flags().StringVar(&trainDataPath, "data", "", "Training data JSON (defaults to model.training_data_path)")
	trainCmd.Flags().StringVar(&trainModelPath, "out", "", "Artifact path (defaults to model.path)")
}
