package app

import (
	"context"
	"fmt"
	"time"

	"coin-insights/internal/nlp"
)

// Train fits the intent classifier on the training file and writes the artifact.
func (a *App) Train(ctx context.Context, opts TrainOptions) error {
	if opts.DataPath == "" {
		opts.DataPath = a.Config.Model.TrainingDataPath
	}
	if opts.ModelPath == "" {
		opts.ModelPath = a.Config.Model.Path
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	examples, err := nlp.LoadTrainingFile(opts.DataPath)
	if err != nil {
		return err
	}

	trainOpts := nlp.DefaultTrainOptions()
	if a.Config.Model.MaxFeatures > 0 {
		trainOpts.MaxFeatures = a.Config.Model.MaxFeatures
	}

	start := time.Now()
	classifier, err := nlp.Train(examples, trainOpts)
	if err != nil {
		return fmt.Errorf("train intent classifier: %w", err)
	}
	if err := classifier.SaveFile(opts.ModelPath); err != nil {
		return err
	}

	a.Logger.Info().
		Int("examples", len(examples)).
		Strs("classes", classifier.Classes()).
		Dur("took", time.Since(start)).
		Str("path", opts.ModelPath).
		Msg("intent classifier trained")
	fmt.Fprintf(a.Out, "trained %d classes on %d examples -> %s\n", len(classifier.Classes()), len(examples), opts.ModelPath)
	return nil
}
