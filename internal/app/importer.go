package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"coin-insights/internal/config"
	"coin-insights/internal/market"
	"coin-insights/internal/source"
	"coin-insights/internal/storage"
	"coin-insights/internal/storage/clickhouse"
)

// Import bulk-loads a CSV price file into PostgreSQL or ClickHouse.
func (a *App) Import(ctx context.Context, opts ImportOptions) error {
	if opts.Path == "" {
		opts.Path = a.Config.Data.CSVPath
	}
	target := opts.Target
	if target == "" {
		target = a.Config.Data.Source
	}

	points, sentinels, err := readCSVFile(opts.Path)
	if err != nil {
		return err
	}
	if sentinels > 0 {
		a.Logger.Warn().Int("rows", sentinels).Msg("rows without a valid date are imported with a NULL date")
	}

	switch target {
	case config.SourcePostgres:
		store, closeStore, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		summary, err := store.Import(ctx, points, opts.Replace)
		if err != nil {
			return err
		}
		a.Logger.Info().Int64("rows", summary.Rows).Int64("replaced", summary.Replaced).Msg("postgres import finished")
		fmt.Fprintln(a.Out, summary.String())
	case config.SourceClickHouse:
		if opts.Replace {
			return fmt.Errorf("--replace is not supported for clickhouse; truncate the table instead")
		}
		ch, err := clickhouse.Open(ctx, a.Config.ClickHouse.DSN, a.Config.ClickHouse.Table)
		if err != nil {
			return err
		}
		defer ch.Close()

		start := time.Now()
		if err := ch.Insert(ctx, points); err != nil {
			return err
		}
		summary := storage.ImportSummary{Rows: int64(len(points)), Took: time.Since(start)}
		a.Logger.Info().Int64("rows", summary.Rows).Msg("clickhouse import finished")
		fmt.Fprintln(a.Out, summary.String())
	default:
		return fmt.Errorf("import target must be postgres or clickhouse, got %q", target)
	}
	return nil
}

func readCSVFile(path string) ([]market.PricePoint, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open price file: %w", err)
	}
	defer f.Close()

	points, sentinels, err := source.ReadCSV(f)
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", path, err)
	}
	return points, sentinels, nil
}
