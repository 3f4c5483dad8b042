package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"coin-insights/internal/analytics"
	"coin-insights/internal/errs"
	"coin-insights/internal/market"
	"coin-insights/internal/source"
)

// Export writes a coin's rows within a date range as CSV and/or a PNG chart with the forecast.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}
	if opts.Coin == "" {
		return errs.Required("coin")
	}

	engine, data, err := a.newEngine(ctx)
	if err != nil {
		return err
	}
	defer data.close()

	t, err := engine.Table(ctx)
	if err != nil {
		return err
	}

	coin := market.NormalizeCoin(opts.Coin)
	from, to, err := exportWindow(t, coin, opts)
	if err != nil {
		return err
	}
	rows := t.Range(coin, from, to)
	if len(rows) == 0 {
		return fmt.Errorf("%w: no data found for %s in the given date range", errs.ErrNotFound, coin)
	}
	a.Logger.Info().Str("coin", coin).Int("rows", len(rows)).Msg("exporting price range")

	if opts.CSVPath != "" {
		if err := writeRowsCSV(opts.CSVPath, rows); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		var predicted []float64
		forecast, err := analytics.Forecast(coin, rows, analytics.DefaultOrder, analytics.DefaultHorizon)
		if err != nil {
			a.Logger.Warn().Err(err).Str("coin", coin).Msg("forecast unavailable; chart shows history only")
		} else {
			predicted = forecast.HorizonPrices
		}
		if err := a.writeRangePNG(opts.PNGPath, coin, rows, predicted); err != nil {
			return err
		}
	}

	return nil
}

// exportWindow defaults an open end to the coin's latest date and an open start to its first.
func exportWindow(t *market.Table, coin string, opts ExportOptions) (time.Time, time.Time, error) {
	series := t.Series(coin)
	if len(series) == 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: no rows for %s", errs.ErrNotFound, coin)
	}
	from, to := series[0].Date, series[len(series)-1].Date

	if opts.From != "" {
		parsed, err := market.ParseDate(opts.From)
		if err != nil {
			return time.Time{}, time.Time{}, &errs.ValidationError{Field: "from", Message: "must be a YYYY-MM-DD date"}
		}
		from = parsed
	}
	if opts.To != "" {
		parsed, err := market.ParseDate(opts.To)
		if err != nil {
			return time.Time{}, time.Time{}, &errs.ValidationError{Field: "to", Message: "must be a YYYY-MM-DD date"}
		}
		to = parsed
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, &errs.ValidationError{Field: "to", Message: "must not precede from"}
	}
	return from, to, nil
}

func writeRowsCSV(path string, rows []market.PricePoint) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := source.WriteCSV(file, rows); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func (a *App) writeRangePNG(path, coin string, rows []market.PricePoint, predicted []float64) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]time.Time, len(rows))
	prices := make([]float64, len(rows))
	for i, row := range rows {
		x[i] = row.Date
		prices[i] = row.Price
	}

	priceFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.2f")
	}
	graph := chart.Chart{
		Title:  coin,
		Width:  a.Config.Export.Width,
		Height: a.Config.Export.Height,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Price (USD)",
			ValueFormatter: priceFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Price",
				XValues: x,
				YValues: prices,
			},
		},
	}

	if len(predicted) > 0 {
		last := rows[len(rows)-1]
		fx := []time.Time{last.Date}
		fy := []float64{last.Price}
		for i, p := range predicted {
			fx = append(fx, last.Date.AddDate(0, 0, i+1))
			fy = append(fy, p)
		}
		graph.Series = append(graph.Series, chart.TimeSeries{
			Name:    "Forecast",
			XValues: fx,
			YValues: fy,
			Style: chart.Style{
				StrokeColor:     chart.ColorRed,
				StrokeDashArray: []float64{5, 5},
			},
		})
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := graph.Render(chart.PNG, file); err != nil {
		file.Close()
		return fmt.Errorf("render chart: %w", err)
	}
	return file.Close()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
