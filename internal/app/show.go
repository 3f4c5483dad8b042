package app

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"coin-insights/internal/errs"
	"coin-insights/internal/market"
)

// Show prints a coin's most recent rows, or the table summary when no coin is given.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	engine, data, err := a.newEngine(ctx)
	if err != nil {
		return err
	}
	defer data.close()

	t, err := engine.Table(ctx)
	if err != nil {
		return err
	}

	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	defer writer.Flush()

	if opts.Coin == "" {
		fmt.Fprintln(writer, "Coin\tRows\tLatest\tPrice")
		for _, coin := range t.Coins() {
			latest, _ := t.Latest(coin)
			fmt.Fprintf(writer, "%s\t%d\t%s\t%s\n", coin, len(t.Series(coin)), formatDate(latest), formatMoney(latest.Price))
		}
		return nil
	}

	coin := market.NormalizeCoin(opts.Coin)
	rows := t.Series(coin)
	if len(rows) == 0 {
		return fmt.Errorf("%w: no rows for %s", errs.ErrNotFound, coin)
	}
	if opts.Limit > 0 && len(rows) > opts.Limit {
		rows = rows[len(rows)-opts.Limit:]
	}

	fmt.Fprintln(writer, "Date\tPrice\tVolume\tMarket cap\tVol/Cap")
	for _, row := range rows {
		ratio := "-"
		if r := row.VolumeMarketCapRatio(); r != nil {
			ratio = decimal.NewFromFloat(*r).StringFixed(4)
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n",
			formatDate(row),
			formatMoney(row.Price),
			decimal.NewFromFloat(row.TotalVolume).StringFixed(0),
			decimal.NewFromFloat(row.MarketCap).StringFixed(0),
			ratio,
		)
	}
	return nil
}

func formatDate(p market.PricePoint) string {
	if !p.HasValidDate() {
		return "unknown"
	}
	return p.Date.Format(market.DateLayout)
}

func formatMoney(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
