package query

import (
	"context"
	"fmt"

	"coin-insights/internal/analytics"
	"coin-insights/internal/errs"
	"coin-insights/internal/market"
)

// DefaultWindowDays is the look-back used for chat recommendations.
const DefaultWindowDays = 7

// TopPick is one selector pick enriched with the coin's latest price.
type TopPick struct {
	CoinName       string
	Price          float64
	PerformancePct float64
	Stability      *float64
	ClusterID      int
}

// TopPicksReport lists the selector picks for a year.
type TopPicksReport struct {
	Year  int
	Picks []TopPick
}

// VolatilityReport names the year's most volatile and most stable coins.
type VolatilityReport struct {
	Year         int
	MostVolatile analytics.CoinDispersion
	MostStable   analytics.CoinDispersion
}

// Facade exposes the analytics the conversational path needs as plain method calls.
type Facade struct {
	engine      *Engine
	defaultYear int
	windowDays  int
}

// NewFacade builds a facade. A defaultYear of 0 means the latest year present in the data.
func NewFacade(engine *Engine, defaultYear, windowDays int) *Facade {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &Facade{engine: engine, defaultYear: defaultYear, windowDays: windowDays}
}

// Names lists every coin symbol.
func (f *Facade) Names(ctx context.Context) ([]string, error) {
	return f.engine.Names(ctx)
}

// CurrentPrice returns the price on the coin's most recent date.
func (f *Facade) CurrentPrice(ctx context.Context, coin string) (float64, error) {
	t, err := f.engine.Table(ctx)
	if err != nil {
		return 0, err
	}
	latest, ok := t.Latest(coin)
	if !ok {
		return 0, fmt.Errorf("%w: no data found for %s", errs.ErrNotFound, market.NormalizeCoin(coin))
	}
	return latest.Price, nil
}

// Recommend forecasts the window ending at the coin's last available date and applies the
// buy/sell/hold policy.
func (f *Facade) Recommend(ctx context.Context, coin string) (analytics.Recommendation, error) {
	t, err := f.engine.Table(ctx)
	if err != nil {
		return analytics.Recommendation{}, err
	}
	coin = market.NormalizeCoin(coin)
	latest, ok := t.Latest(coin)
	if !ok {
		return analytics.Recommendation{}, fmt.Errorf("%w: no data found for %s", errs.ErrNotFound, coin)
	}

	window := t.Range(coin, latest.Date.AddDate(0, 0, -f.windowDays), latest.Date)
	forecast, err := analytics.Forecast(coin, window, analytics.DefaultOrder, analytics.DefaultHorizon)
	if err != nil {
		return analytics.Recommendation{}, err
	}
	return analytics.Recommend(forecast)
}

// TopPicks runs the cluster selector on the default year.
func (f *Facade) TopPicks(ctx context.Context) (TopPicksReport, error) {
	t, err := f.engine.Table(ctx)
	if err != nil {
		return TopPicksReport{}, err
	}
	year, err := f.resolveYear(t)
	if err != nil {
		return TopPicksReport{}, err
	}
	selection, err := analytics.SelectInteresting(t.Year(year))
	if err != nil {
		return TopPicksReport{}, err
	}

	report := TopPicksReport{Year: year, Picks: make([]TopPick, 0, len(selection.Picks))}
	for _, pick := range selection.Picks {
		latest, _ := t.Latest(pick.Metrics.CoinName)
		report.Picks = append(report.Picks, TopPick{
			CoinName:       pick.Metrics.CoinName,
			Price:          latest.Price,
			PerformancePct: pick.Metrics.PriceChangePct,
			Stability:      pick.Metrics.Stability(),
			ClusterID:      pick.ClusterID,
		})
	}
	return report, nil
}

// Volatility ranks the default year.
func (f *Facade) Volatility(ctx context.Context) (VolatilityReport, error) {
	t, err := f.engine.Table(ctx)
	if err != nil {
		return VolatilityReport{}, err
	}
	year, err := f.resolveYear(t)
	if err != nil {
		return VolatilityReport{}, err
	}
	ranking, err := analytics.RankVolatility(t.Year(year))
	if err != nil {
		return VolatilityReport{}, err
	}
	return VolatilityReport{Year: year, MostVolatile: ranking.MostVolatile, MostStable: ranking.MostStable}, nil
}

func (f *Facade) resolveYear(t *market.Table) (int, error) {
	if f.defaultYear > 0 {
		return f.defaultYear, nil
	}
	year, ok := t.LatestYear()
	if !ok {
		return 0, fmt.Errorf("%w: no dated rows available", errs.ErrNotFound)
	}
	return year, nil
}
