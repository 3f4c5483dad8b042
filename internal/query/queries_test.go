package query

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin-insights/internal/analytics"
	"coin-insights/internal/errs"
	"coin-insights/internal/market"
)

var day0 = time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)

func daily(coin string, volume, cap float64, prices ...float64) []market.PricePoint {
	rows := make([]market.PricePoint, len(prices))
	for i, p := range prices {
		rows[i] = market.PricePoint{CoinName: coin, Date: day0.AddDate(0, 0, i), Price: p, TotalVolume: volume, MarketCap: cap}
	}
	return rows
}

func fixture() *market.Table {
	var rows []market.PricePoint
	rows = append(rows, daily("btc", 500, 1000, 100, 102, 101, 104, 103, 106, 105, 108, 107, 110)...)
	rows = append(rows, daily("ETH", 300, 600, 10, 10.5, 10.2, 10.4, 10.1, 10.6, 10.3)...)
	rows = append(rows, daily("DOGE", 50, 0, 0.1, 0.11, 0.12)...)
	return market.NewTable(rows)
}

func TestSummarize(t *testing.T) {
	s := Summarize(market.NewTable(daily("A", 0, 0, 1, 3)))
	assert.Equal(t, Summary{TotalCryptos: 1, AveragePrice: 2}, s)
	assert.Equal(t, Summary{}, Summarize(market.NewTable(nil)))
	assert.Equal(t, []string{"BTC", "DOGE", "ETH"}, Names(fixture()))
}

func TestPriceRange(t *testing.T) {
	res, err := PriceRange(fixture(), RangeRequest{CoinName: "btc", StartDate: "2023-03-01", EndDate: "2023-03-10"})
	require.NoError(t, err)

	assert.Equal(t, "BTC", res.Summary.CoinName)
	assert.Equal(t, 100.0, res.Summary.InitialPrice)
	assert.Equal(t, 110.0, res.Summary.FinalPrice)
	require.NotNil(t, res.Summary.PriceChangePercentage)
	assert.InDelta(t, 10.0, *res.Summary.PriceChangePercentage, 1e-9)
	assert.Len(t, res.Summary.PredictedPrices, analytics.DefaultHorizon)
	require.Len(t, res.Data, 10)
	require.NotNil(t, res.Data[0].VolumeMarketCapRatio)
	assert.InDelta(t, 0.5, *res.Data[0].VolumeMarketCapRatio, 1e-12)
	assert.Equal(t, "2023-03-01", res.Data[0].Date)

	again, err := PriceRange(fixture(), RangeRequest{CoinName: "BTC", StartDate: "2023-03-01", EndDate: "2023-03-10"})
	require.NoError(t, err)
	assert.Equal(t, res.Summary.PredictedPrices, again.Summary.PredictedPrices)
}

func TestPriceRangeErrors(t *testing.T) {
	table := fixture()

	_, err := PriceRange(table, RangeRequest{CoinName: "XRP", StartDate: "2023-03-01", EndDate: "2023-03-10"})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = PriceRange(table, RangeRequest{CoinName: "DOGE", StartDate: "2023-03-01", EndDate: "2023-03-10"})
	assert.ErrorIs(t, err, errs.ErrInsufficientData)

	_, err = PriceRange(table, RangeRequest{StartDate: "2023-03-01", EndDate: "2023-03-10"})
	var verr *errs.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "coin_name", verr.Field)

	_, err = PriceRange(table, RangeRequest{CoinName: "BTC", StartDate: "2023-03-10", EndDate: "2023-03-01"})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = PriceRange(table, RangeRequest{CoinName: "BTC", StartDate: "03/01/2023", EndDate: "2023-03-10"})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestRangeRowRatioIsNullWhenMarketCapZero(t *testing.T) {
	row := toRow(market.PricePoint{CoinName: "DOGE", Date: day0, Price: 1, TotalVolume: 5})
	assert.Nil(t, row.VolumeMarketCapRatio)

	raw, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"volume_market_cap_ratio":null`)
}

func TestSnapshot(t *testing.T) {
	res, err := Snapshot(fixture(), SnapshotRequest{Date: "2023-03-02"})
	require.NoError(t, err)
	assert.Equal(t, "2023-03-02", res.Date)
	assert.Equal(t, []MarketCap{
		{CoinName: "DOGE", MarketCap: 0},
		{CoinName: "ETH", MarketCap: 600},
		{CoinName: "BTC", MarketCap: 1000},
	}, res.Data)

	_, err = Snapshot(fixture(), SnapshotRequest{Date: "2022-01-01"})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = Snapshot(fixture(), SnapshotRequest{})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestYearDecoding(t *testing.T) {
	for _, body := range []string{`{"year":2023}`, `{"year":"2023"}`, `{"year":2023.0}`, `{"year":"2023.0"}`} {
		var req YearRequest
		require.NoError(t, json.Unmarshal([]byte(body), &req), body)
		assert.Equal(t, Year(2023), req.Year)
		assert.NoError(t, req.Validate())
	}

	var req YearRequest
	require.NoError(t, json.Unmarshal([]byte(`{}`), &req))
	assert.ErrorIs(t, req.Validate(), errs.ErrValidation)

	for _, body := range []string{`{"year":"soon"}`, `{"year":2023.5}`, `{"year":"NaN"}`, `{"year":1e40}`} {
		err := json.Unmarshal([]byte(body), &req)
		assert.ErrorIs(t, err, errs.ErrValidation, body)
	}
}

func TestVolatilityAndYearStats(t *testing.T) {
	vol, err := Volatility(fixture(), YearRequest{Year: 2023})
	require.NoError(t, err)
	assert.Equal(t, 2023, vol.Year)
	assert.Equal(t, "BTC", vol.MostVolatileCoin.CoinName)
	assert.Equal(t, "DOGE", vol.MostStableCoin.CoinName)
	assert.Len(t, vol.VolatileCoinData, 10)
	assert.Len(t, vol.StableCoinData, 3)

	stats, err := YearStats(fixture(), YearRequest{Year: 2023})
	require.NoError(t, err)
	assert.Equal(t, "DOGE", stats.LowestStdDevCoin.CoinName)
	require.Len(t, stats.TopCryptos, 1)
	assert.Equal(t, "BTC", stats.TopCryptos[0].CoinName)
	assert.Len(t, stats.TopCryptos[0].Data, 10)

	_, err = Volatility(fixture(), YearRequest{Year: 2019})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = MostInteresting(fixture(), YearRequest{Year: 2023})
	assert.ErrorIs(t, err, errs.ErrComputation, "three coins cannot fill four clusters")
}

type failingSource struct{}

func (failingSource) Load(context.Context) (*market.Table, error) {
	return nil, errors.New("connection refused")
}

func TestEngineWrapsSourceErrors(t *testing.T) {
	engine := NewEngine(failingSource{}, zerolog.Nop())
	_, err := engine.Summary(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load price table")

	_, err = engine.Range(context.Background(), RangeRequest{})
	assert.ErrorIs(t, err, errs.ErrValidation, "validation runs before the source is read")
}

func TestEngineRange(t *testing.T) {
	engine := NewEngine(StaticSource{Table: fixture()}, zerolog.Nop())
	_, err := engine.Range(context.Background(), RangeRequest{CoinName: "NOPE", StartDate: "2023-03-01", EndDate: "2023-03-02"})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	names, err := engine.Names(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC", "DOGE", "ETH"}, names)
}
