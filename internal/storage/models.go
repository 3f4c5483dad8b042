package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"coin-insights/internal/market"
)

// PriceRecord is a coin_prices row as stored. Numeric columns are NUMERIC and may be NULL.
type PriceRecord struct {
	CoinName    string
	Date        sql.NullTime
	Price       decimal.NullDecimal
	TotalVolume decimal.NullDecimal
	MarketCap   decimal.NullDecimal
}

// PricePoint canonicalises the record: NULL numbers become 0 and a NULL date the sentinel.
func (r PriceRecord) PricePoint() market.PricePoint {
	p := market.PricePoint{
		CoinName:    r.CoinName,
		Price:       orZero(r.Price),
		TotalVolume: orZero(r.TotalVolume),
		MarketCap:   orZero(r.MarketCap),
		Date:        market.Sentinel,
	}
	if r.Date.Valid {
		p.Date = r.Date.Time
	}
	return market.Canonicalize(p)
}

func orZero(d decimal.NullDecimal) float64 {
	if !d.Valid {
		return 0
	}
	return d.Decimal.InexactFloat64()
}

// copyRow renders a point for CopyFrom. Sentinel dates are stored as NULL.
func copyRow(p market.PricePoint) []any {
	var date any
	if p.HasValidDate() && !p.Date.IsZero() {
		date = market.Day(p.Date)
	}
	return []any{market.NormalizeCoin(p.CoinName), date, p.Price, p.TotalVolume, p.MarketCap}
}

// ImportSummary reports what an import wrote.
type ImportSummary struct {
	Rows     int64
	Replaced int64
	Took     time.Duration
}

func (s ImportSummary) String() string {
	return fmt.Sprintf("%d rows imported (%d replaced) in %s", s.Rows, s.Replaced, s.Took.Round(time.Millisecond))
}
