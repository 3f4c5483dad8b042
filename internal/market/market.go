// Package market holds the canonical price table every analytics query reads from.
package market

import (
	"math"
	"sort"
	"strings"
	"time"
)

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"

// Sentinel is the date assigned to rows whose date was missing or unparsable.
var Sentinel = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// PricePoint is one daily observation of a coin.
type PricePoint struct {
	CoinName    string
	Date        time.Time
	Price       float64
	TotalVolume float64
	MarketCap   float64
}

// HasValidDate reports whether the row carries a real date rather than the sentinel.
func (p PricePoint) HasValidDate() bool {
	return !p.Date.Equal(Sentinel)
}

// VolumeMarketCapRatio returns total_volume / market_cap, or nil when market cap is zero.
func (p PricePoint) VolumeMarketCapRatio() *float64 {
	if p.MarketCap == 0 {
		return nil
	}
	ratio := p.TotalVolume / p.MarketCap
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return nil
	}
	return &ratio
}

// NormalizeCoin canonicalises a coin symbol for comparison and lookup.
func NormalizeCoin(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// ParseDate parses a YYYY-MM-DD date (or an RFC3339 timestamp) into a UTC calendar date.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Canonicalize applies the source normalisation rules to a raw row.
func Canonicalize(p PricePoint) PricePoint {
	p.CoinName = NormalizeCoin(p.CoinName)
	if p.Date.IsZero() {
		p.Date = Sentinel
	} else {
		p.Date = Day(p.Date)
	}
	p.Price = orZero(p.Price)
	p.TotalVolume = orZero(p.TotalVolume)
	p.MarketCap = orZero(p.MarketCap)
	return p
}

func orZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Table is an immutable, canonicalised set of rows ordered by coin then date.
type Table struct {
	rows []PricePoint
}

// NewTable canonicalises rows and orders them by (coin_name, date).
func NewTable(rows []PricePoint) *Table {
	out := make([]PricePoint, len(rows))
	for i, row := range rows {
		out[i] = Canonicalize(row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CoinName != out[j].CoinName {
			return out[i].CoinName < out[j].CoinName
		}
		return out[i].Date.Before(out[j].Date)
	})
	return &Table{rows: out}
}

// Rows returns the underlying rows. Callers must not modify them.
func (t *Table) Rows() []PricePoint {
	return t.rows
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Coins returns the distinct coin symbols in ascending order.
func (t *Table) Coins() []string {
	coins := make([]string, 0)
	for i, row := range t.rows {
		if i == 0 || row.CoinName != t.rows[i-1].CoinName {
			coins = append(coins, row.CoinName)
		}
	}
	return coins
}

// Series returns the date-ordered rows of one coin.
func (t *Table) Series(coin string) []PricePoint {
	coin = NormalizeCoin(coin)
	start := sort.Search(len(t.rows), func(i int) bool { return t.rows[i].CoinName >= coin })
	end := start
	for end < len(t.rows) && t.rows[end].CoinName == coin {
		end++
	}
	return t.rows[start:end]
}

// Range returns a coin's rows with from <= date <= to.
func (t *Table) Range(coin string, from, to time.Time) []PricePoint {
	from, to = Day(from), Day(to)
	var out []PricePoint
	for _, row := range t.Series(coin) {
		if row.Date.Before(from) || row.Date.After(to) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// OnDate returns every row observed on the given calendar date.
func (t *Table) OnDate(date time.Time) []PricePoint {
	date = Day(date)
	var out []PricePoint
	for _, row := range t.rows {
		if row.Date.Equal(date) {
			out = append(out, row)
		}
	}
	return out
}

// Year returns the rows whose calendar year matches, excluding sentinel-dated rows.
func (t *Table) Year(year int) *Table {
	out := make([]PricePoint, 0)
	for _, row := range t.rows {
		if row.HasValidDate() && row.Date.Year() == year {
			out = append(out, row)
		}
	}
	return &Table{rows: out}
}

// Partition groups rows by coin. The returned coin list is in ascending order.
func (t *Table) Partition() ([]string, map[string][]PricePoint) {
	coins := t.Coins()
	groups := make(map[string][]PricePoint, len(coins))
	for _, coin := range coins {
		groups[coin] = t.Series(coin)
	}
	return coins, groups
}

// Latest returns the most recent row of a coin.
func (t *Table) Latest(coin string) (PricePoint, bool) {
	series := t.Series(coin)
	if len(series) == 0 {
		return PricePoint{}, false
	}
	return series[len(series)-1], true
}

// LatestYear returns the most recent calendar year with valid-dated rows.
func (t *Table) LatestYear() (int, bool) {
	year, found := 0, false
	for _, row := range t.rows {
		if !row.HasValidDate() {
			continue
		}
		if !found || row.Date.Year() > year {
			year, found = row.Date.Year(), true
		}
	}
	return year, found
}

// Prices extracts the price column of a row slice.
func Prices(rows []PricePoint) []float64 {
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = row.Price
	}
	return out
}
