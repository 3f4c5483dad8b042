// Package source reads raw price rows from files and canonicalises them into a market table.
package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"coin-insights/internal/market"
)

// Columns are the header names a price file must carry, in export order.
var Columns = []string{"coin_name", "date", "price", "total_volume", "market_cap"}

// CSVSource re-reads a CSV price file on every Load.
type CSVSource struct {
	path   string
	logger zerolog.Logger
}

// NewCSVSource reads from path.
func NewCSVSource(path string, logger zerolog.Logger) *CSVSource {
	return &CSVSource{
		path:   path,
		logger: logger.With().Str("component", "csv_source").Str("path", path).Logger(),
	}
}

// Load parses the file into a canonical table.
func (s *CSVSource) Load(ctx context.Context) (*market.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open price file: %w", err)
	}
	defer f.Close()

	rows, skipped, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if skipped > 0 {
		s.logger.Debug().Int("sentinel_dates", skipped).Msg("rows with missing or invalid dates")
	}
	return market.NewTable(rows), nil
}

// ReadCSV decodes price rows from a headed CSV stream. Columns may appear in any order and
// extra columns are ignored. Empty or null numbers become 0; a missing or unparsable date
// becomes the sentinel date. The second result counts sentinel-dated rows.
func ReadCSV(r io.Reader) ([]market.PricePoint, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	index, err := columnIndex(header)
	if err != nil {
		return nil, 0, err
	}

	var (
		rows     []market.PricePoint
		sentinel int
	)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("line %d: %w", line, err)
		}

		row, err := parseRecord(record, index)
		if err != nil {
			return nil, 0, fmt.Errorf("line %d: %w", line, err)
		}
		if !row.HasValidDate() {
			sentinel++
		}
		rows = append(rows, row)
	}
	return rows, sentinel, nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, col := range Columns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}
	return index, nil
}

func parseRecord(record []string, index map[string]int) (market.PricePoint, error) {
	field := func(col string) string {
		i := index[col]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	row := market.PricePoint{CoinName: field("coin_name"), Date: market.Sentinel}
	if d, err := market.ParseDate(field("date")); err == nil {
		row.Date = d
	}

	var err error
	if row.Price, err = number(field("price")); err != nil {
		return row, fmt.Errorf("price: %w", err)
	}
	if row.TotalVolume, err = number(field("total_volume")); err != nil {
		return row, fmt.Errorf("total_volume: %w", err)
	}
	if row.MarketCap, err = number(field("market_cap")); err != nil {
		return row, fmt.Errorf("market_cap: %w", err)
	}
	return market.Canonicalize(row), nil
}

func number(raw string) (float64, error) {
	switch strings.ToLower(raw) {
	case "", "null", "nan", "none":
		return 0, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", raw)
	}
	return d.InexactFloat64(), nil
}

// WriteCSV writes rows with the standard header.
func WriteCSV(w io.Writer, rows []market.PricePoint) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Columns); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.CoinName,
			row.Date.Format(market.DateLayout),
			decimal.NewFromFloat(row.Price).String(),
			decimal.NewFromFloat(row.TotalVolume).String(),
			decimal.NewFromFloat(row.MarketCap).String(),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
