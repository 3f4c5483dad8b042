package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"coin-insights/internal/errs"
	"coin-insights/internal/market"
)

// RangeRequest asks for a coin's rows between two inclusive dates plus a forecast.
type RangeRequest struct {
	CoinName  string `json:"coin_name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Validate checks presence and format of every field.
func (r RangeRequest) Validate() error {
	_, _, err := r.bounds()
	return err
}

func (r RangeRequest) bounds() (time.Time, time.Time, error) {
	if strings.TrimSpace(r.CoinName) == "" {
		return time.Time{}, time.Time{}, errs.Required("coin_name")
	}
	from, err := requiredDate("start_date", r.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := requiredDate("end_date", r.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, &errs.ValidationError{Field: "end_date", Message: "must not precede start_date"}
	}
	return from, to, nil
}

// SnapshotRequest asks for every coin's market cap on one date.
type SnapshotRequest struct {
	Date string `json:"date"`
}

// Validate checks the date.
func (r SnapshotRequest) Validate() error {
	_, err := requiredDate("date", r.Date)
	return err
}

// YearRequest scopes a query to one calendar year.
type YearRequest struct {
	Year Year `json:"year"`
}

// Validate checks the year.
func (r YearRequest) Validate() error {
	if r.Year == 0 {
		return errs.Required("year")
	}
	if r.Year < 1 || r.Year > 9999 {
		return &errs.ValidationError{Field: "year", Message: fmt.Sprintf("%d is out of range", r.Year)}
	}
	return nil
}

// Year is a calendar year that decodes from a JSON number or a numeric string.
type Year int

// UnmarshalJSON accepts 2024, 2024.0 and "2024". Fractional years are rejected.
func (y *Year) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*y = 0
		return nil
	}
	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	} else {
		raw = string(data)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*y = 0
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(v, 0) || v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return &errs.ValidationError{Field: "year", Message: fmt.Sprintf("%q is not a year", raw)}
	}
	*y = Year(int(v))
	return nil
}

func requiredDate(field, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, errs.Required(field)
	}
	t, err := market.ParseDate(value)
	if err != nil {
		return time.Time{}, &errs.ValidationError{Field: field, Message: fmt.Sprintf("%q is not a YYYY-MM-DD date", value)}
	}
	return t, nil
}
