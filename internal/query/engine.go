// Package query answers structured price questions over a freshly loaded market table.
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"coin-insights/internal/market"
)

// Source supplies the canonical price table. Implementations read their backing store on every call.
type Source interface {
	Load(ctx context.Context) (*market.Table, error)
}

// Engine loads the table once per operation and runs the matching query on it.
type Engine struct {
	source Source
	logger zerolog.Logger
}

// NewEngine wires an engine to its data source.
func NewEngine(source Source, logger zerolog.Logger) *Engine {
	return &Engine{
		source: source,
		logger: logger.With().Str("component", "query").Logger(),
	}
}

// Table loads the current price table.
func (e *Engine) Table(ctx context.Context) (*market.Table, error) {
	started := time.Now()
	table, err := e.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load price table: %w", err)
	}
	e.logger.Debug().Int("rows", table.Len()).Dur("elapsed", time.Since(started)).Msg("price table loaded")
	return table, nil
}

// Summary counts coins and averages prices.
func (e *Engine) Summary(ctx context.Context) (Summary, error) {
	t, err := e.Table(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(t), nil
}

// Names lists every coin symbol.
func (e *Engine) Names(ctx context.Context) ([]string, error) {
	t, err := e.Table(ctx)
	if err != nil {
		return nil, err
	}
	return Names(t), nil
}

// Range runs a RangeRequest.
func (e *Engine) Range(ctx context.Context, req RangeRequest) (RangeResult, error) {
	if err := req.Validate(); err != nil {
		return RangeResult{}, err
	}
	t, err := e.Table(ctx)
	if err != nil {
		return RangeResult{}, err
	}
	return PriceRange(t, req)
}

// Snapshot runs a SnapshotRequest.
func (e *Engine) Snapshot(ctx context.Context, req SnapshotRequest) (SnapshotResult, error) {
	if err := req.Validate(); err != nil {
		return SnapshotResult{}, err
	}
	t, err := e.Table(ctx)
	if err != nil {
		return SnapshotResult{}, err
	}
	return Snapshot(t, req)
}

// MostInteresting runs the cluster selector for a year.
func (e *Engine) MostInteresting(ctx context.Context, req YearRequest) (MostInterestingResult, error) {
	if err := req.Validate(); err != nil {
		return MostInterestingResult{}, err
	}
	t, err := e.Table(ctx)
	if err != nil {
		return MostInterestingResult{}, err
	}
	return MostInteresting(t, req)
}

// YearStats runs the stability and mean-filter report for a year.
func (e *Engine) YearStats(ctx context.Context, req YearRequest) (YearStatsResult, error) {
	if err := req.Validate(); err != nil {
		return YearStatsResult{}, err
	}
	t, err := e.Table(ctx)
	if err != nil {
		return YearStatsResult{}, err
	}
	return YearStats(t, req)
}

// Volatility runs the volatility ranking for a year.
func (e *Engine) Volatility(ctx context.Context, req YearRequest) (VolatilityResult, error) {
	if err := req.Validate(); err != nil {
		return VolatilityResult{}, err
	}
	t, err := e.Table(ctx)
	if err != nil {
		return VolatilityResult{}, err
	}
	return Volatility(t, req)
}

// StaticSource serves a fixed table. It backs tests and one-shot CLI runs on preloaded data.
type StaticSource struct {
	Table *market.Table
}

// Load returns the wrapped table.
func (s StaticSource) Load(context.Context) (*market.Table, error) {
	if s.Table == nil {
		return market.NewTable(nil), nil
	}
	return s.Table, nil
}

var _ Source = StaticSource{}
