package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"coin-insights/internal/market"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	selectPricesSQL = `SELECT coin_name, date, price, total_volume, market_cap FROM %s ORDER BY coin_name, date;`

	countPricesSQL = `SELECT COUNT(*) FROM %s;`

	deleteCoinsSQL = `DELETE FROM %s WHERE coin_name = ANY($1);`

	tryAdvisoryLockSQL = `SELECT pg_try_advisory_lock($1);`
	advisoryUnlockSQL  = `SELECT pg_advisory_unlock($1);`
)

var priceColumns = []string{"coin_name", "date", "price", "total_volume", "market_cap"}

// AdvisoryLocker exposes advisory lock helpers.
type AdvisoryLocker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(), acquired bool, err error)
}

// Store reads and bulk-loads the coin price table.
type Store struct {
	pool  *pgxpool.Pool
	table pgx.Identifier
}

// NewStore wires a pgx pool into a Store over the named table (optionally schema-qualified).
func NewStore(pool *pgxpool.Pool, table string) *Store {
	if table == "" {
		table = "coin_prices"
	}
	return &Store{pool: pool, table: pgx.Identifier(strings.Split(table, "."))}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

func (s *Store) sql(format string) string {
	return fmt.Sprintf(format, s.table.Sanitize())
}

// Load reads the whole price table into a canonical market table.
func (s *Store) Load(ctx context.Context) (*market.Table, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, s.sql(selectPricesSQL))
	if err != nil {
		return nil, fmt.Errorf("query coin prices: %w", err)
	}
	defer rows.Close()

	points := make([]market.PricePoint, 0)
	for rows.Next() {
		var rec PriceRecord
		if err := rows.Scan(&rec.CoinName, &rec.Date, &rec.Price, &rec.TotalVolume, &rec.MarketCap); err != nil {
			return nil, fmt.Errorf("scan coin price: %w", err)
		}
		points = append(points, rec.PricePoint())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coin prices: %w", err)
	}
	return market.NewTable(points), nil
}

// CountRows counts stored price rows.
func (s *Store) CountRows(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if err := pool.QueryRow(ctx, s.sql(countPricesSQL)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count coin prices: %w", err)
	}
	return count, nil
}

// Import bulk-loads rows with COPY inside one transaction. With replace set, existing rows of
// every imported coin are deleted first so a re-import does not duplicate history.
func (s *Store) Import(ctx context.Context, points []market.PricePoint, replace bool) (ImportSummary, error) {
	pool, err := s.getPool()
	if err != nil {
		return ImportSummary{}, err
	}
	started := time.Now()

	tx, err := pool.Begin(ctx)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var summary ImportSummary
	if replace {
		coins := distinctCoins(points)
		tag, err := tx.Exec(ctx, s.sql(deleteCoinsSQL), coins)
		if err != nil {
			return ImportSummary{}, fmt.Errorf("delete replaced coins: %w", err)
		}
		summary.Replaced = tag.RowsAffected()
	}

	copied, err := tx.CopyFrom(ctx, s.table, priceColumns, pgx.CopyFromSlice(len(points), func(i int) ([]any, error) {
		return copyRow(points[i]), nil
	}))
	if err != nil {
		return ImportSummary{}, fmt.Errorf("copy coin prices: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return ImportSummary{}, fmt.Errorf("commit import: %w", err)
	}

	summary.Rows = copied
	summary.Took = time.Since(started)
	return summary, nil
}

// TryAdvisoryLock attempts to acquire a postgres advisory lock and returns a release func.
func (s *Store) TryAdvisoryLock(ctx context.Context, key int64) (func(), bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, false, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, tryAdvisoryLockSQL, key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	unlock := func() {
		ctxUnlock, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, _ = conn.Exec(ctxUnlock, advisoryUnlockSQL, key)
		conn.Release()
	}
	return unlock, true, nil
}

func distinctCoins(points []market.PricePoint) []string {
	seen := make(map[string]bool)
	coins := make([]string, 0)
	for _, p := range points {
		coin := market.NormalizeCoin(p.CoinName)
		if !seen[coin] {
			seen[coin] = true
			coins = append(coins, coin)
		}
	}
	return coins
}

var _ AdvisoryLocker = (*Store)(nil)
