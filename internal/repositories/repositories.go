package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const defaultTTL = 24 * time.Hour

// table is the shared expiry bookkeeping of a cache table.
type table struct {
	db   *sql.DB
	name string
	ttl  time.Duration
	now  func() time.Time
}

func newTable(db *sql.DB, name string, ttl time.Duration) table {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return table{db: db, name: name, ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

func (t table) expiry() (created, expires time.Time) {
	created = t.now()
	return created, created.Add(t.ttl)
}

func (t table) expired(expires time.Time) bool {
	return !t.now().Before(expires)
}

// Count returns the number of unexpired rows.
func (t table) Count(ctx context.Context) (int, error) {
	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE expires_at > ?", t.name)
	if err := t.db.QueryRowContext(ctx, query, t.now()).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", t.name, err)
	}
	return n, nil
}

// Clear deletes every row and returns how many were removed.
func (t table) Clear(ctx context.Context) (int64, error) {
	result, err := t.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", t.name))
	if err != nil {
		return 0, fmt.Errorf("failed to clear %s: %w", t.name, err)
	}
	return result.RowsAffected()
}

// Purge deletes expired rows and returns how many were removed.
func (t table) Purge(ctx context.Context) (int64, error) {
	result, err := t.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE expires_at <= ?", t.name), t.now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge %s: %w", t.name, err)
	}
	return result.RowsAffected()
}
