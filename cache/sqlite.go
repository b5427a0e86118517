package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/homescout/marketdata/logger"
)

// SQLiteStore is the durable Store implementation. Records live in a single
// table indexed by expiry and category; the sidecar meta table persists
// settings. SQLite gives atomic per-record transactions, so concurrent
// Get/Set/ClearExpired never observe a half-deleted record.
type SQLiteStore struct {
	db  *sql.DB
	log *logger.Logger
	now func() time.Time
}

// Open creates (or opens) the cache database at cfg.Path.
func Open(cfg Config, log *logger.Logger) (*SQLiteStore, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("cache: create dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("cache: open db: %w", err)
	}
	// Serialize writers; modernc sqlite handles one writer at a time.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, log: log.WithComponent("cache"), now: time.Now}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			key        TEXT PRIMARY KEY,
			payload    BLOB NOT NULL,
			category   TEXT NOT NULL,
			stored_at  INTEGER NOT NULL,
			expires_at INTEGER
		);
		CREATE INDEX IF NOT EXISTS idx_records_expires ON records(expires_at);
		CREATE INDEX IF NOT EXISTS idx_records_category ON records(category);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("cache: init schema: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Supported reports that durable storage is available.
func (s *SQLiteStore) Supported() bool { return true }

// Get returns the live payload at key. An expired record is deleted eagerly
// so a subsequent Stats call never reports it as present.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		payload   []byte
		expiresAt sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT payload, expires_at FROM records WHERE key = ?", key,
	).Scan(&payload, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: get %q: %w", key, err)
	}

	if expiresAt.Valid && s.now().UnixMilli() >= expiresAt.Int64 {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE key = ?", key); err != nil {
			return nil, false, fmt.Errorf("cache: evict %q: %w", key, err)
		}
		s.log.Debug("evicted expired record", map[string]interface{}{logger.FieldCacheKey: key})
		return nil, false, nil
	}

	return payload, true, nil
}

// Set upserts a record at key. A ttl <= 0 stores the record without expiry.
func (s *SQLiteStore) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	storedAt := s.now().UnixMilli()
	var expiresAt sql.NullInt64
	if ttl > 0 {
		expiresAt = sql.NullInt64{Int64: storedAt + ttl.Milliseconds(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records (key, payload, category, stored_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			category = excluded.category,
			stored_at = excluded.stored_at,
			expires_at = excluded.expires_at
	`, key, payload, string(CategoryOf(key)), storedAt, expiresAt)
	if err != nil {
		return fmt.Errorf("cache: set %q: %w", key, err)
	}
	return nil
}

// Remove deletes the record at key.
func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE key = ?", key); err != nil {
		return fmt.Errorf("cache: remove %q: %w", key, err)
	}
	return nil
}

// Clear deletes all records.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM records"); err != nil {
		return fmt.Errorf("cache: clear: %w", err)
	}
	return nil
}

// ClearExpired deletes every record whose expiry has passed, using the
// expiry index, and returns the count removed.
func (s *SQLiteStore) ClearExpired(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM records WHERE expires_at IS NOT NULL AND expires_at <= ?",
		s.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("cache: clear expired: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cache: clear expired: %w", err)
	}
	return int(n), nil
}

// Stats summarizes live records only; payload size is the serialized length sum.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{ByCategory: map[string]int{
		string(CategoryMarketStats): 0,
		string(CategorySearch):      0,
		string(CategoryProperty):    0,
		string(CategoryOther):       0,
	}}

	rows, err := s.db.QueryContext(ctx, `
		SELECT key, category, length(payload) FROM records
		WHERE expires_at IS NULL OR expires_at > ?
		ORDER BY key
	`, s.now().UnixMilli())
	if err != nil {
		return stats, fmt.Errorf("cache: stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key      string
			category string
			size     int64
		)
		if err := rows.Scan(&key, &category, &size); err != nil {
			return stats, fmt.Errorf("cache: stats scan: %w", err)
		}
		stats.Count++
		stats.TotalPayloadSize += size
		stats.Keys = append(stats.Keys, key)
		stats.ByCategory[category]++
	}
	return stats, rows.Err()
}

// Age returns how long ago the live record at key was stored.
func (s *SQLiteStore) Age(ctx context.Context, key string) (time.Duration, bool, error) {
	var (
		storedAt  int64
		expiresAt sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT stored_at, expires_at FROM records WHERE key = ?", key,
	).Scan(&storedAt, &expiresAt)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("cache: age %q: %w", key, err)
	}

	nowMs := s.now().UnixMilli()
	if expiresAt.Valid && nowMs >= expiresAt.Int64 {
		return 0, false, nil
	}
	return time.Duration(nowMs-storedAt) * time.Millisecond, true, nil
}

// Setting reads a persisted setting from the meta table.
func (s *SQLiteStore) Setting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache: setting %q: %w", key, err)
	}
	return value, true, nil
}

// SetSetting upserts a persisted setting in the meta table.
func (s *SQLiteStore) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("cache: set setting %q: %w", key, err)
	}
	return nil
}

var (
	_ Store         = (*SQLiteStore)(nil)
	_ SettingsStore = (*SQLiteStore)(nil)
)
