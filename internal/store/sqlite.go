// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"alphaquant-console/internal/errors"
	"alphaquant-console/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool for concurrent access
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Snapshot cache: last fetched payload per subscription key
	CREATE TABLE IF NOT EXISTS snapshots (
		key TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		fetched_at DATETIME NOT NULL
	);

	-- Submission journal: every settled order submission
	CREATE TABLE IF NOT EXISTS order_journal (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		quantity REAL NOT NULL,
		order_type TEXT NOT NULL,
		limit_price REAL,
		outcome TEXT NOT NULL,
		reason TEXT,
		risk_score REAL,
		compatibility_score REAL,
		message TEXT,
		override_risk INTEGER DEFAULT 0,
		override_strategy INTEGER DEFAULT 0,
		settled_at DATETIME NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_journal_symbol ON order_journal(symbol);
	CREATE INDEX IF NOT EXISTS idx_journal_settled ON order_journal(settled_at);

	-- Settings key-value store
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveSnapshot upserts the cached payload for one subscription key.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, key string, payload []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (key, payload, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		key, payload, time.Now().UTC())
	if err != nil {
		return errors.Wrap(errors.ErrDatabaseError, err.Error())
	}
	return nil
}

// GetSnapshot returns the cached payload for a subscription key.
func (s *SQLiteStore) GetSnapshot(ctx context.Context, key string) (*CachedSnapshot, error) {
	var snap CachedSnapshot
	err := s.db.QueryRowContext(ctx,
		`SELECT key, payload, fetched_at FROM snapshots WHERE key = ?`, key).
		Scan(&snap.Key, &snap.Payload, &snap.FetchedAt)
	if err == sql.ErrNoRows {
		return nil, errors.ErrDataNotFound
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabaseError, err.Error())
	}
	return &snap, nil
}

// PruneSnapshots deletes cache entries older than the given age and
// returns how many were removed.
func (s *SQLiteStore) PruneSnapshots(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	result, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, errors.Wrap(errors.ErrDatabaseError, err.Error())
	}
	return result.RowsAffected()
}

// JournalOutcome records one settled submission.
func (s *SQLiteStore) JournalOutcome(ctx context.Context, req models.OrderRequest, outcome models.OrderOutcome) error {
	settledAt := outcome.SettledAt
	if settledAt.IsZero() {
		settledAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO order_journal (
			symbol, side, quantity, order_type, limit_price,
			outcome, reason, risk_score, compatibility_score, message,
			override_risk, override_strategy, settled_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.Symbol, string(req.Side), req.Quantity, string(req.Type), req.LimitPrice,
		string(outcome.Kind), outcome.Reason, outcome.RiskScore, outcome.CompatibilityScore, outcome.Message,
		req.OverrideRisk, req.OverrideStrategy, settledAt.UTC())
	if err != nil {
		return errors.Wrap(errors.ErrDatabaseError, err.Error())
	}
	return nil
}

// GetJournal queries recorded submissions, newest first.
func (s *SQLiteStore) GetJournal(ctx context.Context, filter JournalFilter) ([]JournalEntry, error) {
	query := `SELECT id, symbol, side, quantity, order_type, limit_price,
		outcome, reason, risk_score, compatibility_score, message,
		override_risk, override_strategy, settled_at
		FROM order_journal WHERE 1=1`
	var args []interface{}

	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}
	if filter.Outcome != "" {
		query += " AND outcome = ?"
		args = append(args, string(filter.Outcome))
	}
	if !filter.StartDate.IsZero() {
		query += " AND settled_at >= ?"
		args = append(args, filter.StartDate.UTC())
	}
	if !filter.EndDate.IsZero() {
		query += " AND settled_at <= ?"
		args = append(args, filter.EndDate.UTC())
	}
	query += " ORDER BY settled_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabaseError, err.Error())
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var e JournalEntry
		var side, orderType, outcome string
		var limitPrice sql.NullFloat64
		var reason, message sql.NullString
		if err := rows.Scan(
			&e.ID, &e.Symbol, &side, &e.Quantity, &orderType, &limitPrice,
			&outcome, &reason, &e.RiskScore, &e.CompatibilityScore, &message,
			&e.OverrideRisk, &e.OverrideStrategy, &e.SettledAt,
		); err != nil {
			return nil, errors.Wrap(errors.ErrDatabaseError, err.Error())
		}
		e.Side = models.OrderSide(side)
		e.Type = models.OrderType(orderType)
		e.Outcome = models.OutcomeKind(outcome)
		if limitPrice.Valid {
			price := limitPrice.Float64
			e.LimitPrice = &price
		}
		e.Reason = reason.String
		e.Message = message.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SetSetting upserts one settings value.
func (s *SQLiteStore) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return errors.Wrap(errors.ErrDatabaseError, err.Error())
	}
	return nil
}

// GetSetting returns one settings value.
func (s *SQLiteStore) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", errors.ErrDataNotFound
	}
	if err != nil {
		return "", errors.Wrap(errors.ErrDatabaseError, err.Error())
	}
	return value, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SnapshotKey builds the cache key for a subscription: kind plus its
// parameters in stable order, matching the poll scheduler's rendering.
func SnapshotKey(kind string, params map[string]string) string {
	if len(params) == 0 {
		return kind
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+params[k])
	}
	return kind + "(" + strings.Join(parts, ",") + ")"
}
