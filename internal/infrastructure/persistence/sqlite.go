package persistence

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"wordvault/internal/apperrors"
	"wordvault/internal/domain/group"
)

// DB wraps the SQLite handle and owns the reconnect contract: every
// operation that fails on an invalid connection reinitializes the
// handle exactly once and re-attempts. A second consecutive failure
// surfaces as a storage error.
type DB struct {
	mu     sync.Mutex
	dsn    string
	conn   *sql.DB
	logger *zap.Logger
}

// Open creates the database connection, applies the schema and seeds
// the reserved default group.
func Open(dsn string, logger *zap.Logger) (*DB, error) {
	conn, err := openConn(dsn)
	if err != nil {
		return nil, err
	}

	db := &DB{dsn: dsn, conn: conn, logger: logger}

	now := time.Now().UnixMilli()
	_, err = conn.Exec(
		`INSERT OR IGNORE INTO groups (id, name, description, color, card_count, created_at, updated_at)
		 VALUES (?, ?, '', '', 0, ?, ?)`,
		group.DefaultID, "Default", now, now)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to seed default group: %w", err)
	}

	return db, nil
}

func openConn(dsn string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single logical writer; also keeps in-memory databases on one
	// connection.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return conn, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.conn.Close()
}

// Ping probes connection validity
func (db *DB) Ping(ctx context.Context) error {
	return db.handle().PingContext(ctx)
}

func (db *DB) handle() *sql.DB {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.conn
}

func (db *DB) reconnect() (*sql.DB, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.conn.Close()
	conn, err := openConn(db.dsn)
	if err != nil {
		return nil, err
	}
	db.conn = conn
	db.logger.Warn("reinitialized database connection", zap.String("dsn", db.dsn))
	return conn, nil
}

// ExecContext runs a statement with the reconnect-once contract
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := db.handle().ExecContext(ctx, query, args...)
	if err == nil || !isConnInvalid(err) {
		return res, err
	}

	conn, rerr := db.reconnect()
	if rerr != nil {
		return nil, apperrors.NewStorage("store unavailable", rerr)
	}
	res, err = conn.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStorage("store unavailable after reconnect", err)
	}
	return res, nil
}

// QueryContext runs a query with the reconnect-once contract
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := db.handle().QueryContext(ctx, query, args...)
	if err == nil || !isConnInvalid(err) {
		return rows, err
	}

	conn, rerr := db.reconnect()
	if rerr != nil {
		return nil, apperrors.NewStorage("store unavailable", rerr)
	}
	rows, err = conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStorage("store unavailable after reconnect", err)
	}
	return rows, nil
}

func isConnInvalid(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	return strings.Contains(err.Error(), "database is closed")
}

// Time encoding helpers. All timestamps are stored as unix
// milliseconds so the sync conflict key compares exactly.

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
