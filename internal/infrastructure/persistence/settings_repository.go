package persistence

import (
	"context"
	"fmt"
)

// SettingsRepository is a small key/value store for persisted
// configuration such as the last sync timestamp.
type SettingsRepository struct {
	db *DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get retrieves a setting value; ok is false when the key is unset
func (r *SettingsRepository) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	rows, err := r.db.QueryContext(ctx, `SELECT value FROM settings WHERE key = ?`, key)
	if err != nil {
		return "", false, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return "", false, rows.Err()
	}
	if err := rows.Scan(&value); err != nil {
		return "", false, fmt.Errorf("failed to scan setting %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores a setting value
func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}
