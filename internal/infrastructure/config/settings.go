package config

import (
	"context"
	"strconv"
	"time"

	"wordvault/internal/infrastructure/persistence"
)

const lastSyncKey = "last_sync_at"

// Settings exposes the sync-facing configuration: the remote identity
// and auto-sync toggle come from static config, the last-sync
// timestamp is persisted across restarts.
type Settings struct {
	cfg   *Config
	store *persistence.SettingsRepository
}

// NewSettings creates the settings view over config and the persisted
// key/value store.
func NewSettings(cfg *Config, store *persistence.SettingsRepository) *Settings {
	return &Settings{cfg: cfg, store: store}
}

// Identity returns the opaque remote identity, empty when not signed in
func (s *Settings) Identity() string {
	return s.cfg.UserID
}

// AutoSyncEnabled reports whether background pushes are enabled
func (s *Settings) AutoSyncEnabled() bool {
	return s.cfg.AutoSync
}

// LastSyncAt returns the time of the last successful full sync, zero
// when none has completed yet.
func (s *Settings) LastSyncAt() time.Time {
	value, ok, err := s.store.Get(context.Background(), lastSyncKey)
	if err != nil || !ok {
		return time.Time{}
	}
	ms, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

// SetLastSyncAt records the time of a successful full sync
func (s *Settings) SetLastSyncAt(t time.Time) error {
	return s.store.Set(context.Background(), lastSyncKey, strconv.FormatInt(t.UnixMilli(), 10))
}
