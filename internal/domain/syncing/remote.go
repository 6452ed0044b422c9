// Package syncing holds the remote-store contract and the
// reconciliation primitives for the bidirectional sync.
//
// The merge policy is strict last-writer-wins on updatedAt with soft
// deletion: two offline replicas editing the same entity before either
// syncs will silently keep only the newer edit. That is the inherited
// behavior of the protocol, not an accident.
package syncing

import (
	"context"
	"time"

	"wordvault/internal/domain/card"
)

// RemoteCard mirrors one row of the remote cards table. Schedule
// state is flattened into columns; timestamps travel as unix
// milliseconds so the conflict comparison is exact.
type RemoteCard struct {
	ID            string       `json:"id"`
	UserID        string       `json:"user_id"`
	Text          string       `json:"text"`
	Translation   string       `json:"translation"`
	Phonetic      string       `json:"phonetic"`
	Notes         string       `json:"notes"`
	Examples      []string     `json:"examples"`
	Senses        []card.Sense `json:"senses"`
	GroupID       string       `json:"group_id"`
	Tags          []string     `json:"tags"`
	Due           int64        `json:"due"`
	Stability     float64      `json:"stability"`
	Difficulty    float64      `json:"difficulty"`
	ElapsedDays   int          `json:"elapsed_days"`
	ScheduledDays int          `json:"scheduled_days"`
	Reps          int          `json:"reps"`
	Lapses        int          `json:"lapses"`
	LastReview    int64        `json:"last_review"`
	State         string       `json:"state"`
	Proficiency   string       `json:"proficiency"`
	TotalReviews  int          `json:"total_reviews"`
	CorrectCount  int          `json:"correct_count"`
	WrongCount    int          `json:"wrong_count"`
	AvgResponseMs float64      `json:"avg_response_ms"`
	Favorite      bool         `json:"favorite"`
	Deleted       bool         `json:"deleted"`
	DeletedAt     *int64       `json:"deleted_at"`
	CreatedAt     int64        `json:"created_at"`
	UpdatedAt     int64        `json:"updated_at"`
}

// RemoteGroup mirrors one row of the remote groups table
type RemoteGroup struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Deleted     bool   `json:"deleted"`
	DeletedAt   *int64 `json:"deleted_at"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

// RemoteStore is the row-oriented remote replica, scoped by an opaque
// identity. Selects return tombstoned rows too; upserts replace on id
// conflict.
type RemoteStore interface {
	FetchCards(ctx context.Context, userID string) ([]RemoteCard, error)
	UpsertCard(ctx context.Context, row RemoteCard) error
	MarkCardDeleted(ctx context.Context, userID, id string, at time.Time) error

	FetchGroups(ctx context.Context, userID string) ([]RemoteGroup, error)
	UpsertGroup(ctx context.Context, row RemoteGroup) error
	MarkGroupDeleted(ctx context.Context, userID, id string, at time.Time) error
}

// Result reports what a full reconciliation moved
type Result struct {
	Uploaded   int
	Downloaded int
}

// Status is the sync state surfaced to the UI layer
type Status struct {
	LastSyncAt time.Time
	InProgress bool
	LastError  string
}

// Settings is the externally-owned configuration the coordinator
// reads: the remote identity, the auto-sync toggle and the persisted
// last-sync timestamp.
type Settings interface {
	Identity() string
	AutoSyncEnabled() bool
	LastSyncAt() time.Time
	SetLastSyncAt(t time.Time) error
}
