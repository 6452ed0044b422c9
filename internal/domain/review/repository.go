package review

import (
	"context"
	"time"
)

// Repository defines the contract for the append-only review log.
// Records are never edited or deleted.
type Repository interface {
	// Append persists a new record
	Append(ctx context.Context, r *Record) error

	// FindByCard retrieves all records for a card, oldest first
	FindByCard(ctx context.Context, cardID string) ([]*Record, error)

	// FindByDateRange retrieves all records reviewed in [from, to)
	FindByDateRange(ctx context.Context, from, to time.Time) ([]*Record, error)
}
