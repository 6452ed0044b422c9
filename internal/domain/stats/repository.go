package stats

import "context"

// Repository defines the contract for daily summary persistence
type Repository interface {
	// Upsert inserts or replaces the summary for its date
	Upsert(ctx context.Context, s *DailySummary) error

	// FindByDate retrieves the summary for a date, nil when the day
	// has no row yet
	FindByDate(ctx context.Context, date string) (*DailySummary, error)

	// FindRange retrieves summaries with from <= date <= to, ascending
	FindRange(ctx context.Context, from, to string) ([]*DailySummary, error)
}
