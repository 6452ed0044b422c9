package persistence

import (
	"context"
	"fmt"
	"time"

	"wordvault/internal/domain/review"
	"wordvault/internal/domain/scheduling"
)

const reviewColumns = `id, card_id, rating, response_time_ms, reviewed_at,
	state_before, state_after, stability, difficulty, scheduled_days, elapsed_days`

type reviewRepository struct {
	db *DB
}

// NewReviewRepository creates a new review log repository
func NewReviewRepository(db *DB) review.Repository {
	return &reviewRepository{db: db}
}

// Append persists a new record
func (r *reviewRepository) Append(ctx context.Context, rec *review.Record) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO review_log
		(card_id, rating, response_time_ms, reviewed_at, state_before, state_after,
		 stability, difficulty, scheduled_days, elapsed_days)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.CardID(), int(rec.Rating()), rec.ResponseTimeMs(), toMillis(rec.ReviewedAt()),
		string(rec.StateBefore()), string(rec.StateAfter()),
		rec.Stability(), rec.Difficulty(), rec.ScheduledDays(), rec.ElapsedDays())
	if err != nil {
		return fmt.Errorf("failed to append review record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get review record ID: %w", err)
	}
	rec.SetID(id)
	return nil
}

// FindByCard retrieves all records for a card, oldest first
func (r *reviewRepository) FindByCard(ctx context.Context, cardID string) ([]*review.Record, error) {
	return r.queryRecords(ctx,
		`SELECT `+reviewColumns+` FROM review_log WHERE card_id = ? ORDER BY reviewed_at ASC`,
		cardID)
}

// FindByDateRange retrieves all records reviewed in [from, to)
func (r *reviewRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]*review.Record, error) {
	return r.queryRecords(ctx,
		`SELECT `+reviewColumns+` FROM review_log WHERE reviewed_at >= ? AND reviewed_at < ? ORDER BY reviewed_at ASC`,
		toMillis(from), toMillis(to))
}

func (r *reviewRepository) queryRecords(ctx context.Context, query string, args ...any) ([]*review.Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query review records: %w", err)
	}
	defer rows.Close()

	var records []*review.Record
	for rows.Next() {
		var (
			id                         int64
			cardID                     string
			rating, responseTimeMs     int
			reviewedAt                 int64
			stateBefore, stateAfter    string
			stability, difficulty      float64
			scheduledDays, elapsedDays int
		)
		err := rows.Scan(&id, &cardID, &rating, &responseTimeMs, &reviewedAt,
			&stateBefore, &stateAfter, &stability, &difficulty, &scheduledDays, &elapsedDays)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review record row: %w", err)
		}
		records = append(records, review.Restore(review.RestoredRecord{
			ID:             id,
			CardID:         cardID,
			Rating:         scheduling.Rating(rating),
			ResponseTimeMs: responseTimeMs,
			ReviewedAt:     fromMillis(reviewedAt),
			StateBefore:    scheduling.State(stateBefore),
			StateAfter:     scheduling.State(stateAfter),
			Stability:      stability,
			Difficulty:     difficulty,
			ScheduledDays:  scheduledDays,
			ElapsedDays:    elapsedDays,
		}))
	}
	return records, rows.Err()
}
