package usecases

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"wordvault/internal/domain/review"
	"wordvault/internal/domain/scheduling"
	"wordvault/internal/domain/stats"
)

// streakWindowDays bounds the historical scan for the longest streak
const streakWindowDays = 365

// ProgressLedger aggregates per-calendar-day learning statistics.
// Upserts are idempotent: the distinct-card sets on each summary keep
// repeat reviews of one card from double-counting within a day.
type ProgressLedger struct {
	stats   stats.Repository
	reviews review.Repository
	logger  *zap.Logger
}

// NewProgressLedger creates a new progress ledger
func NewProgressLedger(statsRepo stats.Repository, reviewRepo review.Repository, logger *zap.Logger) *ProgressLedger {
	return &ProgressLedger{stats: statsRepo, reviews: reviewRepo, logger: logger}
}

// RecordOutcome folds one answered card into the summary for date.
// wasNewCard is the pre-review classification: true iff the card had
// never been reviewed before this submission.
func (l *ProgressLedger) RecordOutcome(
	ctx context.Context,
	cardID string,
	date string,
	wasCorrect bool,
	responseTimeMs int,
	wasNewCard bool,
	newProficiency scheduling.Proficiency,
) error {
	summary, err := l.stats.FindByDate(ctx, date)
	if err != nil {
		return fmt.Errorf("failed to load daily summary: %w", err)
	}
	if summary == nil {
		summary = stats.NewDailySummary(date)
	}

	mastered := newProficiency == scheduling.ProficiencyMastered
	summary.RecordAnswer(cardID, wasCorrect, wasNewCard, mastered, responseTimeMs)

	if err := l.stats.Upsert(ctx, summary); err != nil {
		return fmt.Errorf("failed to persist daily summary: %w", err)
	}
	return nil
}

// Summary returns the stored summary for a date, or an empty one
func (l *ProgressLedger) Summary(ctx context.Context, date string) (*stats.DailySummary, error) {
	summary, err := l.stats.FindByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		summary = stats.NewDailySummary(date)
	}
	return summary, nil
}

// Streak computes the current and longest consecutive-day study runs.
// A day counts when at least one card was new or reviewed on it.
func (l *ProgressLedger) Streak(ctx context.Context, today time.Time) (stats.Streak, error) {
	from := today.AddDate(0, 0, -(streakWindowDays - 1))
	summaries, err := l.stats.FindRange(ctx, stats.DateOf(from), stats.DateOf(today))
	if err != nil {
		return stats.Streak{}, fmt.Errorf("failed to load summaries for streak: %w", err)
	}

	active := make(map[string]bool, len(summaries))
	for _, s := range summaries {
		if s.Active() {
			active[s.Date()] = true
		}
	}

	var streak stats.Streak
	for day := today; active[stats.DateOf(day)]; day = day.AddDate(0, 0, -1) {
		streak.Current++
	}

	run := 0
	for i := 0; i < streakWindowDays; i++ {
		day := from.AddDate(0, 0, i)
		if active[stats.DateOf(day)] {
			run++
			if run > streak.Longest {
				streak.Longest = run
			}
		} else {
			run = 0
		}
	}

	return streak, nil
}

// RebuildSummary derives a day's summary by replaying its review
// records. Used as a consistency check against the stored row.
func (l *ProgressLedger) RebuildSummary(ctx context.Context, date string) (*stats.DailySummary, error) {
	from, err := time.ParseInLocation(stats.DateFormat, date, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid summary date %s: %w", date, err)
	}
	to := from.AddDate(0, 0, 1)

	records, err := l.reviews.FindByDateRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load review records for %s: %w", date, err)
	}

	summary := stats.NewDailySummary(date)
	for _, rec := range records {
		wasNew := rec.StateBefore() == scheduling.StateNew
		mastered := rec.StateAfter() == scheduling.StateReview && rec.ScheduledDays() > 30
		summary.RecordAnswer(rec.CardID(), rec.Rating().Correct(), wasNew, mastered, rec.ResponseTimeMs())
	}
	return summary, nil
}
