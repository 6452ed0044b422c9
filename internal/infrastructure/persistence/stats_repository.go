package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"wordvault/internal/domain/stats"
)

const statsColumns = `date, new_cards, reviewed_cards, mastered_cards, total_answers,
	correct_answers, wrong_answers, study_time_ms, studied_ids, new_ids, mastered_ids`

type statsRepository struct {
	db *DB
}

// NewStatsRepository creates a new daily summary repository
func NewStatsRepository(db *DB) stats.Repository {
	return &statsRepository{db: db}
}

// Upsert inserts or replaces the summary for its date
func (r *statsRepository) Upsert(ctx context.Context, s *stats.DailySummary) error {
	studied, err := json.Marshal(s.StudiedIDs())
	if err != nil {
		return fmt.Errorf("failed to encode studied ids: %w", err)
	}
	newIDs, err := json.Marshal(s.NewIDs())
	if err != nil {
		return fmt.Errorf("failed to encode new ids: %w", err)
	}
	mastered, err := json.Marshal(s.MasteredIDs())
	if err != nil {
		return fmt.Errorf("failed to encode mastered ids: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO daily_stats (`+statsColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			new_cards = excluded.new_cards,
			reviewed_cards = excluded.reviewed_cards,
			mastered_cards = excluded.mastered_cards,
			total_answers = excluded.total_answers,
			correct_answers = excluded.correct_answers,
			wrong_answers = excluded.wrong_answers,
			study_time_ms = excluded.study_time_ms,
			studied_ids = excluded.studied_ids,
			new_ids = excluded.new_ids,
			mastered_ids = excluded.mastered_ids
	`,
		s.Date(), s.NewCards(), s.ReviewedCards(), s.MasteredCards(), s.TotalAnswers(),
		s.CorrectAnswers(), s.WrongAnswers(), s.StudyTimeMs(),
		string(studied), string(newIDs), string(mastered))
	if err != nil {
		return fmt.Errorf("failed to upsert daily summary %s: %w", s.Date(), err)
	}
	return nil
}

// FindByDate retrieves the summary for a date, nil when absent
func (r *statsRepository) FindByDate(ctx context.Context, date string) (*stats.DailySummary, error) {
	summaries, err := r.querySummaries(ctx,
		`SELECT `+statsColumns+` FROM daily_stats WHERE date = ?`, date)
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, nil
	}
	return summaries[0], nil
}

// FindRange retrieves summaries with from <= date <= to, ascending
func (r *statsRepository) FindRange(ctx context.Context, from, to string) ([]*stats.DailySummary, error) {
	return r.querySummaries(ctx,
		`SELECT `+statsColumns+` FROM daily_stats WHERE date >= ? AND date <= ? ORDER BY date ASC`,
		from, to)
}

func (r *statsRepository) querySummaries(ctx context.Context, query string, args ...any) ([]*stats.DailySummary, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily summaries: %w", err)
	}
	defer rows.Close()

	var summaries []*stats.DailySummary
	for rows.Next() {
		var (
			date                                       string
			newCards, reviewedCards, masteredCards     int
			totalAnswers, correctAnswers, wrongAnswers int
			studyTimeMs                                int64
			studiedJSON, newJSON, masteredJSON         string
		)
		err := rows.Scan(&date, &newCards, &reviewedCards, &masteredCards, &totalAnswers,
			&correctAnswers, &wrongAnswers, &studyTimeMs, &studiedJSON, &newJSON, &masteredJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily summary row: %w", err)
		}

		var studied, newIDs, mastered []string
		if err := json.Unmarshal([]byte(studiedJSON), &studied); err != nil {
			return nil, fmt.Errorf("failed to decode studied ids for %s: %w", date, err)
		}
		if err := json.Unmarshal([]byte(newJSON), &newIDs); err != nil {
			return nil, fmt.Errorf("failed to decode new ids for %s: %w", date, err)
		}
		if err := json.Unmarshal([]byte(masteredJSON), &mastered); err != nil {
			return nil, fmt.Errorf("failed to decode mastered ids for %s: %w", date, err)
		}

		summaries = append(summaries, stats.Restore(stats.RestoredSummary{
			Date:           date,
			NewCards:       newCards,
			ReviewedCards:  reviewedCards,
			MasteredCards:  masteredCards,
			TotalAnswers:   totalAnswers,
			CorrectAnswers: correctAnswers,
			WrongAnswers:   wrongAnswers,
			StudyTimeMs:    studyTimeMs,
			StudiedIDs:     studied,
			NewIDs:         newIDs,
			MasteredIDs:    mastered,
		}))
	}
	return summaries, rows.Err()
}
