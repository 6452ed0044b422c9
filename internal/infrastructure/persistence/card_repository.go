package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"wordvault/internal/apperrors"
	"wordvault/internal/domain/card"
	"wordvault/internal/domain/scheduling"
)

const cardColumns = `id, text, translation, phonetic, notes, examples, senses, group_id, tags,
	due, stability, difficulty, elapsed_days, scheduled_days, reps, lapses, last_review, state,
	proficiency, total_reviews, correct_count, wrong_count, avg_response_ms, favorite, created_at, updated_at`

type cardRepository struct {
	db *DB
}

// NewCardRepository creates a new card repository
func NewCardRepository(db *DB) card.Repository {
	return &cardRepository{db: db}
}

// Save persists a new card
func (r *cardRepository) Save(ctx context.Context, c *card.Card) error {
	examples, senses, tags, err := marshalCardJSON(c)
	if err != nil {
		return err
	}

	s := c.Schedule()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO cards (`+cardColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		c.ID(), c.Text(), c.Translation(), c.Phonetic(), c.Notes(), examples, senses, c.GroupID(), tags,
		toMillis(s.Due), s.Stability, s.Difficulty, s.ElapsedDays, s.ScheduledDays, s.Reps, s.Lapses,
		toMillis(s.LastReview), string(s.State),
		string(c.Proficiency()), c.TotalReviews(), c.CorrectCount(), c.WrongCount(), c.AvgResponseMs(),
		boolToInt(c.Favorite()), toMillis(c.CreatedAt()), toMillis(c.UpdatedAt()))
	if err != nil {
		return fmt.Errorf("failed to save card %s: %w", c.ID(), err)
	}
	return nil
}

// SaveBatch persists multiple cards. Best-effort: writes already
// applied before a failure stay applied and the error is surfaced.
func (r *cardRepository) SaveBatch(ctx context.Context, cards []*card.Card) error {
	for _, c := range cards {
		if err := r.Save(ctx, c); err != nil {
			return fmt.Errorf("batch save aborted: %w", err)
		}
	}
	return nil
}

// Update persists changes to an existing card
func (r *cardRepository) Update(ctx context.Context, c *card.Card) error {
	examples, senses, tags, err := marshalCardJSON(c)
	if err != nil {
		return err
	}

	s := c.Schedule()
	res, err := r.db.ExecContext(ctx, `
		UPDATE cards
		SET text = ?, translation = ?, phonetic = ?, notes = ?, examples = ?, senses = ?,
		    group_id = ?, tags = ?, due = ?, stability = ?, difficulty = ?, elapsed_days = ?,
		    scheduled_days = ?, reps = ?, lapses = ?, last_review = ?, state = ?, proficiency = ?,
		    total_reviews = ?, correct_count = ?, wrong_count = ?, avg_response_ms = ?,
		    favorite = ?, updated_at = ?
		WHERE id = ?
	`,
		c.Text(), c.Translation(), c.Phonetic(), c.Notes(), examples, senses,
		c.GroupID(), tags, toMillis(s.Due), s.Stability, s.Difficulty, s.ElapsedDays,
		s.ScheduledDays, s.Reps, s.Lapses, toMillis(s.LastReview), string(s.State), string(c.Proficiency()),
		c.TotalReviews(), c.CorrectCount(), c.WrongCount(), c.AvgResponseMs(),
		boolToInt(c.Favorite()), toMillis(c.UpdatedAt()), c.ID())
	if err != nil {
		return fmt.Errorf("failed to update card %s: %w", c.ID(), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewNotFound(fmt.Sprintf("card %s not found", c.ID()))
	}
	return nil
}

// FindByID retrieves a card by its id
func (r *cardRepository) FindByID(ctx context.Context, id string) (*card.Card, error) {
	cards, err := r.queryCards(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, apperrors.NewNotFound(fmt.Sprintf("card %s not found", id))
	}
	return cards[0], nil
}

// FindAll retrieves every card
func (r *cardRepository) FindAll(ctx context.Context) ([]*card.Card, error) {
	return r.queryCards(ctx, `SELECT `+cardColumns+` FROM cards ORDER BY created_at ASC`)
}

// FindDue retrieves all cards due at or before the given time
func (r *cardRepository) FindDue(ctx context.Context, before time.Time) ([]*card.Card, error) {
	return r.queryCards(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE due <= ? ORDER BY due ASC`,
		toMillis(before))
}

// FindByGroup retrieves all cards in a group
func (r *cardRepository) FindByGroup(ctx context.Context, groupID string) ([]*card.Card, error) {
	return r.queryCards(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE group_id = ? ORDER BY created_at ASC`,
		groupID)
}

// FindByTag retrieves all cards carrying the given tag
func (r *cardRepository) FindByTag(ctx context.Context, tag string) ([]*card.Card, error) {
	return r.queryCards(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE tags LIKE ? ESCAPE '\' ORDER BY created_at ASC`,
		tagPattern(tag))
}

// FindFavorites retrieves all favorite cards
func (r *cardRepository) FindFavorites(ctx context.Context) ([]*card.Card, error) {
	return r.queryCards(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE favorite = 1 ORDER BY created_at ASC`)
}

// FindNew retrieves up to limit never-reviewed cards, oldest first
func (r *cardRepository) FindNew(ctx context.Context, limit int) ([]*card.Card, error) {
	return r.queryCards(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE total_reviews = 0 ORDER BY created_at ASC LIMIT ?`,
		limit)
}

// Search composes the filter into a single query. All set filters AND
// together.
func (r *cardRepository) Search(ctx context.Context, filter card.SearchFilter) ([]*card.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards`
	var conds []string
	var args []any

	if filter.Keyword != "" {
		kw := "%" + escapeLike(strings.ToLower(filter.Keyword)) + "%"
		conds = append(conds, `(LOWER(text) LIKE ? ESCAPE '\' OR LOWER(translation) LIKE ? ESCAPE '\')`)
		args = append(args, kw, kw)
	}
	if filter.GroupID != "" {
		conds = append(conds, "group_id = ?")
		args = append(args, filter.GroupID)
	}
	for _, tag := range filter.Tags {
		conds = append(conds, `tags LIKE ? ESCAPE '\'`)
		args = append(args, tagPattern(tag))
	}
	if len(filter.Proficiencies) > 0 {
		placeholders := make([]string, len(filter.Proficiencies))
		for i, p := range filter.Proficiencies {
			placeholders[i] = "?"
			args = append(args, string(p))
		}
		conds = append(conds, "proficiency IN ("+strings.Join(placeholders, ", ")+")")
	}
	if filter.FavoriteOnly {
		conds = append(conds, "favorite = 1")
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	switch filter.SortBy {
	case card.SortByDue:
		query += " ORDER BY due ASC"
	case card.SortByText:
		query += " ORDER BY text COLLATE NOCASE ASC"
	default:
		query += " ORDER BY created_at ASC"
	}

	return r.queryCards(ctx, query, args...)
}

// Delete removes a card
func (r *cardRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete card %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewNotFound(fmt.Sprintf("card %s not found", id))
	}
	return nil
}

// DeleteBatch removes multiple cards, best-effort like SaveBatch
func (r *cardRepository) DeleteBatch(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if err := r.Delete(ctx, id); err != nil {
			return fmt.Errorf("batch delete aborted: %w", err)
		}
	}
	return nil
}

// ReassignGroup moves every card in fromGroupID to toGroupID
func (r *cardRepository) ReassignGroup(ctx context.Context, fromGroupID, toGroupID string, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE cards SET group_id = ?, updated_at = ? WHERE group_id = ?`,
		toGroupID, toMillis(now), fromGroupID)
	if err != nil {
		return fmt.Errorf("failed to reassign cards from group %s: %w", fromGroupID, err)
	}
	return nil
}

// CountByGroup counts cards in a group
func (r *cardRepository) CountByGroup(ctx context.Context, groupID string) (int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT COUNT(*) FROM cards WHERE group_id = ?`, groupID)
	if err != nil {
		return 0, fmt.Errorf("failed to count cards in group %s: %w", groupID, err)
	}
	defer rows.Close()

	count := 0
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, fmt.Errorf("failed to scan card count: %w", err)
		}
	}
	return count, rows.Err()
}

func (r *cardRepository) queryCards(ctx context.Context, query string, args ...any) ([]*card.Card, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	var cards []*card.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func scanCard(rows interface{ Scan(...any) error }) (*card.Card, error) {
	var (
		id, text, translation, phonetic, notes   string
		examplesJSON, sensesJSON, groupID, tags  string
		due, lastReview, createdAt, updatedAt    int64
		stability, difficulty, avgResponseMs     float64
		elapsedDays, scheduledDays, reps, lapses int
		state, proficiency                       string
		totalReviews, correctCount, wrongCount   int
		favorite                                 int
	)

	err := rows.Scan(&id, &text, &translation, &phonetic, &notes, &examplesJSON, &sensesJSON,
		&groupID, &tags, &due, &stability, &difficulty, &elapsedDays, &scheduledDays, &reps,
		&lapses, &lastReview, &state, &proficiency, &totalReviews, &correctCount, &wrongCount,
		&avgResponseMs, &favorite, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan card row: %w", err)
	}

	var examples []string
	if err := json.Unmarshal([]byte(examplesJSON), &examples); err != nil {
		return nil, fmt.Errorf("failed to decode examples for card %s: %w", id, err)
	}
	var senses []card.Sense
	if err := json.Unmarshal([]byte(sensesJSON), &senses); err != nil {
		return nil, fmt.Errorf("failed to decode senses for card %s: %w", id, err)
	}
	var tagList []string
	if err := json.Unmarshal([]byte(tags), &tagList); err != nil {
		return nil, fmt.Errorf("failed to decode tags for card %s: %w", id, err)
	}

	return card.Restore(card.RestoredCard{
		ID:          id,
		Text:        text,
		Translation: translation,
		Phonetic:    phonetic,
		Notes:       notes,
		Examples:    examples,
		Senses:      senses,
		GroupID:     groupID,
		Tags:        tagList,
		Schedule: scheduling.ScheduleState{
			Due:           fromMillis(due),
			Stability:     stability,
			Difficulty:    difficulty,
			ElapsedDays:   elapsedDays,
			ScheduledDays: scheduledDays,
			Reps:          reps,
			Lapses:        lapses,
			LastReview:    fromMillis(lastReview),
			State:         scheduling.State(state),
		},
		Proficiency:   scheduling.Proficiency(proficiency),
		TotalReviews:  totalReviews,
		CorrectCount:  correctCount,
		WrongCount:    wrongCount,
		AvgResponseMs: avgResponseMs,
		Favorite:      favorite != 0,
		CreatedAt:     fromMillis(createdAt),
		UpdatedAt:     fromMillis(updatedAt),
	}), nil
}

func marshalCardJSON(c *card.Card) (examples, senses, tags string, err error) {
	e, err := json.Marshal(orEmptyStrings(c.Examples()))
	if err != nil {
		return "", "", "", fmt.Errorf("failed to encode examples: %w", err)
	}
	s, err := json.Marshal(orEmptySenses(c.Senses()))
	if err != nil {
		return "", "", "", fmt.Errorf("failed to encode senses: %w", err)
	}
	t, err := json.Marshal(orEmptyStrings(c.Tags()))
	if err != nil {
		return "", "", "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(e), string(s), string(t), nil
}

// tagPattern matches one tag inside the JSON-encoded tag array
func tagPattern(tag string) string {
	return `%"` + escapeLike(tag) + `"%`
}

// escapeLike neutralizes LIKE wildcards in user input. Every query
// using the result must carry an ESCAPE '\' clause.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}

func orEmptyStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func orEmptySenses(v []card.Sense) []card.Sense {
	if v == nil {
		return []card.Sense{}
	}
	return v
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
