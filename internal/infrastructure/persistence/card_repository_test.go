package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wordvault/internal/apperrors"
	"wordvault/internal/domain/card"
	"wordvault/internal/domain/scheduling"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testCard(t *testing.T, text, groupID string, now time.Time) *card.Card {
	t.Helper()
	schedule := scheduling.ScheduleState{
		Due:        now,
		Stability:  1.0,
		Difficulty: 5.0,
		State:      scheduling.StateNew,
	}
	return card.NewCard(text, text+"-translation", groupID, schedule, now)
}

func TestCardRepository_SaveAndFindByID(t *testing.T) {
	db := openTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	c := testCard(t, "huis", "", now)
	c.UpdateContent("hœys", "common noun", []string{"ik ga naar huis"},
		[]card.Sense{{Translation: "house", PartOfSpeech: "noun"}}, now)
	c.SetTags([]string{"a1", "nouns"}, now)
	c.SetFavorite(true, now)
	require.NoError(t, repo.Save(ctx, c))

	found, err := repo.FindByID(ctx, c.ID())
	require.NoError(t, err)

	assert.Equal(t, c.ID(), found.ID())
	assert.Equal(t, "huis", found.Text())
	assert.Equal(t, "hœys", found.Phonetic())
	assert.Equal(t, []string{"ik ga naar huis"}, found.Examples())
	assert.Equal(t, []card.Sense{{Translation: "house", PartOfSpeech: "noun"}}, found.Senses())
	assert.Equal(t, card.DefaultGroupID, found.GroupID())
	assert.Equal(t, []string{"a1", "nouns"}, found.Tags())
	assert.True(t, found.Favorite())
	assert.Equal(t, scheduling.StateNew, found.Schedule().State)
	assert.Equal(t, c.UpdatedAt().UnixMilli(), found.UpdatedAt().UnixMilli())
}

func TestCardRepository_FindByID_NotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewCardRepository(db)

	_, err := repo.FindByID(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCardRepository_Update_NotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewCardRepository(db)
	now := time.Now()

	err := repo.Update(context.Background(), testCard(t, "ghost", "", now))

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCardRepository_Update_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	c := testCard(t, "fiets", "", now)
	require.NoError(t, repo.Save(ctx, c))

	next := scheduling.ScheduleState{
		Due:           now.AddDate(0, 0, 4),
		Stability:     3.9,
		Difficulty:    4.8,
		ScheduledDays: 4,
		Reps:          1,
		LastReview:    now,
		State:         scheduling.StateReview,
	}
	c.ApplyReview(next, scheduling.ProficiencyReview, true, 1500, now)
	require.NoError(t, repo.Update(ctx, c))

	found, err := repo.FindByID(ctx, c.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, found.TotalReviews())
	assert.Equal(t, scheduling.StateReview, found.Schedule().State)
	assert.Equal(t, 4, found.Schedule().ScheduledDays)
	assert.Equal(t, scheduling.ProficiencyReview, found.Proficiency())
	assert.InDelta(t, 1500, found.AvgResponseMs(), 0.001)
}

func TestCardRepository_FindDue(t *testing.T) {
	db := openTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	overdue := testCard(t, "overdue", "", now.Add(-time.Hour))
	dueNow := testCard(t, "due-now", "", now)
	future := testCard(t, "future", "", now.Add(time.Hour))
	for _, c := range []*card.Card{future, overdue, dueNow} {
		require.NoError(t, repo.Save(ctx, c))
	}

	due, err := repo.FindDue(ctx, now)
	require.NoError(t, err)

	require.Len(t, due, 2)
	// Ordered by due date, earliest first
	assert.Equal(t, "overdue", due[0].Text())
	assert.Equal(t, "due-now", due[1].Text())
}

func TestCardRepository_FindNew_Limit(t *testing.T) {
	db := openTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, text := range []string{"first", "second", "third"} {
		c := testCard(t, text, "", now.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Save(ctx, c))
	}

	fresh, err := repo.FindNew(ctx, 2)
	require.NoError(t, err)

	require.Len(t, fresh, 2)
	assert.Equal(t, "first", fresh[0].Text())
	assert.Equal(t, "second", fresh[1].Text())
}

func TestCardRepository_FindByTag(t *testing.T) {
	db := openTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()
	now := time.Now()

	tagged := testCard(t, "tagged", "", now)
	tagged.SetTags([]string{"verbs", "a2"}, now)
	other := testCard(t, "other", "", now)
	other.SetTags([]string{"nouns"}, now)
	require.NoError(t, repo.Save(ctx, tagged))
	require.NoError(t, repo.Save(ctx, other))

	found, err := repo.FindByTag(ctx, "verbs")
	require.NoError(t, err)

	require.Len(t, found, 1)
	assert.Equal(t, "tagged", found[0].Text())
}

func TestCardRepository_Search_ComposesFilters(t *testing.T) {
	db := openTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()
	now := time.Now()

	match := testCard(t, "lopen", "", now)
	match.SetTags([]string{"verbs"}, now)
	match.SetFavorite(true, now)

	wrongTag := testCard(t, "lopen fast", "", now)
	wrongTag.SetFavorite(true, now)

	notFavorite := testCard(t, "lopen slow", "", now)
	notFavorite.SetTags([]string{"verbs"}, now)

	for _, c := range []*card.Card{match, wrongTag, notFavorite} {
		require.NoError(t, repo.Save(ctx, c))
	}

	found, err := repo.Search(ctx, card.SearchFilter{
		Keyword:      "LOPEN",
		Tags:         []string{"verbs"},
		FavoriteOnly: true,
	})
	require.NoError(t, err)

	require.Len(t, found, 1)
	assert.Equal(t, match.ID(), found[0].ID())

	favorites, err := repo.FindFavorites(ctx)
	require.NoError(t, err)
	assert.Len(t, favorites, 2)
}

func TestCardRepository_SaveBatch_PartialFailure(t *testing.T) {
	db := openTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()
	now := time.Now()

	existing := testCard(t, "existing", "", now)
	require.NoError(t, repo.Save(ctx, existing))

	first := testCard(t, "first", "", now)
	err := repo.SaveBatch(ctx, []*card.Card{first, existing, testCard(t, "never", "", now)})

	// The duplicate id aborts the batch, but the write before it sticks
	require.Error(t, err)
	saved, findErr := repo.FindByID(ctx, first.ID())
	require.NoError(t, findErr)
	assert.Equal(t, "first", saved.Text())

	all, findErr := repo.FindAll(ctx)
	require.NoError(t, findErr)
	assert.Len(t, all, 2)
}

func TestCardRepository_DeleteBatch_PartialFailure(t *testing.T) {
	db := openTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()
	now := time.Now()

	a := testCard(t, "a", "", now)
	b := testCard(t, "b", "", now)
	require.NoError(t, repo.Save(ctx, a))
	require.NoError(t, repo.Save(ctx, b))

	err := repo.DeleteBatch(ctx, []string{a.ID(), "missing", b.ID()})

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	// Deletes before the failure stay applied, the rest are untouched
	_, findErr := repo.FindByID(ctx, a.ID())
	assert.True(t, apperrors.IsNotFound(findErr))
	_, findErr = repo.FindByID(ctx, b.ID())
	require.NoError(t, findErr)
}

func TestCardRepository_Search_EscapesWildcards(t *testing.T) {
	db := openTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()
	now := time.Now()

	literal := testCard(t, "100% zeker", "", now)
	literal.SetTags([]string{"a_"}, now)
	plain := testCard(t, "zeker", "", now)
	plain.SetTags([]string{"ab"}, now)
	require.NoError(t, repo.Save(ctx, literal))
	require.NoError(t, repo.Save(ctx, plain))

	// "_" matches only itself, not any single character
	found, err := repo.FindByTag(ctx, "a_")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, literal.ID(), found[0].ID())

	// "%" matches only a literal percent sign
	found, err = repo.Search(ctx, card.SearchFilter{Keyword: "%"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, literal.ID(), found[0].ID())
}

func TestCardRepository_Search_SortByText(t *testing.T) {
	db := openTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()
	now := time.Now()

	for _, text := range []string{"zebra", "Appel", "maan"} {
		require.NoError(t, repo.Save(ctx, testCard(t, text, "", now)))
	}

	found, err := repo.Search(ctx, card.SearchFilter{SortBy: card.SortByText})
	require.NoError(t, err)

	require.Len(t, found, 3)
	assert.Equal(t, "Appel", found[0].Text())
	assert.Equal(t, "maan", found[1].Text())
	assert.Equal(t, "zebra", found[2].Text())
}

func TestCardRepository_ReassignGroupAndCount(t *testing.T) {
	db := openTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Save(ctx, testCard(t, "one", "travel", now)))
	require.NoError(t, repo.Save(ctx, testCard(t, "two", "travel", now)))
	require.NoError(t, repo.Save(ctx, testCard(t, "three", "", now)))

	require.NoError(t, repo.ReassignGroup(ctx, "travel", card.DefaultGroupID, now))

	count, err := repo.CountByGroup(ctx, card.DefaultGroupID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = repo.CountByGroup(ctx, "travel")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCardRepository_Delete(t *testing.T) {
	db := openTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()

	c := testCard(t, "weg", "", time.Now())
	require.NoError(t, repo.Save(ctx, c))
	require.NoError(t, repo.Delete(ctx, c.ID()))

	_, err := repo.FindByID(ctx, c.ID())
	assert.True(t, apperrors.IsNotFound(err))

	err = repo.Delete(ctx, c.ID())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCardRepository_SurvivesClosedConnection(t *testing.T) {
	db := openTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()

	c := testCard(t, "herstel", "", time.Now())
	require.NoError(t, repo.Save(ctx, c))

	// Kill the underlying handle; the wrapper must reopen it once and
	// serve the query.
	require.NoError(t, db.conn.Close())

	found, err := repo.FindByID(ctx, c.ID())
	require.NoError(t, err)
	assert.Equal(t, c.ID(), found.ID())
}
