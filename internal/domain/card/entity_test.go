package card

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordvault/internal/domain/scheduling"
)

func TestNewCard_Defaults(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	schedule := scheduling.ScheduleState{Due: now, State: scheduling.StateNew}

	c := NewCard("huis", "house", "", schedule, now)

	require.NotEmpty(t, c.ID())
	assert.Equal(t, DefaultGroupID, c.GroupID())
	assert.Equal(t, scheduling.ProficiencyNew, c.Proficiency())
	assert.Equal(t, 0, c.TotalReviews())
	assert.Equal(t, now, c.CreatedAt())
	assert.Equal(t, now, c.UpdatedAt())
	assert.Equal(t, now, c.NextReview())
}

func TestCard_ApplyReview_Counters(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c := NewCard("huis", "house", "", scheduling.ScheduleState{Due: now}, now)

	next := scheduling.ScheduleState{Due: now.AddDate(0, 0, 4), State: scheduling.StateReview}
	c.ApplyReview(next, scheduling.ProficiencyReview, true, 2000, now.Add(time.Minute))
	c.ApplyReview(next, scheduling.ProficiencyReview, false, 4000, now.Add(2*time.Minute))

	assert.Equal(t, 2, c.TotalReviews())
	assert.Equal(t, 1, c.CorrectCount())
	assert.Equal(t, 1, c.WrongCount())
	assert.InDelta(t, 3000, c.AvgResponseMs(), 0.001)
	assert.Equal(t, scheduling.ProficiencyReview, c.Proficiency())
	assert.Equal(t, next.Due, c.NextReview())
}

func TestCard_UpdatedAtIsStrictlyMonotonic(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c := NewCard("huis", "house", "", scheduling.ScheduleState{Due: now}, now)

	// Edits at the same wall-clock instant still move updatedAt forward
	c.SetFavorite(true, now)
	first := c.UpdatedAt()
	c.SetTags([]string{"a1"}, now)
	second := c.UpdatedAt()

	assert.True(t, first.After(now))
	assert.True(t, second.After(first))
}

func TestCard_HasTag(t *testing.T) {
	now := time.Now()
	c := NewCard("huis", "house", "", scheduling.ScheduleState{Due: now}, now)
	c.SetTags([]string{"nouns", "a1"}, now)

	assert.True(t, c.HasTag("nouns"))
	assert.True(t, c.HasTag("a1"))
	assert.False(t, c.HasTag("verbs"))
}

func TestCard_MoveToGroup_EmptyFallsBackToDefault(t *testing.T) {
	now := time.Now()
	c := NewCard("huis", "house", "travel", scheduling.ScheduleState{Due: now}, now)

	c.MoveToGroup("", now)

	assert.Equal(t, DefaultGroupID, c.GroupID())
}

func TestRestore_RoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	restored := Restore(RestoredCard{
		ID:            "card-1",
		Text:          "fiets",
		Translation:   "bicycle",
		Phonetic:      "fits",
		Notes:         "common noun",
		Examples:      []string{"ik fiets naar huis"},
		Senses:        []Sense{{Translation: "bicycle", PartOfSpeech: "noun"}},
		GroupID:       "transport",
		Tags:          []string{"a1"},
		Schedule:      scheduling.ScheduleState{Due: now, State: scheduling.StateReview},
		Proficiency:   scheduling.ProficiencyReview,
		TotalReviews:  7,
		CorrectCount:  5,
		WrongCount:    2,
		AvgResponseMs: 1800,
		Favorite:      true,
		CreatedAt:     now.AddDate(0, -1, 0),
		UpdatedAt:     now,
	})

	assert.Equal(t, "card-1", restored.ID())
	assert.Equal(t, "fiets", restored.Text())
	assert.Equal(t, "transport", restored.GroupID())
	assert.Equal(t, 7, restored.TotalReviews())
	assert.True(t, restored.Favorite())
	assert.Equal(t, scheduling.StateReview, restored.Schedule().State)
}

func TestRestore_NormalizesEmptyFields(t *testing.T) {
	restored := Restore(RestoredCard{ID: "card-1", Text: "x", Translation: "y"})

	assert.Equal(t, DefaultGroupID, restored.GroupID())
	assert.Equal(t, scheduling.ProficiencyNew, restored.Proficiency())
}
