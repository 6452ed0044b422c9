package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateOf(t *testing.T) {
	ts := time.Date(2026, 3, 1, 23, 45, 0, 0, time.Local)
	assert.Equal(t, "2026-03-01", DateOf(ts))
}

func TestDailySummary_RecordAnswer_DeduplicatesCards(t *testing.T) {
	s := NewDailySummary("2026-03-01")

	// Same card answered three times on the same day
	s.RecordAnswer("card-1", true, true, false, 1000)
	s.RecordAnswer("card-1", false, true, false, 2000)
	s.RecordAnswer("card-1", true, true, false, 1500)

	assert.Equal(t, 1, s.ReviewedCards())
	assert.Equal(t, 1, s.NewCards())
	assert.Equal(t, 3, s.TotalAnswers())
	assert.Equal(t, 2, s.CorrectAnswers())
	assert.Equal(t, 1, s.WrongAnswers())
	assert.Equal(t, int64(4500), s.StudyTimeMs())
}

func TestDailySummary_RecordAnswer_MasteredAtMostOnce(t *testing.T) {
	s := NewDailySummary("2026-03-01")

	s.RecordAnswer("card-1", true, false, true, 1000)
	s.RecordAnswer("card-1", true, false, true, 1000)

	assert.Equal(t, 1, s.MasteredCards())
}

func TestDailySummary_Active(t *testing.T) {
	s := NewDailySummary("2026-03-01")
	assert.False(t, s.Active())

	s.RecordAnswer("card-1", true, false, false, 500)
	assert.True(t, s.Active())
}

func TestRestore_PreservesDeduplication(t *testing.T) {
	restored := Restore(RestoredSummary{
		Date:           "2026-03-01",
		NewCards:       1,
		ReviewedCards:  2,
		TotalAnswers:   3,
		CorrectAnswers: 2,
		WrongAnswers:   1,
		StudiedIDs:     []string{"card-1", "card-2"},
		NewIDs:         []string{"card-1"},
	})

	// Replaying an already-seen card only bumps the answer counters
	restored.RecordAnswer("card-1", true, true, false, 500)

	assert.Equal(t, 2, restored.ReviewedCards())
	assert.Equal(t, 1, restored.NewCards())
	assert.Equal(t, 4, restored.TotalAnswers())
	assert.ElementsMatch(t, []string{"card-1", "card-2"}, restored.StudiedIDs())
}
