package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCardState(now time.Time) ScheduleState {
	return ScheduleState{
		Due:        now,
		Stability:  1.0,
		Difficulty: 5.0,
		State:      StateNew,
	}
}

func TestFSRS_NewCard_LearningSteps(t *testing.T) {
	fsrs := NewFSRS()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		rating    Rating
		wantState State
		wantDue   time.Time
	}{
		{"again schedules one minute", Again, StateLearning, now.Add(1 * time.Minute)},
		{"hard schedules five minutes", Hard, StateLearning, now.Add(5 * time.Minute)},
		{"good schedules ten minutes", Good, StateLearning, now.Add(10 * time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, logEntry := fsrs.Review(newCardState(now), tt.rating, now)

			assert.Equal(t, tt.wantState, next.State)
			assert.Equal(t, tt.wantDue, next.Due)
			assert.Equal(t, 0, next.ScheduledDays)
			assert.Equal(t, 1, next.Reps)
			assert.Equal(t, StateNew, logEntry.State)
			assert.Equal(t, tt.rating, logEntry.Rating)
		})
	}
}

func TestFSRS_NewCard_EasyGraduatesImmediately(t *testing.T) {
	fsrs := NewFSRS()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	next, _ := fsrs.Review(newCardState(now), Easy, now)

	assert.Equal(t, StateReview, next.State)
	assert.GreaterOrEqual(t, next.ScheduledDays, 1)
	assert.Equal(t, now.Add(time.Duration(next.ScheduledDays)*24*time.Hour), next.Due)
}

func TestFSRS_Learning_GoodGraduates(t *testing.T) {
	fsrs := NewFSRS()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	state, _ := fsrs.Review(newCardState(now), Good, now)
	require.Equal(t, StateLearning, state.State)

	later := now.Add(10 * time.Minute)
	next, logEntry := fsrs.Review(state, Good, later)

	assert.Equal(t, StateReview, next.State)
	assert.GreaterOrEqual(t, next.ScheduledDays, 1)
	assert.Equal(t, StateLearning, logEntry.State)
	assert.Equal(t, 2, next.Reps)
}

func TestFSRS_Review_AgainLapses(t *testing.T) {
	fsrs := NewFSRS()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	state, _ := fsrs.Review(newCardState(now), Easy, now)
	require.Equal(t, StateReview, state.State)

	later := state.Due
	next, _ := fsrs.Review(state, Again, later)

	assert.Equal(t, StateRelearning, next.State)
	assert.Equal(t, 1, next.Lapses)
	assert.Equal(t, later.Add(5*time.Minute), next.Due)
	assert.Equal(t, 0, next.ScheduledDays)
}

func TestFSRS_Review_IntervalGrowsWithRepetition(t *testing.T) {
	fsrs := NewFSRS()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	state, _ := fsrs.Review(newCardState(now), Easy, now)
	require.Equal(t, StateReview, state.State)

	previous := state.ScheduledDays
	for i := 0; i < 5; i++ {
		reviewAt := state.Due
		state, _ = fsrs.Review(state, Good, reviewAt)
		assert.GreaterOrEqual(t, state.ScheduledDays, previous)
		previous = state.ScheduledDays
	}
	assert.Greater(t, state.ScheduledDays, 1)
}

func TestFSRS_Review_DifficultyTracksRating(t *testing.T) {
	fsrs := NewFSRS()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	state, _ := fsrs.Review(newCardState(now), Easy, now)
	require.Equal(t, StateReview, state.State)
	reviewAt := state.Due

	hard, _ := fsrs.Review(state, Hard, reviewAt)
	easy, _ := fsrs.Review(state, Easy, reviewAt)

	assert.Greater(t, hard.Difficulty, state.Difficulty)
	assert.Less(t, easy.Difficulty, state.Difficulty)
}

func TestFSRS_ElapsedDaysNeverNegative(t *testing.T) {
	fsrs := NewFSRS()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	state, _ := fsrs.Review(newCardState(now), Easy, now)
	// Review again before the last review timestamp
	earlier := now.Add(-time.Hour)
	next, logEntry := fsrs.Review(state, Good, earlier)

	assert.Equal(t, 0, next.ElapsedDays)
	assert.Equal(t, 0, logEntry.ElapsedDays)
}

func TestFSRS_DifficultyStaysInRange(t *testing.T) {
	fsrs := NewFSRS()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	state, _ := fsrs.Review(newCardState(now), Easy, now)
	for i := 0; i < 50; i++ {
		state, _ = fsrs.Review(state, Easy, state.Due)
		if state.State != StateReview {
			state, _ = fsrs.Review(state, Easy, state.Due)
		}
		assert.GreaterOrEqual(t, state.Difficulty, 1.0)
		assert.LessOrEqual(t, state.Difficulty, 10.0)
	}
}
