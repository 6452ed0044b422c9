package scheduling

import (
	"fmt"
	"time"

	"wordvault/internal/apperrors"
)

// Proficiency is the coarse bucket shown to the user. It adds
// "mastered" on top of the lifecycle states.
type Proficiency string

const (
	ProficiencyNew      Proficiency = "new"
	ProficiencyLearning Proficiency = "learning"
	ProficiencyReview   Proficiency = "review"
	ProficiencyMastered Proficiency = "mastered"
)

// masteredHorizon is how far out the due date must sit, while in the
// review state, for a card to count as mastered.
const masteredHorizon = 30 * 24 * time.Hour

// Scheduler wraps the algorithm provider and owns the due-date
// bookkeeping. It holds no mutable state and is safe for concurrent
// use.
type Scheduler struct {
	provider AlgorithmProvider
}

// NewScheduler creates a scheduler backed by the given provider
func NewScheduler(provider AlgorithmProvider) *Scheduler {
	return &Scheduler{provider: provider}
}

// NewSchedule returns a fresh schedule state: lifecycle new, due now
func (s *Scheduler) NewSchedule(now time.Time) ScheduleState {
	return ScheduleState{
		Due:        now,
		Stability:  1.0,
		Difficulty: 5.0,
		State:      StateNew,
	}
}

// Review applies a rating. The only failure mode is a rating outside
// the defined range, which is a contract violation and never retried.
func (s *Scheduler) Review(state ScheduleState, rating Rating, now time.Time) (ScheduleState, ReviewLog, error) {
	if !rating.Valid() {
		return state, ReviewLog{}, apperrors.NewValidation(fmt.Sprintf("rating %d is outside the valid range 1-4", rating))
	}

	next, logEntry := s.provider.Review(state, rating, now)
	return next, logEntry, nil
}

// ProficiencyOf derives the coarse bucket from the schedule state.
// Mastered requires the review lifecycle state and a due date more
// than thirty days out at the moment of computation.
func (s *Scheduler) ProficiencyOf(state ScheduleState, now time.Time) Proficiency {
	switch state.State {
	case StateReview:
		if state.Due.Sub(now) > masteredHorizon {
			return ProficiencyMastered
		}
		return ProficiencyReview
	case StateLearning, StateRelearning:
		return ProficiencyLearning
	default:
		return ProficiencyNew
	}
}

// IsDue reports whether the card should be reviewed at the given time
func (s *Scheduler) IsDue(state ScheduleState, now time.Time) bool {
	return !state.Due.After(now)
}
