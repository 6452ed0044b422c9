package scheduling

import "time"

// Rating represents user's performance rating
type Rating int

const (
	Again Rating = 1 // Complete blackout
	Hard  Rating = 2 // Incorrect response; the correct one remembered upon seeing the answer
	Good  Rating = 3 // Correct response after a hesitation
	Easy  Rating = 4 // Perfect response
)

// Valid reports whether the rating is inside the defined range
func (r Rating) Valid() bool {
	return r >= Again && r <= Easy
}

// Correct reports whether the rating counts as a correct answer for
// statistics. Good and Easy are correct, Again and Hard are not.
func (r Rating) Correct() bool {
	return r == Good || r == Easy
}

// State represents the learning state of a card
type State string

const (
	StateNew        State = "new"
	StateLearning   State = "learning"
	StateReview     State = "review"
	StateRelearning State = "relearning"
)

// ScheduleState holds the memory state of a card. It is opaque to the
// rest of the system: only the algorithm provider produces new values.
type ScheduleState struct {
	Due           time.Time
	Stability     float64
	Difficulty    float64
	ElapsedDays   int
	ScheduledDays int
	Reps          int
	Lapses        int
	LastReview    time.Time
	State         State
}

// ReviewLog represents a single review entry emitted alongside the
// updated schedule state. State is the state before the review.
type ReviewLog struct {
	Rating        Rating
	ScheduledDays int
	ElapsedDays   int
	ReviewedAt    time.Time
	State         State
}

// AlgorithmProvider is the pluggable spaced-repetition formula. Review
// must be a deterministic function of its inputs with no side effects.
// The rating is guaranteed valid by the caller.
type AlgorithmProvider interface {
	Review(state ScheduleState, rating Rating, now time.Time) (ScheduleState, ReviewLog)
}
