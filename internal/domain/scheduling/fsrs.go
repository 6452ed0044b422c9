package scheduling

import (
	"math"
	"time"
)

// FSRS parameters - these can be tuned based on user performance
const (
	// Default parameters for FSRS v4
	defaultWeight0  = 0.4072
	defaultWeight1  = 1.1829
	defaultWeight4  = 7.2102
	defaultWeight5  = 0.5316
	defaultWeight6  = 1.0651
	defaultWeight7  = 0.0234
	defaultWeight8  = 1.616
	defaultWeight9  = 0.1544
	defaultWeight10 = 1.0824
	defaultWeight11 = 1.9813
	defaultWeight12 = 0.0953

	// Request retention (target recall probability)
	requestRetention = 0.9

	// Intervals never exceed this bound, whatever stability says
	maxIntervalDays = 36500
)

// FSRS implements AlgorithmProvider with the FSRS v4 formulas.
// It carries no mutable state and is safe for concurrent use.
type FSRS struct{}

// NewFSRS creates the default algorithm provider
func NewFSRS() *FSRS {
	return &FSRS{}
}

// Review processes a review and returns the updated schedule state
// together with the log entry for the review history.
func (f *FSRS) Review(state ScheduleState, rating Rating, now time.Time) (ScheduleState, ReviewLog) {
	elapsed := 0
	if !state.LastReview.IsZero() {
		elapsed = int(now.Sub(state.LastReview).Hours() / 24)
		if elapsed < 0 {
			elapsed = 0
		}
	}

	logEntry := ReviewLog{
		Rating:        rating,
		ScheduledDays: state.ScheduledDays,
		ElapsedDays:   elapsed,
		ReviewedAt:    now,
		State:         state.State,
	}

	var next ScheduleState
	switch state.State {
	case StateLearning, StateRelearning:
		next = f.reviewLearning(state, rating, now)
	case StateReview:
		next = f.reviewReview(state, rating, now)
	default:
		next = f.reviewNew(state, rating, now)
	}

	next.ElapsedDays = elapsed
	next.LastReview = now
	next.Reps = state.Reps + 1

	return next, logEntry
}

func (f *FSRS) reviewNew(state ScheduleState, rating Rating, now time.Time) ScheduleState {
	next := state
	next.Difficulty = initDifficulty(rating)
	next.Stability = initStability(rating)

	switch rating {
	case Again:
		next.State = StateLearning
		next.Due = now.Add(1 * time.Minute)
		next.ScheduledDays = 0
	case Hard:
		next.State = StateLearning
		next.Due = now.Add(5 * time.Minute)
		next.ScheduledDays = 0
	case Good:
		next.State = StateLearning
		next.Due = now.Add(10 * time.Minute)
		next.ScheduledDays = 0
	case Easy:
		next.State = StateReview
		interval := calculateInterval(next.Stability)
		next.ScheduledDays = interval
		next.Due = now.Add(time.Duration(interval) * 24 * time.Hour)
	}

	return next
}

func (f *FSRS) reviewLearning(state ScheduleState, rating Rating, now time.Time) ScheduleState {
	next := state

	switch rating {
	case Again:
		next.State = StateLearning
		next.Due = now.Add(1 * time.Minute)
		next.ScheduledDays = 0
	case Hard:
		next.State = StateLearning
		next.Due = now.Add(5 * time.Minute)
		next.ScheduledDays = 0
	case Good, Easy:
		next.State = StateReview
		next.Stability = initStability(rating)
		interval := calculateInterval(next.Stability)
		next.ScheduledDays = interval
		next.Due = now.Add(time.Duration(interval) * 24 * time.Hour)
	}

	return next
}

func (f *FSRS) reviewReview(state ScheduleState, rating Rating, now time.Time) ScheduleState {
	next := state

	if rating == Again {
		next.Lapses = state.Lapses + 1
		next.State = StateRelearning
		next.Due = now.Add(5 * time.Minute)
		next.ScheduledDays = 0
		return next
	}

	next.State = StateReview
	next.Stability = nextStability(state.Difficulty, state.Stability, rating)
	next.Difficulty = nextDifficulty(state.Difficulty, rating)
	interval := calculateInterval(next.Stability)
	next.ScheduledDays = interval
	next.Due = now.Add(time.Duration(interval) * 24 * time.Hour)

	return next
}

// initDifficulty calculates initial difficulty based on rating
func initDifficulty(rating Rating) float64 {
	return math.Max(defaultWeight4-defaultWeight5*float64(rating-3), 1.0)
}

// initStability calculates initial stability based on rating
func initStability(rating Rating) float64 {
	return math.Max(defaultWeight0+defaultWeight1*float64(rating-1), 0.1)
}

// nextStability calculates next stability value
func nextStability(difficulty, stability float64, rating Rating) float64 {
	hardPenalty := 1.0
	if rating == Hard {
		hardPenalty = defaultWeight6
	}

	easyBonus := 1.0
	if rating == Easy {
		easyBonus = defaultWeight7
	}

	return stability * (1 + math.Exp(defaultWeight8)*
		(11-difficulty)*
		math.Pow(stability, defaultWeight9)*
		(math.Exp((1-requestRetention)*defaultWeight10)-1)*
		hardPenalty*
		easyBonus)
}

// nextDifficulty calculates next difficulty value
func nextDifficulty(difficulty float64, rating Rating) float64 {
	deltaD := -defaultWeight11 * (float64(rating) - 3)
	newDifficulty := difficulty + deltaD

	// Mean reversion to 5.0
	meanReversion := defaultWeight12 * (5.0 - newDifficulty)
	newDifficulty += meanReversion

	return math.Max(math.Min(newDifficulty, 10.0), 1.0)
}

// calculateInterval calculates review interval based on stability
func calculateInterval(stability float64) int {
	interval := stability * math.Log(requestRetention) / math.Log(0.9)
	interval = math.Max(math.Round(interval), 1)
	return int(math.Min(interval, maxIntervalDays))
}
