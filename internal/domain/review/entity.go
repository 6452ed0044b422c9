package review

import (
	"time"

	"wordvault/internal/domain/scheduling"
)

// Record is an immutable, append-only log entry produced by every
// rating. It carries the schedule-state snapshot emitted by the
// algorithm provider and is never updated after insertion.
type Record struct {
	id             int64
	cardID         string
	rating         scheduling.Rating
	responseTimeMs int
	reviewedAt     time.Time
	stateBefore    scheduling.State
	stateAfter     scheduling.State
	stability      float64
	difficulty     float64
	scheduledDays  int
	elapsedDays    int
}

// NewRecord creates a record from a review log entry and the schedule
// state the provider emitted for it.
func NewRecord(cardID string, logEntry scheduling.ReviewLog, after scheduling.ScheduleState, responseTimeMs int) *Record {
	return &Record{
		cardID:         cardID,
		rating:         logEntry.Rating,
		responseTimeMs: responseTimeMs,
		reviewedAt:     logEntry.ReviewedAt,
		stateBefore:    logEntry.State,
		stateAfter:     after.State,
		stability:      after.Stability,
		difficulty:     after.Difficulty,
		scheduledDays:  after.ScheduledDays,
		elapsedDays:    logEntry.ElapsedDays,
	}
}

// Getters
func (r *Record) ID() int64                     { return r.id }
func (r *Record) CardID() string                { return r.cardID }
func (r *Record) Rating() scheduling.Rating     { return r.rating }
func (r *Record) ResponseTimeMs() int           { return r.responseTimeMs }
func (r *Record) ReviewedAt() time.Time         { return r.reviewedAt }
func (r *Record) StateBefore() scheduling.State { return r.stateBefore }
func (r *Record) StateAfter() scheduling.State  { return r.stateAfter }
func (r *Record) Stability() float64            { return r.stability }
func (r *Record) Difficulty() float64           { return r.difficulty }
func (r *Record) ScheduledDays() int            { return r.scheduledDays }
func (r *Record) ElapsedDays() int              { return r.elapsedDays }

// SetID sets the record ID (used by repository)
func (r *Record) SetID(id int64) {
	r.id = id
}

// RestoredRecord carries every persisted field of a record
type RestoredRecord struct {
	ID             int64
	CardID         string
	Rating         scheduling.Rating
	ResponseTimeMs int
	ReviewedAt     time.Time
	StateBefore    scheduling.State
	StateAfter     scheduling.State
	Stability      float64
	Difficulty     float64
	ScheduledDays  int
	ElapsedDays    int
}

// Restore rebuilds a record from persisted state
func Restore(r RestoredRecord) *Record {
	return &Record{
		id:             r.ID,
		cardID:         r.CardID,
		rating:         r.Rating,
		responseTimeMs: r.ResponseTimeMs,
		reviewedAt:     r.ReviewedAt,
		stateBefore:    r.StateBefore,
		stateAfter:     r.StateAfter,
		stability:      r.Stability,
		difficulty:     r.Difficulty,
		scheduledDays:  r.ScheduledDays,
		elapsedDays:    r.ElapsedDays,
	}
}
