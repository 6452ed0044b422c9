package stats

import "time"

// DateFormat is the calendar-date key for daily summaries, local time
const DateFormat = "2006-01-02"

// DateOf formats a timestamp as a summary key in local time
func DateOf(t time.Time) string {
	return t.Local().Format(DateFormat)
}

// DailySummary aggregates one calendar day of studying. The distinct
// card sets deduplicate the per-day counts; the answer counters are
// not deduplicated.
type DailySummary struct {
	date           string
	newCards       int
	reviewedCards  int
	masteredCards  int
	totalAnswers   int
	correctAnswers int
	wrongAnswers   int
	studyTimeMs    int64
	studiedIDs     map[string]struct{}
	newIDs         map[string]struct{}
	masteredIDs    map[string]struct{}
}

// NewDailySummary creates an empty summary for a date
func NewDailySummary(date string) *DailySummary {
	return &DailySummary{
		date:        date,
		studiedIDs:  make(map[string]struct{}),
		newIDs:      make(map[string]struct{}),
		masteredIDs: make(map[string]struct{}),
	}
}

// Getters
func (s *DailySummary) Date() string        { return s.date }
func (s *DailySummary) NewCards() int       { return s.newCards }
func (s *DailySummary) ReviewedCards() int  { return s.reviewedCards }
func (s *DailySummary) MasteredCards() int  { return s.masteredCards }
func (s *DailySummary) TotalAnswers() int   { return s.totalAnswers }
func (s *DailySummary) CorrectAnswers() int { return s.correctAnswers }
func (s *DailySummary) WrongAnswers() int   { return s.wrongAnswers }
func (s *DailySummary) StudyTimeMs() int64  { return s.studyTimeMs }

// StudiedIDs returns the distinct cards reviewed this day
func (s *DailySummary) StudiedIDs() []string { return setToSlice(s.studiedIDs) }

// NewIDs returns the distinct cards first reviewed this day
func (s *DailySummary) NewIDs() []string { return setToSlice(s.newIDs) }

// MasteredIDs returns the distinct cards mastered this day
func (s *DailySummary) MasteredIDs() []string { return setToSlice(s.masteredIDs) }

// Active reports whether any studying happened this day
func (s *DailySummary) Active() bool {
	return s.reviewedCards > 0 || s.newCards > 0
}

// RecordAnswer folds one answered card into the summary. Re-processing
// the same card on the same date increments the answer counters but
// not the distinct-card counts. A card enters the mastered set at most
// once, the first time its post-review proficiency lands there.
func (s *DailySummary) RecordAnswer(cardID string, correct, wasNewCard, nowMastered bool, responseTimeMs int) {
	s.totalAnswers++
	if correct {
		s.correctAnswers++
	} else {
		s.wrongAnswers++
	}
	s.studyTimeMs += int64(responseTimeMs)

	if _, seen := s.studiedIDs[cardID]; !seen {
		s.studiedIDs[cardID] = struct{}{}
		s.reviewedCards++
	}
	if wasNewCard {
		if _, seen := s.newIDs[cardID]; !seen {
			s.newIDs[cardID] = struct{}{}
			s.newCards++
		}
	}
	if nowMastered {
		if _, seen := s.masteredIDs[cardID]; !seen {
			s.masteredIDs[cardID] = struct{}{}
			s.masteredCards++
		}
	}
}

// Streak holds the consecutive-day study counters
type Streak struct {
	Current int
	Longest int
}

// RestoredSummary carries every persisted field of a daily summary
type RestoredSummary struct {
	Date           string
	NewCards       int
	ReviewedCards  int
	MasteredCards  int
	TotalAnswers   int
	CorrectAnswers int
	WrongAnswers   int
	StudyTimeMs    int64
	StudiedIDs     []string
	NewIDs         []string
	MasteredIDs    []string
}

// Restore rebuilds a summary from persisted state
func Restore(r RestoredSummary) *DailySummary {
	return &DailySummary{
		date:           r.Date,
		newCards:       r.NewCards,
		reviewedCards:  r.ReviewedCards,
		masteredCards:  r.MasteredCards,
		totalAnswers:   r.TotalAnswers,
		correctAnswers: r.CorrectAnswers,
		wrongAnswers:   r.WrongAnswers,
		studyTimeMs:    r.StudyTimeMs,
		studiedIDs:     sliceToSet(r.StudiedIDs),
		newIDs:         sliceToSet(r.NewIDs),
		masteredIDs:    sliceToSet(r.MasteredIDs),
	}
}

func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

func sliceToSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
