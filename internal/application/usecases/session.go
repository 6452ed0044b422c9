package usecases

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"wordvault/internal/apperrors"
	"wordvault/internal/domain/card"
	"wordvault/internal/domain/review"
	"wordvault/internal/domain/scheduling"
	"wordvault/internal/domain/stats"
)

// SessionState is the study session lifecycle
type SessionState string

const (
	SessionActive    SessionState = "active"
	SessionPaused    SessionState = "paused"
	SessionCompleted SessionState = "completed"
	SessionCancelled SessionState = "cancelled"
)

// SelectorKind picks which cards a session reviews
type SelectorKind int

const (
	// SelectAllDue reviews every due card
	SelectAllDue SelectorKind = iota
	// SelectGroupDue reviews the due cards of one group
	SelectGroupDue
	// SelectTagsDue reviews the due cards carrying all given tags
	SelectTagsDue
	// SelectNewCards reviews the first N never-reviewed cards
	SelectNewCards
)

// Selector describes the card selection for a new session
type Selector struct {
	Kind    SelectorKind
	GroupID string
	Tags    []string
	Limit   int
}

// SessionProgress is the cursor position within a session
type SessionProgress struct {
	Current int
	Total   int
}

// SessionStats are the running counters of a session
type SessionStats struct {
	Reviewed int
	Correct  int
	Wrong    int
	Accuracy int
}

// Session is one in-memory review pass. It is never persisted: a
// crash abandons the pass without reverting already-committed
// answers. Callers submit answers serially, one visible card at a
// time.
type Session struct {
	id        string
	state     SessionState
	cards     []*card.Card
	cursor    int
	reviewed  int
	correct   int
	wrong     int
	startedAt time.Time
}

// ID returns the session identifier
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state
func (s *Session) State() SessionState { return s.state }

// StartedAt returns when the session was created
func (s *Session) StartedAt() time.Time { return s.startedAt }

// CurrentCard returns the card at the cursor, or nil when the session
// is not active or the cursor has passed the end.
func (s *Session) CurrentCard() *card.Card {
	if s.state != SessionActive || s.cursor >= len(s.cards) {
		return nil
	}
	return s.cards[s.cursor]
}

// Progress reports the cursor position
func (s *Session) Progress() SessionProgress {
	current := s.cursor + 1
	if current > len(s.cards) {
		current = len(s.cards)
	}
	return SessionProgress{Current: current, Total: len(s.cards)}
}

// Stats reports the running counters
func (s *Session) Stats() SessionStats {
	accuracy := 0
	if s.reviewed > 0 {
		accuracy = int(math.Round(float64(s.correct) / float64(s.reviewed) * 100))
	}
	return SessionStats{Reviewed: s.reviewed, Correct: s.correct, Wrong: s.wrong, Accuracy: accuracy}
}

// Pause suspends an active session
func (s *Session) Pause() error {
	if s.state != SessionActive {
		return apperrors.NewValidation(fmt.Sprintf("cannot pause a %s session", s.state))
	}
	s.state = SessionPaused
	return nil
}

// Resume reactivates a paused session
func (s *Session) Resume() error {
	if s.state != SessionPaused {
		return apperrors.NewValidation(fmt.Sprintf("cannot resume a %s session", s.state))
	}
	s.state = SessionActive
	return nil
}

// Cancel discards the session immediately from any non-terminal
// state. Cards already answered keep their updates.
func (s *Session) Cancel() error {
	if s.state == SessionCompleted || s.state == SessionCancelled {
		return apperrors.NewValidation(fmt.Sprintf("cannot cancel a %s session", s.state))
	}
	s.state = SessionCancelled
	return nil
}

// SessionManager creates sessions and processes answers. Whether the
// answer was revealed before submission is a UI-layer precondition,
// not enforced here.
type SessionManager struct {
	cards     card.Repository
	reviews   review.Repository
	scheduler *scheduling.Scheduler
	ledger    *ProgressLedger
	pusher    Pusher
	logger    *zap.Logger
}

// NewSessionManager creates a new session manager. pusher may be nil
// when no remote store is configured.
func NewSessionManager(
	cardRepo card.Repository,
	reviewRepo review.Repository,
	scheduler *scheduling.Scheduler,
	ledger *ProgressLedger,
	pusher Pusher,
	logger *zap.Logger,
) *SessionManager {
	return &SessionManager{
		cards:     cardRepo,
		reviews:   reviewRepo,
		scheduler: scheduler,
		ledger:    ledger,
		pusher:    pusher,
		logger:    logger,
	}
}

// CreateSession selects cards and starts a new review pass. A
// selector that yields zero cards is an empty selection error.
func (m *SessionManager) CreateSession(ctx context.Context, selector Selector) (*Session, error) {
	now := time.Now()

	selected, err := m.selectCards(ctx, selector, now)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, apperrors.NewEmptySelection("no cards match the session selector")
	}

	session := &Session{
		id:        uuid.NewString(),
		state:     SessionActive,
		cards:     selected,
		startedAt: now,
	}
	m.logger.Info("session created",
		zap.String("sessionID", session.id),
		zap.Int("cards", len(selected)))
	return session, nil
}

func (m *SessionManager) selectCards(ctx context.Context, selector Selector, now time.Time) ([]*card.Card, error) {
	switch selector.Kind {
	case SelectGroupDue:
		members, err := m.cards.FindByGroup(ctx, selector.GroupID)
		if err != nil {
			return nil, err
		}
		return m.dueOnly(members, now), nil

	case SelectTagsDue:
		if len(selector.Tags) == 0 {
			return nil, apperrors.NewValidation("tag selector requires at least one tag")
		}
		tagged, err := m.cards.FindByTag(ctx, selector.Tags[0])
		if err != nil {
			return nil, err
		}
		var matched []*card.Card
		for _, c := range tagged {
			all := true
			for _, tag := range selector.Tags[1:] {
				if !c.HasTag(tag) {
					all = false
					break
				}
			}
			if all {
				matched = append(matched, c)
			}
		}
		return m.dueOnly(matched, now), nil

	case SelectNewCards:
		limit := selector.Limit
		if limit <= 0 {
			limit = 20
		}
		return m.cards.FindNew(ctx, limit)

	default:
		return m.cards.FindDue(ctx, now)
	}
}

func (m *SessionManager) dueOnly(cards []*card.Card, now time.Time) []*card.Card {
	var due []*card.Card
	for _, c := range cards {
		if m.scheduler.IsDue(c.Schedule(), now) {
			due = append(due, c)
		}
	}
	return due
}

// SubmitAnswer rates the current card: the schedule advances, the
// card and its review record are persisted, the daily ledger is
// updated and the cursor moves on. Reaching the end completes the
// session.
func (m *SessionManager) SubmitAnswer(ctx context.Context, session *Session, rating scheduling.Rating, responseTimeMs int) error {
	if session.state != SessionActive {
		return apperrors.NewValidation(fmt.Sprintf("cannot submit an answer to a %s session", session.state))
	}
	current := session.CurrentCard()
	if current == nil {
		return apperrors.NewValidation("session has no current card")
	}

	now := time.Now()
	// Pre-review classification: a card is new for statistics iff it
	// had never been reviewed before this submission.
	wasNew := current.TotalReviews() == 0

	nextState, logEntry, err := m.scheduler.Review(current.Schedule(), rating, now)
	if err != nil {
		return err
	}
	proficiency := m.scheduler.ProficiencyOf(nextState, now)

	current.ApplyReview(nextState, proficiency, rating.Correct(), responseTimeMs, now)
	if err := m.cards.Update(ctx, current); err != nil {
		return fmt.Errorf("failed to persist reviewed card: %w", err)
	}

	record := review.NewRecord(current.ID(), logEntry, nextState, responseTimeMs)
	if err := m.reviews.Append(ctx, record); err != nil {
		return fmt.Errorf("failed to append review record: %w", err)
	}

	session.reviewed++
	if rating.Correct() {
		session.correct++
	} else {
		session.wrong++
	}
	session.cursor++
	if session.cursor >= len(session.cards) {
		session.state = SessionCompleted
		m.logger.Info("session completed",
			zap.String("sessionID", session.id),
			zap.Int("reviewed", session.reviewed))
	}

	err = m.ledger.RecordOutcome(ctx, current.ID(), stats.DateOf(now), rating.Correct(), responseTimeMs, wasNew, proficiency)
	if err != nil {
		return fmt.Errorf("failed to update progress ledger: %w", err)
	}

	if m.pusher != nil {
		m.pusher.PushCard(current)
	}
	return nil
}
