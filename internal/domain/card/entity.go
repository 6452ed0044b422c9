package card

import (
	"time"

	"github.com/google/uuid"

	"wordvault/internal/domain/scheduling"
)

// Sense is one structured translation of a card's text
type Sense struct {
	Translation  string `json:"translation"`
	PartOfSpeech string `json:"part_of_speech,omitempty"`
}

// Card represents a single learnable vocabulary item
type Card struct {
	id            string
	text          string
	translation   string
	phonetic      string
	notes         string
	examples      []string
	senses        []Sense
	groupID       string
	tags          []string
	schedule      scheduling.ScheduleState
	proficiency   scheduling.Proficiency
	totalReviews  int
	correctCount  int
	wrongCount    int
	avgResponseMs float64
	favorite      bool
	createdAt     time.Time
	updatedAt     time.Time
}

// NewCard creates a new card with a fresh schedule state
func NewCard(text, translation, groupID string, schedule scheduling.ScheduleState, now time.Time) *Card {
	if groupID == "" {
		groupID = DefaultGroupID
	}
	return &Card{
		id:          uuid.NewString(),
		text:        text,
		translation: translation,
		groupID:     groupID,
		schedule:    schedule,
		proficiency: scheduling.ProficiencyNew,
		createdAt:   now,
		updatedAt:   now,
	}
}

// DefaultGroupID is the reserved group every card falls back to. It
// always exists, is never deleted and never synced.
const DefaultGroupID = "default"

// Getters
func (c *Card) ID() string                          { return c.id }
func (c *Card) Text() string                        { return c.text }
func (c *Card) Translation() string                 { return c.translation }
func (c *Card) Phonetic() string                    { return c.phonetic }
func (c *Card) Notes() string                       { return c.notes }
func (c *Card) Examples() []string                  { return c.examples }
func (c *Card) Senses() []Sense                     { return c.senses }
func (c *Card) GroupID() string                     { return c.groupID }
func (c *Card) Tags() []string                      { return c.tags }
func (c *Card) Schedule() scheduling.ScheduleState  { return c.schedule }
func (c *Card) Proficiency() scheduling.Proficiency { return c.proficiency }
func (c *Card) TotalReviews() int                   { return c.totalReviews }
func (c *Card) CorrectCount() int                   { return c.correctCount }
func (c *Card) WrongCount() int                     { return c.wrongCount }
func (c *Card) AvgResponseMs() float64              { return c.avgResponseMs }
func (c *Card) Favorite() bool                      { return c.favorite }
func (c *Card) CreatedAt() time.Time                { return c.createdAt }
func (c *Card) UpdatedAt() time.Time                { return c.updatedAt }

// NextReview is the cached copy of the schedule due date, kept on the
// entity so the store can index on it.
func (c *Card) NextReview() time.Time { return c.schedule.Due }

// HasTag reports whether the card carries the given tag
func (c *Card) HasTag(tag string) bool {
	for _, t := range c.tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ApplyReview records the outcome of one rating: the new schedule
// state, the refreshed proficiency bucket and the answer counters.
func (c *Card) ApplyReview(next scheduling.ScheduleState, proficiency scheduling.Proficiency, correct bool, responseTimeMs int, now time.Time) {
	c.schedule = next
	c.proficiency = proficiency
	c.totalReviews++
	if correct {
		c.correctCount++
	} else {
		c.wrongCount++
	}
	// Running average over all reviews
	c.avgResponseMs += (float64(responseTimeMs) - c.avgResponseMs) / float64(c.totalReviews)
	c.touch(now)
}

// Rename updates the card's text and translation
func (c *Card) Rename(text, translation string, now time.Time) {
	c.text = text
	c.translation = translation
	c.touch(now)
}

// UpdateContent replaces the optional content fields
func (c *Card) UpdateContent(phonetic, notes string, examples []string, senses []Sense, now time.Time) {
	c.phonetic = phonetic
	c.notes = notes
	c.examples = examples
	c.senses = senses
	c.touch(now)
}

// SetFavorite toggles the favorite flag
func (c *Card) SetFavorite(favorite bool, now time.Time) {
	c.favorite = favorite
	c.touch(now)
}

// MoveToGroup reassigns the card to another group
func (c *Card) MoveToGroup(groupID string, now time.Time) {
	if groupID == "" {
		groupID = DefaultGroupID
	}
	c.groupID = groupID
	c.touch(now)
}

// SetTags replaces the tag set
func (c *Card) SetTags(tags []string, now time.Time) {
	c.tags = tags
	c.touch(now)
}

// SetProficiency refreshes the cached proficiency bucket without
// bumping updatedAt. The bucket is derived state, not an edit.
func (c *Card) SetProficiency(p scheduling.Proficiency) {
	c.proficiency = p
}

// touch keeps updatedAt strictly non-decreasing; it is the sync
// conflict key, so equal or backwards timestamps are bumped forward.
func (c *Card) touch(now time.Time) {
	if !now.After(c.updatedAt) {
		now = c.updatedAt.Add(time.Millisecond)
	}
	c.updatedAt = now
}

// RestoredCard carries every persisted field of a card. Used by the
// repositories and the sync layer to rehydrate entities.
type RestoredCard struct {
	ID            string
	Text          string
	Translation   string
	Phonetic      string
	Notes         string
	Examples      []string
	Senses        []Sense
	GroupID       string
	Tags          []string
	Schedule      scheduling.ScheduleState
	Proficiency   scheduling.Proficiency
	TotalReviews  int
	CorrectCount  int
	WrongCount    int
	AvgResponseMs float64
	Favorite      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Restore rebuilds a card from persisted state
func Restore(r RestoredCard) *Card {
	groupID := r.GroupID
	if groupID == "" {
		groupID = DefaultGroupID
	}
	proficiency := r.Proficiency
	if proficiency == "" {
		proficiency = scheduling.ProficiencyNew
	}
	return &Card{
		id:            r.ID,
		text:          r.Text,
		translation:   r.Translation,
		phonetic:      r.Phonetic,
		notes:         r.Notes,
		examples:      r.Examples,
		senses:        r.Senses,
		groupID:       groupID,
		tags:          r.Tags,
		schedule:      r.Schedule,
		proficiency:   proficiency,
		totalReviews:  r.TotalReviews,
		correctCount:  r.CorrectCount,
		wrongCount:    r.WrongCount,
		avgResponseMs: r.AvgResponseMs,
		favorite:      r.Favorite,
		createdAt:     r.CreatedAt,
		updatedAt:     r.UpdatedAt,
	}
}
