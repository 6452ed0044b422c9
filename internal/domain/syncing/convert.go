package syncing

import (
	"time"

	"wordvault/internal/domain/card"
	"wordvault/internal/domain/group"
	"wordvault/internal/domain/scheduling"
)

// CardToRemote flattens a card into its remote row shape
func CardToRemote(c *card.Card, userID string) RemoteCard {
	s := c.Schedule()
	return RemoteCard{
		ID:            c.ID(),
		UserID:        userID,
		Text:          c.Text(),
		Translation:   c.Translation(),
		Phonetic:      c.Phonetic(),
		Notes:         c.Notes(),
		Examples:      c.Examples(),
		Senses:        c.Senses(),
		GroupID:       c.GroupID(),
		Tags:          c.Tags(),
		Due:           s.Due.UnixMilli(),
		Stability:     s.Stability,
		Difficulty:    s.Difficulty,
		ElapsedDays:   s.ElapsedDays,
		ScheduledDays: s.ScheduledDays,
		Reps:          s.Reps,
		Lapses:        s.Lapses,
		LastReview:    millisOrZero(s.LastReview),
		State:         string(s.State),
		Proficiency:   string(c.Proficiency()),
		TotalReviews:  c.TotalReviews(),
		CorrectCount:  c.CorrectCount(),
		WrongCount:    c.WrongCount(),
		AvgResponseMs: c.AvgResponseMs(),
		Favorite:      c.Favorite(),
		CreatedAt:     c.CreatedAt().UnixMilli(),
		UpdatedAt:     c.UpdatedAt().UnixMilli(),
	}
}

// CardFromRemote rebuilds a card entity from its remote row
func CardFromRemote(row RemoteCard) *card.Card {
	return card.Restore(card.RestoredCard{
		ID:          row.ID,
		Text:        row.Text,
		Translation: row.Translation,
		Phonetic:    row.Phonetic,
		Notes:       row.Notes,
		Examples:    row.Examples,
		Senses:      row.Senses,
		GroupID:     row.GroupID,
		Tags:        row.Tags,
		Schedule: scheduling.ScheduleState{
			Due:           time.UnixMilli(row.Due),
			Stability:     row.Stability,
			Difficulty:    row.Difficulty,
			ElapsedDays:   row.ElapsedDays,
			ScheduledDays: row.ScheduledDays,
			Reps:          row.Reps,
			Lapses:        row.Lapses,
			LastReview:    timeOrZero(row.LastReview),
			State:         scheduling.State(row.State),
		},
		Proficiency:   scheduling.Proficiency(row.Proficiency),
		TotalReviews:  row.TotalReviews,
		CorrectCount:  row.CorrectCount,
		WrongCount:    row.WrongCount,
		AvgResponseMs: row.AvgResponseMs,
		Favorite:      row.Favorite,
		CreatedAt:     time.UnixMilli(row.CreatedAt),
		UpdatedAt:     time.UnixMilli(row.UpdatedAt),
	})
}

// GroupToRemote flattens a group into its remote row shape. The
// cached card count stays local: each replica recomputes its own.
func GroupToRemote(g *group.Group, userID string) RemoteGroup {
	return RemoteGroup{
		ID:          g.ID(),
		UserID:      userID,
		Name:        g.Name(),
		Description: g.Description(),
		Color:       g.Color(),
		CreatedAt:   g.CreatedAt().UnixMilli(),
		UpdatedAt:   g.UpdatedAt().UnixMilli(),
	}
}

// GroupFromRemote rebuilds a group entity from its remote row
func GroupFromRemote(row RemoteGroup) *group.Group {
	return group.Restore(group.RestoredGroup{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Color:       row.Color,
		CreatedAt:   time.UnixMilli(row.CreatedAt),
		UpdatedAt:   time.UnixMilli(row.UpdatedAt),
	})
}

func millisOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func timeOrZero(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
