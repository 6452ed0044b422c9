package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordvault/internal/domain/card"
	"wordvault/internal/domain/group"
	"wordvault/internal/domain/scheduling"
)

// Copying every entity of a populated store into a fresh database must
// reproduce the collection exactly. Card counts are derived state and
// stay out of the comparison.
func TestStore_RoundTripIntoFreshDatabase(t *testing.T) {
	source := openTestDB(t)
	sourceCards := NewCardRepository(source)
	sourceGroups := NewGroupRepository(source)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	travel := group.NewGroup("Travel", now)
	travel.Describe("trips abroad", "#00ff00", now)
	require.NoError(t, sourceGroups.Save(ctx, travel))

	reviewed := testCard(t, "trein", travel.ID(), now)
	reviewed.ApplyReview(scheduling.ScheduleState{
		Due:           now.AddDate(0, 0, 7),
		Stability:     6.2,
		Difficulty:    4.1,
		ScheduledDays: 7,
		Reps:          3,
		LastReview:    now,
		State:         scheduling.StateReview,
	}, scheduling.ProficiencyReview, true, 2100, now)

	rich := testCard(t, "huis", "", now)
	rich.UpdateContent("hœys", "common noun", []string{"ik ga naar huis"},
		[]card.Sense{{Translation: "house", PartOfSpeech: "noun"}}, now)
	rich.SetTags([]string{"a1", "nouns"}, now)
	rich.SetFavorite(true, now)

	plain := testCard(t, "fiets", travel.ID(), now)
	for _, c := range []*card.Card{reviewed, rich, plain} {
		require.NoError(t, sourceCards.Save(ctx, c))
	}

	allCards, err := sourceCards.FindAll(ctx)
	require.NoError(t, err)
	allGroups, err := sourceGroups.FindAll(ctx)
	require.NoError(t, err)

	target := openTestDB(t)
	targetCards := NewCardRepository(target)
	targetGroups := NewGroupRepository(target)

	require.NoError(t, targetCards.SaveBatch(ctx, allCards))
	for _, g := range allGroups {
		// The fresh database already seeded its own default group
		if g.IsDefault() {
			continue
		}
		require.NoError(t, targetGroups.Save(ctx, g))
	}

	copiedCards, err := targetCards.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, copiedCards, len(allCards))

	byID := make(map[string]*card.Card, len(copiedCards))
	for _, c := range copiedCards {
		byID[c.ID()] = c
	}
	for _, want := range allCards {
		got, ok := byID[want.ID()]
		require.True(t, ok, "card %s missing after round trip", want.ID())
		assert.Equal(t, want.Text(), got.Text())
		assert.Equal(t, want.Translation(), got.Translation())
		assert.Equal(t, want.Phonetic(), got.Phonetic())
		assert.Equal(t, want.Notes(), got.Notes())
		assert.Equal(t, want.Examples(), got.Examples())
		assert.Equal(t, want.Senses(), got.Senses())
		assert.Equal(t, want.GroupID(), got.GroupID())
		assert.Equal(t, want.Tags(), got.Tags())
		assert.Equal(t, want.Schedule(), got.Schedule())
		assert.Equal(t, want.Proficiency(), got.Proficiency())
		assert.Equal(t, want.TotalReviews(), got.TotalReviews())
		assert.Equal(t, want.Favorite(), got.Favorite())
		assert.Equal(t, want.UpdatedAt().UnixMilli(), got.UpdatedAt().UnixMilli())
	}

	copiedGroups, err := targetGroups.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, copiedGroups, len(allGroups))

	groupByID := make(map[string]*group.Group, len(copiedGroups))
	for _, g := range copiedGroups {
		groupByID[g.ID()] = g
	}
	for _, want := range allGroups {
		got, ok := groupByID[want.ID()]
		require.True(t, ok, "group %s missing after round trip", want.ID())
		assert.Equal(t, want.Name(), got.Name())
		assert.Equal(t, want.Description(), got.Description())
		assert.Equal(t, want.Color(), got.Color())
	}
}
