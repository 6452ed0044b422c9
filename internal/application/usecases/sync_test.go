package usecases

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wordvault/internal/apperrors"
	"wordvault/internal/domain/card"
	"wordvault/internal/domain/group"
	"wordvault/internal/domain/syncing"
)

type fakeRemote struct {
	mu           sync.Mutex
	cards        map[string]syncing.RemoteCard
	groups       map[string]syncing.RemoteGroup
	cardUpserts  int
	groupUpserts int
	fetchErr     error
	blockFetch   chan struct{}
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		cards:  make(map[string]syncing.RemoteCard),
		groups: make(map[string]syncing.RemoteGroup),
	}
}

func (f *fakeRemote) FetchCards(ctx context.Context, userID string) ([]syncing.RemoteCard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var out []syncing.RemoteCard
	for _, row := range f.cards {
		out = append(out, row)
	}
	return out, nil
}

func (f *fakeRemote) UpsertCard(ctx context.Context, row syncing.RemoteCard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cards[row.ID] = row
	f.cardUpserts++
	return nil
}

func (f *fakeRemote) MarkCardDeleted(ctx context.Context, userID, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row := f.cards[id]
	row.ID = id
	row.Deleted = true
	ms := at.UnixMilli()
	row.DeletedAt = &ms
	row.UpdatedAt = ms
	f.cards[id] = row
	return nil
}

func (f *fakeRemote) FetchGroups(ctx context.Context, userID string) ([]syncing.RemoteGroup, error) {
	if f.blockFetch != nil {
		<-f.blockFetch
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var out []syncing.RemoteGroup
	for _, row := range f.groups {
		out = append(out, row)
	}
	return out, nil
}

func (f *fakeRemote) UpsertGroup(ctx context.Context, row syncing.RemoteGroup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.groups[row.ID] = row
	f.groupUpserts++
	return nil
}

func (f *fakeRemote) MarkGroupDeleted(ctx context.Context, userID, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row := f.groups[id]
	row.ID = id
	row.Deleted = true
	ms := at.UnixMilli()
	row.DeletedAt = &ms
	row.UpdatedAt = ms
	f.groups[id] = row
	return nil
}

func (f *fakeRemote) cardUpsertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cardUpserts
}

type fakeSettings struct {
	identity   string
	autoSync   bool
	lastSyncAt time.Time
}

func (s *fakeSettings) Identity() string             { return s.identity }
func (s *fakeSettings) AutoSyncEnabled() bool        { return s.autoSync }
func (s *fakeSettings) LastSyncAt() time.Time        { return s.lastSyncAt }
func (s *fakeSettings) SetLastSyncAt(t time.Time) error {
	s.lastSyncAt = t
	return nil
}

func newSyncEnv(t *testing.T) (*testEnv, *fakeRemote, *SyncCoordinator) {
	t.Helper()
	env := newTestEnv(t)
	remote := newFakeRemote()
	settings := &fakeSettings{identity: "user-1", autoSync: true}
	coordinator := NewSyncCoordinator(env.cards, env.groups, remote, settings, 10*time.Millisecond, zap.NewNop())
	return env, remote, coordinator
}

func TestSyncCoordinator_AuthRequired(t *testing.T) {
	env := newTestEnv(t)
	remote := newFakeRemote()
	coordinator := NewSyncCoordinator(env.cards, env.groups, remote, &fakeSettings{}, 0, zap.NewNop())

	_, err := coordinator.Sync(context.Background())

	require.Error(t, err)
	assert.True(t, apperrors.IsAuthRequired(err))
	assert.Equal(t, err.Error(), coordinator.Status().LastError)
}

func TestSyncCoordinator_UploadsLocalOnlyEntities(t *testing.T) {
	env, remote, coordinator := newSyncEnv(t)
	ctx := context.Background()

	g := group.NewGroup("Travel", time.Now())
	require.NoError(t, env.groups.Save(ctx, g))
	c := env.addDueCard(t, "trein", g.ID())

	result, err := coordinator.Sync(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Uploaded)
	assert.Equal(t, 0, result.Downloaded)
	assert.Contains(t, remote.cards, c.ID())
	assert.Contains(t, remote.groups, g.ID())
	assert.Equal(t, "user-1", remote.cards[c.ID()].UserID)

	// A second sync finds nothing to move
	result, err = coordinator.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, syncing.Result{}, result)
	assert.False(t, coordinator.Status().LastSyncAt.IsZero())
}

func TestSyncCoordinator_DefaultGroupNeverSyncs(t *testing.T) {
	env, remote, coordinator := newSyncEnv(t)
	ctx := context.Background()

	// A poisoned remote default group must not come down either
	remote.groups[group.DefaultID] = syncing.RemoteGroup{
		ID:        group.DefaultID,
		UserID:    "user-1",
		Name:      "Hijacked",
		UpdatedAt: time.Now().AddDate(1, 0, 0).UnixMilli(),
	}

	_, err := coordinator.Sync(ctx)
	require.NoError(t, err)

	assert.Zero(t, remote.groupUpserts)

	local, err := env.groups.FindByID(ctx, group.DefaultID)
	require.NoError(t, err)
	assert.Equal(t, "Default", local.Name())
}

func TestSyncCoordinator_DownloadsNewerRemote(t *testing.T) {
	env, remote, coordinator := newSyncEnv(t)
	ctx := context.Background()

	c := env.addDueCard(t, "old-text", "")
	row := syncing.CardToRemote(c, "user-1")
	row.Text = "new-text"
	row.UpdatedAt = c.UpdatedAt().Add(time.Hour).UnixMilli()
	remote.cards[row.ID] = row

	result, err := coordinator.Sync(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Downloaded)
	updated, err := env.cards.FindByID(ctx, c.ID())
	require.NoError(t, err)
	assert.Equal(t, "new-text", updated.Text())
}

func TestSyncCoordinator_UploadsNewerLocal(t *testing.T) {
	env, remote, coordinator := newSyncEnv(t)
	ctx := context.Background()

	c := env.addDueCard(t, "fresh", "")
	stale := syncing.CardToRemote(c, "user-1")
	stale.Text = "stale"
	stale.UpdatedAt = c.UpdatedAt().Add(-time.Hour).UnixMilli()
	remote.cards[stale.ID] = stale

	result, err := coordinator.Sync(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Uploaded)
	assert.Equal(t, "fresh", remote.cards[c.ID()].Text)
}

func TestSyncCoordinator_CreatesLocalFromRemote(t *testing.T) {
	env, remote, coordinator := newSyncEnv(t)
	ctx := context.Background()

	now := time.Now()
	incoming := card.NewCard("nieuw", "new", "", env.scheduler.NewSchedule(now), now)
	remote.cards[incoming.ID()] = syncing.CardToRemote(incoming, "user-1")

	result, err := coordinator.Sync(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Downloaded)
	created, err := env.cards.FindByID(ctx, incoming.ID())
	require.NoError(t, err)
	assert.Equal(t, "nieuw", created.Text())
}

func TestSyncCoordinator_CardTombstoneDeletesLocal(t *testing.T) {
	env, remote, coordinator := newSyncEnv(t)
	ctx := context.Background()

	c := env.addDueCard(t, "doomed", "")
	require.NoError(t, remote.MarkCardDeleted(ctx, "user-1", c.ID(), time.Now()))

	result, err := coordinator.Sync(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Downloaded)
	_, err = env.cards.FindByID(ctx, c.ID())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestSyncCoordinator_GroupTombstoneReassignsCards(t *testing.T) {
	env, remote, coordinator := newSyncEnv(t)
	ctx := context.Background()

	g := group.NewGroup("Doomed", time.Now())
	require.NoError(t, env.groups.Save(ctx, g))
	c := env.addDueCard(t, "orphan", g.ID())
	require.NoError(t, remote.MarkGroupDeleted(ctx, "user-1", g.ID(), time.Now()))

	_, err := coordinator.Sync(ctx)
	require.NoError(t, err)

	_, err = env.groups.FindByID(ctx, g.ID())
	assert.True(t, apperrors.IsNotFound(err))

	survivor, err := env.cards.FindByID(ctx, c.ID())
	require.NoError(t, err)
	assert.Equal(t, card.DefaultGroupID, survivor.GroupID())

	// The default group count reflects the adopted card
	dg, err := env.groups.FindByID(ctx, group.DefaultID)
	require.NoError(t, err)
	assert.Equal(t, 1, dg.CardCount())
}

func TestSyncCoordinator_RemoteCardInTombstonedGroupFallsBackToDefault(t *testing.T) {
	env, remote, coordinator := newSyncEnv(t)
	ctx := context.Background()

	now := time.Now()
	deadAt := now.UnixMilli()
	remote.groups["dead"] = syncing.RemoteGroup{
		ID:        "dead",
		UserID:    "user-1",
		Name:      "Dead",
		Deleted:   true,
		DeletedAt: &deadAt,
		UpdatedAt: deadAt,
	}
	incoming := card.NewCard("wees", "orphan", "dead", env.scheduler.NewSchedule(now), now)
	remote.cards[incoming.ID()] = syncing.CardToRemote(incoming, "user-1")

	_, err := coordinator.Sync(ctx)
	require.NoError(t, err)

	// The group never materialized locally, so the card cannot keep
	// pointing at it
	created, err := env.cards.FindByID(ctx, incoming.ID())
	require.NoError(t, err)
	assert.Equal(t, card.DefaultGroupID, created.GroupID())

	dg, err := env.groups.FindByID(ctx, group.DefaultID)
	require.NoError(t, err)
	assert.Equal(t, 1, dg.CardCount())
}

func TestSyncCoordinator_RejectsConcurrentSync(t *testing.T) {
	env, remote, coordinator := newSyncEnv(t)
	env.addDueCard(t, "huis", "")
	remote.blockFetch = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := coordinator.Sync(context.Background())
		done <- err
	}()

	// Wait until the first sync is parked inside the remote fetch
	require.Eventually(t, func() bool {
		return coordinator.Status().InProgress
	}, time.Second, time.Millisecond)

	_, err := coordinator.Sync(context.Background())
	assert.True(t, apperrors.IsSyncInProgress(err))

	close(remote.blockFetch)
	require.NoError(t, <-done)
}

func TestSyncCoordinator_PushCard_DebounceCoalesces(t *testing.T) {
	env, remote, coordinator := newSyncEnv(t)
	c := env.addDueCard(t, "huis", "")

	for i := 0; i < 5; i++ {
		coordinator.PushCard(c)
	}

	require.Eventually(t, func() bool {
		return remote.cardUpsertCount() == 1
	}, time.Second, 5*time.Millisecond)

	// No further uploads fire once the timer has run
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, remote.cardUpsertCount())
}

func TestSyncCoordinator_PushCard_RequiresIdentityAndAutoSync(t *testing.T) {
	env := newTestEnv(t)
	remote := newFakeRemote()
	c := env.addDueCard(t, "huis", "")

	signedOut := NewSyncCoordinator(env.cards, env.groups, remote, &fakeSettings{autoSync: true}, time.Millisecond, zap.NewNop())
	signedOut.PushCard(c)

	disabled := NewSyncCoordinator(env.cards, env.groups, remote, &fakeSettings{identity: "user-1"}, time.Millisecond, zap.NewNop())
	disabled.PushCard(c)

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, remote.cardUpsertCount())
}

func TestSyncCoordinator_Flush_RunsPendingPushes(t *testing.T) {
	env := newTestEnv(t)
	remote := newFakeRemote()
	settings := &fakeSettings{identity: "user-1", autoSync: true}
	coordinator := NewSyncCoordinator(env.cards, env.groups, remote, settings, time.Hour, zap.NewNop())
	c := env.addDueCard(t, "huis", "")

	coordinator.PushCard(c)
	coordinator.Flush()

	require.Eventually(t, func() bool {
		return remote.cardUpsertCount() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestSyncCoordinator_TombstoneCard(t *testing.T) {
	env, remote, coordinator := newSyncEnv(t)
	ctx := context.Background()
	c := env.addDueCard(t, "weg", "")
	_, err := coordinator.Sync(ctx)
	require.NoError(t, err)

	coordinator.TombstoneCard(ctx, c.ID())

	row := remote.cards[c.ID()]
	assert.True(t, row.Deleted)
	require.NotNil(t, row.DeletedAt)
}
