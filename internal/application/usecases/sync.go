package usecases

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"wordvault/internal/apperrors"
	"wordvault/internal/domain/card"
	"wordvault/internal/domain/group"
	"wordvault/internal/domain/syncing"
)

// Pusher schedules best-effort remote writes for single entities.
// Failures on this path are logged and swallowed: the next full sync
// reconciles any loss.
type Pusher interface {
	PushCard(c *card.Card)
	PushGroup(g *group.Group)
	TombstoneCard(ctx context.Context, id string)
	TombstoneGroup(ctx context.Context, id string)
}

// DefaultDebounce is the delay before a pushed entity is uploaded.
// Repeated pushes for one id within the window coalesce.
const DefaultDebounce = time.Second

// SyncCoordinator reconciles the local store with the remote replica
// under last-writer-wins with tombstones, and runs the debounced
// single-entity push path.
type SyncCoordinator struct {
	cards    card.Repository
	groups   group.Repository
	remote   syncing.RemoteStore
	settings syncing.Settings
	logger   *zap.Logger

	inFlight atomic.Bool

	debounce time.Duration
	timerMu  sync.Mutex
	timers   map[string]*time.Timer

	statusMu   sync.Mutex
	lastSyncAt time.Time
	lastError  string
}

// NewSyncCoordinator creates a sync coordinator
func NewSyncCoordinator(
	cardRepo card.Repository,
	groupRepo group.Repository,
	remote syncing.RemoteStore,
	settings syncing.Settings,
	debounce time.Duration,
	logger *zap.Logger,
) *SyncCoordinator {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &SyncCoordinator{
		cards:      cardRepo,
		groups:     groupRepo,
		remote:     remote,
		settings:   settings,
		logger:     logger,
		debounce:   debounce,
		timers:     make(map[string]*time.Timer),
		lastSyncAt: settings.LastSyncAt(),
	}
}

// Sync runs one full bidirectional reconciliation. Mutually
// exclusive: a second call while one is in flight fails fast.
func (c *SyncCoordinator) Sync(ctx context.Context) (syncing.Result, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return syncing.Result{}, apperrors.NewSyncInProgress()
	}
	defer c.inFlight.Store(false)

	identity := c.settings.Identity()
	if identity == "" {
		err := apperrors.NewAuthRequired()
		c.recordOutcome(err)
		return syncing.Result{}, err
	}

	var result syncing.Result
	if err := c.reconcileGroups(ctx, identity, &result); err != nil {
		c.recordOutcome(err)
		return result, err
	}
	if err := c.reconcileCards(ctx, identity, &result); err != nil {
		c.recordOutcome(err)
		return result, err
	}
	if err := c.recountGroups(ctx); err != nil {
		// Cached counts only; the entities themselves converged
		c.logger.Warn("failed to recount groups after sync", zap.Error(err))
	}

	c.recordOutcome(nil)
	c.logger.Info("sync complete",
		zap.Int("uploaded", result.Uploaded),
		zap.Int("downloaded", result.Downloaded))
	return result, nil
}

// Status reports the sync state for the UI layer
func (c *SyncCoordinator) Status() syncing.Status {
	c.statusMu.Lock()
	defer c.statusMu.Unlock()
	return syncing.Status{
		LastSyncAt: c.lastSyncAt,
		InProgress: c.inFlight.Load(),
		LastError:  c.lastError,
	}
}

func (c *SyncCoordinator) recordOutcome(err error) {
	c.statusMu.Lock()
	defer c.statusMu.Unlock()
	if err != nil {
		c.lastError = err.Error()
		return
	}
	c.lastError = ""
	c.lastSyncAt = time.Now()
	if serr := c.settings.SetLastSyncAt(c.lastSyncAt); serr != nil {
		c.logger.Warn("failed to persist last sync time", zap.Error(serr))
	}
}

func (c *SyncCoordinator) reconcileGroups(ctx context.Context, identity string, result *syncing.Result) error {
	locals, err := c.groups.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load local groups: %w", err)
	}
	remotes, err := c.remote.FetchGroups(ctx, identity)
	if err != nil {
		return err
	}

	remoteByID := make(map[string]syncing.RemoteGroup, len(remotes))
	for _, row := range remotes {
		remoteByID[row.ID] = row
	}

	matched := make(map[string]bool, len(locals))
	for _, g := range locals {
		// The reserved default group never syncs
		if g.IsDefault() {
			continue
		}
		row, ok := remoteByID[g.ID()]
		matched[g.ID()] = true

		switch syncing.Decide(g.UpdatedAt(), ok, row.Deleted, time.UnixMilli(row.UpdatedAt)) {
		case syncing.ActionUpload:
			if err := c.remote.UpsertGroup(ctx, syncing.GroupToRemote(g, identity)); err != nil {
				return err
			}
			result.Uploaded++
		case syncing.ActionDownload:
			downloaded := syncing.GroupFromRemote(row)
			downloaded.SetCardCount(g.CardCount())
			if err := c.groups.Update(ctx, downloaded); err != nil {
				return fmt.Errorf("failed to overwrite local group %s: %w", g.ID(), err)
			}
			result.Downloaded++
		case syncing.ActionDeleteLocal:
			if err := c.deleteLocalGroup(ctx, g.ID()); err != nil {
				return err
			}
			result.Downloaded++
		}
	}

	for id, row := range remoteByID {
		if matched[id] || row.Deleted || id == group.DefaultID {
			continue
		}
		if err := c.groups.Save(ctx, syncing.GroupFromRemote(row)); err != nil {
			return fmt.Errorf("failed to create local group %s: %w", id, err)
		}
		result.Downloaded++
	}
	return nil
}

// deleteLocalGroup applies a remote tombstone: member cards fall back
// to the default group before the group row goes away.
func (c *SyncCoordinator) deleteLocalGroup(ctx context.Context, id string) error {
	if err := c.cards.ReassignGroup(ctx, id, card.DefaultGroupID, time.Now()); err != nil {
		return err
	}
	if err := c.groups.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete local group %s: %w", id, err)
	}
	return nil
}

func (c *SyncCoordinator) reconcileCards(ctx context.Context, identity string, result *syncing.Result) error {
	locals, err := c.cards.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load local cards: %w", err)
	}
	remotes, err := c.remote.FetchCards(ctx, identity)
	if err != nil {
		return err
	}

	// Group reconciliation already ran, so this set is the final word
	// on which group ids resolve locally.
	localGroups, err := c.groups.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load local groups: %w", err)
	}
	validGroup := make(map[string]bool, len(localGroups))
	for _, g := range localGroups {
		validGroup[g.ID()] = true
	}

	remoteByID := make(map[string]syncing.RemoteCard, len(remotes))
	for _, row := range remotes {
		remoteByID[row.ID] = row
	}

	matched := make(map[string]bool, len(locals))
	for _, localCard := range locals {
		row, ok := remoteByID[localCard.ID()]
		matched[localCard.ID()] = true

		switch syncing.Decide(localCard.UpdatedAt(), ok, row.Deleted, time.UnixMilli(row.UpdatedAt)) {
		case syncing.ActionUpload:
			if err := c.remote.UpsertCard(ctx, syncing.CardToRemote(localCard, identity)); err != nil {
				return err
			}
			result.Uploaded++
		case syncing.ActionDownload:
			if err := c.cards.Update(ctx, adoptRemoteCard(row, validGroup)); err != nil {
				return fmt.Errorf("failed to overwrite local card %s: %w", localCard.ID(), err)
			}
			result.Downloaded++
		case syncing.ActionDeleteLocal:
			if err := c.cards.Delete(ctx, localCard.ID()); err != nil {
				return fmt.Errorf("failed to delete local card %s: %w", localCard.ID(), err)
			}
			result.Downloaded++
		}
	}

	for id, row := range remoteByID {
		if matched[id] || row.Deleted {
			continue
		}
		if err := c.cards.Save(ctx, adoptRemoteCard(row, validGroup)); err != nil {
			return fmt.Errorf("failed to create local card %s: %w", id, err)
		}
		result.Downloaded++
	}
	return nil
}

// adoptRemoteCard rehydrates a remote row for local storage. A group
// id that no longer resolves locally (the group was tombstoned) falls
// back to the default group; the bumped updatedAt makes the next sync
// upload the correction.
func adoptRemoteCard(row syncing.RemoteCard, validGroup map[string]bool) *card.Card {
	cd := syncing.CardFromRemote(row)
	if !validGroup[cd.GroupID()] {
		cd.MoveToGroup(card.DefaultGroupID, time.Now())
	}
	return cd
}

func (c *SyncCoordinator) recountGroups(ctx context.Context) error {
	groups, err := c.groups.FindAll(ctx)
	if err != nil {
		return err
	}
	for _, g := range groups {
		count, err := c.cards.CountByGroup(ctx, g.ID())
		if err != nil {
			return err
		}
		if count != g.CardCount() {
			g.SetCardCount(count)
			if err := c.groups.Update(ctx, g); err != nil {
				return err
			}
		}
	}
	return nil
}

// PushCard schedules a debounced upload of the card's current state
func (c *SyncCoordinator) PushCard(cd *card.Card) {
	identity := c.settings.Identity()
	if identity == "" || !c.settings.AutoSyncEnabled() {
		return
	}
	row := syncing.CardToRemote(cd, identity)
	c.schedule("card:"+cd.ID(), func() {
		if err := c.remote.UpsertCard(context.Background(), row); err != nil {
			c.logger.Warn("debounced card push failed", zap.String("cardID", row.ID), zap.Error(err))
		}
	})
}

// PushGroup schedules a debounced upload of the group's current state
func (c *SyncCoordinator) PushGroup(g *group.Group) {
	identity := c.settings.Identity()
	if identity == "" || !c.settings.AutoSyncEnabled() || g.IsDefault() {
		return
	}
	row := syncing.GroupToRemote(g, identity)
	c.schedule("group:"+g.ID(), func() {
		if err := c.remote.UpsertGroup(context.Background(), row); err != nil {
			c.logger.Warn("debounced group push failed", zap.String("groupID", row.ID), zap.Error(err))
		}
	})
}

// TombstoneCard soft-deletes the remote copy of a locally deleted
// card. Best-effort: errors are logged, not surfaced.
func (c *SyncCoordinator) TombstoneCard(ctx context.Context, id string) {
	identity := c.settings.Identity()
	if identity == "" {
		return
	}
	if err := c.remote.MarkCardDeleted(ctx, identity, id, time.Now()); err != nil {
		c.logger.Warn("failed to tombstone remote card", zap.String("cardID", id), zap.Error(err))
	}
}

// TombstoneGroup soft-deletes the remote copy of a locally deleted
// group.
func (c *SyncCoordinator) TombstoneGroup(ctx context.Context, id string) {
	identity := c.settings.Identity()
	if identity == "" || id == group.DefaultID {
		return
	}
	if err := c.remote.MarkGroupDeleted(ctx, identity, id, time.Now()); err != nil {
		c.logger.Warn("failed to tombstone remote group", zap.String("groupID", id), zap.Error(err))
	}
}

// schedule arms the debounce timer for a key, replacing any pending
// one so the latest state wins.
func (c *SyncCoordinator) schedule(key string, fn func()) {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()

	if t, ok := c.timers[key]; ok {
		t.Stop()
	}
	c.timers[key] = time.AfterFunc(c.debounce, func() {
		c.timerMu.Lock()
		delete(c.timers, key)
		c.timerMu.Unlock()
		fn()
	})
}

// Flush runs every pending debounced push immediately. Called on
// shutdown so queued writes are not lost with the process.
func (c *SyncCoordinator) Flush() {
	c.timerMu.Lock()
	pending := make([]*time.Timer, 0, len(c.timers))
	for _, t := range c.timers {
		pending = append(pending, t)
	}
	c.timerMu.Unlock()

	for _, t := range pending {
		if t.Stop() {
			t.Reset(0)
		}
	}
}
