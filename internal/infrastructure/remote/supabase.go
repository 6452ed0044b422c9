// Package remote implements the remote store contract on top of a
// Supabase project, one row per entity with tombstone columns.
package remote

import (
	"context"
	"time"

	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	"wordvault/internal/apperrors"
	"wordvault/internal/domain/syncing"
)

const (
	cardsTable  = "cards"
	groupsTable = "groups"
)

// SupabaseStore talks to the remote replica through PostgREST.
// The underlying client carries the request context internally; the
// ctx parameters are part of the RemoteStore contract and bound the
// caller, not the HTTP round trip.
type SupabaseStore struct {
	client *supabase.Client
	logger *zap.Logger
}

// NewSupabaseStore creates a remote store against a Supabase project
func NewSupabaseStore(url, key string, logger *zap.Logger) (*SupabaseStore, error) {
	client, err := supabase.NewClient(url, key, nil)
	if err != nil {
		return nil, apperrors.NewNetwork("failed to create supabase client", err)
	}
	return &SupabaseStore{client: client, logger: logger}, nil
}

// FetchCards retrieves every card row for the identity, tombstones
// included.
func (s *SupabaseStore) FetchCards(ctx context.Context, userID string) ([]syncing.RemoteCard, error) {
	var rows []syncing.RemoteCard
	_, err := s.client.From(cardsTable).
		Select("*", "", false).
		Eq("user_id", userID).
		ExecuteTo(&rows)
	if err != nil {
		return nil, apperrors.NewNetwork("failed to fetch remote cards", err)
	}
	return rows, nil
}

// UpsertCard writes a card row, replacing on id conflict
func (s *SupabaseStore) UpsertCard(ctx context.Context, row syncing.RemoteCard) error {
	_, _, err := s.client.From(cardsTable).
		Insert(row, true, "id", "minimal", "").
		Execute()
	if err != nil {
		return apperrors.NewNetwork("failed to upsert remote card", err)
	}
	return nil
}

// MarkCardDeleted tombstones a card row instead of removing it, so
// other replicas detect the deletion on their next reconciliation.
func (s *SupabaseStore) MarkCardDeleted(ctx context.Context, userID, id string, at time.Time) error {
	return s.markDeleted(cardsTable, userID, id, at)
}

// FetchGroups retrieves every group row for the identity, tombstones
// included.
func (s *SupabaseStore) FetchGroups(ctx context.Context, userID string) ([]syncing.RemoteGroup, error) {
	var rows []syncing.RemoteGroup
	_, err := s.client.From(groupsTable).
		Select("*", "", false).
		Eq("user_id", userID).
		ExecuteTo(&rows)
	if err != nil {
		return nil, apperrors.NewNetwork("failed to fetch remote groups", err)
	}
	return rows, nil
}

// UpsertGroup writes a group row, replacing on id conflict
func (s *SupabaseStore) UpsertGroup(ctx context.Context, row syncing.RemoteGroup) error {
	_, _, err := s.client.From(groupsTable).
		Insert(row, true, "id", "minimal", "").
		Execute()
	if err != nil {
		return apperrors.NewNetwork("failed to upsert remote group", err)
	}
	return nil
}

// MarkGroupDeleted tombstones a group row
func (s *SupabaseStore) MarkGroupDeleted(ctx context.Context, userID, id string, at time.Time) error {
	return s.markDeleted(groupsTable, userID, id, at)
}

func (s *SupabaseStore) markDeleted(table, userID, id string, at time.Time) error {
	ms := at.UnixMilli()
	patch := map[string]any{
		"deleted":    true,
		"deleted_at": ms,
		"updated_at": ms,
	}
	_, _, err := s.client.From(table).
		Update(patch, "minimal", "").
		Eq("user_id", userID).
		Eq("id", id).
		Execute()
	if err != nil {
		return apperrors.NewNetwork("failed to tombstone remote row", err)
	}
	return nil
}
