package persistence

import (
	"context"
	"fmt"

	"wordvault/internal/apperrors"
	"wordvault/internal/domain/group"
)

const groupColumns = `id, name, description, color, card_count, created_at, updated_at`

type groupRepository struct {
	db *DB
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db *DB) group.Repository {
	return &groupRepository{db: db}
}

// Save persists a new group
func (r *groupRepository) Save(ctx context.Context, g *group.Group) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO groups (`+groupColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		g.ID(), g.Name(), g.Description(), g.Color(), g.CardCount(),
		toMillis(g.CreatedAt()), toMillis(g.UpdatedAt()))
	if err != nil {
		return fmt.Errorf("failed to save group %s: %w", g.ID(), err)
	}
	return nil
}

// Update persists changes to an existing group
func (r *groupRepository) Update(ctx context.Context, g *group.Group) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE groups
		SET name = ?, description = ?, color = ?, card_count = ?, updated_at = ?
		WHERE id = ?
	`,
		g.Name(), g.Description(), g.Color(), g.CardCount(), toMillis(g.UpdatedAt()), g.ID())
	if err != nil {
		return fmt.Errorf("failed to update group %s: %w", g.ID(), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewNotFound(fmt.Sprintf("group %s not found", g.ID()))
	}
	return nil
}

// FindByID retrieves a group by its id
func (r *groupRepository) FindByID(ctx context.Context, id string) (*group.Group, error) {
	groups, err := r.queryGroups(ctx, `SELECT `+groupColumns+` FROM groups WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, apperrors.NewNotFound(fmt.Sprintf("group %s not found", id))
	}
	return groups[0], nil
}

// FindAll retrieves all groups, the default group included
func (r *groupRepository) FindAll(ctx context.Context) ([]*group.Group, error) {
	return r.queryGroups(ctx, `SELECT `+groupColumns+` FROM groups ORDER BY created_at ASC`)
}

// Delete removes a group. The default group is never deleted.
func (r *groupRepository) Delete(ctx context.Context, id string) error {
	if id == group.DefaultID {
		return apperrors.NewValidation("the default group cannot be deleted")
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete group %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewNotFound(fmt.Sprintf("group %s not found", id))
	}
	return nil
}

// Exists checks whether a group id resolves
func (r *groupRepository) Exists(ctx context.Context, id string) (bool, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT 1 FROM groups WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to check group %s: %w", id, err)
	}
	defer rows.Close()
	return rows.Next(), rows.Err()
}

func (r *groupRepository) queryGroups(ctx context.Context, query string, args ...any) ([]*group.Group, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	var groups []*group.Group
	for rows.Next() {
		var (
			id, name, description, color string
			cardCount                    int
			createdAt, updatedAt         int64
		)
		if err := rows.Scan(&id, &name, &description, &color, &cardCount, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		groups = append(groups, group.Restore(group.RestoredGroup{
			ID:          id,
			Name:        name,
			Description: description,
			Color:       color,
			CardCount:   cardCount,
			CreatedAt:   fromMillis(createdAt),
			UpdatedAt:   fromMillis(updatedAt),
		}))
	}
	return groups, rows.Err()
}
