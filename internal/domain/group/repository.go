package group

import "context"

// Repository defines the contract for group persistence
type Repository interface {
	// Save persists a new group
	Save(ctx context.Context, g *Group) error

	// Update persists changes to an existing group
	Update(ctx context.Context, g *Group) error

	// FindByID retrieves a group, returning a not found error when
	// the id is unknown
	FindByID(ctx context.Context, id string) (*Group, error)

	// FindAll retrieves all groups, the default group included
	FindAll(ctx context.Context) ([]*Group, error)

	// Delete removes a group. Deleting the default group is a
	// validation error. Member cards are reassigned by the caller
	// before deletion.
	Delete(ctx context.Context, id string) error

	// Exists checks whether a group id resolves
	Exists(ctx context.Context, id string) (bool, error)
}
