package card

import (
	"context"
	"time"

	"wordvault/internal/domain/scheduling"
)

// SortOrder selects how search results are ordered
type SortOrder string

const (
	SortByCreated SortOrder = "created"
	SortByDue     SortOrder = "due"
	SortByText    SortOrder = "text"
)

// SearchFilter composes the indexed query surface. All set filters
// AND together; the keyword is a case-insensitive substring match on
// text and translation.
type SearchFilter struct {
	Keyword       string
	GroupID       string
	Tags          []string
	Proficiencies []scheduling.Proficiency
	FavoriteOnly  bool
	SortBy        SortOrder
}

// Repository defines the contract for card persistence
type Repository interface {
	// Save persists a new card
	Save(ctx context.Context, c *Card) error

	// SaveBatch persists multiple cards. Best-effort: on partial
	// failure already-applied writes are not rolled back and the
	// error is surfaced.
	SaveBatch(ctx context.Context, cards []*Card) error

	// Update persists changes to an existing card
	Update(ctx context.Context, c *Card) error

	// FindByID retrieves a card, returning a not found error when the
	// id is unknown
	FindByID(ctx context.Context, id string) (*Card, error)

	// FindAll retrieves every card
	FindAll(ctx context.Context) ([]*Card, error)

	// FindDue retrieves all cards due at or before the given time
	FindDue(ctx context.Context, before time.Time) ([]*Card, error)

	// FindByGroup retrieves all cards in a group
	FindByGroup(ctx context.Context, groupID string) ([]*Card, error)

	// FindByTag retrieves all cards carrying the given tag
	FindByTag(ctx context.Context, tag string) ([]*Card, error)

	// FindFavorites retrieves all favorite cards
	FindFavorites(ctx context.Context) ([]*Card, error)

	// FindNew retrieves up to limit never-reviewed cards, oldest first
	FindNew(ctx context.Context, limit int) ([]*Card, error)

	// Search composes keyword, group, tag, proficiency and favorite
	// filters with a sort order
	Search(ctx context.Context, filter SearchFilter) ([]*Card, error)

	// Delete removes a card
	Delete(ctx context.Context, id string) error

	// DeleteBatch removes multiple cards, best-effort like SaveBatch
	DeleteBatch(ctx context.Context, ids []string) error

	// ReassignGroup moves every card in fromGroupID to toGroupID
	ReassignGroup(ctx context.Context, fromGroupID, toGroupID string, now time.Time) error

	// CountByGroup counts cards in a group
	CountByGroup(ctx context.Context, groupID string) (int, error)
}
