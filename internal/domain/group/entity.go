package group

import (
	"time"

	"github.com/google/uuid"
)

// DefaultID is the reserved group id. The default group always
// exists, cannot be deleted and is excluded from sync.
const DefaultID = "default"

// Group represents a named partition of cards
type Group struct {
	id          string
	name        string
	description string
	color       string
	cardCount   int
	createdAt   time.Time
	updatedAt   time.Time
}

// NewGroup creates a new group
func NewGroup(name string, now time.Time) *Group {
	return &Group{
		id:        uuid.NewString(),
		name:      name,
		createdAt: now,
		updatedAt: now,
	}
}

// Getters
func (g *Group) ID() string           { return g.id }
func (g *Group) Name() string         { return g.name }
func (g *Group) Description() string  { return g.description }
func (g *Group) Color() string        { return g.color }
func (g *Group) CardCount() int       { return g.cardCount }
func (g *Group) CreatedAt() time.Time { return g.createdAt }
func (g *Group) UpdatedAt() time.Time { return g.updatedAt }

// IsDefault reports whether this is the reserved default group
func (g *Group) IsDefault() bool { return g.id == DefaultID }

// Rename updates the group's name
func (g *Group) Rename(name string, now time.Time) {
	g.name = name
	g.touch(now)
}

// Describe updates the optional description and color
func (g *Group) Describe(description, color string, now time.Time) {
	g.description = description
	g.color = color
	g.touch(now)
}

// SetCardCount refreshes the cached membership count. The count is
// derived state, so updatedAt is left alone.
func (g *Group) SetCardCount(count int) {
	g.cardCount = count
}

func (g *Group) touch(now time.Time) {
	if !now.After(g.updatedAt) {
		now = g.updatedAt.Add(time.Millisecond)
	}
	g.updatedAt = now
}

// RestoredGroup carries every persisted field of a group
type RestoredGroup struct {
	ID          string
	Name        string
	Description string
	Color       string
	CardCount   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Restore rebuilds a group from persisted state
func Restore(r RestoredGroup) *Group {
	return &Group{
		id:          r.ID,
		name:        r.Name,
		description: r.Description,
		color:       r.Color,
		cardCount:   r.CardCount,
		createdAt:   r.CreatedAt,
		updatedAt:   r.UpdatedAt,
	}
}
