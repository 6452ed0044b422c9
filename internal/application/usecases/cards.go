package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"wordvault/internal/apperrors"
	"wordvault/internal/domain/card"
	"wordvault/internal/domain/group"
	"wordvault/internal/domain/scheduling"
)

// CreateCardInput carries the fields of a new card
type CreateCardInput struct {
	Text        string `validate:"required"`
	Translation string `validate:"required"`
	Phonetic    string
	Notes       string
	Examples    []string
	Senses      []card.Sense
	GroupID     string
	Tags        []string
}

// OverallStats summarizes the whole collection
type OverallStats struct {
	TotalCards     int
	DueCards       int
	NewCards       int
	MasteredCards  int
	FavoriteCards  int
	TotalGroups    int
	TotalReviews   int
	OverallCorrect int
}

// CardUseCase handles card and group management
type CardUseCase struct {
	cards     card.Repository
	groups    group.Repository
	scheduler *scheduling.Scheduler
	pusher    Pusher
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewCardUseCase creates a new card use case. pusher may be nil when
// no remote store is configured.
func NewCardUseCase(
	cardRepo card.Repository,
	groupRepo group.Repository,
	scheduler *scheduling.Scheduler,
	pusher Pusher,
	logger *zap.Logger,
) *CardUseCase {
	return &CardUseCase{
		cards:     cardRepo,
		groups:    groupRepo,
		scheduler: scheduler,
		pusher:    pusher,
		validate:  validator.New(),
		logger:    logger,
	}
}

// CreateCard registers a new card with a fresh schedule. An empty
// group falls back to the default group; a named group must exist.
func (uc *CardUseCase) CreateCard(ctx context.Context, input CreateCardInput) (*card.Card, error) {
	if err := uc.validate.Struct(input); err != nil {
		return nil, apperrors.NewValidation(fmt.Sprintf("invalid card: %v", err))
	}

	groupID := input.GroupID
	if groupID == "" {
		groupID = card.DefaultGroupID
	}
	if err := uc.requireGroup(ctx, groupID); err != nil {
		return nil, err
	}

	now := time.Now()
	c := card.NewCard(input.Text, input.Translation, groupID, uc.scheduler.NewSchedule(now), now)
	if input.Phonetic != "" || input.Notes != "" || len(input.Examples) > 0 || len(input.Senses) > 0 {
		c.UpdateContent(input.Phonetic, input.Notes, input.Examples, input.Senses, now)
	}
	if len(input.Tags) > 0 {
		c.SetTags(input.Tags, now)
	}
	if err := uc.cards.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save card: %w", err)
	}
	if err := uc.recount(ctx, groupID); err != nil {
		uc.logger.Warn("failed to refresh group card count", zap.String("groupID", groupID), zap.Error(err))
	}

	uc.logger.Info("card created", zap.String("cardID", c.ID()), zap.String("text", c.Text()))
	if uc.pusher != nil {
		uc.pusher.PushCard(c)
	}
	return c, nil
}

// GetCard loads one card by id
func (uc *CardUseCase) GetCard(ctx context.Context, id string) (*card.Card, error) {
	return uc.cards.FindByID(ctx, id)
}

// SearchCards runs a filtered, sorted collection query
func (uc *CardUseCase) SearchCards(ctx context.Context, filter card.SearchFilter) ([]*card.Card, error) {
	return uc.cards.Search(ctx, filter)
}

// RenameCard changes the text and translation of a card
func (uc *CardUseCase) RenameCard(ctx context.Context, id, text, translation string) (*card.Card, error) {
	if text == "" || translation == "" {
		return nil, apperrors.NewValidation("card text and translation cannot be empty")
	}
	return uc.mutateCard(ctx, id, func(c *card.Card) error {
		c.Rename(text, translation, time.Now())
		return nil
	})
}

// UpdateCardContent replaces the optional content of a card. The
// schedule and statistics are untouched.
func (uc *CardUseCase) UpdateCardContent(ctx context.Context, id, phonetic, notes string, examples []string, senses []card.Sense) (*card.Card, error) {
	return uc.mutateCard(ctx, id, func(c *card.Card) error {
		c.UpdateContent(phonetic, notes, examples, senses, time.Now())
		return nil
	})
}

// SetFavorite toggles the favorite mark on a card
func (uc *CardUseCase) SetFavorite(ctx context.Context, id string, favorite bool) (*card.Card, error) {
	return uc.mutateCard(ctx, id, func(c *card.Card) error {
		c.SetFavorite(favorite, time.Now())
		return nil
	})
}

// TagCard replaces the tag set of a card
func (uc *CardUseCase) TagCard(ctx context.Context, id string, tags []string) (*card.Card, error) {
	return uc.mutateCard(ctx, id, func(c *card.Card) error {
		c.SetTags(tags, time.Now())
		return nil
	})
}

// MoveCard reassigns a card to another group, which must exist
func (uc *CardUseCase) MoveCard(ctx context.Context, id, groupID string) (*card.Card, error) {
	if err := uc.requireGroup(ctx, groupID); err != nil {
		return nil, err
	}
	c, err := uc.cards.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := c.GroupID()
	if previous == groupID {
		return c, nil
	}

	c.MoveToGroup(groupID, time.Now())
	if err := uc.cards.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to move card: %w", err)
	}
	for _, gid := range []string{previous, groupID} {
		if err := uc.recount(ctx, gid); err != nil {
			uc.logger.Warn("failed to refresh group card count", zap.String("groupID", gid), zap.Error(err))
		}
	}
	if uc.pusher != nil {
		uc.pusher.PushCard(c)
	}
	return c, nil
}

// DeleteCard removes a card locally and tombstones its remote copy
func (uc *CardUseCase) DeleteCard(ctx context.Context, id string) error {
	c, err := uc.cards.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.cards.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	if err := uc.recount(ctx, c.GroupID()); err != nil {
		uc.logger.Warn("failed to refresh group card count", zap.String("groupID", c.GroupID()), zap.Error(err))
	}

	uc.logger.Info("card deleted", zap.String("cardID", id))
	if uc.pusher != nil {
		uc.pusher.TombstoneCard(ctx, id)
	}
	return nil
}

// DeleteCards removes several cards in one pass. Best-effort like the
// underlying batch delete: cards removed before a failure stay removed,
// their groups are recounted and their remote copies tombstoned.
func (uc *CardUseCase) DeleteCards(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return apperrors.NewValidation("no card ids given")
	}

	groupIDs := make(map[string]bool, len(ids))
	for _, id := range ids {
		c, err := uc.cards.FindByID(ctx, id)
		if err != nil {
			return err
		}
		groupIDs[c.GroupID()] = true
	}

	batchErr := uc.cards.DeleteBatch(ctx, ids)

	for gid := range groupIDs {
		if err := uc.recount(ctx, gid); err != nil {
			uc.logger.Warn("failed to refresh group card count", zap.String("groupID", gid), zap.Error(err))
		}
	}
	if uc.pusher != nil {
		for _, id := range ids {
			if _, err := uc.cards.FindByID(ctx, id); apperrors.IsNotFound(err) {
				uc.pusher.TombstoneCard(ctx, id)
			}
		}
	}
	if batchErr != nil {
		return fmt.Errorf("failed to delete cards: %w", batchErr)
	}

	uc.logger.Info("cards deleted", zap.Int("count", len(ids)))
	return nil
}

func (uc *CardUseCase) mutateCard(ctx context.Context, id string, mutate func(*card.Card) error) (*card.Card, error) {
	c, err := uc.cards.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(c); err != nil {
		return nil, err
	}
	if err := uc.cards.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update card: %w", err)
	}
	if uc.pusher != nil {
		uc.pusher.PushCard(c)
	}
	return c, nil
}

func (uc *CardUseCase) requireGroup(ctx context.Context, id string) error {
	exists, err := uc.groups.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.NewNotFound(fmt.Sprintf("group %s not found", id))
	}
	return nil
}

func (uc *CardUseCase) recount(ctx context.Context, groupID string) error {
	g, err := uc.groups.FindByID(ctx, groupID)
	if err != nil {
		return err
	}
	count, err := uc.cards.CountByGroup(ctx, groupID)
	if err != nil {
		return err
	}
	g.SetCardCount(count)
	return uc.groups.Update(ctx, g)
}

// CreateGroup registers a new named group
func (uc *CardUseCase) CreateGroup(ctx context.Context, name, description, color string) (*group.Group, error) {
	if name == "" {
		return nil, apperrors.NewValidation("group name cannot be empty")
	}
	now := time.Now()
	g := group.NewGroup(name, now)
	if description != "" || color != "" {
		g.Describe(description, color, now)
	}
	if err := uc.groups.Save(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to save group: %w", err)
	}

	uc.logger.Info("group created", zap.String("groupID", g.ID()), zap.String("name", name))
	if uc.pusher != nil {
		uc.pusher.PushGroup(g)
	}
	return g, nil
}

// RenameGroup changes the display name of a group
func (uc *CardUseCase) RenameGroup(ctx context.Context, id, name string) (*group.Group, error) {
	if name == "" {
		return nil, apperrors.NewValidation("group name cannot be empty")
	}
	g, err := uc.groups.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	g.Rename(name, time.Now())
	if err := uc.groups.Update(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to update group: %w", err)
	}
	if uc.pusher != nil {
		uc.pusher.PushGroup(g)
	}
	return g, nil
}

// DeleteGroup removes a group. Member cards are not deleted: they move
// to the default group first. The default group itself is protected.
func (uc *CardUseCase) DeleteGroup(ctx context.Context, id string) error {
	if id == group.DefaultID {
		return apperrors.NewValidation("the default group cannot be deleted")
	}
	if err := uc.requireGroup(ctx, id); err != nil {
		return err
	}

	if err := uc.cards.ReassignGroup(ctx, id, card.DefaultGroupID, time.Now()); err != nil {
		return fmt.Errorf("failed to reassign cards from group %s: %w", id, err)
	}
	if err := uc.groups.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if err := uc.recount(ctx, card.DefaultGroupID); err != nil {
		uc.logger.Warn("failed to refresh default group card count", zap.Error(err))
	}

	uc.logger.Info("group deleted", zap.String("groupID", id))
	if uc.pusher != nil {
		uc.pusher.TombstoneGroup(ctx, id)
	}
	return nil
}

// ListGroups returns every group
func (uc *CardUseCase) ListGroups(ctx context.Context) ([]*group.Group, error) {
	return uc.groups.FindAll(ctx)
}

// CollectionStats aggregates counters over the whole collection
func (uc *CardUseCase) CollectionStats(ctx context.Context) (OverallStats, error) {
	cards, err := uc.cards.FindAll(ctx)
	if err != nil {
		return OverallStats{}, err
	}
	groups, err := uc.groups.FindAll(ctx)
	if err != nil {
		return OverallStats{}, err
	}

	now := time.Now()
	overall := OverallStats{TotalCards: len(cards), TotalGroups: len(groups)}
	for _, c := range cards {
		if uc.scheduler.IsDue(c.Schedule(), now) {
			overall.DueCards++
		}
		if c.TotalReviews() == 0 {
			overall.NewCards++
		}
		if c.Proficiency() == scheduling.ProficiencyMastered {
			overall.MasteredCards++
		}
		if c.Favorite() {
			overall.FavoriteCards++
		}
		overall.TotalReviews += c.TotalReviews()
		overall.OverallCorrect += c.CorrectCount()
	}
	return overall, nil
}
