package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"wordvault/internal/application/usecases"
	"wordvault/internal/domain/card"
	"wordvault/internal/domain/scheduling"
)

func (a *App) handleAdd(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("add", pflag.ContinueOnError)
	text := flags.String("text", "", "front text of the card")
	translation := flags.String("translation", "", "translation shown on the back")
	phonetic := flags.String("phonetic", "", "phonetic transcription")
	notes := flags.String("notes", "", "free-form notes")
	examples := flags.StringSlice("example", nil, "example sentence, repeatable")
	groupID := flags.String("group", "", "group id, defaults to the default group")
	tags := flags.StringSlice("tag", nil, "tag, repeatable")
	if err := flags.Parse(args); err != nil {
		return err
	}

	c, err := a.cards.CreateCard(ctx, usecases.CreateCardInput{
		Text:        *text,
		Translation: *translation,
		Phonetic:    *phonetic,
		Notes:       *notes,
		Examples:    *examples,
		GroupID:     *groupID,
		Tags:        *tags,
	})
	if err != nil {
		return err
	}
	a.printf("added card %s: %s = %s\n", c.ID(), c.Text(), c.Translation())
	return nil
}

func (a *App) handleList(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("list", pflag.ContinueOnError)
	keyword := flags.String("keyword", "", "substring match on text and translation")
	groupID := flags.String("group", "", "restrict to one group")
	tags := flags.StringSlice("tag", nil, "require a tag, repeatable")
	proficiency := flags.String("proficiency", "", "restrict to a proficiency bucket")
	favorites := flags.Bool("favorites", false, "favorites only")
	sortBy := flags.String("sort", "created", "sort order: created, due or text")
	if err := flags.Parse(args); err != nil {
		return err
	}

	filter := card.SearchFilter{
		Keyword:      *keyword,
		GroupID:      *groupID,
		Tags:         *tags,
		FavoriteOnly: *favorites,
		SortBy:       card.SortOrder(*sortBy),
	}
	if *proficiency != "" {
		filter.Proficiencies = []scheduling.Proficiency{scheduling.Proficiency(*proficiency)}
	}

	cards, err := a.cards.SearchCards(ctx, filter)
	if err != nil {
		return err
	}
	if len(cards) == 0 {
		a.printf("no cards found\n")
		return nil
	}
	for _, c := range cards {
		marker := " "
		if c.Favorite() {
			marker = "*"
		}
		a.printf("%s %-36s  %-20s  %-20s  %s\n", marker, c.ID(), c.Text(), c.Translation(), c.Proficiency())
	}
	a.printf("%d card(s)\n", len(cards))
	return nil
}

func (a *App) handleShow(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: show <card-id>")
	}
	c, err := a.cards.GetCard(ctx, args[0])
	if err != nil {
		return err
	}

	a.printf("text:         %s\n", c.Text())
	a.printf("translation:  %s\n", c.Translation())
	if c.Phonetic() != "" {
		a.printf("phonetic:     %s\n", c.Phonetic())
	}
	if c.Notes() != "" {
		a.printf("notes:        %s\n", c.Notes())
	}
	for _, example := range c.Examples() {
		a.printf("example:      %s\n", example)
	}
	for _, sense := range c.Senses() {
		if sense.PartOfSpeech != "" {
			a.printf("sense:        %s (%s)\n", sense.Translation, sense.PartOfSpeech)
		} else {
			a.printf("sense:        %s\n", sense.Translation)
		}
	}
	a.printf("group:        %s\n", c.GroupID())
	if len(c.Tags()) > 0 {
		a.printf("tags:         %s\n", strings.Join(c.Tags(), ", "))
	}
	a.printf("proficiency:  %s\n", c.Proficiency())
	a.printf("next review:  %s\n", c.NextReview().Format("2006-01-02 15:04"))
	a.printf("reviews:      %d (%d correct, %d wrong)\n", c.TotalReviews(), c.CorrectCount(), c.WrongCount())
	return nil
}

func (a *App) handleEdit(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("edit", pflag.ContinueOnError)
	text := flags.String("text", "", "new front text")
	translation := flags.String("translation", "", "new translation")
	phonetic := flags.String("phonetic", "", "new phonetic transcription")
	notes := flags.String("notes", "", "new notes")
	examples := flags.StringSlice("example", nil, "example sentence, repeatable")
	if err := flags.Parse(args); err != nil {
		return err
	}
	rest := flags.Args()
	if len(rest) != 1 {
		return fmt.Errorf("usage: edit <card-id> [flags]")
	}
	id := rest[0]

	if *text != "" || *translation != "" {
		c, err := a.cards.GetCard(ctx, id)
		if err != nil {
			return err
		}
		newText, newTranslation := c.Text(), c.Translation()
		if *text != "" {
			newText = *text
		}
		if *translation != "" {
			newTranslation = *translation
		}
		if _, err := a.cards.RenameCard(ctx, id, newText, newTranslation); err != nil {
			return err
		}
	}
	if flags.Changed("phonetic") || flags.Changed("notes") || flags.Changed("example") {
		c, err := a.cards.GetCard(ctx, id)
		if err != nil {
			return err
		}
		newPhonetic, newNotes, newExamples := c.Phonetic(), c.Notes(), c.Examples()
		if flags.Changed("phonetic") {
			newPhonetic = *phonetic
		}
		if flags.Changed("notes") {
			newNotes = *notes
		}
		if flags.Changed("example") {
			newExamples = *examples
		}
		if _, err := a.cards.UpdateCardContent(ctx, id, newPhonetic, newNotes, newExamples, c.Senses()); err != nil {
			return err
		}
	}
	a.printf("updated card %s\n", id)
	return nil
}

func (a *App) handleTag(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: tag <card-id> [tag...]")
	}
	c, err := a.cards.TagCard(ctx, args[0], args[1:])
	if err != nil {
		return err
	}
	a.printf("card %s tags: %s\n", c.ID(), strings.Join(c.Tags(), ", "))
	return nil
}

func (a *App) handleFavorite(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("favorite", pflag.ContinueOnError)
	unset := flags.Bool("unset", false, "remove the favorite mark")
	if err := flags.Parse(args); err != nil {
		return err
	}
	rest := flags.Args()
	if len(rest) != 1 {
		return fmt.Errorf("usage: favorite [--unset] <card-id>")
	}

	c, err := a.cards.SetFavorite(ctx, rest[0], !*unset)
	if err != nil {
		return err
	}
	if c.Favorite() {
		a.printf("card %s marked as favorite\n", c.ID())
	} else {
		a.printf("card %s is no longer a favorite\n", c.ID())
	}
	return nil
}

func (a *App) handleMove(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: move <card-id> <group-id>")
	}
	c, err := a.cards.MoveCard(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	a.printf("card %s moved to group %s\n", c.ID(), c.GroupID())
	return nil
}

func (a *App) handleDelete(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: delete <card-id> [card-id...]")
	}
	if len(args) == 1 {
		if err := a.cards.DeleteCard(ctx, args[0]); err != nil {
			return err
		}
		a.printf("deleted card %s\n", args[0])
		return nil
	}
	if err := a.cards.DeleteCards(ctx, args); err != nil {
		return err
	}
	a.printf("deleted %d card(s)\n", len(args))
	return nil
}

func (a *App) handleGroups(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	switch args[0] {
	case "list":
		groups, err := a.cards.ListGroups(ctx)
		if err != nil {
			return err
		}
		for _, g := range groups {
			a.printf("%-36s  %-20s  %d card(s)\n", g.ID(), g.Name(), g.CardCount())
		}
		return nil

	case "create":
		flags := pflag.NewFlagSet("groups create", pflag.ContinueOnError)
		description := flags.String("description", "", "group description")
		color := flags.String("color", "", "display color")
		if err := flags.Parse(args[1:]); err != nil {
			return err
		}
		rest := flags.Args()
		if len(rest) != 1 {
			return fmt.Errorf("usage: groups create <name> [flags]")
		}
		g, err := a.cards.CreateGroup(ctx, rest[0], *description, *color)
		if err != nil {
			return err
		}
		a.printf("created group %s: %s\n", g.ID(), g.Name())
		return nil

	case "rename":
		if len(args) != 3 {
			return fmt.Errorf("usage: groups rename <group-id> <name>")
		}
		g, err := a.cards.RenameGroup(ctx, args[1], args[2])
		if err != nil {
			return err
		}
		a.printf("group %s renamed to %s\n", g.ID(), g.Name())
		return nil

	case "delete":
		if len(args) != 2 {
			return fmt.Errorf("usage: groups delete <group-id>")
		}
		if err := a.cards.DeleteGroup(ctx, args[1]); err != nil {
			return err
		}
		a.printf("deleted group %s, its cards moved to the default group\n", args[1])
		return nil

	default:
		return fmt.Errorf("unknown groups subcommand %q", args[0])
	}
}
