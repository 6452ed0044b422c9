package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"wordvault/internal/application/usecases"
	"wordvault/internal/domain/scheduling"
	"wordvault/internal/domain/stats"
)

func (a *App) handleStudy(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("study", pflag.ContinueOnError)
	groupID := flags.String("group", "", "review the due cards of one group")
	tags := flags.StringSlice("tag", nil, "review due cards carrying every given tag")
	newCards := flags.Bool("new", false, "review never-studied cards instead of due ones")
	limit := flags.Int("limit", 0, "cap on new cards, defaults to 20")
	if err := flags.Parse(args); err != nil {
		return err
	}

	selector := usecases.Selector{Kind: usecases.SelectAllDue}
	switch {
	case *newCards:
		selector = usecases.Selector{Kind: usecases.SelectNewCards, Limit: *limit}
	case *groupID != "":
		selector = usecases.Selector{Kind: usecases.SelectGroupDue, GroupID: *groupID}
	case len(*tags) > 0:
		selector = usecases.Selector{Kind: usecases.SelectTagsDue, Tags: *tags}
	}

	session, err := a.sessions.CreateSession(ctx, selector)
	if err != nil {
		return err
	}

	progress := session.Progress()
	a.printf("studying %d card(s). Ratings: 1=again 2=hard 3=good 4=easy, q quits.\n\n", progress.Total)

	for session.State() == usecases.SessionActive {
		current := session.CurrentCard()
		if current == nil {
			break
		}
		progress = session.Progress()
		shownAt := time.Now()
		a.printf("[%d/%d] %s\n", progress.Current, progress.Total, current.Text())
		a.printf("press enter to reveal... ")
		if _, err := a.in.ReadString('\n'); err != nil {
			return session.Cancel()
		}
		a.printf("-> %s", current.Translation())
		if current.Phonetic() != "" {
			a.printf("  /%s/", current.Phonetic())
		}
		a.printf("\n")

		rating, ok, err := a.readRating()
		if err != nil {
			return err
		}
		if !ok {
			if err := session.Cancel(); err != nil {
				return err
			}
			break
		}

		responseMs := int(time.Since(shownAt).Milliseconds())
		if responseMs < 0 {
			responseMs = 0
		}
		if err := a.sessions.SubmitAnswer(ctx, session, rating, responseMs); err != nil {
			return err
		}
		a.printf("\n")
	}

	final := session.Stats()
	a.printf("session %s: %d reviewed, %d correct, %d wrong, %d%% accuracy\n",
		session.State(), final.Reviewed, final.Correct, final.Wrong, final.Accuracy)
	return nil
}

// readRating prompts until the user enters a rating or quits
func (a *App) readRating() (scheduling.Rating, bool, error) {
	for {
		a.printf("rating (1-4, q to quit): ")
		line, err := a.in.ReadString('\n')
		if err != nil {
			return 0, false, nil
		}
		input := strings.TrimSpace(line)
		if input == "q" {
			return 0, false, nil
		}
		value, err := strconv.Atoi(input)
		if err == nil {
			rating := scheduling.Rating(value)
			if rating.Valid() {
				return rating, true, nil
			}
		}
		a.printf("enter 1, 2, 3, 4 or q\n")
	}
}

func (a *App) handleStats(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("stats", pflag.ContinueOnError)
	date := flags.String("date", "", "daily summary date (YYYY-MM-DD), defaults to today")
	if err := flags.Parse(args); err != nil {
		return err
	}

	overall, err := a.cards.CollectionStats(ctx)
	if err != nil {
		return err
	}
	a.printf("collection: %d card(s) in %d group(s)\n", overall.TotalCards, overall.TotalGroups)
	a.printf("  due now:   %d\n", overall.DueCards)
	a.printf("  new:       %d\n", overall.NewCards)
	a.printf("  mastered:  %d\n", overall.MasteredCards)
	a.printf("  favorites: %d\n", overall.FavoriteCards)
	if overall.TotalReviews > 0 {
		a.printf("  reviews:   %d (%d correct)\n", overall.TotalReviews, overall.OverallCorrect)
	}

	day := *date
	if day == "" {
		day = stats.DateOf(time.Now())
	}
	summary, err := a.ledger.Summary(ctx, day)
	if err != nil {
		return err
	}
	a.printf("\n%s: %d studied, %d new, %d mastered, %d answer(s) (%d correct, %d wrong), %s studied\n",
		summary.Date(), summary.ReviewedCards(), summary.NewCards(), summary.MasteredCards(),
		summary.TotalAnswers(), summary.CorrectAnswers(), summary.WrongAnswers(),
		(time.Duration(summary.StudyTimeMs()) * time.Millisecond).Round(time.Second))
	return nil
}

func (a *App) handleStreak(ctx context.Context, _ []string) error {
	streak, err := a.ledger.Streak(ctx, time.Now())
	if err != nil {
		return err
	}
	a.printf("current streak: %d day(s), longest: %d day(s)\n", streak.Current, streak.Longest)
	return nil
}

func (a *App) handleSync(ctx context.Context, _ []string) error {
	if a.sync == nil {
		return fmt.Errorf("no remote store configured")
	}
	result, err := a.sync.Sync(ctx)
	if err != nil {
		return err
	}
	a.printf("sync complete: %d uploaded, %d downloaded\n", result.Uploaded, result.Downloaded)
	return nil
}

func (a *App) handleStatus(_ context.Context, _ []string) error {
	if a.sync == nil {
		a.printf("sync: not configured\n")
		return nil
	}
	status := a.sync.Status()
	switch {
	case status.InProgress:
		a.printf("sync: in progress\n")
	case status.LastError != "":
		a.printf("sync: last attempt failed: %s\n", status.LastError)
	case status.LastSyncAt.IsZero():
		a.printf("sync: never synced\n")
	default:
		a.printf("sync: last synced %s\n", status.LastSyncAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
