// Package cli implements the interactive command-line surface over
// the application use cases.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"wordvault/internal/application/usecases"
)

// App wires the subcommand dispatcher to the use cases. sync may be
// nil when no remote store is configured.
type App struct {
	cards    *usecases.CardUseCase
	sessions *usecases.SessionManager
	ledger   *usecases.ProgressLedger
	sync     *usecases.SyncCoordinator
	logger   *zap.Logger

	in  *bufio.Reader
	out io.Writer

	dispatcher Dispatcher
}

// NewApp creates the CLI application
func NewApp(
	cards *usecases.CardUseCase,
	sessions *usecases.SessionManager,
	ledger *usecases.ProgressLedger,
	sync *usecases.SyncCoordinator,
	in io.Reader,
	out io.Writer,
	logger *zap.Logger,
) *App {
	app := &App{
		cards:      cards,
		sessions:   sessions,
		ledger:     ledger,
		sync:       sync,
		logger:     logger,
		in:         bufio.NewReader(in),
		out:        out,
		dispatcher: NewDispatcher(),
	}
	app.registerHandlers()
	return app
}

func (a *App) registerHandlers() {
	a.dispatcher.RegisterHandler("add", "add a new card", a.handleAdd)
	a.dispatcher.RegisterHandler("list", "list cards with filters", a.handleList)
	a.dispatcher.RegisterHandler("show", "show one card in full", a.handleShow)
	a.dispatcher.RegisterHandler("edit", "edit a card's content", a.handleEdit)
	a.dispatcher.RegisterHandler("tag", "replace a card's tags", a.handleTag)
	a.dispatcher.RegisterHandler("favorite", "mark or unmark a favorite", a.handleFavorite)
	a.dispatcher.RegisterHandler("move", "move a card to another group", a.handleMove)
	a.dispatcher.RegisterHandler("delete", "delete one or more cards", a.handleDelete)
	a.dispatcher.RegisterHandler("groups", "manage card groups", a.handleGroups)
	a.dispatcher.RegisterHandler("study", "start an interactive study session", a.handleStudy)
	a.dispatcher.RegisterHandler("stats", "show collection and daily statistics", a.handleStats)
	a.dispatcher.RegisterHandler("streak", "show the study streak", a.handleStreak)
	a.dispatcher.RegisterHandler("sync", "run a full sync against the remote store", a.handleSync)
	a.dispatcher.RegisterHandler("status", "show sync status", a.handleStatus)
	a.dispatcher.RegisterHandler("help", "list available commands", a.handleHelp)
}

// Run dispatches one invocation
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.handleHelp(ctx, nil)
	}
	return a.dispatcher.Dispatch(ctx, args)
}

func (a *App) handleHelp(_ context.Context, _ []string) error {
	fmt.Fprintln(a.out, "Usage: wordvault <command> [flags]")
	fmt.Fprintln(a.out)
	for _, info := range a.dispatcher.Commands() {
		fmt.Fprintf(a.out, "  %-10s %s\n", info.Name, info.Summary)
	}
	return nil
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
