package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"wordvault/internal/application/usecases"
	"wordvault/internal/domain/scheduling"
	"wordvault/internal/infrastructure/config"
	"wordvault/internal/infrastructure/persistence"
	"wordvault/internal/infrastructure/remote"
	"wordvault/internal/interfaces/cli"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "wordvault: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A .env file is optional; environment variables win either way
	_ = godotenv.Load()

	flags := pflag.NewFlagSet("wordvault", pflag.ContinueOnError)
	configFile := flags.String("config", "", "path to a YAML config file")
	flags.String("database_path", "wordvault.db", "path to the sqlite database")
	flags.Bool("verbose", false, "enable debug logging")
	flags.SetInterspersed(false)
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	cfgFile := *configFile
	if cfgFile == "" {
		if _, err := os.Stat(config.DefaultConfigFile); err == nil {
			cfgFile = config.DefaultConfigFile
		}
	}
	cfg, err := config.Load(cfgFile, flags)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := persistence.Open(cfg.DatabasePath, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	cardRepo := persistence.NewCardRepository(db)
	groupRepo := persistence.NewGroupRepository(db)
	reviewRepo := persistence.NewReviewRepository(db)
	statsRepo := persistence.NewStatsRepository(db)
	settingsRepo := persistence.NewSettingsRepository(db)

	scheduler := scheduling.NewScheduler(scheduling.NewFSRS())
	settings := config.NewSettings(cfg, settingsRepo)

	// The sync coordinator only exists when a remote store is
	// configured; everything downstream takes a nil pusher otherwise.
	var syncCoordinator *usecases.SyncCoordinator
	var pusher usecases.Pusher
	if cfg.SupabaseURL != "" && cfg.SupabaseKey != "" {
		store, err := remote.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, logger)
		if err != nil {
			return fmt.Errorf("failed to create remote store: %w", err)
		}
		debounce := time.Duration(cfg.DebounceMs) * time.Millisecond
		syncCoordinator = usecases.NewSyncCoordinator(cardRepo, groupRepo, store, settings, debounce, logger)
		pusher = syncCoordinator
	}

	ledger := usecases.NewProgressLedger(statsRepo, reviewRepo, logger)
	cardUseCase := usecases.NewCardUseCase(cardRepo, groupRepo, scheduler, pusher, logger)
	sessionManager := usecases.NewSessionManager(cardRepo, reviewRepo, scheduler, ledger, pusher, logger)

	app := cli.NewApp(cardUseCase, sessionManager, ledger, syncCoordinator, os.Stdin, os.Stdout, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		log.Println("shutting down...")
		cancel()
	}()

	runErr := app.Run(ctx, flags.Args())

	// Queued debounced pushes are flushed before the process exits
	if syncCoordinator != nil {
		syncCoordinator.Flush()
		time.Sleep(100 * time.Millisecond)
	}
	return runErr
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
