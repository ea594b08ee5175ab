package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/xvierd/pomodoro-pro/internal/adapters/git"
	"github.com/xvierd/pomodoro-pro/internal/adapters/notification"
	"github.com/xvierd/pomodoro-pro/internal/adapters/storage"
	"github.com/xvierd/pomodoro-pro/internal/config"
	"github.com/xvierd/pomodoro-pro/internal/domain"
	"github.com/xvierd/pomodoro-pro/internal/logging"
	"github.com/xvierd/pomodoro-pro/internal/ports"
	"github.com/xvierd/pomodoro-pro/internal/services"
	"github.com/xvierd/pomodoro-pro/internal/timer"
)

// appDeps groups all service-layer dependencies initialized at startup.
type appDeps struct {
	config       *config.Config
	storage      ports.Storage
	settings     *services.SettingsService
	stats        *services.StatsService
	tasks        *services.TaskService
	gamification *services.GamificationService
	state        *services.StateService
	hooks        *services.SessionHooks
	git          ports.GitDetector
	notifier     ports.Notifier
	logCloser    io.Closer
}

// app holds all initialized service dependencies.
// Populated by initializeServices() and accessible to all commands.
var app appDeps

// theme returns the configured colours, or the defaults before config is
// loaded.
func (a *appDeps) theme() config.ThemeConfig {
	if a.config == nil {
		return config.DefaultThemeConfig()
	}
	return a.config.Theme
}

// skipServices lists commands that manage the database file themselves.
var skipServices = map[string]bool{
	"wipe":    true,
	"help":    true,
	"version": true,
}

// initializeServices sets up all the required services and adapters.
func initializeServices(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("config: %v; using defaults", err)
		cfg = config.DefaultConfig()
	}
	app.config = cfg

	if skipServices[cmd.Name()] {
		return nil
	}

	closer, err := logging.Setup(cfg.Log.File, cfg.Log.MaxSizeMB)
	if err != nil {
		// The log file is optional; never write logs over the TUI.
		logging.Discard()
	} else {
		app.logCloser = closer
	}

	path := dbPath
	if path == "" {
		path = config.GetDBPath(cfg)
	}
	app.storage, err = storage.New(path)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	wireServices(cmd.Context(), app.storage, cfg)
	return nil
}

// wireServices builds the service graph over store.
func wireServices(ctx context.Context, store ports.Storage, cfg *config.Config) {
	if ctx == nil {
		ctx = context.Background()
	}

	app.settings = services.NewSettingsService(ctx, store, cfg.SeedSettings())
	app.stats = services.NewStatsService(store)
	app.gamification = services.NewGamificationService(store)

	app.tasks = services.NewTaskService(store)
	app.tasks.SetStatsService(app.stats)
	app.tasks.SetGamificationService(app.gamification)

	app.state = services.NewStateService(store, app.settings, app.stats)
	app.state.SetTaskService(app.tasks)
	app.state.SetGamificationService(app.gamification)

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	app.git = git.NewDetector(cwd)
	app.notifier = notification.New()

	app.hooks = services.NewSessionHooks(store, app.settings, app.stats, app.tasks, app.gamification)
	app.hooks.SetNotifier(app.notifier)
	app.hooks.SetGitDetector(app.git, cwd)
}

// newController restores the persisted timer state and hooks the session
// services up to a fresh controller.
func newController(ctx context.Context) *timer.Controller {
	initial := services.LoadTimerState(ctx, app.storage, app.settings.Current())
	c := timer.New(app.settings, initial, timer.Config{
		TickInterval: time.Duration(app.config.Timer.TickInterval),
	})
	c.OnEvent(app.hooks.Handle)
	app.state.SetTimer(c)
	return c
}

// closeController stops c and writes its final state. It runs after the
// command context may have been cancelled, so it uses its own.
func closeController(c *timer.Controller) {
	c.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := services.SaveTimerState(ctx, app.storage, c.Snapshot()); err != nil {
		log.Printf("timer: %v", err)
	}
}

// currentStateFunc adapts the state service for the TUI.
func currentStateFunc(ctx context.Context) func() *domain.CurrentState {
	return func() *domain.CurrentState {
		st, err := app.state.GetCurrentState(ctx)
		if err != nil {
			log.Printf("state: %v", err)
			return nil
		}
		return st
	}
}

// cleanupServices closes all resources.
func cleanupServices() error {
	var errs []error
	if app.storage != nil {
		errs = append(errs, app.storage.Close())
		app.storage = nil
	}
	if app.logCloser != nil {
		errs = append(errs, app.logCloser.Close())
		app.logCloser = nil
	}
	return errors.Join(errs...)
}

// setupSignalHandler sets up a context that cancels on interrupt signals.
func setupSignalHandler(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
