package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/docagent/internal/config"
	"git.home.luguber.info/inful/docagent/internal/eventstore"
	"git.home.luguber.info/inful/docagent/internal/generator"
	"git.home.luguber.info/inful/docagent/internal/lifecycle"
	"git.home.luguber.info/inful/docagent/internal/logfields"
	"git.home.luguber.info/inful/docagent/internal/metrics"
	"git.home.luguber.info/inful/docagent/internal/notify"
	"git.home.luguber.info/inful/docagent/internal/server/handlers"
	"git.home.luguber.info/inful/docagent/internal/server/httpserver"
	"git.home.luguber.info/inful/docagent/internal/session"
)

const historySize = 500

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Address string `short:"a" help:"Listen address (overrides config)"`
	Watch   bool   `help:"Reload the configuration file when it changes" default:"true" negatable:""`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if s.Address != "" {
		cfg.Server.Address = s.Address
	}
	configPath := root.Config
	if _, statErr := os.Stat(configPath); statErr != nil {
		configPath = ""
	}
	if !s.Watch {
		configPath = ""
	}
	return RunServe(cfg, configPath)
}

// RunServe wires the API from cfg and blocks until SIGINT or SIGTERM. A
// non-empty configPath is watched for changes.
func RunServe(cfg *config.Config, configPath string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cat, metadata, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	gen, err := generator.New(ctx, cfg.Generator, cat, metadata)
	if err != nil {
		return err
	}

	deps := session.Dependencies{
		Catalog:   cat,
		Generator: gen,
		Metadata:  metadata,
		Timeout:   cfg.Generator.TimeoutDuration(),
	}
	opts := httpserver.Options{
		Address:     cfg.Server.Address,
		Catalog:     cat,
		Metadata:    metadata,
		MetricsPath: cfg.Server.MetricsPath,
	}

	var cleanups []func()
	defer func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}()

	if cfg.Server.Metrics {
		reg := metrics.NewRegistry()
		deps.Recorder = metrics.NewPrometheusRecorder(reg)
		opts.PrometheusHandler = metrics.HTTPHandler(reg)
	}

	if cfg.Journal.Path != "" {
		history, closeJournal, err := openJournal(ctx, cfg.Journal.Path, &deps)
		if err != nil {
			return err
		}
		cleanups = append(cleanups, closeJournal)
		opts.History = history
	}

	if cfg.Notifications.NATSURL != "" {
		pub, err := notify.ConnectNATS(ctx, cfg.Notifications)
		if err != nil {
			return err
		}
		notifier := notify.New(pub, cfg.Notifications.Subject)
		deps.Observers = append(deps.Observers, func(id string) lifecycle.Observer { return notifier.ForSession(id) })
		cleanups = append(cleanups, func() {
			notifier.Close()
			if err := pub.Close(); err != nil {
				slog.Warn("Failed to drain NATS connection", logfields.Error(err))
			}
		})
	}

	manager := session.NewManager(deps, cfg.Sessions.IdleTTLDuration())
	cleanups = append(cleanups, func() { _ = manager.Close(context.Background()) })
	if err := manager.StartReaper(cfg.Sessions.ReapIntervalDuration()); err != nil {
		return err
	}
	opts.Sessions = manager

	if configPath != "" {
		watcher, err := config.NewWatcher(configPath, func(_ context.Context, next *config.Config) error {
			manager.SetTimeout(next.Generator.TimeoutDuration())
			slog.Info("Configuration reloaded", slog.Duration("generation_timeout", next.Generator.TimeoutDuration()))
			return nil
		})
		if err != nil {
			return err
		}
		if err := watcher.Start(ctx); err != nil {
			return err
		}
		cleanups = append(cleanups, watcher.Stop)
	}

	srv := httpserver.New(opts)
	if err := srv.Start(ctx); err != nil {
		return err
	}
	slog.Info("docagent serving",
		slog.String("address", cfg.Server.Address),
		logfields.Provider(gen.Name()),
		logfields.Forge(string(metadata.Kind())))

	<-ctx.Done()
	slog.Info("Shutdown signal received, stopping server...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()

	var stopErr error
	if err := srv.Stop(stopCtx); err != nil {
		stopErr = err
	}
	if err := manager.Close(stopCtx); err != nil && stopErr == nil {
		stopErr = fmt.Errorf("failed to close sessions: %w", err)
	}
	if stopErr != nil {
		return stopErr
	}
	slog.Info("docagent stopped")
	return nil
}

// openJournal opens the SQLite journal, rebuilds request history from it and
// registers a per-session journal observer on deps.
func openJournal(ctx context.Context, path string, deps *session.Dependencies) (handlers.HistoryReader, func(), error) {
	store, err := eventstore.NewSQLiteStore(path)
	if err != nil {
		return nil, nil, err
	}
	projection := eventstore.NewHistoryProjection(store, historySize)
	if err := projection.Rebuild(ctx); err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	deps.Observers = append(deps.Observers, func(id string) lifecycle.Observer {
		return eventstore.NewJournal(store, projection, id)
	})
	closeStore := func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close journal", logfields.Path(path), logfields.Error(err))
		}
	}
	return projection, closeStore, nil
}
