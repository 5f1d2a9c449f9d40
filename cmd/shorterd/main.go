package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Brian-Masse/Shorter/internal/config"
	"github.com/Brian-Masse/Shorter/internal/domain"
	"github.com/Brian-Masse/Shorter/internal/reminder"
	"github.com/Brian-Masse/Shorter/internal/session"
	"github.com/Brian-Masse/Shorter/internal/sqlite"
	"github.com/Brian-Masse/Shorter/internal/subscription"
	"github.com/Brian-Masse/Shorter/internal/syncclient"
	"github.com/Brian-Masse/Shorter/internal/timing"
	"golang.org/x/sync/errgroup"
)

const (
	establishRetryDelay   = 5 * time.Second
	reminderCheckInterval = time.Hour
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load("config.yaml")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("resolve timezone: %w", err)
	}

	store, err := sqlite.NewStore(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()
	logger.Info("local store opened", "path", cfg.DatabasePath)

	client := syncclient.NewClient(cfg.SyncURL, syncclient.Stores{
		Profiles: store,
		Posts:    store,
		Seeds:    store,
	}, logger)
	client.OnInvalidate(func() {
		logger.Debug("local snapshot invalidated")
	})

	registry := subscription.NewRegistry(client, logger)
	sess := session.New(cfg.OwnerID, "", registry, nil, store, logger)
	gateway := &reminder.LogGateway{Logger: logger}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return client.Run(ctx)
	})
	g.Go(func() error {
		return establishLoop(ctx, sess, logger)
	})
	g.Go(func() error {
		return reminderLoop(ctx, store, gateway, loc, logger)
	})

	logger.Info("daemon started", "owner_id", cfg.OwnerID, "sync_url", cfg.SyncURL)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("daemon stopped")
	return nil
}

// establishLoop retries session establishment until it succeeds; the
// sequence is idempotent, and the first attempts routinely fail while
// the sync channel is still connecting.
func establishLoop(ctx context.Context, sess *session.Session, logger *slog.Logger) error {
	for {
		if err := sess.Establish(ctx); err != nil {
			logger.Warn("session establishment failed, retrying", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(establishRetryDelay):
			}
			continue
		}
		return nil
	}
}

// reminderLoop keeps the reminder window fresh. The day seed arrives
// through the timing subscription, so early checks may find no seed
// yet; they simply wait for the next tick.
func reminderLoop(ctx context.Context, store *sqlite.Store, gateway domain.NotificationGateway, loc *time.Location, logger *slog.Logger) error {
	refresh := func() {
		seed, err := store.GetDaySeed(ctx)
		if errors.Is(err, domain.ErrNotFound) {
			logger.Debug("day seed not yet synced")
			return
		}
		if err != nil {
			logger.Error("failed to load day seed", "error", err)
			return
		}

		scheduler, err := timing.NewScheduler(seed, loc)
		if err != nil {
			logger.Error("failed to build scheduler", "error", err)
			return
		}

		planner := reminder.NewPlanner(scheduler, gateway, store, logger)
		refreshed, err := planner.RefreshWindow(ctx, time.Now())
		if err != nil {
			logger.Error("reminder refresh failed", "error", err)
		} else if refreshed {
			logger.Info("reminder window refreshed")
		}
	}

	refresh()

	ticker := time.NewTicker(reminderCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			refresh()
		}
	}
}
