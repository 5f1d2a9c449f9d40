// seedgen generates the canonical day seed table and writes it to the
// local store for the sync engine to replicate. It runs exactly once,
// under the reference identity: the whole point of the table is that
// every device reads the same one, so regenerating it is refused.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/Brian-Masse/Shorter/internal/config"
	"github.com/Brian-Masse/Shorter/internal/domain"
	"github.com/Brian-Masse/Shorter/internal/sqlite"
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

	if cfg.OwnerID != domain.SeedAuthorID {
		return fmt.Errorf("day seed can only be generated by the reference profile")
	}

	store, err := sqlite.NewStore(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	ctx := context.Background()

	if _, err := store.GetDaySeed(ctx); err == nil {
		return fmt.Errorf("day seed already exists; refusing to regenerate")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("check existing seed: %w", err)
	}

	seed := domain.GenerateDaySeed(rand.New(rand.NewSource(time.Now().UnixNano())))
	if err := store.PutDaySeed(ctx, seed); err != nil {
		return fmt.Errorf("write day seed: %w", err)
	}

	logger.Info("day seed generated", "length", len(seed))
	return nil
}
