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

	"golang.org/x/sync/errgroup"

	"github.com/mistwoodmud/mistwood/internal/config"
	"github.com/mistwoodmud/mistwood/internal/data"
	"github.com/mistwoodmud/mistwood/internal/db"
	"github.com/mistwoodmud/mistwood/internal/model"
	"github.com/mistwoodmud/mistwood/internal/world"
)

const gameConfigPath = "config/gameserver.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := gameConfigPath
	if p := os.Getenv("MISTWOOD_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadGameServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	slog.Info("mistwood server starting", "log_level", cfg.LogLevel)

	if err := data.LoadAttributeDefs(); err != nil {
		return fmt.Errorf("loading attribute definitions: %w", err)
	}
	if err := data.LoadEffectDefs(); err != nil {
		return fmt.Errorf("loading effect definitions: %w", err)
	}

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	repo := db.NewEntityRepository(database.Pool())

	w := world.New()
	if err := loadWorld(ctx, repo, w); err != nil {
		return fmt.Errorf("loading world: %w", err)
	}
	slog.Info("world loaded", "entities", w.Size())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return world.NewTicker(w, cfg.TickInterval()).Run(gctx)
	})

	g.Go(func() error {
		return autosave(gctx, repo, w, cfg.AutosaveInterval())
	})

	err = g.Wait()

	// Final save on the way out, under a fresh deadline: the run
	// context is already canceled.
	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if saveErr := saveWorld(saveCtx, repo, w); saveErr != nil {
		slog.Error("final save failed", "error", saveErr)
	}

	return err
}

// loadWorld rebuilds live entities from persisted snapshots. Hydration
// routes through the definition registries, so restored effects obey
// the same conflict rules as runtime-created ones.
func loadWorld(ctx context.Context, repo *db.EntityRepository, w *world.World) error {
	rows, err := repo.LoadAll(ctx)
	if err != nil {
		return err
	}

	for _, row := range rows {
		var ent world.Entity
		switch row.Kind {
		case "player":
			p := model.NewPlayer(row.Name, 0)
			if err := p.Hydrate(data.Attributes(), data.Effects(), row.Data); err != nil {
				return fmt.Errorf("hydrating player %q: %w", row.Name, err)
			}
			ent = p
		case "npc":
			n := model.NewNPC(row.Name, "", false)
			if err := n.Hydrate(data.Attributes(), data.Effects(), row.Data); err != nil {
				return fmt.Errorf("hydrating npc %q: %w", row.Name, err)
			}
			ent = n
		default:
			slog.Warn("skipping entity of unknown kind", "entity", row.Name, "kind", row.Kind)
			continue
		}

		if err := w.Add(ent); err != nil {
			return err
		}
	}
	return nil
}

func autosave(ctx context.Context, repo *db.EntityRepository, w *world.World, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := saveWorld(ctx, repo, w); err != nil {
				slog.Error("autosave failed", "error", err)
			}
		}
	}
}

func saveWorld(ctx context.Context, repo *db.EntityRepository, w *world.World) error {
	entities := w.All()
	rows := make([]db.EntityRow, 0, len(entities))
	for _, e := range entities {
		rows = append(rows, db.EntityRow{
			Name: e.Name(),
			Kind: e.Kind(),
			Data: e.Serialize(),
		})
	}
	return repo.SaveAll(ctx, rows)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
