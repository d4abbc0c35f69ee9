package world

import (
	"context"
	"log/slog"
	"time"

	"github.com/mistwoodmud/mistwood/internal/game/entity"
)

// Ticker drives the per-entity update signal at a fixed cadence.
type Ticker struct {
	world    *World
	interval time.Duration
}

// NewTicker creates a ticker over the given world.
func NewTicker(w *World, interval time.Duration) *Ticker {
	return &Ticker{world: w, interval: interval}
}

// Run dispatches update ticks until the context is canceled.
func (t *Ticker) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	slog.Info("game loop started", "interval", t.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("game loop stopping")
			return ctx.Err()
		case now := <-ticker.C:
			t.TickAll(now)
		}
	}
}

// TickAll delivers one update tick to every live entity. Failures are
// isolated per entity: a panic during one entity's dispatch is logged
// and does not abort the shared tick.
func (t *Ticker) TickAll(now time.Time) {
	for _, e := range t.world.All() {
		tickOne(e, now)
	}
}

func tickOne(e Entity, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("entity tick panicked", "entity", e.Name(), "panic", r)
		}
	}()
	e.Emit(entity.Event{Kind: entity.EventUpdateTick, Time: now})
}
