// Package quest consumes entity events for quest progress. The tracker
// is a registered entity listener: it observes the event stream and
// counts progress, but never shapes attribute or effect computation.
package quest

import (
	"log/slog"

	"github.com/mistwoodmud/mistwood/internal/game/entity"
)

// GoalKind identifies what a goal counts.
type GoalKind int

const (
	GoalDamageDealt  GoalKind = iota // cumulative damage dealt (EventHit)
	GoalDamageTaken                  // cumulative damage taken (EventDamaged)
	GoalEffectGained                 // times a specific effect was gained
)

// Goal is one statically typed quest objective.
type Goal struct {
	Quest    string
	Kind     GoalKind
	EffectID string // GoalEffectGained only
	Target   float64
}

// Progress is the persisted shape of one goal's progress.
type Progress struct {
	Quest    string  `json:"quest"`
	Value    float64 `json:"value"`
	Complete bool    `json:"complete"`
}

// Tracker accumulates goal progress from one entity's event stream.
// Implements entity.Listener.
type Tracker struct {
	goals    []Goal
	progress []float64
}

// NewTracker creates a tracker over a fixed goal set.
func NewTracker(goals []Goal) *Tracker {
	return &Tracker{goals: goals, progress: make([]float64, len(goals))}
}

// HandleEvent routes an entity event into the matching goals.
func (t *Tracker) HandleEvent(source *entity.EffectableEntity, ev entity.Event) {
	for i, g := range t.goals {
		var delta float64
		switch g.Kind {
		case GoalDamageDealt:
			if ev.Kind == entity.EventHit {
				delta = float64(ev.Amount)
			}
		case GoalDamageTaken:
			if ev.Kind == entity.EventDamaged {
				delta = float64(ev.Amount)
			}
		case GoalEffectGained:
			if ev.Kind == entity.EventEffectAdded && ev.Effect != nil && ev.Effect.ID() == g.EffectID {
				delta = 1
			}
		}
		if delta == 0 {
			continue
		}

		before := t.progress[i]
		t.progress[i] = before + delta

		if before < g.Target && t.progress[i] >= g.Target {
			slog.Info("quest goal complete",
				"entity", source.Name(),
				"quest", g.Quest)
		}
	}
}

// Snapshot returns per-goal progress for persistence or display.
func (t *Tracker) Snapshot() []Progress {
	out := make([]Progress, len(t.goals))
	for i, g := range t.goals {
		out[i] = Progress{
			Quest:    g.Quest,
			Value:    t.progress[i],
			Complete: t.progress[i] >= g.Target,
		}
	}
	return out
}

// Restore loads previously persisted progress values, matched by index.
func (t *Tracker) Restore(values []float64) {
	for i := range t.progress {
		if i < len(values) {
			t.progress[i] = values[i]
		}
	}
}
