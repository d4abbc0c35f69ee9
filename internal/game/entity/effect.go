package entity

import "time"

// Config is the immutable portion of an effect, shared by every instance
// built from the same definition.
type Config struct {
	// Type is the conflict-resolution tag: stacking, refresh and
	// uniqueness rules apply between effects of the same Type.
	Type string

	// MaxStacks > 0 makes the effect stacking: repeat applications of
	// the same Type accumulate into one instance, capped at MaxStacks.
	MaxStacks int

	// Refreshes makes a repeat application reset the existing
	// instance's elapsed duration instead of inserting a duplicate.
	Refreshes bool

	// Unique rejects a second application while one instance is active.
	Unique bool

	// Persists marks the effect save-worthy: it survives a
	// serialize/hydrate cycle. Unset effects are transient.
	Persists bool

	// Duration limits the effect's lifetime. Zero means unlimited.
	Duration time.Duration

	// TickInterval gates updateTick delivery: the effect receives a
	// tick only when at least this much wall-clock time has passed
	// since its last delivered tick. Zero means no ticks, ever.
	TickInterval time.Duration
}

// State is the mutable portion of an effect. It is a plain copyable
// record: Clone breaks any aliasing between instances built from the
// same definition.
type State struct {
	Stacks    int                `json:"stacks"`
	Ticks     int                `json:"ticks"`
	StartedAt time.Time          `json:"startedAt"`
	LastTick  time.Time          `json:"lastTick"`
	Paused    bool               `json:"paused"`
	Ended     bool               `json:"ended"`
	Counters  map[string]float64 `json:"counters,omitempty"` // per-behavior scratch
}

// Clone returns a value copy sharing no mutable storage with the receiver.
func (s State) Clone() State {
	out := s
	if s.Counters != nil {
		out.Counters = make(map[string]float64, len(s.Counters))
		for k, v := range s.Counters {
			out.Counters[k] = v
		}
	}
	return out
}

// Counter returns a named scratch counter, zero if unset.
func (s *State) Counter(name string) float64 {
	return s.Counters[name]
}

// AddCounter accumulates into a named scratch counter.
func (s *State) AddCounter(name string, v float64) {
	if s.Counters == nil {
		s.Counters = make(map[string]float64, 2)
	}
	s.Counters[name] += v
}

// Behavior supplies an effect's transformation hooks and lifecycle
// callbacks. All transformations are pure; identity is the default
// (embed BaseBehavior and override what the effect needs).
type Behavior interface {
	ModifyAttribute(e *Effect, name string, value float64) float64
	ModifyProperty(e *Effect, name string, value any) any
	ModifyIncomingDamage(e *Effect, d *Damage, amount float64) float64
	ModifyOutgoingDamage(e *Effect, d *Damage, amount float64) float64

	OnAttach(e *Effect)                                     // added to a list
	OnTick(e *Effect, now time.Time)                        // gated updateTick delivered
	OnEvent(e *Effect, source *EffectableEntity, ev Event)  // any other relayed event
	OnRemove(e *Effect)                                     // deactivated, exactly once
}

// BaseBehavior is the identity Behavior.
type BaseBehavior struct{}

func (BaseBehavior) ModifyAttribute(_ *Effect, _ string, value float64) float64 { return value }
func (BaseBehavior) ModifyProperty(_ *Effect, _ string, value any) any          { return value }
func (BaseBehavior) ModifyIncomingDamage(_ *Effect, _ *Damage, amount float64) float64 {
	return amount
}
func (BaseBehavior) ModifyOutgoingDamage(_ *Effect, _ *Damage, amount float64) float64 {
	return amount
}
func (BaseBehavior) OnAttach(_ *Effect)                                {}
func (BaseBehavior) OnTick(_ *Effect, _ time.Time)                     {}
func (BaseBehavior) OnEvent(_ *Effect, _ *EffectableEntity, _ Event)   {}
func (BaseBehavior) OnRemove(_ *Effect)                                {}

// Effect is one instance of a timed/stacking modifier. Constructed
// detached; added to exactly one EffectList for its entire lifetime.
type Effect struct {
	id          string
	config      Config
	state       State
	behavior    Behavior
	target      *EffectableEntity
	deactivated bool
}

// NewEffect creates a detached effect instance. behavior may be nil, in
// which case the effect is pure bookkeeping (identity transformations).
func NewEffect(id string, cfg Config, st State, behavior Behavior) *Effect {
	if behavior == nil {
		behavior = BaseBehavior{}
	}
	return &Effect{id: id, config: cfg, state: st, behavior: behavior}
}

// ID returns the definition id this effect was built from.
func (e *Effect) ID() string { return e.id }

// Config returns the immutable configuration.
func (e *Effect) Config() Config { return e.config }

// State returns the mutable state for behaviors and hydration.
func (e *Effect) State() *State { return &e.state }

// Target returns the owning entity, nil while detached.
func (e *Effect) Target() *EffectableEntity { return e.target }

// Stacks returns the current stack count.
func (e *Effect) Stacks() int { return e.state.Stacks }

// Paused reports whether the effect is skipped by folds and fan-out.
func (e *Effect) Paused() bool { return e.state.Paused }

// Pause excludes the effect from evaluation and event delivery. The
// effect still ages toward its duration.
func (e *Effect) Pause() { e.state.Paused = true }

// Resume re-includes a paused effect.
func (e *Effect) Resume() { e.state.Paused = false }

// End marks the effect terminally expired. The owning list purges it on
// its next validated read.
func (e *Effect) End() { e.state.Ended = true }

// IsCurrent is the single liveness predicate: false once the duration
// has elapsed, the stack count is exhausted, or End was called.
func (e *Effect) IsCurrent(now time.Time) bool {
	if e.state.Ended {
		return false
	}
	if e.config.MaxStacks > 0 && e.state.Stacks <= 0 {
		return false
	}
	if e.config.Duration > 0 && now.Sub(e.state.StartedAt) >= e.config.Duration {
		return false
	}
	return true
}

// SetState replaces the mutable state from a persisted snapshot.
// The snapshot is cloned so the caller's copy is never aliased.
func (e *Effect) SetState(st State) { e.state = st.Clone() }

// Serialize returns the persisted shape of this effect.
func (e *Effect) Serialize() PersistedEffect {
	return PersistedEffect{ID: e.id, State: e.state.Clone()}
}

// deactivate runs the removal hook exactly once. Called by the owning
// list immediately before the effect leaves it, never independently.
func (e *Effect) deactivate() {
	if e.deactivated {
		return
	}
	e.deactivated = true
	e.behavior.OnRemove(e)
}

// PersistedEffect is the persisted shape of one effect.
type PersistedEffect struct {
	ID    string `json:"id"`
	State State  `json:"state"`
}
