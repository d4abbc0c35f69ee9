package entity

import (
	"fmt"
	"log/slog"
	"slices"
	"time"
)

// EffectFactory builds a fresh detached Effect from a definition id.
// Implemented by the external effect-definition registry; consumed
// during hydration.
type EffectFactory interface {
	Create(id string) (*Effect, error)
}

// EffectList is the live collection of effects for exactly one entity.
// Storage is an insertion-ordered sequence plus a per-type index, so
// duplicate resolution scans same-type effects in a deterministic order.
//
// Membership is validated lazily: every read sweeps expired members
// first, so no caller ever observes a value contributed by an effect
// whose IsCurrent turned false.
type EffectList struct {
	owner   *EffectableEntity
	effects []*Effect
	byType  map[string][]*Effect
	now     func() time.Time
}

func newEffectList(owner *EffectableEntity) *EffectList {
	return &EffectList{
		owner:  owner,
		byType: make(map[string][]*Effect, 8),
		now:    time.Now,
	}
}

// Size returns the number of active effects after a validation sweep.
func (l *EffectList) Size() int {
	l.Validate()
	return len(l.effects)
}

// Entries returns the active effects in insertion order.
func (l *EffectList) Entries() []*Effect {
	l.Validate()
	return slices.Clone(l.effects)
}

// Add inserts an effect, resolving conflicts against active effects of
// the same type. Scanning in insertion order, the first matching rule
// wins:
//
//  1. existing effect stacks (MaxStacks > 0) → bump its stack counter
//     (capped), consume the new instance, return true.
//  2. existing effect refreshes → reset its elapsed duration, consume
//     the new instance, return true.
//  3. existing effect is unique → reject, return false.
//
// Only when no same-type effect matches a rule is the new instance
// inserted. The boolean is the application outcome; the error is
// reserved for the single-ownership violation.
func (l *EffectList) Add(e *Effect) (bool, error) {
	if e.target != nil {
		return false, fmt.Errorf("%w: %q", ErrEffectAttached, e.id)
	}

	// Break aliasing with the definition and with siblings before any
	// counter is touched.
	e.state = e.state.Clone()

	l.Validate()
	now := l.now()

	for _, existing := range l.byType[e.config.Type] {
		cfg := existing.config
		if cfg.MaxStacks > 0 {
			if existing.state.Stacks < cfg.MaxStacks {
				existing.state.Stacks = min(existing.state.Stacks+1, cfg.MaxStacks)
				existing.behavior.OnEvent(existing, l.owner, Event{Kind: EventEffectStacked, Effect: existing})
			}
			// At cap the application is still consumed: a stacking
			// type never yields two list members.
			return true, nil
		}
		if cfg.Refreshes {
			existing.state.StartedAt = now
			existing.behavior.OnEvent(existing, l.owner, Event{Kind: EventEffectRefreshed, Effect: existing})
			return true, nil
		}
		if cfg.Unique {
			return false, nil
		}
	}

	e.target = l.owner
	if e.state.StartedAt.IsZero() {
		e.state.StartedAt = now
	}
	if e.state.LastTick.IsZero() {
		e.state.LastTick = e.state.StartedAt
	}
	if e.config.MaxStacks > 0 && e.state.Stacks == 0 {
		e.state.Stacks = 1
	}

	l.effects = append(l.effects, e)
	l.byType[e.config.Type] = append(l.byType[e.config.Type], e)

	e.behavior.OnAttach(e)
	l.owner.Emit(Event{Kind: EventEffectAdded, Effect: e})

	slog.Debug("effect added",
		"entity", l.owner.Name(),
		"effect", e.id,
		"type", e.config.Type)

	return true, nil
}

// Remove deactivates the effect and deletes it from the collection.
// Returns ErrEffectNotMember if the effect is not currently a member.
func (l *EffectList) Remove(e *Effect) error {
	idx := slices.Index(l.effects, e)
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrEffectNotMember, e.id)
	}

	e.deactivate()
	l.effects = slices.Delete(l.effects, idx, idx+1)

	typed := l.byType[e.config.Type]
	if ti := slices.Index(typed, e); ti >= 0 {
		l.byType[e.config.Type] = slices.Delete(typed, ti, ti+1)
	}

	l.owner.Emit(Event{Kind: EventEffectRemoved, Effect: e})
	return nil
}

// Clear unconditionally empties the collection, bypassing deactivation
// and removal notifications. Hard entity teardown only.
func (l *EffectList) Clear() {
	l.effects = nil
	l.byType = make(map[string][]*Effect, 8)
}

// Validate purges every member whose IsCurrent is false, through the
// normal Remove path. Precondition of every other read.
func (l *EffectList) Validate() {
	now := l.now()
	var expired []*Effect
	for _, e := range l.effects {
		if !e.IsCurrent(now) {
			expired = append(expired, e)
		}
	}
	for _, e := range expired {
		if err := l.Remove(e); err != nil {
			slog.Error("purging expired effect", "effect", e.id, "error", err)
		}
	}
}

// Emit relays an event to every active, unpaused effect. Effect
// added/removed events are list-level bookkeeping and are never relayed.
// updateTick is additionally gated per effect by its TickInterval.
func (l *EffectList) Emit(ev Event) {
	if ev.Kind == EventEffectAdded || ev.Kind == EventEffectRemoved {
		return
	}

	l.Validate()
	now := l.now()

	// Snapshot: behaviors may add or end effects mid-delivery.
	for _, e := range slices.Clone(l.effects) {
		if e.state.Paused {
			continue
		}
		if ev.Kind == EventUpdateTick {
			if e.config.TickInterval <= 0 {
				continue
			}
			if now.Sub(e.state.LastTick) < e.config.TickInterval {
				continue
			}
			e.state.LastTick = now
			e.state.Ticks++
			e.behavior.OnTick(e, now)
			continue
		}
		e.behavior.OnEvent(e, l.owner, ev)
	}
}

// EvaluateAttribute folds the attribute's base value through every
// active, unpaused effect in collection order. The result is pre-delta.
func (l *EffectList) EvaluateAttribute(attr *Attribute) float64 {
	l.Validate()
	v := attr.Base()
	for _, e := range l.effects {
		if e.state.Paused {
			continue
		}
		v = e.behavior.ModifyAttribute(e, attr.Name(), v)
	}
	return v
}

// EvaluateProperty folds an arbitrary property value through every
// active, unpaused effect in collection order.
func (l *EffectList) EvaluateProperty(name string, value any) any {
	l.Validate()
	for _, e := range l.effects {
		if e.state.Paused {
			continue
		}
		value = e.behavior.ModifyProperty(e, name, value)
	}
	return value
}

// EvaluateIncomingDamage folds incoming damage through the modifier
// chain. The result is clamped to zero: a chain never inverts damage
// into implicit healing.
func (l *EffectList) EvaluateIncomingDamage(d *Damage, amount float64) float64 {
	l.Validate()
	for _, e := range l.effects {
		if e.state.Paused {
			continue
		}
		amount = e.behavior.ModifyIncomingDamage(e, d, amount)
	}
	return max(amount, 0)
}

// EvaluateOutgoingDamage is the outgoing counterpart of
// EvaluateIncomingDamage, with the same non-negative floor.
func (l *EffectList) EvaluateOutgoingDamage(d *Damage, amount float64) float64 {
	l.Validate()
	for _, e := range l.effects {
		if e.state.Paused {
			continue
		}
		amount = e.behavior.ModifyOutgoingDamage(e, d, amount)
	}
	return max(amount, 0)
}

// Serialize emits the persisted shape of every effect whose Persists
// flag is set. Transient effects do not survive a save cycle.
func (l *EffectList) Serialize() []PersistedEffect {
	l.Validate()
	out := make([]PersistedEffect, 0, len(l.effects))
	for _, e := range l.effects {
		if e.config.Persists {
			out = append(out, e.Serialize())
		}
	}
	return out
}

// Hydrate rebuilds live effects from persisted entries. Each entry is
// routed back through Add, so restored effects obey the same
// stacking/refresh/uniqueness rules as runtime-created ones.
func (l *EffectList) Hydrate(entries []PersistedEffect, factory EffectFactory) error {
	for _, entry := range entries {
		e, err := factory.Create(entry.ID)
		if err != nil {
			return fmt.Errorf("hydrating effect %q: %w", entry.ID, err)
		}
		e.SetState(entry.State)
		if _, err := l.Add(e); err != nil {
			return fmt.Errorf("hydrating effect %q: %w", entry.ID, err)
		}
	}
	return nil
}
