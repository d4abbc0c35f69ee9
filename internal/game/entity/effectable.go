// Package entity implements the attribute/effect computation engine:
// named numeric stats with transient deltas and derived formulas, timed
// and stacking modifiers layered over them, and the fold-based
// evaluation pipeline for attributes, properties and damage.
//
// Everything here runs single-threaded within one dispatch of the game
// loop's per-entity tick; no type in this package carries its own lock.
package entity

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
)

// AttributeRegistry validates and constructs attributes from the
// external attribute-definition registry during hydration. Create
// attaches the definition's formula, if any.
type AttributeRegistry interface {
	Has(name string) bool
	Create(name string, base, delta float64) (*Attribute, error)
}

// PersistedEntity is the opaque structured shape handed to and from the
// external store: attribute (base, delta) pairs plus the persisted
// effects. Effects without the Persists flag are absent.
type PersistedEntity struct {
	Attributes map[string]AttributeSpec `json:"attributes"`
	Effects    []PersistedEffect        `json:"effects"`
}

// EffectableEntity is the base of every stat-bearing game object. It
// composes one AttributeSet and one EffectList bound to itself, exposes
// the attribute API, and relays every entity-level event into its
// EffectList — the sole mechanism by which effects observe gameplay.
type EffectableEntity struct {
	name       string
	attributes *AttributeSet
	effects    *EffectList
	properties map[string]any
	listeners  []Listener
	hydrated   bool
}

// NewEffectableEntity creates an entity with empty attribute and effect
// collections. Hydrate populates them.
func NewEffectableEntity(name string) *EffectableEntity {
	e := &EffectableEntity{
		name:       name,
		attributes: NewAttributeSet(),
		properties: make(map[string]any, 4),
	}
	e.effects = newEffectList(e)
	return e
}

// Name returns the entity name.
func (e *EffectableEntity) Name() string { return e.name }

// Attributes returns the entity's attribute set.
func (e *EffectableEntity) Attributes() *AttributeSet { return e.attributes }

// Effects returns the entity's live effect list.
func (e *EffectableEntity) Effects() *EffectList { return e.effects }

// AddListener registers an external event listener (quest tracking,
// broadcast adapters). Listeners receive every event before it is
// relayed into the effect list.
func (e *EffectableEntity) AddListener(l Listener) {
	e.listeners = append(e.listeners, l)
}

// Emit delivers an event to registered listeners in registration order,
// then relays it verbatim into the EffectList.
func (e *EffectableEntity) Emit(ev Event) {
	for _, l := range e.listeners {
		l.HandleEvent(e, ev)
	}
	e.effects.Emit(ev)
}

// HasAttribute reports whether the entity carries the named attribute.
func (e *EffectableEntity) HasAttribute(name string) bool {
	return e.attributes.Has(name)
}

// GetMaxAttribute computes the attribute's effect-adjusted maximum:
// base folded through active effects, then — for derived attributes —
// the formula applied to the recursively resolved dependency maxima.
// A dependency cycle fails with ErrFormulaCycle.
func (e *EffectableEntity) GetMaxAttribute(name string) (float64, error) {
	return e.resolveMax(name, make(map[string]bool, 4))
}

func (e *EffectableEntity) resolveMax(name string, path map[string]bool) (float64, error) {
	if path[name] {
		return 0, fmt.Errorf("%w: %q", ErrFormulaCycle, name)
	}
	attr, err := e.attributes.Get(name)
	if err != nil {
		return 0, err
	}

	current := e.effects.EvaluateAttribute(attr)
	formula := attr.Formula()
	if formula == nil {
		return current, nil
	}

	path[name] = true
	defer delete(path, name)

	deps := make([]float64, len(formula.Requires))
	for i, req := range formula.Requires {
		v, err := e.resolveMax(req, path)
		if err != nil {
			return 0, fmt.Errorf("resolving %q for %q: %w", req, name, err)
		}
		deps[i] = v
	}

	return formula.Fn(attr, e, current, deps...), nil
}

// GetAttribute returns the attribute's current value: evaluated max
// plus the transient delta.
func (e *EffectableEntity) GetAttribute(name string) (float64, error) {
	maxVal, err := e.GetMaxAttribute(name)
	if err != nil {
		return 0, err
	}
	attr, err := e.attributes.Get(name)
	if err != nil {
		return 0, err
	}
	return maxVal + attr.Delta(), nil
}

// RaiseAttribute moves the named attribute's current value up by amount.
func (e *EffectableEntity) RaiseAttribute(name string, amount float64) error {
	attr, err := e.attributes.Get(name)
	if err != nil {
		return err
	}
	attr.Raise(amount)
	e.emitAttributeUpdate(name)
	return nil
}

// LowerAttribute moves the named attribute's current value down by amount.
func (e *EffectableEntity) LowerAttribute(name string, amount float64) error {
	attr, err := e.attributes.Get(name)
	if err != nil {
		return err
	}
	attr.Lower(amount)
	e.emitAttributeUpdate(name)
	return nil
}

// SetAttributeBase replaces the named attribute's permanent base value.
func (e *EffectableEntity) SetAttributeBase(name string, value float64) error {
	attr, err := e.attributes.Get(name)
	if err != nil {
		return err
	}
	attr.SetBase(value)
	e.emitAttributeUpdate(name)
	return nil
}

// SetAttributeToMax clears the named attribute's transient delta.
func (e *EffectableEntity) SetAttributeToMax(name string) error {
	attr, err := e.attributes.Get(name)
	if err != nil {
		return err
	}
	attr.Reset()
	e.emitAttributeUpdate(name)
	return nil
}

func (e *EffectableEntity) emitAttributeUpdate(name string) {
	v, err := e.GetAttribute(name)
	if err != nil {
		slog.Error("evaluating attribute for update event",
			"entity", e.name, "attribute", name, "error", err)
		return
	}
	e.Emit(Event{Kind: EventAttributeUpdate, Attribute: name, Value: v})
}

// SetProperty stores an arbitrary named field on the entity, distinct
// from the attribute set.
func (e *EffectableEntity) SetProperty(name string, value any) {
	e.properties[name] = value
}

// GetProperty returns the named field piped through the effect chain.
// Non-scalar values are copied first, so a modifier can never mutate
// the canonical stored value.
func (e *EffectableEntity) GetProperty(name string) (any, error) {
	v, ok := e.properties[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPropertyNotFound, name)
	}
	return e.effects.EvaluateProperty(name, copyValue(v)), nil
}

// EvaluateIncomingDamage folds incoming damage through the effect chain
// and floors the result to an integer.
func (e *EffectableEntity) EvaluateIncomingDamage(d *Damage, amount float64) int {
	return int(math.Floor(e.effects.EvaluateIncomingDamage(d, amount)))
}

// EvaluateOutgoingDamage folds outgoing damage through the effect chain
// and floors the result to an integer.
func (e *EffectableEntity) EvaluateOutgoingDamage(d *Damage, amount float64) int {
	return int(math.Floor(e.effects.EvaluateOutgoingDamage(d, amount)))
}

// Hydrate populates the attribute set and effect list from persisted
// data. Hydration is a strict one-time transition: a repeat call is a
// logged no-op. Attribute names are validated against the external
// attribute-definition registry; a bare number in the incoming data is
// shorthand for {base, delta: 0} (normalized during decode). Inventory
// and equipment hydration belong to concrete entity types, not here.
func (e *EffectableEntity) Hydrate(attrs AttributeRegistry, effects EffectFactory, data PersistedEntity) error {
	if e.hydrated {
		slog.Debug("entity already hydrated, skipping", "entity", e.name)
		return nil
	}

	for _, name := range sortedKeys(data.Attributes) {
		spec := data.Attributes[name]
		if !attrs.Has(name) {
			return fmt.Errorf("%w: unknown attribute %q for entity %q", ErrInvalidAttribute, name, e.name)
		}
		attr, err := attrs.Create(name, spec.Base, spec.Delta)
		if err != nil {
			return fmt.Errorf("creating attribute %q for entity %q: %w", name, e.name, err)
		}
		e.attributes.Add(attr)
	}

	if err := e.effects.Hydrate(data.Effects, effects); err != nil {
		return fmt.Errorf("hydrating effects for entity %q: %w", e.name, err)
	}

	e.hydrated = true
	slog.Debug("entity hydrated",
		"entity", e.name,
		"attributes", e.attributes.Names(),
		"effects", e.effects.Size())
	return nil
}

// Serialize returns the persisted shape of the entity: every attribute's
// (base, delta) pair and every persistent effect.
func (e *EffectableEntity) Serialize() PersistedEntity {
	return PersistedEntity{
		Attributes: e.attributes.Serialize(),
		Effects:    e.effects.Serialize(),
	}
}

// sortedKeys keeps hydration order deterministic across runs.
func sortedKeys(m map[string]AttributeSpec) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// copyValue deep-copies the container shapes property values may take.
// Scalars are returned as-is.
func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = copyValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	case []float64:
		out := make([]float64, len(val))
		copy(out, val)
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		return v
	}
}
