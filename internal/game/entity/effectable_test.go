package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAttrRegistry validates names against a fixed table and attaches
// formulas where defined.
type fakeAttrRegistry struct {
	formulas map[string]*Formula
	known    map[string]bool
}

func newFakeAttrRegistry(names ...string) *fakeAttrRegistry {
	r := &fakeAttrRegistry{
		formulas: make(map[string]*Formula),
		known:    make(map[string]bool),
	}
	for _, n := range names {
		r.known[n] = true
	}
	return r
}

func (r *fakeAttrRegistry) Has(name string) bool { return r.known[name] }

func (r *fakeAttrRegistry) Create(name string, base, delta float64) (*Attribute, error) {
	return NewAttribute(name, base, delta, r.formulas[name]), nil
}

// fakeEffectFactory builds effects from a fixed definition table.
type fakeEffectFactory struct {
	defs map[string]Config
}

func (f *fakeEffectFactory) Create(id string) (*Effect, error) {
	cfg, ok := f.defs[id]
	if !ok {
		return nil, assert.AnError
	}
	return NewEffect(id, cfg, State{}, nil), nil
}

func TestEffectableEntity_GetAttribute_IsMaxPlusDelta(t *testing.T) {
	ent := newTestEntity(t)

	require.NoError(t, ent.LowerAttribute("health", 30))
	v, err := ent.GetAttribute("health")
	require.NoError(t, err)
	assert.Equal(t, 70.0, v)

	maxV, err := ent.GetMaxAttribute("health")
	require.NoError(t, err)
	assert.Equal(t, 100.0, maxV)

	require.NoError(t, ent.RaiseAttribute("health", 12))
	v, err = ent.GetAttribute("health")
	require.NoError(t, err)
	assert.Equal(t, 82.0, v, "raising by A increases current by exactly A")

	require.NoError(t, ent.SetAttributeToMax("health"))
	v, err = ent.GetAttribute("health")
	require.NoError(t, err)
	assert.Equal(t, 100.0, v)

	require.NoError(t, ent.SetAttributeBase("health", 120))
	v, err = ent.GetAttribute("health")
	require.NoError(t, err)
	assert.Equal(t, 120.0, v)
}

func TestEffectableEntity_UnknownAttributeFails(t *testing.T) {
	ent := newTestEntity(t)

	_, err := ent.GetAttribute("luck")
	require.ErrorIs(t, err, ErrAttributeNotFound)
	require.ErrorIs(t, ent.RaiseAttribute("luck", 1), ErrAttributeNotFound)
	require.ErrorIs(t, ent.LowerAttribute("luck", 1), ErrAttributeNotFound)
	require.ErrorIs(t, ent.SetAttributeBase("luck", 1), ErrAttributeNotFound)
	require.ErrorIs(t, ent.SetAttributeToMax("luck"), ErrAttributeNotFound)
}

func TestEffectableEntity_FormulaUsesEffectAdjustedDependency(t *testing.T) {
	ent := NewEffectableEntity("warrior")
	ent.Attributes().Add(NewAttribute("strength", 10, 0, nil))
	ent.Attributes().Add(NewAttribute("power", 0, 0, &Formula{
		Requires: []string{"strength"},
		Fn: func(_ *Attribute, _ *EffectableEntity, current float64, deps ...float64) float64 {
			return current + deps[0]*2
		},
	}))

	// +5 strength from an active effect: power must see 15, not 10.
	_, err := ent.Effects().Add(NewEffect("might", Config{Type: "might"}, State{},
		&recordingBehavior{attribute: "strength", bonus: 5}))
	require.NoError(t, err)

	power, err := ent.GetMaxAttribute("power")
	require.NoError(t, err)
	assert.Equal(t, 30.0, power)
}

func TestEffectableEntity_FormulaCycleFails(t *testing.T) {
	ent := NewEffectableEntity("ouroboros")
	ent.Attributes().Add(NewAttribute("a", 1, 0, &Formula{
		Requires: []string{"b"},
		Fn: func(_ *Attribute, _ *EffectableEntity, current float64, deps ...float64) float64 {
			return current + deps[0]
		},
	}))
	ent.Attributes().Add(NewAttribute("b", 1, 0, &Formula{
		Requires: []string{"a"},
		Fn: func(_ *Attribute, _ *EffectableEntity, current float64, deps ...float64) float64 {
			return current + deps[0]
		},
	}))

	_, err := ent.GetMaxAttribute("a")
	require.ErrorIs(t, err, ErrFormulaCycle)
}

func TestEffectableEntity_DiamondDependencyIsNotACycle(t *testing.T) {
	sum := func(_ *Attribute, _ *EffectableEntity, current float64, deps ...float64) float64 {
		for _, d := range deps {
			current += d
		}
		return current
	}

	ent := NewEffectableEntity("geometer")
	ent.Attributes().Add(NewAttribute("core", 10, 0, nil))
	ent.Attributes().Add(NewAttribute("left", 0, 0, &Formula{Requires: []string{"core"}, Fn: sum}))
	ent.Attributes().Add(NewAttribute("right", 0, 0, &Formula{Requires: []string{"core"}, Fn: sum}))
	ent.Attributes().Add(NewAttribute("top", 0, 0, &Formula{Requires: []string{"left", "right"}, Fn: sum}))

	v, err := ent.GetMaxAttribute("top")
	require.NoError(t, err)
	assert.Equal(t, 20.0, v)
}

func TestEffectableEntity_GetProperty_DeepCopies(t *testing.T) {
	ent := NewEffectableEntity("merchant")
	ent.SetProperty("tags", []string{"vendor", "dwarf"})

	// mutatingBehavior tampers with the value it receives.
	_, err := ent.Effects().Add(NewEffect("curse", Config{Type: "curse"}, State{}, propertyTamperer{}))
	require.NoError(t, err)

	v, err := ent.GetProperty("tags")
	require.NoError(t, err)
	assert.Equal(t, []string{"cursed", "dwarf"}, v)

	// The canonical stored value is untouched.
	again, err := ent.GetProperty("tags")
	require.NoError(t, err)
	assert.Equal(t, []string{"cursed", "dwarf"}, again)
}

type propertyTamperer struct{ BaseBehavior }

func (propertyTamperer) ModifyProperty(_ *Effect, name string, value any) any {
	if tags, ok := value.([]string); ok && len(tags) > 0 {
		tags[0] = "cursed"
	}
	return value
}

func TestEffectableEntity_GetProperty_Unknown(t *testing.T) {
	ent := NewEffectableEntity("merchant")
	_, err := ent.GetProperty("tags")
	require.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestEffectableEntity_Hydrate_SerializeRoundTrip(t *testing.T) {
	registry := newFakeAttrRegistry("health", "mana")
	factory := &fakeEffectFactory{defs: map[string]Config{
		"poison": {Type: "poison", MaxStacks: 3, Persists: true},
		"regen":  {Type: "regen", Refreshes: true, Persists: true},
	}}

	first := NewEffectableEntity("adventurer")
	require.NoError(t, first.Hydrate(registry, factory, PersistedEntity{
		Attributes: map[string]AttributeSpec{
			"health": {Base: 100, Delta: -40},
			"mana":   {Base: 50},
		},
	}))

	// Runtime activity: two persistent effects, one transient.
	_, err := first.Effects().Add(NewEffect("poison", Config{Type: "poison", MaxStacks: 3, Persists: true}, State{}, nil))
	require.NoError(t, err)
	_, err = first.Effects().Add(NewEffect("regen", Config{Type: "regen", Refreshes: true, Persists: true}, State{}, nil))
	require.NoError(t, err)
	_, err = first.Effects().Add(NewEffect("enrage", Config{Type: "enrage"}, State{}, nil))
	require.NoError(t, err)

	snapshot := first.Serialize()
	require.Len(t, snapshot.Effects, 2, "transient effects are absent from the snapshot")

	second := NewEffectableEntity("adventurer")
	require.NoError(t, second.Hydrate(registry, factory, snapshot))

	assert.Equal(t, snapshot.Attributes, second.Serialize().Attributes)

	restored := second.Effects().Entries()
	require.Len(t, restored, 2)
	ids := []string{restored[0].ID(), restored[1].ID()}
	assert.ElementsMatch(t, []string{"poison", "regen"}, ids)
}

func TestEffectableEntity_Hydrate_UnknownAttribute(t *testing.T) {
	ent := NewEffectableEntity("impostor")
	err := ent.Hydrate(newFakeAttrRegistry("health"), &fakeEffectFactory{}, PersistedEntity{
		Attributes: map[string]AttributeSpec{"charisma": {Base: 10}},
	})
	require.ErrorIs(t, err, ErrInvalidAttribute)
}

func TestEffectableEntity_Hydrate_Idempotent(t *testing.T) {
	registry := newFakeAttrRegistry("health")
	ent := NewEffectableEntity("adventurer")

	require.NoError(t, ent.Hydrate(registry, &fakeEffectFactory{}, PersistedEntity{
		Attributes: map[string]AttributeSpec{"health": {Base: 100}},
	}))

	// Second hydrate is a logged no-op: the first base value survives.
	require.NoError(t, ent.Hydrate(registry, &fakeEffectFactory{}, PersistedEntity{
		Attributes: map[string]AttributeSpec{"health": {Base: 999}},
	}))

	v, err := ent.GetMaxAttribute("health")
	require.NoError(t, err)
	assert.Equal(t, 100.0, v)
}

func TestEffectableEntity_ListenersReceiveEventsFirst(t *testing.T) {
	ent := newTestEntity(t)

	var seen []EventKind
	ent.AddListener(listenerFunc(func(_ *EffectableEntity, ev Event) {
		seen = append(seen, ev.Kind)
	}))

	_, err := ent.Effects().Add(makeEffect("haste", "haste", nil))
	require.NoError(t, err)
	require.NoError(t, ent.RaiseAttribute("health", 0))

	assert.Equal(t, []EventKind{EventEffectAdded, EventAttributeUpdate}, seen)
}

type listenerFunc func(source *EffectableEntity, ev Event)

func (f listenerFunc) HandleEvent(source *EffectableEntity, ev Event) { f(source, ev) }
