package entity

import (
	"encoding/json"
	"fmt"
	"sort"
)

// FormulaFunc computes an attribute's derived max value. current is the
// attribute's base already folded through the owner's active effects;
// deps are the computed max values of Formula.Requires, in order.
type FormulaFunc func(attr *Attribute, owner *EffectableEntity, current float64, deps ...float64) float64

// Formula derives an attribute's max value from other attributes.
// Requires lists the dependency attribute names; each is resolved to its
// effect-adjusted max value before Fn runs.
type Formula struct {
	Requires []string
	Fn       FormulaFunc
}

// Attribute is a single named numeric stat. base holds the permanent
// value, delta the transient signed offset (damage taken, drained mana).
// current = evaluated max + delta; delta never mutates base.
type Attribute struct {
	name    string
	base    float64
	delta   float64
	formula *Formula
}

// NewAttribute creates an attribute. formula may be nil.
func NewAttribute(name string, base, delta float64, formula *Formula) *Attribute {
	return &Attribute{name: name, base: base, delta: delta, formula: formula}
}

// Name returns the attribute name.
func (a *Attribute) Name() string { return a.name }

// Base returns the permanent base value.
func (a *Attribute) Base() float64 { return a.base }

// Delta returns the transient offset from the evaluated max.
func (a *Attribute) Delta() float64 { return a.delta }

// Formula returns the derived-value formula, or nil.
func (a *Attribute) Formula() *Formula { return a.formula }

// SetBase replaces the permanent base value. delta is untouched.
func (a *Attribute) SetBase(v float64) { a.base = v }

// Raise moves the current value up by amount.
func (a *Attribute) Raise(amount float64) { a.delta += amount }

// Lower moves the current value down by amount.
func (a *Attribute) Lower(amount float64) { a.delta -= amount }

// Reset clears the transient offset, setting current back to max.
func (a *Attribute) Reset() { a.delta = 0 }

// Serialize returns the persisted shape of this attribute.
func (a *Attribute) Serialize() AttributeSpec {
	return AttributeSpec{Base: a.base, Delta: a.delta}
}

// AttributeSpec is the persisted shape of one attribute. A bare number in
// incoming data is shorthand for {base: n, delta: 0}.
type AttributeSpec struct {
	Base  float64 `json:"base"`
	Delta float64 `json:"delta"`
}

// UnmarshalJSON accepts either a bare number or a {base, delta} object.
func (s *AttributeSpec) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		s.Base = n
		s.Delta = 0
		return nil
	}

	type plain AttributeSpec
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: parsing attribute spec: %s", ErrInvalidAttribute, err)
	}
	*s = AttributeSpec(p)
	return nil
}

// AttributeSet owns the name→Attribute mapping for one entity.
// Names are unique; insertion order is irrelevant.
type AttributeSet struct {
	attrs map[string]*Attribute
}

// NewAttributeSet creates an empty attribute set.
func NewAttributeSet() *AttributeSet {
	return &AttributeSet{attrs: make(map[string]*Attribute, 8)}
}

// Add inserts or replaces an attribute by name.
func (s *AttributeSet) Add(a *Attribute) {
	s.attrs[a.Name()] = a
}

// Has reports whether an attribute with the given name exists.
func (s *AttributeSet) Has(name string) bool {
	_, ok := s.attrs[name]
	return ok
}

// Get returns the attribute with the given name.
func (s *AttributeSet) Get(name string) (*Attribute, error) {
	a, ok := s.attrs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAttributeNotFound, name)
	}
	return a, nil
}

// Size returns the number of attributes in the set.
func (s *AttributeSet) Size() int { return len(s.attrs) }

// Names returns all attribute names, sorted for deterministic iteration.
func (s *AttributeSet) Names() []string {
	names := make([]string, 0, len(s.attrs))
	for name := range s.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Serialize returns the persisted shape of every attribute.
func (s *AttributeSet) Serialize() map[string]AttributeSpec {
	out := make(map[string]AttributeSpec, len(s.attrs))
	for name, a := range s.attrs {
		out[name] = a.Serialize()
	}
	return out
}
