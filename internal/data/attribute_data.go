package data

import (
	"fmt"

	"github.com/mistwoodmud/mistwood/internal/game/entity"
)

// attributeDef — one named attribute definition. formula is nil for
// plain stats; derived stats list their dependencies and a fold.
type attributeDef struct {
	name    string
	formula *entity.Formula
}

// attributeTable — global registry of attribute definitions.
// map[name]*attributeDef
var attributeTable map[string]*attributeDef

// attributeDefs holds the built-in attribute set. Derived attributes
// (power, evasion) compute from the effect-adjusted maxima of their
// dependencies, never from raw bases.
var attributeDefs = []attributeDef{
	{name: "health"},
	{name: "mana"},
	{name: "stamina"},
	{name: "strength"},
	{name: "agility"},
	{name: "intellect"},
	{name: "armor"},
	{name: "power", formula: &entity.Formula{
		Requires: []string{"strength"},
		Fn: func(_ *entity.Attribute, _ *entity.EffectableEntity, current float64, deps ...float64) float64 {
			return current + deps[0]*2
		},
	}},
	{name: "evasion", formula: &entity.Formula{
		Requires: []string{"agility"},
		Fn: func(_ *entity.Attribute, _ *entity.EffectableEntity, current float64, deps ...float64) float64 {
			return current + deps[0]/2
		},
	}},
}

// LoadAttributeDefs builds attributeTable from the built-in definitions.
func LoadAttributeDefs() error {
	attributeTable = make(map[string]*attributeDef, len(attributeDefs))
	for i := range attributeDefs {
		def := &attributeDefs[i]
		if _, dup := attributeTable[def.name]; dup {
			return fmt.Errorf("duplicate attribute definition %q", def.name)
		}
		attributeTable[def.name] = def
	}
	return nil
}

// AttributeRegistry exposes the attribute definition table through the
// registry interface the entity core hydrates against.
type AttributeRegistry struct{}

// Attributes returns the process-wide attribute registry.
// LoadAttributeDefs must have run first.
func Attributes() AttributeRegistry { return AttributeRegistry{} }

// Has reports whether the named attribute is defined.
func (AttributeRegistry) Has(name string) bool {
	_, ok := attributeTable[name]
	return ok
}

// Create builds an attribute instance carrying the definition's formula.
func (AttributeRegistry) Create(name string, base, delta float64) (*entity.Attribute, error) {
	def, ok := attributeTable[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", entity.ErrInvalidAttribute, name)
	}
	return entity.NewAttribute(def.name, base, delta, def.formula), nil
}
