package data

import (
	"fmt"
	"time"

	"github.com/mistwoodmud/mistwood/internal/game/entity"
)

// effectDef — one effect definition: conflict-resolution config plus the
// behavior it instantiates.
type effectDef struct {
	id       string
	config   entity.Config
	behavior string
	params   map[string]string
}

// effectTable — global registry of effect definitions. map[id]*effectDef
var effectTable map[string]*effectDef

// effectDefs holds the built-in effect set.
var effectDefs = []effectDef{
	{
		id: "poison",
		config: entity.Config{
			Type:         "poison",
			MaxStacks:    3,
			Persists:     true,
			TickInterval: 5 * time.Second,
			Duration:     30 * time.Second,
		},
		behavior: "DamageOverTime",
		params:   map[string]string{"power": "2"},
	},
	{
		id: "regeneration",
		config: entity.Config{
			Type:         "regeneration",
			Refreshes:    true,
			Persists:     true,
			TickInterval: 3 * time.Second,
			Duration:     60 * time.Second,
		},
		behavior: "HealOverTime",
		params:   map[string]string{"power": "5"},
	},
	{
		id: "fortify",
		config: entity.Config{
			Type:     "fortify",
			Unique:   true,
			Persists: true,
			Duration: 5 * time.Minute,
		},
		behavior: "StatUp",
		params:   map[string]string{"attribute": "armor", "amount": "25"},
	},
	{
		id: "haste",
		config: entity.Config{
			Type:      "haste",
			Refreshes: true,
			Duration:  30 * time.Second,
		},
		behavior: "StatUp",
		params:   map[string]string{"attribute": "agility", "multiplier": "1.2"},
	},
	{
		id: "stoneskin",
		config: entity.Config{
			Type:     "stoneskin",
			Unique:   true,
			Persists: true,
			Duration: 2 * time.Minute,
		},
		behavior: "DamageShield",
		params:   map[string]string{"reduction": "0.3"},
	},
	{
		id: "enrage",
		config: entity.Config{
			Type:     "enrage",
			Unique:   true,
			Duration: 20 * time.Second,
		},
		behavior: "Enrage",
		params:   map[string]string{"bonus": "0.5"},
	},
}

// LoadEffectDefs builds effectTable from the built-in definitions and
// verifies every referenced behavior is registered.
func LoadEffectDefs() error {
	effectTable = make(map[string]*effectDef, len(effectDefs))
	for i := range effectDefs {
		def := &effectDefs[i]
		if _, dup := effectTable[def.id]; dup {
			return fmt.Errorf("duplicate effect definition %q", def.id)
		}
		if def.config.Type == "" {
			return fmt.Errorf("effect %q has no type tag", def.id)
		}
		if _, ok := behaviorRegistry[def.behavior]; !ok {
			return fmt.Errorf("effect %q references unknown behavior %q", def.id, def.behavior)
		}
		effectTable[def.id] = def
	}
	return nil
}

// EffectRegistry exposes the effect definition table through the factory
// interface the entity core hydrates against.
type EffectRegistry struct{}

// Effects returns the process-wide effect registry.
// LoadEffectDefs must have run first.
func Effects() EffectRegistry { return EffectRegistry{} }

// Create builds a fresh detached effect instance from a definition id.
func (EffectRegistry) Create(id string) (*entity.Effect, error) {
	def, ok := effectTable[id]
	if !ok {
		return nil, fmt.Errorf("unknown effect definition: %s", id)
	}
	behavior, err := CreateBehavior(def.behavior, def.params)
	if err != nil {
		return nil, fmt.Errorf("building effect %q: %w", id, err)
	}
	return entity.NewEffect(def.id, def.config, entity.State{}, behavior), nil
}
