package data

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/mistwoodmud/mistwood/internal/game/entity"
)

// behaviorRegistry maps behavior name → factory function.
// Populated by init(); effect definitions reference behaviors by name.
var behaviorRegistry = map[string]func(params map[string]string) entity.Behavior{}

// RegisterBehavior registers a behavior factory by name.
func RegisterBehavior(name string, factory func(params map[string]string) entity.Behavior) {
	behaviorRegistry[name] = factory
}

// CreateBehavior creates a behavior by name using the registered factory.
// Returns an error if the name is not registered.
func CreateBehavior(name string, params map[string]string) (entity.Behavior, error) {
	factory, ok := behaviorRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown behavior type: %s", name)
	}
	return factory(params), nil
}

func init() {
	RegisterBehavior("StatUp", NewStatUpBehavior)
	RegisterBehavior("DamageOverTime", NewDamageOverTimeBehavior)
	RegisterBehavior("HealOverTime", NewHealOverTimeBehavior)
	RegisterBehavior("DamageShield", NewDamageShieldBehavior)
	RegisterBehavior("Enrage", NewEnrageBehavior)
}

// StatUpBehavior adds a flat bonus (and an optional multiplier) to one
// attribute while active. Params: "attribute", "amount", "multiplier".
type StatUpBehavior struct {
	entity.BaseBehavior
	attribute  string
	amount     float64
	multiplier float64
}

func NewStatUpBehavior(params map[string]string) entity.Behavior {
	amount, _ := strconv.ParseFloat(params["amount"], 64)
	multiplier, _ := strconv.ParseFloat(params["multiplier"], 64)
	return &StatUpBehavior{
		attribute:  params["attribute"],
		amount:     amount,
		multiplier: multiplier,
	}
}

func (b *StatUpBehavior) ModifyAttribute(e *entity.Effect, name string, value float64) float64 {
	if name != b.attribute {
		return value
	}
	value += b.amount
	if b.multiplier != 0 {
		value *= b.multiplier
	}
	return value
}

// DamageOverTimeBehavior deals periodic damage scaled by stack count.
// Params: "attribute" (default health), "power" (per tick per stack),
// "canKill" (default false: damage never drops the attribute below 1).
type DamageOverTimeBehavior struct {
	entity.BaseBehavior
	attribute string
	power     float64
	canKill   bool
}

func NewDamageOverTimeBehavior(params map[string]string) entity.Behavior {
	power, _ := strconv.ParseFloat(params["power"], 64)
	canKill, _ := strconv.ParseBool(params["canKill"])
	attribute := params["attribute"]
	if attribute == "" {
		attribute = "health"
	}
	return &DamageOverTimeBehavior{attribute: attribute, power: power, canKill: canKill}
}

func (b *DamageOverTimeBehavior) OnTick(e *entity.Effect, _ time.Time) {
	target := e.Target()
	if target == nil {
		return
	}

	stacks := e.Stacks()
	if stacks < 1 {
		stacks = 1
	}
	damage := b.power * float64(stacks)
	if damage <= 0 {
		return
	}

	current, err := target.GetAttribute(b.attribute)
	if err != nil {
		slog.Error("dot tick against missing attribute",
			"effect", e.ID(), "attribute", b.attribute, "error", err)
		return
	}

	// Kill protection: never reduce the attribute below 1.
	if !b.canKill && damage >= current {
		damage = current - 1
		if damage <= 0 {
			return
		}
	}

	dealt, err := entity.NewDamage(b.attribute, damage, nil, e.ID()).Commit(target)
	if err != nil {
		slog.Error("dot tick failed", "effect", e.ID(), "error", err)
		return
	}
	e.State().AddCounter("totalDamage", float64(dealt))

	slog.Debug("dot tick",
		"effect", e.ID(),
		"target", target.Name(),
		"damage", dealt,
		"stacks", stacks)
}

// HealOverTimeBehavior restores an attribute periodically.
// Params: "attribute" (default health), "power" (per tick).
type HealOverTimeBehavior struct {
	entity.BaseBehavior
	attribute string
	power     float64
}

func NewHealOverTimeBehavior(params map[string]string) entity.Behavior {
	power, _ := strconv.ParseFloat(params["power"], 64)
	attribute := params["attribute"]
	if attribute == "" {
		attribute = "health"
	}
	return &HealOverTimeBehavior{attribute: attribute, power: power}
}

func (b *HealOverTimeBehavior) OnTick(e *entity.Effect, _ time.Time) {
	target := e.Target()
	if target == nil || b.power <= 0 {
		return
	}

	// Never heal past max.
	maxVal, err := target.GetMaxAttribute(b.attribute)
	if err != nil {
		slog.Error("hot tick against missing attribute",
			"effect", e.ID(), "attribute", b.attribute, "error", err)
		return
	}
	current, err := target.GetAttribute(b.attribute)
	if err != nil {
		return
	}

	amount := min(b.power, maxVal-current)
	if amount <= 0 {
		return
	}

	if _, err := entity.NewHeal(b.attribute, amount, nil, e.ID()).Commit(target); err != nil {
		slog.Error("hot tick failed", "effect", e.ID(), "error", err)
	}
}

// DamageShieldBehavior reduces incoming damage by a fraction.
// Params: "reduction" (0..1).
type DamageShieldBehavior struct {
	entity.BaseBehavior
	reduction float64
}

func NewDamageShieldBehavior(params map[string]string) entity.Behavior {
	reduction, _ := strconv.ParseFloat(params["reduction"], 64)
	return &DamageShieldBehavior{reduction: reduction}
}

func (b *DamageShieldBehavior) ModifyIncomingDamage(e *entity.Effect, _ *entity.Damage, amount float64) float64 {
	return amount * (1 - b.reduction)
}

// EnrageBehavior boosts outgoing damage by a fraction.
// Params: "bonus" (0.5 = +50%).
type EnrageBehavior struct {
	entity.BaseBehavior
	bonus float64
}

func NewEnrageBehavior(params map[string]string) entity.Behavior {
	bonus, _ := strconv.ParseFloat(params["bonus"], 64)
	return &EnrageBehavior{bonus: bonus}
}

func (b *EnrageBehavior) ModifyOutgoingDamage(e *entity.Effect, _ *entity.Damage, amount float64) float64 {
	return amount * (1 + b.bonus)
}
