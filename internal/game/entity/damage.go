package entity

import (
	"fmt"
	"math"
)

// Damage is one application of harm against a named attribute. The raw
// amount passes through the attacker's outgoing modifier chain, then the
// target's incoming chain; both folds floor at zero, so a modifier
// composition can never invert damage into healing.
type Damage struct {
	// Attribute names the stat the damage is applied to, e.g. "health".
	Attribute string

	// Amount is the raw pre-modifier amount.
	Amount float64

	// Attacker is the entity dealing the damage, nil for environmental
	// damage (no outgoing fold runs in that case).
	Attacker *EffectableEntity

	// Source identifies what produced the damage — a skill or effect
	// definition id. Modifiers may discriminate on it.
	Source string
}

// NewDamage creates a damage application. attacker may be nil.
func NewDamage(attribute string, amount float64, attacker *EffectableEntity, source string) *Damage {
	return &Damage{Attribute: attribute, Amount: amount, Attacker: attacker, Source: source}
}

// Evaluate runs the raw amount through the attacker's outgoing chain and
// the target's incoming chain, returning the final integer amount.
func (d *Damage) Evaluate(target *EffectableEntity) int {
	amount := d.Amount
	if d.Attacker != nil {
		amount = float64(d.Attacker.EvaluateOutgoingDamage(d, amount))
	}
	return target.EvaluateIncomingDamage(d, amount)
}

// Commit evaluates the damage against the target, lowers the named
// attribute, and raises the hit/damaged event pair.
func (d *Damage) Commit(target *EffectableEntity) (int, error) {
	if !target.HasAttribute(d.Attribute) {
		return 0, fmt.Errorf("%w: %q", ErrAttributeNotFound, d.Attribute)
	}
	final := d.Evaluate(target)
	if err := target.LowerAttribute(d.Attribute, float64(final)); err != nil {
		return 0, err
	}
	if d.Attacker != nil {
		d.Attacker.Emit(Event{Kind: EventHit, Damage: d, Amount: final})
	}
	target.Emit(Event{Kind: EventDamaged, Damage: d, Amount: final})
	return final, nil
}

// Heal is the restorative counterpart of Damage: the amount raises the
// named attribute instead of lowering it. The damage modifier chains do
// not apply — a shield against incoming harm has no bearing on
// restoration, and an outgoing-damage boost does not amplify it.
type Heal struct {
	Damage
}

// NewHeal creates a heal application. healer may be nil.
func NewHeal(attribute string, amount float64, healer *EffectableEntity, source string) *Heal {
	return &Heal{Damage: Damage{Attribute: attribute, Amount: amount, Attacker: healer, Source: source}}
}

// Evaluate returns the final integer amount: the raw amount, floored.
func (h *Heal) Evaluate(_ *EffectableEntity) int {
	return int(math.Floor(h.Amount))
}

// Commit raises the named attribute by the heal amount and raises the
// heal/healed event pair.
func (h *Heal) Commit(target *EffectableEntity) (int, error) {
	if !target.HasAttribute(h.Attribute) {
		return 0, fmt.Errorf("%w: %q", ErrAttributeNotFound, h.Attribute)
	}
	final := h.Evaluate(target)
	if err := target.RaiseAttribute(h.Attribute, float64(final)); err != nil {
		return 0, err
	}
	if h.Attacker != nil {
		h.Attacker.Emit(Event{Kind: EventHeal, Damage: &h.Damage, Amount: final})
	}
	target.Emit(Event{Kind: EventHealed, Damage: &h.Damage, Amount: final})
	return final, nil
}
