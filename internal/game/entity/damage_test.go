package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scalingBehavior multiplies damage passing through it.
type scalingBehavior struct {
	BaseBehavior
	incoming float64
	outgoing float64
}

func (b scalingBehavior) ModifyIncomingDamage(_ *Effect, _ *Damage, amount float64) float64 {
	if b.incoming == 0 {
		return amount
	}
	return amount * b.incoming
}

func (b scalingBehavior) ModifyOutgoingDamage(_ *Effect, _ *Damage, amount float64) float64 {
	if b.outgoing == 0 {
		return amount
	}
	return amount * b.outgoing
}

func TestDamage_Commit_FoldsBothChains(t *testing.T) {
	attacker := newTestEntity(t)
	target := newTestEntity(t)

	// Attacker deals +50%, target takes half.
	_, err := attacker.Effects().Add(NewEffect("enrage", Config{Type: "enrage"}, State{},
		scalingBehavior{outgoing: 1.5}))
	require.NoError(t, err)
	_, err = target.Effects().Add(NewEffect("stoneskin", Config{Type: "stoneskin"}, State{},
		scalingBehavior{incoming: 0.5}))
	require.NoError(t, err)

	d := NewDamage("health", 40, attacker, "strike")
	final, err := d.Commit(target)
	require.NoError(t, err)
	assert.Equal(t, 30, final)

	hp, err := target.GetAttribute("health")
	require.NoError(t, err)
	assert.Equal(t, 70.0, hp)
}

func TestDamage_Commit_EmitsHitAndDamaged(t *testing.T) {
	attacker := newTestEntity(t)
	target := newTestEntity(t)

	var attackerEvents, targetEvents []EventKind
	attacker.AddListener(listenerFunc(func(_ *EffectableEntity, ev Event) {
		attackerEvents = append(attackerEvents, ev.Kind)
	}))
	target.AddListener(listenerFunc(func(_ *EffectableEntity, ev Event) {
		targetEvents = append(targetEvents, ev.Kind)
	}))

	_, err := NewDamage("health", 10, attacker, "strike").Commit(target)
	require.NoError(t, err)

	assert.Contains(t, attackerEvents, EventHit)
	assert.Contains(t, targetEvents, EventDamaged)
	assert.NotContains(t, targetEvents, EventHit)
}

func TestDamage_EnvironmentalSkipsOutgoingFold(t *testing.T) {
	target := newTestEntity(t)

	d := NewDamage("health", 15.7, nil, "lava")
	assert.Equal(t, 15, d.Evaluate(target), "result floors to an integer")
}

func TestDamage_Commit_UnknownAttribute(t *testing.T) {
	target := newTestEntity(t)

	_, err := NewDamage("sanity", 5, nil, "void").Commit(target)
	require.ErrorIs(t, err, ErrAttributeNotFound)
}

func TestHeal_Commit_IgnoresDamageModifiers(t *testing.T) {
	healer := newTestEntity(t)
	target := newTestEntity(t)
	require.NoError(t, target.LowerAttribute("health", 50))

	// Neither the healer's outgoing boost nor the target's incoming
	// shield has any bearing on restoration.
	_, err := healer.Effects().Add(NewEffect("enrage", Config{Type: "enrage"}, State{},
		scalingBehavior{outgoing: 1.5}))
	require.NoError(t, err)
	_, err = target.Effects().Add(NewEffect("stoneskin", Config{Type: "stoneskin"}, State{},
		scalingBehavior{incoming: 0.5}))
	require.NoError(t, err)

	final, err := NewHeal("health", 20, healer, "potion").Commit(target)
	require.NoError(t, err)
	assert.Equal(t, 20, final)

	hp, err := target.GetAttribute("health")
	require.NoError(t, err)
	assert.Equal(t, 70.0, hp)
}

func TestHeal_Commit_UnknownAttribute(t *testing.T) {
	target := newTestEntity(t)

	_, err := NewHeal("sanity", 5, nil, "prayer").Commit(target)
	require.ErrorIs(t, err, ErrAttributeNotFound)
}

func TestHeal_Commit_RaisesAttribute(t *testing.T) {
	target := newTestEntity(t)
	require.NoError(t, target.LowerAttribute("health", 50))

	var events []EventKind
	target.AddListener(listenerFunc(func(_ *EffectableEntity, ev Event) {
		events = append(events, ev.Kind)
	}))

	final, err := NewHeal("health", 20, nil, "bandage").Commit(target)
	require.NoError(t, err)
	assert.Equal(t, 20, final)

	hp, err := target.GetAttribute("health")
	require.NoError(t, err)
	assert.Equal(t, 70.0, hp)
	assert.Contains(t, events, EventHealed)
}
