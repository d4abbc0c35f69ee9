package quest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mistwoodmud/mistwood/internal/game/entity"
)

func TestTracker_DamageDealtGoal(t *testing.T) {
	attacker := entity.NewEffectableEntity("hunter")
	target := entity.NewEffectableEntity("boar")
	target.Attributes().Add(entity.NewAttribute("health", 100, 0, nil))

	tracker := NewTracker([]Goal{
		{Quest: "cull_the_boars", Kind: GoalDamageDealt, Target: 25},
	})
	attacker.AddListener(tracker)

	_, err := entity.NewDamage("health", 10, attacker, "spear").Commit(target)
	require.NoError(t, err)

	snap := tracker.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, 10.0, snap[0].Value)
	assert.False(t, snap[0].Complete)

	_, err = entity.NewDamage("health", 20, attacker, "spear").Commit(target)
	require.NoError(t, err)

	snap = tracker.Snapshot()
	assert.Equal(t, 30.0, snap[0].Value)
	assert.True(t, snap[0].Complete)
}

func TestTracker_EffectGainedGoal(t *testing.T) {
	ent := entity.NewEffectableEntity("alchemist")
	tracker := NewTracker([]Goal{
		{Quest: "taste_your_own_poison", Kind: GoalEffectGained, EffectID: "poison", Target: 1},
	})
	ent.AddListener(tracker)

	_, err := ent.Effects().Add(entity.NewEffect("haste", entity.Config{Type: "haste"}, entity.State{}, nil))
	require.NoError(t, err)
	assert.False(t, tracker.Snapshot()[0].Complete)

	_, err = ent.Effects().Add(entity.NewEffect("poison", entity.Config{Type: "poison"}, entity.State{}, nil))
	require.NoError(t, err)
	assert.True(t, tracker.Snapshot()[0].Complete)
}

func TestTracker_Restore(t *testing.T) {
	tracker := NewTracker([]Goal{
		{Quest: "q1", Kind: GoalDamageTaken, Target: 100},
		{Quest: "q2", Kind: GoalDamageDealt, Target: 50},
	})
	tracker.Restore([]float64{40, 50})

	snap := tracker.Snapshot()
	assert.Equal(t, 40.0, snap[0].Value)
	assert.False(t, snap[0].Complete)
	assert.True(t, snap[1].Complete)
}
