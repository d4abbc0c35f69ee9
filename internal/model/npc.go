package model

import "github.com/mistwoodmud/mistwood/internal/game/entity"

// NPC is a world-controlled creature. It shares the attribute/effect
// engine with players; behavior (AI, dialogue) belongs to outer layers.
type NPC struct {
	*entity.EffectableEntity

	templateID string
	hostile    bool
}

// NewNPC creates an NPC shell from a template id.
func NewNPC(name, templateID string, hostile bool) *NPC {
	return &NPC{
		EffectableEntity: entity.NewEffectableEntity(name),
		templateID:       templateID,
		hostile:          hostile,
	}
}

// Kind returns the persistence discriminator for NPCs.
func (n *NPC) Kind() string { return "npc" }

// TemplateID returns the content-layer template this NPC spawned from.
func (n *NPC) TemplateID() string { return n.templateID }

// Hostile reports whether the NPC attacks on sight.
func (n *NPC) Hostile() bool { return n.hostile }
