package model

import (
	"fmt"

	"github.com/mistwoodmud/mistwood/internal/game/entity"
)

// Item is one inventory entry. Inventory is intentionally flat: the
// effect engine never reaches into it, and item templates live with the
// content layer, not here.
type Item struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

// Player is a connected (or offline-persisted) character. Attribute and
// effect state live in the embedded EffectableEntity; inventory
// hydration is the Player's own job, per the base contract.
type Player struct {
	*entity.EffectableEntity

	accountID int64
	items     []Item
}

// NewPlayer creates a player shell. Hydrate populates stats and effects.
func NewPlayer(name string, accountID int64) *Player {
	return &Player{
		EffectableEntity: entity.NewEffectableEntity(name),
		accountID:        accountID,
	}
}

// Kind returns the persistence discriminator for players.
func (p *Player) Kind() string { return "player" }

// AccountID returns the owning account.
func (p *Player) AccountID() int64 { return p.accountID }

// Items returns a copy of the inventory.
func (p *Player) Items() []Item {
	out := make([]Item, len(p.items))
	copy(out, p.items)
	return out
}

// AddItem inserts or accumulates an inventory entry.
func (p *Player) AddItem(id string, count int) error {
	if count <= 0 {
		return fmt.Errorf("invalid item count %d for %q", count, id)
	}
	for i := range p.items {
		if p.items[i].ID == id {
			p.items[i].Count += count
			return nil
		}
	}
	p.items = append(p.items, Item{ID: id, Count: count})
	return nil
}

// HydrateItems restores the inventory from persisted entries.
func (p *Player) HydrateItems(items []Item) {
	p.items = make([]Item, len(items))
	copy(p.items, items)
}
