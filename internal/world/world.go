// Package world tracks live entities and drives the shared game loop.
// Each tick is dispatched synchronously per entity: all effect
// evaluation and mutation for one entity happen within its dispatch, and
// no two ticks for the same entity ever overlap.
package world

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mistwoodmud/mistwood/internal/game/entity"
)

// Entity is what the world manages: anything stat-bearing that receives
// game-loop ticks and round-trips through the store.
type Entity interface {
	Name() string
	Kind() string
	Emit(ev entity.Event)
	Serialize() entity.PersistedEntity
}

// World is the registry of live entities, keyed by name. The registry
// itself is guarded (the ticker and the autosaver both walk it); the
// entities' own state is only ever touched from the tick dispatch.
type World struct {
	mu       sync.RWMutex
	entities map[string]Entity
}

// New creates an empty world.
func New() *World {
	return &World{entities: make(map[string]Entity, 64)}
}

// Add registers a live entity. Names are unique.
func (w *World) Add(e Entity) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, dup := w.entities[e.Name()]; dup {
		return fmt.Errorf("entity %q already registered", e.Name())
	}
	w.entities[e.Name()] = e
	return nil
}

// Remove unregisters an entity. Unknown names are ignored.
func (w *World) Remove(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.entities, name)
}

// Get returns a registered entity, nil if unknown.
func (w *World) Get(name string) Entity {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.entities[name]
}

// Size returns the number of live entities.
func (w *World) Size() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.entities)
}

// All returns the live entities sorted by name, so tick order is
// deterministic across runs.
func (w *World) All() []Entity {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]Entity, 0, len(w.entities))
	for _, e := range w.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
