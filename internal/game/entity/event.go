package entity

import "time"

// EventKind identifies the kind of entity event.
// Events are a closed set: gameplay code constructs them with one of the
// constants below and listeners switch on Kind instead of matching names.
type EventKind uint8

const (
	EventUpdateTick      EventKind = iota // game loop per-entity update
	EventAttributeUpdate                  // an attribute's current value changed
	EventEffectAdded                      // an effect joined the entity's list
	EventEffectRemoved                    // an effect left the entity's list
	EventEffectStacked                    // an existing effect gained a stack
	EventEffectRefreshed                  // an existing effect's duration reset
	EventHit                              // the entity dealt damage
	EventDamaged                          // the entity took damage
	EventHeal                             // the entity healed another
	EventHealed                           // the entity was healed
)

// String returns the event kind name for logging.
func (k EventKind) String() string {
	switch k {
	case EventUpdateTick:
		return "updateTick"
	case EventAttributeUpdate:
		return "attributeUpdate"
	case EventEffectAdded:
		return "effectAdded"
	case EventEffectRemoved:
		return "effectRemoved"
	case EventEffectStacked:
		return "effectStacked"
	case EventEffectRefreshed:
		return "effectRefreshed"
	case EventHit:
		return "hit"
	case EventDamaged:
		return "damaged"
	case EventHeal:
		return "heal"
	case EventHealed:
		return "healed"
	default:
		return "unknown"
	}
}

// Event carries entity event data to listeners and active effects.
// Only the fields relevant to Kind are set.
type Event struct {
	Kind      EventKind
	Attribute string    // EventAttributeUpdate
	Value     float64   // EventAttributeUpdate: new current value
	Effect    *Effect   // effect lifecycle events
	Damage    *Damage   // EventHit/EventDamaged/EventHeal/EventHealed
	Amount    int       // final damage/heal amount after evaluation
	Time      time.Time // EventUpdateTick: dispatch time from the scheduler
}

// Listener observes events raised on an entity. External collaborators
// (quest tracking, broadcast adapters) register through
// EffectableEntity.AddListener; the entity's own EffectList is always the
// final recipient and is not registered here.
type Listener interface {
	HandleEvent(source *EffectableEntity, ev Event)
}
