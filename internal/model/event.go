package model

import "time"

const (
	EventCategoryCreated   = "category.created"
	EventCategoryUpdated   = "category.updated"
	EventCategoryRemoved   = "category.removed"
	EventCategoryReordered = "category.reordered"

	EventDishCreated           = "dish.created"
	EventDishUpdated           = "dish.updated"
	EventDishRemoved           = "dish.removed"
	EventDishReordered         = "dish.reordered"
	EventDishVisibilityChanged = "dish.visibility_changed"
)

// CatalogEvent is published after every committed catalog mutation.
type CatalogEvent struct {
	EventID    string      `json:"event_id" bson:"event_id"`
	EventType  string      `json:"event_type" bson:"event_type"`
	EntityType string      `json:"entity_type" bson:"entity_type"`
	EntityID   string      `json:"entity_id" bson:"entity_id"`
	ActorID    string      `json:"actor_id,omitempty" bson:"actor_id,omitempty"`
	Payload    interface{} `json:"payload,omitempty" bson:"payload,omitempty"`
	Timestamp  time.Time   `json:"timestamp" bson:"timestamp"`
}
