package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	// EventType_LAYER_CREATED represents the event when a layer is saved for the first time.
	EventType_LAYER_CREATED EventType = "LAYER.CREATED"
	// EventType_LAYER_ACTIVATED represents the event when a layer becomes the active one for its dataset.
	EventType_LAYER_ACTIVATED EventType = "LAYER.ACTIVATED"
	// EventType_LAYER_RECLUSTERED represents the event when a layer's cluster labels are recomputed.
	EventType_LAYER_RECLUSTERED EventType = "LAYER.RECLUSTERED"
	// EventType_LAYER_DELETED represents the event when a layer and its points are removed.
	EventType_LAYER_DELETED EventType = "LAYER.DELETED"
)

// LayerEvent represents a layer lifecycle event in the system.
type LayerEvent struct {
	Type      EventType
	LayerID   uuid.UUID
	DatasetID uuid.UUID
	CreatedAt time.Time
}

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event OutboxEvent) error
}
