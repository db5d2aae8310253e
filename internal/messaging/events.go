package messaging

import (
	"context"
	"strconv"
	"time"
)

// Event types published by the back office
const (
	EventJobCreated         = "job.created"
	EventJobStatusChanged   = "job.status_changed"
	EventJobQuoteApproved   = "job.quote_approved"
	EventJobDeleted         = "job.deleted"
	EventQuoteCreated       = "quote.created"
	EventTaskCompleted      = "task.completed"
	EventBookingCreated     = "booking.created"
	EventBookingUpdated     = "booking.updated"
	EventAttachmentUploaded = "attachment.uploaded"
	EventStageOverdue       = "stage.overdue"
)

// Event is the envelope of every domain event
type Event struct {
	Type       string                 `json:"type"`
	EntityType string                 `json:"entity_type"`
	EntityID   uint                   `json:"entity_id"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// NewEvent stamps an event with the current time
func NewEvent(eventType, entityType string, entityID uint, data map[string]interface{}) Event {
	return Event{
		Type:       eventType,
		EntityType: entityType,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// SessionID groups events of one entity so consumers see them in order
func (e Event) SessionID() string {
	return e.EntityType + "-" + strconv.FormatUint(uint64(e.EntityID), 10)
}

// Publish sends the event on its entity session
func Publish(ctx context.Context, client ServiceBusClient, event Event) error {
	return client.SendMessage(ctx, event, event.SessionID())
}
