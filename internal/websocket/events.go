package websocket

import (
	"log"
	"time"

	"github.com/parish-calendar/backend/internal/storage/models"
)

// EventBroadcaster handles broadcasting WebSocket events.
type EventBroadcaster struct {
	hub *Hub
}

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster(hub *Hub) *EventBroadcaster {
	return &EventBroadcaster{hub: hub}
}

// BroadcastEventSaved announces a created or updated event.
func (b *EventBroadcaster) BroadcastEventSaved(ev models.Event) {
	b.broadcast(NewMessage(TypeEventSaved, EventPayload{
		EventID:   ev.ID,
		Title:     ev.Title,
		Date:      ev.Date,
		SeriesID:  ev.SeriesID,
		Cancelled: ev.Cancelled,
	}))
}

// BroadcastEventCancelled announces a cancellation state change.
func (b *EventBroadcaster) BroadcastEventCancelled(ev models.Event) {
	b.broadcast(NewMessage(TypeEventCancelled, EventPayload{
		EventID:   ev.ID,
		Title:     ev.Title,
		Date:      ev.Date,
		SeriesID:  ev.SeriesID,
		Cancelled: ev.Cancelled,
	}))
}

// BroadcastSeriesCreated announces a materialized recurrence series.
func (b *EventBroadcaster) BroadcastSeriesCreated(parent models.Event, occurrences int, truncated bool) {
	b.broadcast(NewMessage(TypeSeriesCreated, SeriesPayload{
		SeriesID:        parent.SeriesID,
		ParentID:        parent.ID,
		Title:           parent.Title,
		OccurrenceCount: occurrences,
		Truncated:       truncated,
	}))
}

// BroadcastReindexCompleted announces a finished search reindex run.
func (b *EventBroadcaster) BroadcastReindexCompleted(documents int) {
	b.broadcast(NewMessage(TypeReindexCompleted, ReindexPayload{
		DocumentsIndexed: documents,
		CompletedAt:      time.Now().UTC(),
	}))
}

// BroadcastReindexError announces a failed search reindex run.
func (b *EventBroadcaster) BroadcastReindexError(err error) {
	b.broadcast(NewMessage(TypeReindexError, ReindexErrorPayload{
		Error:   "reindex_error",
		Message: err.Error(),
	}))
}

// BroadcastNotification sends a notification to all connected clients.
func (b *EventBroadcaster) BroadcastNotification(level, title, message string) {
	b.broadcast(NewMessage(TypeNotification, NotificationPayload{
		Level:       level,
		Title:       title,
		Message:     message,
		Dismissible: true,
	}))
}

// broadcast sends a message to all connected clients.
func (b *EventBroadcaster) broadcast(msg Message) {
	data, err := msg.JSON()
	if err != nil {
		log.Printf("Error encoding WebSocket message: %v", err)
		return
	}

	b.hub.Broadcast(data)
}
