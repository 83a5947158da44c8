package websocket

import (
	"encoding/json"
	"time"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

const (
	// Server -> Client event types
	TypeEventSaved       MessageType = "event.saved"
	TypeEventCancelled   MessageType = "event.cancelled"
	TypeSeriesCreated    MessageType = "series.created"
	TypeReindexCompleted MessageType = "search.reindex_completed"
	TypeReindexError     MessageType = "search.reindex_error"
	TypeNotification     MessageType = "notification"

	// Client -> Server command types
	TypeSubscribe   MessageType = "subscribe"
	TypeUnsubscribe MessageType = "unsubscribe"
	TypePing        MessageType = "ping"

	// Server -> Client response types
	TypeSubscribeAck MessageType = "subscribe.ack"
	TypePong         MessageType = "pong"
	TypeError        MessageType = "error"
)

// Message represents a WebSocket message envelope.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON serializes the message to JSON bytes.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// EventPayload is the payload for event.saved and event.cancelled messages.
type EventPayload struct {
	EventID   string `json:"event_id"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	SeriesID  string `json:"series_id,omitempty"`
	Cancelled bool   `json:"cancelled"`
}

// SeriesPayload is the payload for series.created messages.
type SeriesPayload struct {
	SeriesID        string `json:"series_id"`
	ParentID        string `json:"parent_id"`
	Title           string `json:"title"`
	OccurrenceCount int    `json:"occurrence_count"`
	Truncated       bool   `json:"truncated"`
}

// ReindexPayload is the payload for search.reindex_completed messages.
type ReindexPayload struct {
	DocumentsIndexed int       `json:"documents_indexed"`
	CompletedAt      time.Time `json:"completed_at"`
}

// ReindexErrorPayload is the payload for search.reindex_error messages.
type ReindexErrorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NotificationPayload is the payload for notification messages.
type NotificationPayload struct {
	Level       string `json:"level"` // info, warning, error, success
	Title       string `json:"title"`
	Message     string `json:"message"`
	Dismissible bool   `json:"dismissible"`
}

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	OriginalType string `json:"original_type,omitempty"`
}
