package event

import (
	"context"

	"github.com/parish-calendar/backend/internal/storage/models"
	"github.com/parish-calendar/backend/internal/websocket"
)

// BroadcastHook pushes save outcomes to connected admin clients. It runs last
// in the chain so it sees the children the materializer created.
type BroadcastHook struct {
	broadcaster *websocket.EventBroadcaster
}

// NewBroadcastHook creates the notification hook.
func NewBroadcastHook(b *websocket.EventBroadcaster) *BroadcastHook {
	return &BroadcastHook{broadcaster: b}
}

// Name implements Hook.
func (h *BroadcastHook) Name() string { return "broadcast" }

// AfterSave implements Hook.
func (h *BroadcastHook) AfterSave(ctx context.Context, ev *models.Event, sc *SaveContext) error {
	if h.broadcaster == nil {
		return nil
	}

	if ev.Cancelled {
		h.broadcaster.BroadcastEventCancelled(*ev)
	} else {
		h.broadcaster.BroadcastEventSaved(*ev)
	}

	if sc.SeriesID != "" {
		h.broadcaster.BroadcastSeriesCreated(*ev, len(sc.Children)+1, sc.Truncated)
	}

	return nil
}
