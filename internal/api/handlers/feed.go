package handlers

import (
	"log"
	"net/http"

	"github.com/parish-calendar/backend/internal/api/middleware"
	"github.com/parish-calendar/backend/internal/config"
	"github.com/parish-calendar/backend/internal/ical"
	"github.com/parish-calendar/backend/internal/storage"
)

// Feed serves the public iCalendar subscription feed. Every published event
// is included, cancelled ones too (with the cancellation visible in the
// title) so subscribed calendars update rather than silently drop them.
func Feed(repo *storage.EventRepository, settings config.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := repo.ListPublished(r.Context())
		if err != nil {
			log.Printf("Failed to load events for feed: %v", err)
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to build feed")
			return
		}

		cfg := ical.Config{
			ProductID: config.GetString(r.Context(), settings, config.KeyFeedProductID, "-//Parish Calendar//Events Feed//EN"),
			Name:      config.GetString(r.Context(), settings, config.KeyCalendarName, "Parish Events"),
			Host:      config.GetString(r.Context(), settings, config.KeySiteHost, r.Host),
		}

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="parish-events.ics"`)
		w.Write(ical.NewWriter(cfg).Calendar(events))
	}
}
