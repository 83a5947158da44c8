package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/parish-calendar/backend/internal/search"
)

// TriggerReindex kicks off a full search reindex in the background.
func TriggerReindex(scheduler *search.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scheduler.TriggerReindex()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"status": "reindex_started"})
	}
}
