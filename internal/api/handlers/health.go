package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/parish-calendar/backend/internal/config"
	"github.com/parish-calendar/backend/internal/search"
	"github.com/parish-calendar/backend/internal/storage"
	"github.com/parish-calendar/backend/internal/websocket"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	DBConnected bool   `json:"db_connected"`
}

// HealthCheck returns a handler that performs a health check.
func HealthCheck(db *storage.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Check database connection
		dbConnected := db.Ping() == nil

		// Determine overall status
		status := "healthy"
		if !dbConnected {
			status = "degraded"
		}

		response := HealthResponse{
			Status:      status,
			DBConnected: dbConnected,
		}

		w.Header().Set("Content-Type", "application/json")
		if status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(response)
	}
}

// StatusResponse represents the system status response.
type StatusResponse struct {
	EventsCount      int  `json:"events_count"`
	PublishedCount   int  `json:"published_count"`
	SeriesCount      int  `json:"series_count"`
	CancelledCount   int  `json:"cancelled_count"`
	SearchConfigured bool `json:"search_configured"`
	ConnectedClients int  `json:"connected_clients"`
}

// Status returns a handler that provides system status information.
func Status(db *storage.DB, settings config.Provider, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		// Count events
		var eventsCount int
		db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&eventsCount)

		// Count published events
		var publishedCount int
		db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events WHERE published = 1").Scan(&publishedCount)

		// Count distinct series
		var seriesCount int
		db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT series_id) FROM events WHERE series_id != ''").Scan(&seriesCount)

		// Count cancelled events
		var cancelledCount int
		db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events WHERE cancelled = 1").Scan(&cancelledCount)

		response := StatusResponse{
			EventsCount:      eventsCount,
			PublishedCount:   publishedCount,
			SeriesCount:      seriesCount,
			CancelledCount:   cancelledCount,
			SearchConfigured: search.ResolveConnection(ctx, settings).Configured(),
			ConnectedClients: hub.ClientCount(),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}
