// Package api provides HTTP routing and handlers for the REST API.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/parish-calendar/backend/internal/api/handlers"
	"github.com/parish-calendar/backend/internal/api/middleware"
	"github.com/parish-calendar/backend/internal/config"
	"github.com/parish-calendar/backend/internal/event"
	"github.com/parish-calendar/backend/internal/search"
	"github.com/parish-calendar/backend/internal/storage"
	"github.com/parish-calendar/backend/internal/websocket"
)

// Deps holds the services the router wires into handlers.
type Deps struct {
	DB        *storage.DB
	Events    *storage.EventRepository
	Service   *event.Service
	Settings  config.Provider
	Hub       *websocket.Hub
	Scheduler *search.Scheduler
	StaticDir string
}

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(d Deps) *mux.Router {
	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logging)
	r.Use(middleware.ErrorRecovery)

	// Public iCalendar feed
	r.HandleFunc("/events.ics", handlers.Feed(d.Events, d.Settings)).Methods("GET")

	// API subrouter
	api := r.PathPrefix("/api").Subrouter()

	// Health and status endpoints
	api.HandleFunc("/health", handlers.HealthCheck(d.DB)).Methods("GET")
	api.HandleFunc("/status", handlers.Status(d.DB, d.Settings, d.Hub)).Methods("GET")

	// WebSocket endpoint
	api.HandleFunc("/ws", handlers.WebSocketUpgrade(d.Hub)).Methods("GET")

	// Event endpoints
	api.HandleFunc("/events", handlers.ListEvents(d.Events)).Methods("GET")
	api.HandleFunc("/events", handlers.CreateEvent(d.Service)).Methods("POST")
	api.HandleFunc("/events/{id}", handlers.GetEvent(d.Events)).Methods("GET")
	api.HandleFunc("/events/{id}", handlers.UpdateEvent(d.Events, d.Service)).Methods("PUT")
	api.HandleFunc("/events/{id}", handlers.DeleteEvent(d.Service)).Methods("DELETE")
	api.HandleFunc("/events/{id}/cancel", handlers.CancelEvent(d.Service)).Methods("POST")

	// Search reindex endpoint
	api.HandleFunc("/search/reindex", handlers.TriggerReindex(d.Scheduler)).Methods("POST")

	// Settings endpoints
	api.HandleFunc("/settings", handlers.GetSettings(d.DB)).Methods("GET")
	api.HandleFunc("/settings", handlers.UpdateSettings(d.DB)).Methods("PUT")

	// Serve static frontend files
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(d.StaticDir)))

	return r
}
