package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/parish-calendar/backend/internal/api/middleware"
	"github.com/parish-calendar/backend/internal/storage"
)

// SettingsResponse represents settings in API responses.
type SettingsResponse struct {
	CalendarName       string `json:"calendar_name"`
	SiteHost           string `json:"site_host"`
	FeedProductID      string `json:"feed_product_id"`
	MaxOccurrences     string `json:"recurrence_max_occurrences"`
	SearchAPIURL       string `json:"search_api_url"`
	SearchAdminKey     string `json:"search_admin_key"`
	EventsAPIURL       string `json:"events_api_url"`
	EventsAdminKey     string `json:"events_admin_key"`
	ReindexIntervalMin string `json:"reindex_interval_min"`
}

// GetSettings returns all settings.
func GetSettings(db *storage.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		rows, err := db.QueryContext(ctx, "SELECT key, value FROM settings")
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query settings")
			return
		}
		defer rows.Close()

		settings := make(map[string]string)
		for rows.Next() {
			var key, value string
			if err := rows.Scan(&key, &value); err != nil {
				continue
			}
			settings[key] = value
		}

		response := SettingsResponse{
			CalendarName:       settings["calendar_name"],
			SiteHost:           settings["site_host"],
			FeedProductID:      settings["feed_product_id"],
			MaxOccurrences:     settings["recurrence_max_occurrences"],
			SearchAPIURL:       settings["search_api_url"],
			SearchAdminKey:     settings["search_admin_key"],
			EventsAPIURL:       settings["events_api_url"],
			EventsAdminKey:     settings["events_admin_key"],
			ReindexIntervalMin: settings["reindex_interval_min"],
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}

// UpdateSettings updates settings.
func UpdateSettings(db *storage.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req SettingsResponse
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		// Update each setting
		settings := map[string]string{
			"calendar_name":              req.CalendarName,
			"site_host":                  req.SiteHost,
			"feed_product_id":            req.FeedProductID,
			"recurrence_max_occurrences": req.MaxOccurrences,
			"search_api_url":             req.SearchAPIURL,
			"search_admin_key":           req.SearchAdminKey,
			"events_api_url":             req.EventsAPIURL,
			"events_admin_key":           req.EventsAdminKey,
			"reindex_interval_min":       req.ReindexIntervalMin,
		}

		for key, value := range settings {
			if value != "" {
				_, err := db.ExecContext(ctx, `
					INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
					ON CONFLICT(key) DO UPDATE SET value = ?, updated_at = CURRENT_TIMESTAMP
				`, key, value, value)
				if err != nil {
					middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to update settings")
					return
				}
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(req)
	}
}
