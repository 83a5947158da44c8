// Package models contains the domain models for the application.
package models

import (
	"time"
)

// Document is a reference to a document attached to an event.
type Document struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Event represents one concrete scheduled occurrence. Members of a recurring
// series are independent rows sharing a SeriesID; each can be edited,
// cancelled or deleted without affecting its siblings.
type Event struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	Date          string     `json:"date"`                 // YYYY-MM-DD, required
	StartTime     string     `json:"start_time,omitempty"` // HH:MM; empty means all-day
	EndDate       string     `json:"end_date,omitempty"`
	EndTime       string     `json:"end_time,omitempty"`
	Location      string     `json:"location,omitempty"`
	URL           string     `json:"url,omitempty"`
	Documents     []Document `json:"documents,omitempty"`
	AutoDocPreset string     `json:"auto_doc_preset,omitempty"`
	SeriesID      string     `json:"series_id,omitempty"`
	Cancelled     bool       `json:"cancelled"`
	Published     bool       `json:"published"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// AllDay reports whether the event has no time-of-day component.
func (e Event) AllDay() bool {
	return e.StartTime == ""
}

// DisplayTitle returns the title with the cancellation marker applied.
// Cancelled events are never deleted; they render everywhere with this prefix.
func (e Event) DisplayTitle() string {
	if e.Cancelled {
		return "Cancelled: " + e.Title
	}
	return e.Title
}

// SpanDays returns the day count between start and end date for multi-day
// events, or 0 when the event is single-day or the dates are unusable.
func (e Event) SpanDays() int {
	if e.EndDate == "" || e.EndDate == e.Date {
		return 0
	}
	start, err := time.Parse("2006-01-02", e.Date)
	if err != nil {
		return 0
	}
	end, err := time.Parse("2006-01-02", e.EndDate)
	if err != nil || end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours() / 24)
}
