package search

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/parish-calendar/backend/internal/ical"
	"github.com/parish-calendar/backend/internal/storage/models"
)

// Document is the shape the shared site search index expects.
type Document struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	URL           string `json:"url"`
	DateDisplay   string `json:"date_display"`
	DateSortable  int    `json:"date_sortable"`
	Year          int    `json:"year,omitempty"`
	EventTime     string `json:"event_time,omitempty"`
	EventLocation string `json:"event_location,omitempty"`
}

// NewDocument builds the index document for an event. permalink is the
// site-facing URL of the event page.
func NewDocument(ev models.Event, permalink string) Document {
	doc := Document{
		ID:            "event_" + ev.ID,
		Type:          "event",
		Title:         ev.DisplayTitle(),
		Content:       ical.StripTags(ev.Content),
		URL:           permalink,
		EventTime:     ev.StartTime,
		EventLocation: ev.Location,
	}

	if ev.Date != "" {
		// date_sortable is the date as a YYYYMMDD integer for range filters.
		if n, err := strconv.Atoi(strings.ReplaceAll(ev.Date, "-", "")); err == nil {
			doc.DateSortable = n
		}
		if d, err := time.Parse("2006-01-02", ev.Date); err == nil {
			doc.DateDisplay = d.Format("2 January 2006")
			doc.Year = d.Year()
		}
	}

	return doc
}

// Permalink builds the public event page URL for the given site host.
func Permalink(host, eventID string) string {
	return fmt.Sprintf("https://%s/events/%s", host, eventID)
}
