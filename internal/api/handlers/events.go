// Package handlers provides HTTP request handlers for the API endpoints.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/parish-calendar/backend/internal/api/middleware"
	"github.com/parish-calendar/backend/internal/event"
	"github.com/parish-calendar/backend/internal/recurrence"
	"github.com/parish-calendar/backend/internal/storage"
	"github.com/parish-calendar/backend/internal/storage/models"
)

// RecurrenceRequest is the transient recurrence rule attached to a save. It
// is expanded at save time and never stored.
type RecurrenceRequest struct {
	Rule     string `json:"rule"`
	Interval int    `json:"interval,omitempty"`
	Ordinal  string `json:"ordinal,omitempty"`
	Weekday  string `json:"weekday,omitempty"`
	Until    string `json:"until,omitempty"` // YYYY-MM-DD, inclusive horizon
}

// Spec converts the request into an expansion spec. A missing or "none" rule
// yields nil.
func (r *RecurrenceRequest) Spec() (*recurrence.Spec, error) {
	if r == nil {
		return nil, nil
	}

	rule, err := recurrence.ParseRule(r.Rule)
	if err != nil {
		return nil, err
	}
	if rule == recurrence.RuleNone {
		return nil, nil
	}

	ordinal, err := recurrence.ParseOrdinal(r.Ordinal)
	if err != nil {
		return nil, err
	}
	weekday, err := recurrence.ParseWeekday(r.Weekday)
	if err != nil {
		return nil, err
	}

	spec := &recurrence.Spec{
		Rule:     rule,
		Interval: r.Interval,
		Ordinal:  ordinal,
		Weekday:  weekday,
	}
	if r.Until != "" {
		until, err := recurrence.ParseDate(r.Until)
		if err != nil {
			return nil, err
		}
		spec.Until = until
	}

	return spec, nil
}

// EventRequest is the create/update payload for an event.
type EventRequest struct {
	Title         string             `json:"title"`
	Content       string             `json:"content"`
	Date          string             `json:"date"`
	StartTime     string             `json:"start_time"`
	EndDate       string             `json:"end_date"`
	EndTime       string             `json:"end_time"`
	Location      string             `json:"location"`
	URL           string             `json:"url"`
	Documents     []models.Document  `json:"documents"`
	AutoDocPreset string             `json:"auto_doc_preset"`
	Published     *bool              `json:"published"`
	Recurrence    *RecurrenceRequest `json:"recurrence"`
}

// validate checks the date and time fields. Expansion and serialization both
// fail closed on malformed dates, so reject them at the door.
func (r *EventRequest) validate() string {
	if r.Title == "" {
		return "Title is required"
	}
	if r.Date == "" {
		return "Date is required"
	}

	start, err := recurrence.ParseDate(r.Date)
	if err != nil {
		return "Date must be YYYY-MM-DD"
	}
	if r.EndDate != "" {
		end, err := recurrence.ParseDate(r.EndDate)
		if err != nil {
			return "End date must be YYYY-MM-DD"
		}
		if end.Before(start) {
			return "End date must not be before the start date"
		}
	}

	for _, clock := range []string{r.StartTime, r.EndTime} {
		if clock == "" {
			continue
		}
		if _, err := time.Parse("15:04", clock); err != nil {
			return "Times must be HH:MM"
		}
	}

	return ""
}

func (r *EventRequest) apply(ev *models.Event) {
	ev.Title = r.Title
	ev.Content = r.Content
	ev.Date = r.Date
	ev.StartTime = r.StartTime
	ev.EndDate = r.EndDate
	ev.EndTime = r.EndTime
	ev.Location = r.Location
	ev.URL = r.URL
	ev.Documents = r.Documents
	ev.AutoDocPreset = r.AutoDocPreset
	ev.Published = true
	if r.Published != nil {
		ev.Published = *r.Published
	}
}

// SaveEventResponse reports a save together with its series outcome.
type SaveEventResponse struct {
	Event           models.Event `json:"event"`
	SeriesID        string       `json:"series_id,omitempty"`
	ChildrenCreated int          `json:"children_created"`
	Truncated       bool         `json:"truncated"`
}

// ListEvents returns events, optionally filtered by date range or series.
func ListEvents(repo *storage.EventRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := storage.EventFilter{
			From:     q.Get("from"),
			To:       q.Get("to"),
			SeriesID: q.Get("series"),
		}

		events, err := repo.List(r.Context(), filter)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query events")
			return
		}

		if events == nil {
			events = []models.Event{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(events)
	}
}

// GetEvent returns a single event by ID.
func GetEvent(repo *storage.EventRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		ev, err := repo.GetByID(r.Context(), id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query event")
			return
		}
		if ev == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Event not found")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ev)
	}
}

// CreateEvent creates an event, expanding any recurrence rule into a series.
func CreateEvent(svc *event.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req EventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		if msg := req.validate(); msg != "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, msg)
			return
		}

		spec, err := req.Recurrence.Spec()
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, err.Error())
			return
		}

		var ev models.Event
		req.apply(&ev)

		sc, err := svc.Create(r.Context(), &ev, spec)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to create event")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(SaveEventResponse{
			Event:           ev,
			SeriesID:        sc.SeriesID,
			ChildrenCreated: len(sc.Children),
			Truncated:       sc.Truncated,
		})
	}
}

// UpdateEvent updates an existing event. A recurrence rule on the request
// only has effect when the event is not already part of a series.
func UpdateEvent(repo *storage.EventRepository, svc *event.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		var req EventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		if msg := req.validate(); msg != "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, msg)
			return
		}

		spec, err := req.Recurrence.Spec()
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, err.Error())
			return
		}

		ev, err := repo.GetByID(r.Context(), id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query event")
			return
		}
		if ev == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Event not found")
			return
		}

		req.apply(ev)

		sc, err := svc.Update(r.Context(), ev, spec)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to update event")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SaveEventResponse{
			Event:           *ev,
			SeriesID:        sc.SeriesID,
			ChildrenCreated: len(sc.Children),
			Truncated:       sc.Truncated,
		})
	}
}

// CancelEvent flips an event's cancellation flag. The event stays stored and
// listed; only this occurrence is affected, never its series siblings.
func CancelEvent(svc *event.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		// Optional body to reinstate a cancelled event.
		req := struct {
			Cancelled *bool `json:"cancelled"`
		}{}
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&req)
		}
		cancelled := true
		if req.Cancelled != nil {
			cancelled = *req.Cancelled
		}

		ev, err := svc.Cancel(r.Context(), id, cancelled)
		if err != nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Event not found")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ev)
	}
}

// DeleteEvent removes a single event. Deleting a series member never touches
// its siblings or parent.
func DeleteEvent(svc *event.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		if err := svc.Delete(r.Context(), id); err != nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Event not found")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
