// Package ical emits an iCalendar subscription feed for events.
//
// Every occurrence is exported as an individual VEVENT; recurring series are
// stored as separate rows, so no RRULE is ever emitted. Cancelled events stay
// in the feed with the "Cancelled: " summary prefix used by the rest of the
// site; clients wanting STATUS:CANCELLED semantics would need to extend this.
package ical

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/parish-calendar/backend/internal/recurrence"
	"github.com/parish-calendar/backend/internal/storage/models"
)

// TimezoneID is the single fixed zone the feed is published in. The VTIMEZONE
// block below hardcodes its transition pair; this is not a timezone database.
const TimezoneID = "Europe/London"

const (
	dateStampFormat = "20060102"
	timeStampFormat = "20060102T150405"
	utcStampFormat  = "20060102T150405Z"
)

// ErrMissingDate is returned for records without a start date. Such records
// are skipped from the feed rather than aborting the document.
var ErrMissingDate = errors.New("event has no start date")

// Config carries the feed identity values.
type Config struct {
	ProductID string // PRODID value
	Name      string // calendar display name (X-WR-CALNAME)
	Host      string // site host used in UIDs
}

// Writer serializes events into an iCalendar document.
type Writer struct {
	cfg Config
	now func() time.Time
}

// NewWriter creates a feed writer.
func NewWriter(cfg Config) *Writer {
	return &Writer{cfg: cfg, now: time.Now}
}

// Calendar serializes the given events into a complete iCalendar document.
// Events missing a usable start date are skipped.
func (w *Writer) Calendar(events []models.Event) []byte {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + w.cfg.ProductID,
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"X-WR-CALNAME:" + Escape(w.cfg.Name),
		"X-WR-TIMEZONE:" + TimezoneID,
	}
	lines = append(lines, timezoneLines()...)

	for _, ev := range events {
		evLines, err := w.vevent(ev)
		if err != nil {
			log.Printf("Skipping event %s in feed: %v", ev.ID, err)
			continue
		}
		lines = append(lines, evLines...)
	}

	lines = append(lines, "END:VCALENDAR")

	return []byte(strings.Join(lines, "\r\n"))
}

// timezoneLines is the fixed Europe/London definition: daylight saving starts
// on the last Sunday of March and standard time resumes on the last Sunday of
// October.
func timezoneLines() []string {
	return []string{
		"BEGIN:VTIMEZONE",
		"TZID:" + TimezoneID,
		"BEGIN:STANDARD",
		"DTSTART:19701025T020000",
		"RRULE:FREQ=YEARLY;BYDAY=-1SU;BYMONTH=10",
		"TZOFFSETFROM:+0100",
		"TZOFFSETTO:+0000",
		"TZNAME:GMT",
		"END:STANDARD",
		"BEGIN:DAYLIGHT",
		"DTSTART:19700329T010000",
		"RRULE:FREQ=YEARLY;BYDAY=-1SU;BYMONTH=3",
		"TZOFFSETFROM:+0000",
		"TZOFFSETTO:+0100",
		"TZNAME:BST",
		"END:DAYLIGHT",
		"END:VTIMEZONE",
	}
}

// vevent renders a single event block.
func (w *Writer) vevent(ev models.Event) ([]string, error) {
	if ev.Date == "" {
		return nil, ErrMissingDate
	}

	lines := []string{"BEGIN:VEVENT"}
	lines = append(lines, fmt.Sprintf("UID:event-%s@%s", ev.ID, w.cfg.Host))

	if !ev.AllDay() {
		start, err := parseDateTime(ev.Date, ev.StartTime)
		if err != nil {
			return nil, err
		}

		var end time.Time
		switch {
		case ev.EndDate != "" && ev.EndTime != "":
			end, err = parseDateTime(ev.EndDate, ev.EndTime)
		case ev.EndTime != "":
			end, err = parseDateTime(ev.Date, ev.EndTime)
		default:
			// No explicit end: default one hour duration.
			end = start.Add(time.Hour)
		}
		if err != nil {
			return nil, err
		}

		lines = append(lines,
			"DTSTART;TZID="+TimezoneID+":"+start.Format(timeStampFormat),
			"DTEND;TZID="+TimezoneID+":"+end.Format(timeStampFormat),
		)
	} else {
		start, err := recurrence.ParseDate(ev.Date)
		if err != nil {
			return nil, err
		}

		endBase := start
		if ev.EndDate != "" {
			endBase, err = recurrence.ParseDate(ev.EndDate)
			if err != nil {
				return nil, err
			}
		}

		// All-day events use the exclusive-end convention: DTEND is the
		// calendar day after the last day of the event.
		lines = append(lines,
			"DTSTART;VALUE=DATE:"+start.Format(dateStampFormat),
			"DTEND;VALUE=DATE:"+endBase.AddDate(0, 0, 1).Format(dateStampFormat),
		)
	}

	lines = append(lines, "SUMMARY:"+Escape(ev.DisplayTitle()))

	if desc := StripTags(ev.Content); desc != "" {
		lines = append(lines, "DESCRIPTION:"+Escape(desc))
	}
	if ev.Location != "" {
		lines = append(lines, "LOCATION:"+Escape(ev.Location))
	}
	if ev.URL != "" {
		lines = append(lines, "URL:"+ev.URL)
	}

	lines = append(lines, "DTSTAMP:"+w.now().UTC().Format(utcStampFormat))
	if !ev.UpdatedAt.IsZero() {
		lines = append(lines, "LAST-MODIFIED:"+ev.UpdatedAt.UTC().Format(utcStampFormat))
	}

	lines = append(lines, "END:VEVENT")

	return lines, nil
}

// parseDateTime combines a YYYY-MM-DD date and HH:MM time into a naive local
// timestamp.
func parseDateTime(date, clock string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04", date+" "+clock)
	if err != nil {
		return time.Time{}, &recurrence.InvalidDateError{Value: date + " " + clock, Err: err}
	}
	return t, nil
}

// Escape applies iCal text escaping. Backslashes are escaped first so the
// replacements introduced for newlines, commas and semicolons are not escaped
// again.
func Escape(text string) string {
	text = strings.ReplaceAll(text, `\`, `\\`)
	text = strings.ReplaceAll(text, "\n", `\n`)
	text = strings.ReplaceAll(text, ",", `\,`)
	text = strings.ReplaceAll(text, ";", `\;`)
	return text
}

// StripTags removes HTML tags from a content body, leaving plain text.
func StripTags(s string) string {
	if !strings.ContainsRune(s, '<') {
		return strings.TrimSpace(s)
	}

	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
