package event

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/parish-calendar/backend/internal/config"
	"github.com/parish-calendar/backend/internal/recurrence"
	"github.com/parish-calendar/backend/internal/storage/models"
)

// Materializer expands a recurrence into independent child events sharing a
// series identity with the saved parent. It is a post-save hook: it only acts
// when the save carried a recurrence rule and the parent is not already part
// of a series, so re-saving a materialized parent never re-expands.
type Materializer struct {
	store    Store
	settings config.Provider
}

// NewMaterializer creates the series-materialization hook.
func NewMaterializer(store Store, settings config.Provider) *Materializer {
	return &Materializer{store: store, settings: settings}
}

// Name implements Hook.
func (m *Materializer) Name() string { return "materialize-series" }

// AfterSave implements Hook. Child creation is best-effort: a failed insert
// is logged and skipped, children created before the failure are kept, and
// nothing is rolled back.
func (m *Materializer) AfterSave(ctx context.Context, ev *models.Event, sc *SaveContext) error {
	if sc.Recurrence == nil || sc.Recurrence.Rule == recurrence.RuleNone {
		return nil
	}
	if ev.SeriesID != "" || ev.Date == "" {
		return nil
	}

	start, err := recurrence.ParseDate(ev.Date)
	if err != nil {
		return err
	}

	spec := *sc.Recurrence
	if spec.MaxOccurrences <= 0 {
		spec.MaxOccurrences = config.GetInt(ctx, m.settings,
			config.KeyMaxOccurrences, recurrence.DefaultMaxOccurrences)
	}

	exp, err := recurrence.Expand(start, spec)
	if err != nil {
		return err
	}
	sc.Truncated = exp.Truncated

	// A series needs at least two occurrences; otherwise the parent stays an
	// ordinary standalone event.
	if len(exp.Dates) < 2 {
		return nil
	}

	seriesID := fmt.Sprintf("series_%s_%d", ev.ID, time.Now().Unix())
	if err := m.store.SetSeriesID(ctx, ev.ID, seriesID); err != nil {
		return fmt.Errorf("marking series parent: %w", err)
	}
	ev.SeriesID = seriesID
	sc.SeriesID = seriesID

	spanDays := ev.SpanDays()

	for _, d := range exp.Dates[1:] {
		child := models.Event{
			Title:         ev.Title,
			Content:       ev.Content,
			Date:          d.Format(recurrence.DateFormat),
			StartTime:     ev.StartTime,
			EndTime:       ev.EndTime,
			Location:      ev.Location,
			URL:           ev.URL,
			Documents:     ev.Documents,
			AutoDocPreset: ev.AutoDocPreset,
			SeriesID:      seriesID,
			Published:     ev.Published,
		}
		if spanDays > 0 {
			child.EndDate = d.AddDate(0, 0, spanDays).Format(recurrence.DateFormat)
		}

		if err := m.store.Create(ctx, &child); err != nil {
			log.Printf("Failed to create series occurrence %s for %s: %v",
				child.Date, seriesID, err)
			continue
		}
		sc.Children = append(sc.Children, child)
	}

	return nil
}
