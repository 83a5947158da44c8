// Package event persists events and orchestrates the post-save collaborators
// (series materialization, search indexing, notifications) as an explicit,
// ordered hook chain.
package event

import (
	"context"
	"log"

	"github.com/parish-calendar/backend/internal/recurrence"
	"github.com/parish-calendar/backend/internal/storage/models"
)

// Store is the subset of the event repository the service needs.
type Store interface {
	Create(ctx context.Context, ev *models.Event) error
	Update(ctx context.Context, ev *models.Event) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Event, error)
	SetSeriesID(ctx context.Context, id, seriesID string) error
	SetCancelled(ctx context.Context, id string, cancelled bool) error
}

// SaveContext carries a save's transient inputs and accumulated outputs
// through the hook chain. The recurrence spec is never persisted; it exists
// only for the duration of the save that carried it.
type SaveContext struct {
	Recurrence *recurrence.Spec

	// Children holds the series members created by materialization, in date
	// order. Later hooks (indexing, notifications) see them here.
	Children  []models.Event
	SeriesID  string
	Truncated bool
}

// Hook runs after an event has been persisted. Hook failures are logged and
// do not abort the save or the rest of the chain.
type Hook interface {
	Name() string
	AfterSave(ctx context.Context, ev *models.Event, sc *SaveContext) error
}

// Service coordinates event persistence and the post-save hook chain.
type Service struct {
	store Store
	hooks []Hook
}

// NewService creates an event service. Hooks run in the given order after
// every create and update.
func NewService(store Store, hooks ...Hook) *Service {
	return &Service{store: store, hooks: hooks}
}

// Create persists a new event and runs the post-save chain. When spec carries
// a recurrence rule the materializer hook expands it into a series.
func (s *Service) Create(ctx context.Context, ev *models.Event, spec *recurrence.Spec) (*SaveContext, error) {
	if err := s.store.Create(ctx, ev); err != nil {
		return nil, err
	}
	return s.afterSave(ctx, ev, spec), nil
}

// Update persists changes to an existing event and runs the post-save chain.
func (s *Service) Update(ctx context.Context, ev *models.Event, spec *recurrence.Spec) (*SaveContext, error) {
	if err := s.store.Update(ctx, ev); err != nil {
		return nil, err
	}
	return s.afterSave(ctx, ev, spec), nil
}

// Cancel marks an event as cancelled (or reinstates it) and re-runs the
// post-save chain so downstream indexes and clients pick up the change.
// The event itself is kept; series siblings are untouched.
func (s *Service) Cancel(ctx context.Context, id string, cancelled bool) (*models.Event, error) {
	if err := s.store.SetCancelled(ctx, id, cancelled); err != nil {
		return nil, err
	}

	ev, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.afterSave(ctx, ev, nil)
	return ev, nil
}

// Delete removes a single event.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

func (s *Service) afterSave(ctx context.Context, ev *models.Event, spec *recurrence.Spec) *SaveContext {
	sc := &SaveContext{Recurrence: spec}
	for _, h := range s.hooks {
		if err := h.AfterSave(ctx, ev, sc); err != nil {
			log.Printf("Post-save hook %s failed for event %s: %v", h.Name(), ev.ID, err)
		}
	}
	return sc
}
