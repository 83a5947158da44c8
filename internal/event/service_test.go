package event

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parish-calendar/backend/internal/recurrence"
	"github.com/parish-calendar/backend/internal/storage/models"
)

// fakeStore is an in-memory Store for hook-chain tests.
type fakeStore struct {
	events  map[string]*models.Event
	nextID  int
	failAt  int // the nth Create fails (1-based); 0 disables
	creates int
}

func newFakeStore() *fakeStore {
	return &fakeStore{events: make(map[string]*models.Event)}
}

func (s *fakeStore) Create(ctx context.Context, ev *models.Event) error {
	s.creates++
	if s.failAt > 0 && s.creates == s.failAt {
		return errors.New("insert failed")
	}
	if ev.ID == "" {
		s.nextID++
		ev.ID = fmt.Sprintf("ev-%d", s.nextID)
	}
	copied := *ev
	s.events[ev.ID] = &copied
	return nil
}

func (s *fakeStore) Update(ctx context.Context, ev *models.Event) error {
	if _, ok := s.events[ev.ID]; !ok {
		return errors.New("event not found")
	}
	copied := *ev
	s.events[ev.ID] = &copied
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, id string) error {
	if _, ok := s.events[id]; !ok {
		return errors.New("event not found")
	}
	delete(s.events, id)
	return nil
}

func (s *fakeStore) GetByID(ctx context.Context, id string) (*models.Event, error) {
	ev, ok := s.events[id]
	if !ok {
		return nil, nil
	}
	copied := *ev
	return &copied, nil
}

func (s *fakeStore) SetSeriesID(ctx context.Context, id, seriesID string) error {
	ev, ok := s.events[id]
	if !ok {
		return errors.New("event not found")
	}
	ev.SeriesID = seriesID
	return nil
}

func (s *fakeStore) SetCancelled(ctx context.Context, id string, cancelled bool) error {
	ev, ok := s.events[id]
	if !ok {
		return errors.New("event not found")
	}
	ev.Cancelled = cancelled
	return nil
}

// recordingHook records the order it ran in and what it saw.
type recordingHook struct {
	name     string
	calls    *[]string
	seen     []models.Event
	children int
	err      error
}

func (h *recordingHook) Name() string { return h.name }

func (h *recordingHook) AfterSave(ctx context.Context, ev *models.Event, sc *SaveContext) error {
	*h.calls = append(*h.calls, h.name)
	h.seen = append(h.seen, *ev)
	h.children = len(sc.Children)
	return h.err
}

func TestCreateRunsHooksInOrder(t *testing.T) {
	store := newFakeStore()
	var calls []string
	first := &recordingHook{name: "first", calls: &calls}
	second := &recordingHook{name: "second", calls: &calls}

	svc := NewService(store, first, second)

	ev := &models.Event{Title: "Coffee Morning", Date: "2025-03-01", Published: true}
	sc, err := svc.Create(context.Background(), ev, nil)
	require.NoError(t, err)
	require.NotNil(t, sc)

	assert.Equal(t, []string{"first", "second"}, calls)
	assert.NotEmpty(t, ev.ID)
	assert.Contains(t, store.events, ev.ID)
}

func TestHookFailureDoesNotAbortChain(t *testing.T) {
	store := newFakeStore()
	var calls []string
	failing := &recordingHook{name: "failing", calls: &calls, err: errors.New("boom")}
	after := &recordingHook{name: "after", calls: &calls}

	svc := NewService(store, failing, after)

	_, err := svc.Create(context.Background(), &models.Event{Title: "Fete", Date: "2025-06-14"}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"failing", "after"}, calls)
}

func TestCreateStoreErrorSkipsHooks(t *testing.T) {
	store := newFakeStore()
	store.failAt = 1
	var calls []string
	hook := &recordingHook{name: "hook", calls: &calls}

	svc := NewService(store, hook)

	_, err := svc.Create(context.Background(), &models.Event{Title: "Fete", Date: "2025-06-14"}, nil)
	require.Error(t, err)
	assert.Empty(t, calls)
}

func TestCancelSetsFlagAndRerunsHooks(t *testing.T) {
	store := newFakeStore()
	var calls []string
	hook := &recordingHook{name: "hook", calls: &calls}
	svc := NewService(store, hook)

	ev := &models.Event{Title: "Harvest Supper", Date: "2025-10-04", Published: true}
	_, err := svc.Create(context.Background(), ev, nil)
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), ev.ID, true)
	require.NoError(t, err)
	assert.True(t, cancelled.Cancelled)
	assert.Equal(t, "Cancelled: Harvest Supper", cancelled.DisplayTitle())

	// Create then cancel each run the chain once.
	assert.Equal(t, []string{"hook", "hook"}, calls)

	reinstated, err := svc.Cancel(context.Background(), ev.ID, false)
	require.NoError(t, err)
	assert.False(t, reinstated.Cancelled)
}

func TestCancelMissingEvent(t *testing.T) {
	svc := NewService(newFakeStore())

	_, err := svc.Cancel(context.Background(), "missing", true)
	assert.Error(t, err)
}

func TestDeleteRemovesOnlyTargetEvent(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	a := &models.Event{Title: "A", Date: "2025-03-01", SeriesID: "series_x_1"}
	b := &models.Event{Title: "B", Date: "2025-03-08", SeriesID: "series_x_1"}
	require.NoError(t, store.Create(context.Background(), a))
	require.NoError(t, store.Create(context.Background(), b))

	require.NoError(t, svc.Delete(context.Background(), a.ID))

	assert.NotContains(t, store.events, a.ID)
	assert.Contains(t, store.events, b.ID)
}

func TestUpdateRunsHooks(t *testing.T) {
	store := newFakeStore()
	var calls []string
	hook := &recordingHook{name: "hook", calls: &calls}
	svc := NewService(store, hook)

	ev := &models.Event{Title: "Choir Practice", Date: "2025-02-06"}
	_, err := svc.Create(context.Background(), ev, nil)
	require.NoError(t, err)

	ev.Title = "Choir Practice (moved)"
	sc, err := svc.Update(context.Background(), ev, nil)
	require.NoError(t, err)
	require.NotNil(t, sc)

	assert.Len(t, calls, 2)
	assert.Equal(t, "Choir Practice (moved)", store.events[ev.ID].Title)
}

func TestSaveContextCarriesSpecToHooks(t *testing.T) {
	store := newFakeStore()

	var got *recurrence.Spec
	capture := &funcHook{fn: func(ctx context.Context, ev *models.Event, sc *SaveContext) error {
		got = sc.Recurrence
		return nil
	}}
	svc := NewService(store, capture)

	spec := &recurrence.Spec{Rule: recurrence.RuleWeekly, Interval: 1}
	_, err := svc.Create(context.Background(), &models.Event{Title: "X", Date: "2025-01-01"}, spec)
	require.NoError(t, err)
	assert.Equal(t, spec, got)
}

// funcHook adapts a function to the Hook interface.
type funcHook struct {
	fn func(context.Context, *models.Event, *SaveContext) error
}

func (h *funcHook) Name() string { return "func" }

func (h *funcHook) AfterSave(ctx context.Context, ev *models.Event, sc *SaveContext) error {
	return h.fn(ctx, ev, sc)
}
