package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parish-calendar/backend/internal/storage/models"
)

func testRepo(t *testing.T) *EventRepository {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, RunMigrations(db))
	return NewEventRepository(db)
}

func TestCreateAndGetEvent(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	ev := &models.Event{
		Title:     "Lent Lunch",
		Content:   "<p>Soup and bread</p>",
		Date:      "2025-03-14",
		StartTime: "12:00",
		EndTime:   "13:30",
		Location:  "Church Hall",
		Documents: []models.Document{{Title: "Poster", URL: "https://example.org/poster.pdf"}},
		Published: true,
	}
	require.NoError(t, repo.Create(ctx, ev))
	assert.NotEmpty(t, ev.ID)
	assert.False(t, ev.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, ev.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ev.Title, got.Title)
	assert.Equal(t, ev.Date, got.Date)
	require.Len(t, got.Documents, 1)
	assert.Equal(t, "Poster", got.Documents[0].Title)
}

func TestGetMissingEventReturnsNil(t *testing.T) {
	repo := testRepo(t)

	got, err := repo.GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListFiltersAndOrdering(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	for _, ev := range []models.Event{
		{Title: "Late", Date: "2025-06-20", Published: true},
		{Title: "Early", Date: "2025-06-01", StartTime: "09:00", Published: true},
		{Title: "Early afternoon", Date: "2025-06-01", StartTime: "14:00", Published: true},
		{Title: "Outside", Date: "2025-07-01", Published: true},
		{Title: "Series member", Date: "2025-06-10", SeriesID: "series_p_1", Published: true},
	} {
		ev := ev
		require.NoError(t, repo.Create(ctx, &ev))
	}

	events, err := repo.List(ctx, EventFilter{From: "2025-06-01", To: "2025-06-30"})
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, "Early", events[0].Title)
	assert.Equal(t, "Early afternoon", events[1].Title)
	assert.Equal(t, "Series member", events[2].Title)
	assert.Equal(t, "Late", events[3].Title)

	series, err := repo.List(ctx, EventFilter{SeriesID: "series_p_1"})
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, "Series member", series[0].Title)
}

func TestListPublishedExcludesDrafts(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	published := models.Event{Title: "Public", Date: "2025-05-01", Published: true}
	cancelled := models.Event{Title: "Off", Date: "2025-05-02", Published: true, Cancelled: true}
	draft := models.Event{Title: "Draft", Date: "2025-05-03"}
	for _, ev := range []*models.Event{&published, &cancelled, &draft} {
		require.NoError(t, repo.Create(ctx, ev))
	}

	events, err := repo.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)

	// Cancelled events remain listed.
	assert.Equal(t, "Public", events[0].Title)
	assert.Equal(t, "Off", events[1].Title)
	assert.True(t, events[1].Cancelled)
}

func TestUpdateEvent(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	ev := &models.Event{Title: "Quiz Night", Date: "2025-09-19", Published: true}
	require.NoError(t, repo.Create(ctx, ev))

	ev.Title = "Quiz and Curry Night"
	ev.Location = "Parish Centre"
	require.NoError(t, repo.Update(ctx, ev))

	got, err := repo.GetByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "Quiz and Curry Night", got.Title)
	assert.Equal(t, "Parish Centre", got.Location)

	missing := &models.Event{ID: "nope", Title: "X", Date: "2025-01-01"}
	assert.Error(t, repo.Update(ctx, missing))
}

func TestSetSeriesIDAndCancelled(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	ev := &models.Event{Title: "Evensong", Date: "2025-04-06", Published: true}
	require.NoError(t, repo.Create(ctx, ev))

	require.NoError(t, repo.SetSeriesID(ctx, ev.ID, "series_x_123"))
	require.NoError(t, repo.SetCancelled(ctx, ev.ID, true))

	got, err := repo.GetByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "series_x_123", got.SeriesID)
	assert.True(t, got.Cancelled)

	require.NoError(t, repo.SetCancelled(ctx, ev.ID, false))
	got, err = repo.GetByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.False(t, got.Cancelled)

	assert.Error(t, repo.SetCancelled(ctx, "nope", true))
}

func TestDeleteEvent(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	a := &models.Event{Title: "A", Date: "2025-02-01", SeriesID: "series_s_1"}
	b := &models.Event{Title: "B", Date: "2025-02-08", SeriesID: "series_s_1"}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	require.NoError(t, repo.Delete(ctx, a.ID))
	assert.Error(t, repo.Delete(ctx, a.ID))

	// The sibling survives.
	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
}
