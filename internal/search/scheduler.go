package search

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/parish-calendar/backend/internal/config"
	"github.com/parish-calendar/backend/internal/storage"
	"github.com/parish-calendar/backend/internal/storage/models"
	"github.com/parish-calendar/backend/internal/websocket"
)

// Lister supplies the events eligible for indexing.
type Lister interface {
	ListPublished(ctx context.Context) ([]models.Event, error)
}

var _ Lister = (*storage.EventRepository)(nil)

// Scheduler periodically reindexes all published events, catching edits made
// outside the save pipeline and recovering from transient indexing failures.
type Scheduler struct {
	cron        *cron.Cron
	client      *Client
	settings    config.Provider
	events      Lister
	broadcaster *websocket.EventBroadcaster
}

// NewScheduler creates a reindex scheduler.
func NewScheduler(client *Client, settings config.Provider, events Lister, hub *websocket.Hub) *Scheduler {
	var broadcaster *websocket.EventBroadcaster
	if hub != nil {
		broadcaster = websocket.NewEventBroadcaster(hub)
	}

	return &Scheduler{
		cron:        cron.New(),
		client:      client,
		settings:    settings,
		events:      events,
		broadcaster: broadcaster,
	}
}

// Start begins periodic reindexing. The interval comes from settings,
// defaulting to hourly.
func (s *Scheduler) Start(ctx context.Context) error {
	intervalMin := config.GetInt(ctx, s.settings, config.KeyReindexInterval, 60)
	if intervalMin < 1 {
		intervalMin = 60
	}

	spec := "@every " + minutesSpec(intervalMin)
	if _, err := s.cron.AddFunc(spec, func() {
		s.run(context.Background())
	}); err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("Search reindex scheduler started (every %d minutes)", intervalMin)
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Search reindex scheduler stopped")
}

// TriggerReindex runs a reindex in the background.
func (s *Scheduler) TriggerReindex() {
	go s.run(context.Background())
}

// Reindex pushes every published event into the search index. It returns the
// number of documents indexed; zero with no error means indexing is not
// configured.
func (s *Scheduler) Reindex(ctx context.Context) (int, error) {
	conn := ResolveConnection(ctx, s.settings)
	if !conn.Configured() {
		return 0, nil
	}

	events, err := s.events.ListPublished(ctx)
	if err != nil {
		return 0, err
	}

	host := config.GetString(ctx, s.settings, config.KeySiteHost, "localhost")
	docs := make([]Document, 0, len(events))
	for _, ev := range events {
		docs = append(docs, NewDocument(ev, Permalink(host, ev.ID)))
	}

	if err := s.client.IndexDocuments(ctx, conn, docs); err != nil {
		return 0, err
	}

	return len(docs), nil
}

func (s *Scheduler) run(ctx context.Context) {
	count, err := s.Reindex(ctx)
	if err != nil {
		log.Printf("Search reindex failed: %v", err)
		if s.broadcaster != nil {
			s.broadcaster.BroadcastReindexError(err)
		}
		return
	}
	if count == 0 {
		return
	}

	log.Printf("Search reindex completed: %d documents", count)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastReindexCompleted(count)
	}
}

func minutesSpec(minutes int) string {
	// cron's @every takes a Go duration string.
	return (time.Duration(minutes) * time.Minute).String()
}
