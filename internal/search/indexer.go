package search

import (
	"context"

	"github.com/parish-calendar/backend/internal/config"
	"github.com/parish-calendar/backend/internal/event"
	"github.com/parish-calendar/backend/internal/storage/models"
)

// Indexer is a post-save hook that pushes the saved event (and any series
// children created in the same save) into the shared search index.
type Indexer struct {
	client   *Client
	settings config.Provider
}

// NewIndexer creates the search indexing hook.
func NewIndexer(client *Client, settings config.Provider) *Indexer {
	return &Indexer{client: client, settings: settings}
}

// Name implements event.Hook.
func (ix *Indexer) Name() string { return "search-index" }

// AfterSave implements event.Hook. Only published events are indexed; when no
// search service is configured the hook is a silent no-op.
func (ix *Indexer) AfterSave(ctx context.Context, ev *models.Event, sc *event.SaveContext) error {
	conn := ResolveConnection(ctx, ix.settings)
	if !conn.Configured() {
		return nil
	}

	host := config.GetString(ctx, ix.settings, config.KeySiteHost, "localhost")

	var docs []Document
	if ev.Published {
		docs = append(docs, NewDocument(*ev, Permalink(host, ev.ID)))
	}
	for _, child := range sc.Children {
		if child.Published {
			docs = append(docs, NewDocument(child, Permalink(host, child.ID)))
		}
	}

	return ix.client.IndexDocuments(ctx, conn, docs)
}
