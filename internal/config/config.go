// Package config resolves runtime settings through a layered lookup:
// the sqlite settings table first, then the process environment.
package config

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/parish-calendar/backend/internal/storage"
)

// Well-known setting keys.
const (
	KeyCalendarName      = "calendar_name"
	KeySiteHost          = "site_host"
	KeyFeedProductID     = "feed_product_id"
	KeyMaxOccurrences    = "recurrence_max_occurrences"
	KeySearchAPIURL      = "search_api_url"
	KeySearchAdminKey    = "search_admin_key"
	KeyEventsAPIURL      = "events_api_url"
	KeyEventsAdminKey    = "events_admin_key"
	KeyReindexInterval   = "reindex_interval_min"
)

// Provider resolves a setting by key. The second return value reports whether
// the provider had a non-empty value.
type Provider interface {
	Get(ctx context.Context, key string) (string, bool)
}

// Layered tries each provider in order and returns the first hit.
type Layered []Provider

// Get implements Provider.
func (l Layered) Get(ctx context.Context, key string) (string, bool) {
	for _, p := range l {
		if v, ok := p.Get(ctx, key); ok {
			return v, true
		}
	}
	return "", false
}

// Store resolves settings from the database settings table.
type Store struct {
	db *storage.DB
}

// NewStore creates a database-backed provider.
func NewStore(db *storage.DB) *Store {
	return &Store{db: db}
}

// Get implements Provider.
func (s *Store) Get(ctx context.Context, key string) (string, bool) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil || value == "" {
		return "", false
	}
	return value, true
}

// Env resolves settings from environment variables: the key is upper-cased
// and prefixed, e.g. "site_host" -> "PARISH_SITE_HOST".
type Env struct {
	Prefix string
}

// Get implements Provider.
func (e Env) Get(ctx context.Context, key string) (string, bool) {
	name := e.Prefix + strings.ToUpper(key)
	if v := os.Getenv(name); v != "" {
		return v, true
	}
	return "", false
}

// GetString resolves key, falling back to def when no layer has a value.
func GetString(ctx context.Context, p Provider, key, def string) string {
	if v, ok := p.Get(ctx, key); ok {
		return v
	}
	return def
}

// GetInt resolves key as an integer, falling back to def on absence or a
// value that does not parse.
func GetInt(ctx context.Context, p Provider, key string, def int) int {
	v, ok := p.Get(ctx, key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}
