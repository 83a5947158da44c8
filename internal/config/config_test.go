package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// mapProvider is a test double backed by a plain map.
type mapProvider map[string]string

func (m mapProvider) Get(_ context.Context, key string) (string, bool) {
	v, ok := m[key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func TestLayered_FirstHitWins(t *testing.T) {
	primary := mapProvider{"site_host": "parish.example.org"}
	secondary := mapProvider{"site_host": "fallback.example.org", "calendar_name": "Parish Events"}

	l := Layered{primary, secondary}
	ctx := context.Background()

	v, ok := l.Get(ctx, "site_host")
	assert.True(t, ok)
	assert.Equal(t, "parish.example.org", v)

	v, ok = l.Get(ctx, "calendar_name")
	assert.True(t, ok)
	assert.Equal(t, "Parish Events", v)

	_, ok = l.Get(ctx, "missing")
	assert.False(t, ok)
}

func TestEnv(t *testing.T) {
	t.Setenv("PARISH_SITE_HOST", "env.example.org")

	e := Env{Prefix: "PARISH_"}
	v, ok := e.Get(context.Background(), "site_host")
	assert.True(t, ok)
	assert.Equal(t, "env.example.org", v)

	_, ok = e.Get(context.Background(), "calendar_name")
	assert.False(t, ok)
}

func TestGetHelpers(t *testing.T) {
	p := mapProvider{"recurrence_max_occurrences": "50", "bad": "many"}
	ctx := context.Background()

	assert.Equal(t, 50, GetInt(ctx, p, "recurrence_max_occurrences", 100))
	assert.Equal(t, 100, GetInt(ctx, p, "missing", 100))
	assert.Equal(t, 7, GetInt(ctx, p, "bad", 7))

	assert.Equal(t, "default", GetString(ctx, p, "missing", "default"))
}
