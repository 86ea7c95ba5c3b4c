package dedupe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestCache(capacity int, ttl time.Duration) (*Cache, *clock) {
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewCache(capacity, ttl)
	c.now = clk.now
	return c, clk
}

func TestUnchangedRequiresSameFingerprint(t *testing.T) {
	cache, _ := newTestCache(10, time.Minute)
	require.False(t, cache.Unchanged("alert-1", "v1"))

	cache.Remember("alert-1", "v1")
	require.True(t, cache.Unchanged("alert-1", "v1"))
	require.False(t, cache.Unchanged("alert-1", "v2"))
}

func TestEntriesExpire(t *testing.T) {
	cache, clk := newTestCache(10, time.Minute)
	cache.Remember("news-1", "v1")

	clk.t = clk.t.Add(2 * time.Minute)
	require.False(t, cache.Unchanged("news-1", "v1"))

	cache.Remember("news-2", "v1")
	require.Equal(t, 1, cache.Len())
}

func TestCapacityEvictsOldest(t *testing.T) {
	cache, clk := newTestCache(1, time.Minute)
	cache.Remember("first", "a")
	clk.t = clk.t.Add(time.Second)
	cache.Remember("second", "b")

	require.False(t, cache.Unchanged("first", "a"))
	require.True(t, cache.Unchanged("second", "b"))
}

func TestRememberAgainKeepsNewestVersion(t *testing.T) {
	cache, clk := newTestCache(1, time.Minute)
	cache.Remember("doc", "a")
	clk.t = clk.t.Add(time.Second)
	cache.Remember("doc", "b")

	require.True(t, cache.Unchanged("doc", "b"))
	require.Equal(t, 1, cache.Len())
}
