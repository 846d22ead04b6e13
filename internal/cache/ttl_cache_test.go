package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache(10 * time.Millisecond)
	defer c.Stop()

	c.Set("k", "v", 100*time.Millisecond)

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	time.Sleep(150 * time.Millisecond)

	_, ok = c.Get("k")
	assert.False(t, ok, "entry must be absent after its TTL")
}

func TestTTLCacheExpiredBeforeSweep(t *testing.T) {
	// Long sweep interval: the entry expires but the sweeper has not run.
	c := NewTTLCache(time.Hour)
	defer c.Stop()

	c.Set("k", 1, 20*time.Millisecond)
	time.Sleep(40 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok, "expired entry must read as absent even before the sweep")
}

func TestTTLCacheOverwrite(t *testing.T) {
	c := NewTTLCache(time.Hour)
	defer c.Stop()

	c.Set("k", 1, time.Minute)
	c.Set("k", 2, time.Minute)

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Size())
}

func TestTTLCacheDelete(t *testing.T) {
	c := NewTTLCache(time.Hour)
	defer c.Stop()

	c.Set("k", 1, time.Minute)
	c.Delete("k")

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestTTLCacheJSONRoundTrip(t *testing.T) {
	c := NewTTLCache(time.Hour)
	defer c.Stop()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, c.SetJSON("p", payload{Name: "cake", Count: 3}, time.Minute))

	var got payload
	require.True(t, c.GetJSON("p", &got))
	assert.Equal(t, "cake", got.Name)
	assert.Equal(t, 3, got.Count)
}
