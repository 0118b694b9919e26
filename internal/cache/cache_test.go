package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGet(t *testing.T) {
	c := New()

	c.Set("k", "v", NoExpiry)
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCache_NoExpiryNeverExpires(t *testing.T) {
	c := New()
	c.Set("forever", 42, NoExpiry)

	// Force the lazy-expiry path by reading repeatedly.
	for i := 0; i < 3; i++ {
		got, ok := c.Get("forever")
		require.True(t, ok)
		assert.Equal(t, 42, got)
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	c := New()
	c.Set("short", "gone soon", 10*time.Millisecond)

	got, ok := c.Get("short")
	require.True(t, ok)
	assert.Equal(t, "gone soon", got)

	time.Sleep(20 * time.Millisecond)

	_, ok = c.Get("short")
	assert.False(t, ok, "expired entry should be reported absent")
	assert.False(t, c.Has("short"), "expired read should have removed the key")
}

func TestCache_Has(t *testing.T) {
	c := New()
	assert.False(t, c.Has("k"))
	c.Set("k", "v", NoExpiry)
	assert.True(t, c.Has("k"))
}

func TestCache_Delete(t *testing.T) {
	c := New()
	c.Set("k", "v", NoExpiry)
	c.Delete("k")
	assert.False(t, c.Has("k"))

	// Deleting a missing key is a no-op.
	c.Delete("never-set")
}

func TestCache_Overwrite(t *testing.T) {
	c := New()
	c.Set("k", "old", 5*time.Millisecond)
	c.Set("k", "new", NoExpiry)

	time.Sleep(10 * time.Millisecond)

	got, ok := c.Get("k")
	require.True(t, ok, "overwrite should replace the old TTL")
	assert.Equal(t, "new", got)
}

func TestCache_Stats(t *testing.T) {
	c := New()
	c.Set("a", 1, NoExpiry)
	c.Set("b", 2, time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	stats := c.Stats()
	assert.Equal(t, 2, stats["total_keys"])
	assert.Equal(t, 1, stats["active_keys"])
	assert.Equal(t, 1, stats["expired_keys"])
}
