package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestMemoryCacheGetSet(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()

	_, err := mc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	buf := []byte("value")
	require.NoError(t, mc.Set(ctx, "k", buf, 0))
	buf[0] = 'X'
	got, err := mc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "value", string(got))

	require.NoError(t, mc.Delete(ctx, "k"))
	_, err = mc.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	mc := NewMemoryCache(WithMemoryClock(clk.now))

	require.NoError(t, mc.Set(ctx, "k", []byte("v"), time.Minute))
	clk.t = clk.t.Add(59 * time.Second)
	_, err := mc.Get(ctx, "k")
	require.NoError(t, err)

	clk.t = clk.t.Add(time.Second)
	_, err = mc.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Zero(t, mc.Len())
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryMaxSize(2))

	require.NoError(t, mc.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, mc.Set(ctx, "b", []byte("2"), 0))
	_, err := mc.Get(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, mc.Set(ctx, "c", []byte("3"), 0))

	_, err = mc.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = mc.Get(ctx, "a")
	assert.NoError(t, err)
	assert.Equal(t, 2, mc.Len())
}

func TestLayeredCacheFillsL1FromL2(t *testing.T) {
	ctx := context.Background()
	l2 := NewMemoryCache()
	lc := NewLayeredCache(l2)

	require.NoError(t, l2.Set(ctx, "k", []byte("shared"), 0))
	got, err := lc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "shared", string(got))

	require.NoError(t, l2.Delete(ctx, "k"))
	got, err = lc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "shared", string(got))

	require.NoError(t, lc.Delete(ctx, "k"))
	_, err = lc.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	type payload struct{ A int }

	require.NoError(t, SetJSON(ctx, mc, Key("bars", "AAPL", "1y"), payload{A: 7}, 0))
	var got payload
	require.NoError(t, GetJSON(ctx, mc, "bars:AAPL:1y", &got))
	assert.Equal(t, 7, got.A)
}
