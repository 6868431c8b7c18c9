package sqlitecache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sundaymedia/catholiccuts/internal/domain/moments"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCacheRoundTrip(t *testing.T) {
	t.Parallel()

	c := openTestCache(t)
	ctx := context.Background()

	recs := []moments.Record{{
		Quote:        "The Mass is heaven on earth.",
		StartSec:     12.5,
		EndSec:       20,
		ViralTrigger: "insight",
		Flags:        []string{"liturgy"},
	}}
	require.NoError(t, c.Put(ctx, "key-1", recs))

	got, hit, err := c.Get(ctx, "key-1")
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, recs, got)
}

func TestCacheMiss(t *testing.T) {
	t.Parallel()

	c := openTestCache(t)
	got, hit, err := c.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.False(t, hit)
	require.Nil(t, got)
}

func TestCachePutIdempotent(t *testing.T) {
	t.Parallel()

	c := openTestCache(t)
	ctx := context.Background()

	first := []moments.Record{{Quote: "first", StartSec: 1, EndSec: 2}}
	second := []moments.Record{{Quote: "second", StartSec: 3, EndSec: 4}}
	require.NoError(t, c.Put(ctx, "k", first))
	require.NoError(t, c.Put(ctx, "k", second))

	got, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, second, got)
}

func TestCacheEmptyRecords(t *testing.T) {
	t.Parallel()

	// A chunk with no moments is still a valid, cacheable result.
	c := openTestCache(t)
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, "empty", []moments.Record{}))

	got, hit, err := c.Get(ctx, "empty")
	require.NoError(t, err)
	require.True(t, hit)
	require.Empty(t, got)
}

func TestCacheClear(t *testing.T) {
	t.Parallel()

	c := openTestCache(t)
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, "k", []moments.Record{{Quote: "q", StartSec: 1, EndSec: 2}}))
	require.NoError(t, c.Clear(ctx))

	_, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, hit)
}

func TestCacheReopenPersists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()

	c, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, c.Put(ctx, "k", []moments.Record{{Quote: "q", StartSec: 5, EndSec: 9}}))
	require.NoError(t, c.Close())

	c2, err := Open(dir)
	require.NoError(t, err)
	defer c2.Close()

	got, hit, err := c2.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, "q", got[0].Quote)
}
