package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBTreeCacheGetSet(t *testing.T) {
	base := MemStore()

	k, v := []byte("french"), []byte("fry")

	// nothing there yet
	got, err := base.Get(k)
	require.NoError(t, err)
	assert.Nil(t, got)
	has, err := base.Has(k)
	require.NoError(t, err)
	assert.False(t, has)

	// set and get it back
	require.NoError(t, base.Set(k, v))
	got, err = base.Get(k)
	require.NoError(t, err)
	assert.Equal(t, v, got)

	// delete removes it again
	require.NoError(t, base.Delete(k))
	got, err = base.Get(k)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBTreeCacheWrapWrite(t *testing.T) {
	base := MemStore()
	k, v := []byte("top"), []byte("hat")

	cache := base.CacheWrap()
	require.NoError(t, cache.Set(k, v))

	// the write is visible in the cache but not below
	got, err := cache.Get(k)
	require.NoError(t, err)
	assert.Equal(t, v, got)
	got, err = base.Get(k)
	require.NoError(t, err)
	assert.Nil(t, got)

	// after Write it lands in the backing store
	require.NoError(t, cache.Write())
	got, err = base.Get(k)
	require.NoError(t, err)
	assert.Equal(t, v, got)
}

func TestBTreeCacheWrapDiscard(t *testing.T) {
	base := MemStore()
	k, v := []byte("won't"), []byte("stick")

	cache := base.CacheWrap()
	require.NoError(t, cache.Set(k, v))
	cache.Discard()

	got, err := base.Get(k)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBTreeCacheWrapShadowsDelete(t *testing.T) {
	base := MemStore()
	k, v := []byte("shadow"), []byte("play")
	require.NoError(t, base.Set(k, v))

	cache := base.CacheWrap()
	require.NoError(t, cache.Delete(k))

	// cache reports deleted while the base still holds the value
	got, err := cache.Get(k)
	require.NoError(t, err)
	assert.Nil(t, got)
	has, err := cache.Has(k)
	require.NoError(t, err)
	assert.False(t, has)
	got, err = base.Get(k)
	require.NoError(t, err)
	assert.Equal(t, v, got)

	require.NoError(t, cache.Write())
	got, err = base.Get(k)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBTreeCacheWrapNested(t *testing.T) {
	base := MemStore()
	k1, v1 := []byte("first"), []byte("one")
	k2, v2 := []byte("second"), []byte("two")

	outer := base.CacheWrap()
	require.NoError(t, outer.Set(k1, v1))

	inner := outer.CacheWrap()
	require.NoError(t, inner.Set(k2, v2))

	// inner sees writes of outer
	got, err := inner.Get(k1)
	require.NoError(t, err)
	assert.Equal(t, v1, got)

	// discard the inner layer, outer keeps its write
	inner.Discard()
	got, err = outer.Get(k1)
	require.NoError(t, err)
	assert.Equal(t, v1, got)
	got, err = outer.Get(k2)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNonAtomicBatch(t *testing.T) {
	base := MemStore()
	batch := NewNonAtomicBatch(base)

	require.NoError(t, batch.Set([]byte("a"), []byte("1")))
	require.NoError(t, batch.Set([]byte("b"), []byte("2")))
	require.NoError(t, batch.Delete([]byte("a")))
	assert.Len(t, batch.ShowOps(), 3)

	// nothing applied until Write
	got, err := base.Get([]byte("b"))
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, batch.Write())
	got, err = base.Get([]byte("b"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), got)
	got, err = base.Get([]byte("a"))
	require.NoError(t, err)
	assert.Nil(t, got)

	// the batch is reset after flushing
	assert.Len(t, batch.ShowOps(), 0)
}
