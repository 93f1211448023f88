package orm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imgyf/web3-joint-bank-account/store"
)

func TestSequenceIncrement(t *testing.T) {
	db := store.MemStore()
	seq := NewSequence("account", "id")

	for i := int64(1); i <= 10; i++ {
		val, err := seq.NextInt(db)
		require.NoError(t, err)
		assert.Equal(t, i, val)
	}
}

func TestSequenceValOrdering(t *testing.T) {
	db := store.MemStore()
	seq := NewSequence("withdrawal", "id")

	prev, err := seq.NextVal(db)
	require.NoError(t, err)
	require.Len(t, prev, 8)

	for i := 0; i < 20; i++ {
		next, err := seq.NextVal(db)
		require.NoError(t, err)
		if bytes.Compare(prev, next) >= 0 {
			t.Fatalf("sequence values not strictly increasing: %X then %X", prev, next)
		}
		prev = next
	}
}

func TestSequenceLatest(t *testing.T) {
	db := store.MemStore()
	seq := NewSequence("account", "id")

	// a fresh sequence reports zero without allocating
	val, _, err := seq.Latest(db)
	require.NoError(t, err)
	assert.Equal(t, int64(0), val)

	_, err = seq.NextInt(db)
	require.NoError(t, err)
	_, err = seq.NextInt(db)
	require.NoError(t, err)

	val, raw, err := seq.Latest(db)
	require.NoError(t, err)
	assert.Equal(t, int64(2), val)
	assert.Equal(t, int64(2), DecodeSequence(raw))

	// Latest must not have moved the counter
	val, err = seq.NextInt(db)
	require.NoError(t, err)
	assert.Equal(t, int64(3), val)
}

func TestSequencesAreIndependent(t *testing.T) {
	db := store.MemStore()
	a := NewSequence("account", "id")
	b := NewSequence("withdrawal", "id")

	for i := 0; i < 3; i++ {
		_, err := a.NextInt(db)
		require.NoError(t, err)
	}
	val, err := b.NextInt(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), val)
}

func TestEncodeDecodeSequence(t *testing.T) {
	assert.Equal(t, int64(0), DecodeSequence(nil))
	for _, val := range []int64{1, 255, 256, 1 << 40} {
		assert.Equal(t, val, DecodeSequence(EncodeSequence(val)))
	}
}
