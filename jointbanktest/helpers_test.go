package jointbanktest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imgyf/web3-joint-bank-account/errors"
)

func TestNewIdentityIsUniqueAndValid(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewIdentity()
		require.NoError(t, id.Validate())
		if seen[id.String()] {
			t.Fatalf("identity %s generated twice", id)
		}
		seen[id.String()] = true
	}
}

func TestNewIdentities(t *testing.T) {
	ids := NewIdentities(3)
	require.Len(t, ids, 3)
	assert.False(t, ids[0].Equals(ids[1]))
	assert.False(t, ids[1].Equals(ids[2]))
}

func TestMoverRecords(t *testing.T) {
	m := &Mover{}
	dest := NewIdentity()

	require.NoError(t, m.MoveCoins([]byte{1}, dest, 42))
	require.Len(t, m.Transfers, 1)
	assert.Equal(t, []byte{1}, m.Transfers[0].AccountID)
	assert.True(t, dest.Equals(m.Transfers[0].Destination))
	assert.Equal(t, int64(42), m.Transfers[0].Amount)
}

func TestMoverFails(t *testing.T) {
	m := &Mover{Err: errors.ErrState.New("offline")}
	err := m.MoveCoins([]byte{1}, NewIdentity(), 42)
	if !errors.ErrState.Is(err) {
		t.Fatalf("want the configured error, got %+v", err)
	}
	assert.Empty(t, m.Transfers)
}
