// Package jointbanktest provides helpers for testing code built around the
// joint bank account ledger.
package jointbanktest

import (
	"encoding/binary"
	"sync/atomic"

	jointbank "github.com/imgyf/web3-joint-bank-account"
)

var identityCounter int64

// NewIdentity returns an identity token, unique within the process. Tokens
// are deterministic which keeps test failures reproducible.
func NewIdentity() jointbank.Identity {
	n := atomic.AddInt64(&identityCounter, 1)
	id := make([]byte, 12)
	copy(id, "identity")
	binary.BigEndian.PutUint32(id[8:], uint32(n))
	return id
}

// NewIdentities returns n distinct identity tokens.
func NewIdentities(n int) []jointbank.Identity {
	ids := make([]jointbank.Identity, n)
	for i := range ids {
		ids[i] = NewIdentity()
	}
	return ids
}

// Transfer describes one recorded CoinMover invocation.
type Transfer struct {
	AccountID   []byte
	Destination jointbank.Identity
	Amount      int64
}

// Mover is a CoinMover double recording every transfer effect it is asked
// to perform. Set Err to make it fail.
type Mover struct {
	// Transfers collects all successful MoveCoins calls in order.
	Transfers []Transfer

	// Err is returned by MoveCoins when set. The call is not recorded.
	Err error
}

// MoveCoins implements the jointaccount.CoinMover interface.
func (m *Mover) MoveCoins(accountID []byte, dest jointbank.Identity, amount int64) error {
	if m.Err != nil {
		return m.Err
	}
	m.Transfers = append(m.Transfers, Transfer{
		AccountID:   append([]byte(nil), accountID...),
		Destination: dest.Clone(),
		Amount:      amount,
	})
	return nil
}
