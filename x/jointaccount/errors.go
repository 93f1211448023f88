package jointaccount

import "github.com/imgyf/web3-joint-bank-account/errors"

// This extension reserves the 1000-1009 error code space.
var (
	// ErrInvalidOwnerSet is returned when an account creation names a
	// malformed owner list.
	ErrInvalidOwnerSet = errors.Register(1000, "invalid owner set")

	// ErrNotOwner is returned when the caller is not an owner of the
	// target account.
	ErrNotOwner = errors.Register(1001, "not an account owner")

	// ErrNotPending is returned when a vote is cast on a withdrawal
	// request that already reached a terminal state.
	ErrNotPending = errors.Register(1002, "request is not pending")
)
