package jointaccount

import (
	"math"
	"sync"

	"go.uber.org/zap"

	jointbank "github.com/imgyf/web3-joint-bank-account"
	"github.com/imgyf/web3-joint-bank-account/errors"
	"github.com/imgyf/web3-joint-bank-account/orm"
)

// CoinMover is the custody collaborator. It receives the transfer effect
// of an executed withdrawal: moving the amount out of the account custody
// to the destination party. The controller guarantees MoveCoins is invoked
// exactly once per executed request, within the same transaction as the
// balance debit.
type CoinMover interface {
	MoveCoins(accountID []byte, dest jointbank.Identity, amount int64) error
}

// Controller implements all boundary operations of the joint account
// ledger. Every operation names its caller explicitly, the identity is
// resolved by the calling environment and treated as an opaque token.
//
// Operations are serialized: each one runs as an all-or-nothing
// transaction against the store and either commits completely or leaves
// the state untouched.
type Controller struct {
	mu     sync.Mutex
	cfg    Config
	mover  CoinMover
	logger *zap.Logger

	accounts   AccountBucket
	requests   RequestBucket
	ownership  OwnershipBucket
	requestIdx RequestIndexBucket
}

// NewController returns a controller enforcing given policy. A nil logger
// disables logging.
func NewController(cfg Config, mover CoinMover, logger *zap.Logger) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config")
	}
	if mover == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "coin mover")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		cfg:        cfg,
		mover:      mover,
		logger:     logger,
		accounts:   NewAccountBucket(),
		requests:   NewRequestBucket(),
		ownership:  NewOwnershipBucket(),
		requestIdx: NewRequestIndexBucket(),
	}, nil
}

// CreateAccount allocates a new account owned by the caller together with
// given co-owners. The co-owners must not name the caller, must contain
// no duplicates and the total owner count must not exceed four. The new
// account starts with a zero balance. Returns the id of the new account.
func (c *Controller) CreateAccount(db jointbank.CacheableKVStore, caller jointbank.Identity, coOwners []jointbank.Identity) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := caller.Validate(); err != nil {
		return nil, errors.Wrap(ErrInvalidOwnerSet, "invalid caller identity")
	}
	owners := make([]jointbank.Identity, 0, len(coOwners)+1)
	owners = append(owners, caller.Clone())
	for i, co := range coOwners {
		if err := co.Validate(); err != nil {
			return nil, errors.Wrapf(ErrInvalidOwnerSet, "co-owner %d is invalid", i)
		}
		if co.Equals(caller) {
			return nil, errors.Wrap(ErrInvalidOwnerSet, "caller must not be named as a co-owner")
		}
		for _, prev := range coOwners[:i] {
			if co.Equals(prev) {
				return nil, errors.Wrapf(ErrInvalidOwnerSet, "duplicated co-owner %s", co)
			}
		}
		owners = append(owners, co.Clone())
	}
	if len(owners) > maxOwners {
		return nil, errors.Wrapf(ErrInvalidOwnerSet, "at most %d owners allowed, got %d", maxOwners, len(owners))
	}

	var id []byte
	err := c.transact(db, func(tx jointbank.KVStore) error {
		var err error
		if id, err = c.accounts.NextID(tx); err != nil {
			return errors.Wrap(err, "cannot acquire id")
		}
		if err := c.accounts.Put(tx, id, &Account{Owners: owners}); err != nil {
			return errors.Wrap(err, "cannot store account")
		}
		for _, o := range owners {
			if err := c.ownership.Index(tx, o, id); err != nil {
				return errors.Wrapf(err, "cannot index owner %s", o)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("account created",
		zap.Int64("account", orm.DecodeSequence(id)),
		zap.Int("owners", len(owners)))
	return id, nil
}

// OwnedAccounts returns the ids of all accounts the caller owns, in
// creation order. Identities owning nothing get an empty result, never an
// error.
func (c *Controller) OwnedAccounts(db jointbank.ReadOnlyKVStore, caller jointbank.Identity) ([][]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ownership.OwnedBy(db, caller)
}

// Deposit credits the account balance. Only owners may deposit and the
// amount must be positive. The credited value is taken into custody by
// the external transfer layer, this ledger only records it.
func (c *Controller) Deposit(db jointbank.CacheableKVStore, caller jointbank.Identity, accountID []byte, amount int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.transact(db, func(tx jointbank.KVStore) error {
		acct, err := c.requireOwner(tx, accountID, caller)
		if err != nil {
			return err
		}
		if amount <= 0 {
			return errors.Wrapf(errors.ErrAmount, "deposit must be positive, got %d", amount)
		}
		if acct.Balance > math.MaxInt64-amount {
			return errors.Wrap(errors.ErrOverflow, "balance")
		}
		acct.Balance += amount
		return c.accounts.Put(tx, accountID, acct)
	})
	if err != nil {
		return err
	}

	c.logger.Info("deposit",
		zap.Int64("account", orm.DecodeSequence(accountID)),
		zap.Int64("amount", amount))
	return nil
}

// Balance returns the current account balance. Only owners may query it.
func (c *Controller) Balance(db jointbank.ReadOnlyKVStore, caller jointbank.Identity, accountID []byte) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	acct, err := c.requireOwner(db, accountID, caller)
	if err != nil {
		return 0, err
	}
	return acct.Balance, nil
}

// RequestWithdrawal creates a pending withdrawal request on the account.
// Only owners may propose and the amount must be positive. With the
// default policy the proposer's approval is recorded right away and the
// approval threshold is evaluated immediately, so a request on a single
// owner account executes within this call. Returns the id of the new
// request.
func (c *Controller) RequestWithdrawal(db jointbank.CacheableKVStore, caller jointbank.Identity, accountID []byte, amount int64) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		reqID []byte
		req   *WithdrawalRequest
	)
	err := c.transact(db, func(tx jointbank.KVStore) error {
		acct, err := c.requireOwner(tx, accountID, caller)
		if err != nil {
			return err
		}
		if amount <= 0 {
			return errors.Wrapf(errors.ErrAmount, "withdrawal must be positive, got %d", amount)
		}
		if c.cfg.StrictFunding && amount > acct.Balance {
			return errors.Wrapf(errors.ErrInsufficientAmount, "requested %d, balance %d", amount, acct.Balance)
		}

		if reqID, err = c.requests.NextID(tx, accountID); err != nil {
			return errors.Wrap(err, "cannot acquire id")
		}
		req = &WithdrawalRequest{
			AccountID: accountID,
			Proposer:  caller.Clone(),
			Amount:    amount,
			Status:    StatusPending,
		}
		if c.cfg.AutoApproveProposer {
			if err := req.Approvals.Add(caller.Clone()); err != nil {
				return err
			}
		}
		if err := c.requests.Put(tx, c.requests.Key(accountID, reqID), req); err != nil {
			return errors.Wrap(err, "cannot store request")
		}
		if err := c.requestIdx.Index(tx, accountID, reqID); err != nil {
			return errors.Wrap(err, "cannot index request")
		}

		if c.cfg.AutoApproveProposer {
			// A sole owner meets the threshold right away. When the
			// balance does not cover the amount yet the request simply
			// stays pending, under the relaxed funding policy proposing
			// above the balance is allowed.
			err := c.maybeExecute(tx, accountID, acct, reqID, req)
			if err != nil && !errors.ErrInsufficientAmount.Is(err) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("withdrawal requested",
		zap.Int64("account", orm.DecodeSequence(accountID)),
		zap.Int64("request", orm.DecodeSequence(reqID)),
		zap.Int64("amount", amount),
		zap.Stringer("status", req.Status))
	return reqID, nil
}

// Requests returns the ids of all withdrawal requests ever created on the
// account, any status, in creation order. Only owners may query them.
func (c *Controller) Requests(db jointbank.ReadOnlyKVStore, caller jointbank.Identity, accountID []byte) ([][]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.requireOwner(db, accountID, caller); err != nil {
		return nil, err
	}
	return c.requestIdx.ByAccount(db, accountID)
}

// Approve records the caller's approval on a pending request. Approving
// twice has no additional effect and is not an error. Once the approval
// count reaches a strict majority of the owners, the account is debited,
// the transfer effect is emitted to the proposer and the request becomes
// executed, all within this call's transaction. If at that point the
// balance does not cover the amount, the call fails with an insufficient
// amount error and no state changes, a later deposit followed by another
// approval retries the execution.
func (c *Controller) Approve(db jointbank.CacheableKVStore, caller jointbank.Identity, accountID, requestID []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var req *WithdrawalRequest
	err := c.transact(db, func(tx jointbank.KVStore) error {
		acct, err := c.requireOwner(tx, accountID, caller)
		if err != nil {
			return err
		}
		if req, err = c.requests.GetRequest(tx, accountID, requestID); err != nil {
			return err
		}
		if req.Status.IsTerminal() {
			return errors.Wrapf(ErrNotPending, "request is %s", req.Status)
		}
		if !req.Approvals.Contains(caller) {
			if err := req.Approvals.Add(caller.Clone()); err != nil {
				return err
			}
			if err := c.requests.Put(tx, c.requests.Key(accountID, requestID), req); err != nil {
				return errors.Wrap(err, "cannot store request")
			}
		}
		return c.maybeExecute(tx, accountID, acct, requestID, req)
	})
	if err != nil {
		return err
	}

	c.logger.Info("withdrawal approved",
		zap.Int64("account", orm.DecodeSequence(accountID)),
		zap.Int64("request", orm.DecodeSequence(requestID)),
		zap.Int("approvals", req.Approvals.Len()),
		zap.Stringer("status", req.Status))
	return nil
}

// Deny records the caller's denial on a pending request. With the default
// veto rule a single denial cancels the request immediately. Under the
// majority rule denial votes are counted like approvals and the request
// is cancelled once a strict majority denied.
func (c *Controller) Deny(db jointbank.CacheableKVStore, caller jointbank.Identity, accountID, requestID []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var req *WithdrawalRequest
	err := c.transact(db, func(tx jointbank.KVStore) error {
		acct, err := c.requireOwner(tx, accountID, caller)
		if err != nil {
			return err
		}
		if req, err = c.requests.GetRequest(tx, accountID, requestID); err != nil {
			return err
		}
		if req.Status.IsTerminal() {
			return errors.Wrapf(ErrNotPending, "request is %s", req.Status)
		}

		switch c.cfg.DenyRule {
		case DenyVeto:
			req.Status = StatusCancelled
		case DenyMajority:
			if !req.Denials.Contains(caller) {
				if err := req.Denials.Add(caller.Clone()); err != nil {
					return err
				}
			}
			if req.Denials.Len() >= acct.ApprovalThreshold() {
				req.Status = StatusCancelled
			}
		default:
			return errors.Wrapf(errors.ErrHuman, "unknown deny rule %d", c.cfg.DenyRule)
		}
		return c.requests.Put(tx, c.requests.Key(accountID, requestID), req)
	})
	if err != nil {
		return err
	}

	c.logger.Info("withdrawal denied",
		zap.Int64("account", orm.DecodeSequence(accountID)),
		zap.Int64("request", orm.DecodeSequence(requestID)),
		zap.Stringer("status", req.Status))
	return nil
}

// requireOwner loads the account and verifies the caller is one of its
// owners. It is the guard every account scoped operation runs first.
func (c *Controller) requireOwner(db jointbank.ReadOnlyKVStore, accountID []byte, caller jointbank.Identity) (*Account, error) {
	acct, err := c.accounts.GetAccount(db, accountID)
	if err != nil {
		return nil, err
	}
	if !acct.IsOwner(caller) {
		return nil, errors.Wrapf(ErrNotOwner, "%s", caller)
	}
	return acct, nil
}

// maybeExecute debits the account and emits the transfer effect if the
// request collected enough approvals. Called with a pending request only.
// Failing the balance check returns an insufficient amount error before
// any mutation, so the surrounding transaction can decide whether that
// aborts the operation (approval) or not (proposal).
func (c *Controller) maybeExecute(tx jointbank.KVStore, accountID []byte, acct *Account, requestID []byte, req *WithdrawalRequest) error {
	if req.Approvals.Len() < acct.ApprovalThreshold() {
		return nil
	}
	if req.Amount > acct.Balance {
		return errors.Wrapf(errors.ErrInsufficientAmount, "requested %d, balance %d", req.Amount, acct.Balance)
	}

	acct.Balance -= req.Amount
	if err := c.accounts.Put(tx, accountID, acct); err != nil {
		return errors.Wrap(err, "cannot store account")
	}
	req.Status = StatusExecuted
	if err := c.requests.Put(tx, c.requests.Key(accountID, requestID), req); err != nil {
		return errors.Wrap(err, "cannot store request")
	}
	// The transfer effect commits or rolls back together with the debit,
	// and a request is executable only once, so the effect cannot be
	// emitted twice.
	if err := c.mover.MoveCoins(accountID, req.Proposer, req.Amount); err != nil {
		return errors.Wrap(err, "transfer effect")
	}
	return nil
}

// transact runs fn against a cache wrapped view of the store. The writes
// are flushed down only when fn succeeds, any error discards them all.
func (c *Controller) transact(db jointbank.CacheableKVStore, fn func(tx jointbank.KVStore) error) error {
	tx := db.CacheWrap()
	if err := fn(tx); err != nil {
		tx.Discard()
		return err
	}
	return tx.Write()
}
