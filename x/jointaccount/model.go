package jointaccount

import (
	"encoding/hex"
	"encoding/json"

	jointbank "github.com/imgyf/web3-joint-bank-account"
	"github.com/imgyf/web3-joint-bank-account/errors"
	"github.com/imgyf/web3-joint-bank-account/orm"
)

const (
	// maxOwners is the maximum number of parties that can jointly own a
	// single account.
	maxOwners = 4
)

// Status describes the lifecycle state of a withdrawal request.
type Status uint8

const (
	// StatusPending means the request is still collecting votes.
	StatusPending Status = iota + 1
	// StatusExecuted means the request reached its approval threshold,
	// the balance was debited and the transfer was emitted. Terminal.
	StatusExecuted
	// StatusCancelled means an owner denied the request. Terminal.
	StatusCancelled
)

// Validate returns an error if this is not a known status.
func (s Status) Validate() error {
	switch s {
	case StatusPending, StatusExecuted, StatusCancelled:
		return nil
	default:
		return errors.Wrapf(errors.ErrState, "unknown status %d", s)
	}
}

// IsTerminal returns true if no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusExecuted || s == StatusCancelled
}

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusExecuted:
		return "executed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "invalid"
	}
}

var _ orm.Model = (*Account)(nil)

// Account is a single joint account: a fixed owner set and a custody
// balance. The owner set is immutable after creation.
type Account struct {
	Owners  []jointbank.Identity `json:"owners"`
	Balance int64                `json:"balance"`
}

// Validate enforces owner set and balance invariants.
func (a *Account) Validate() error {
	switch n := len(a.Owners); {
	case n == 0:
		return errors.Wrap(errors.ErrModel, "no owners")
	case n > maxOwners:
		return errors.Wrapf(errors.ErrModel, "at most %d owners allowed", maxOwners)
	}
	for i, o := range a.Owners {
		if err := o.Validate(); err != nil {
			return errors.Wrapf(err, "owner %d", i)
		}
		for _, prev := range a.Owners[:i] {
			if o.Equals(prev) {
				return errors.Wrapf(errors.ErrModel, "duplicated owner %s", o)
			}
		}
	}
	if a.Balance < 0 {
		return errors.Wrap(errors.ErrModel, "negative balance")
	}
	return nil
}

// IsOwner returns true if the identity belongs to the owner set.
func (a *Account) IsOwner(id jointbank.Identity) bool {
	for _, o := range a.Owners {
		if o.Equals(id) {
			return true
		}
	}
	return false
}

// ApprovalThreshold returns the number of approvals required to execute a
// withdrawal: a strict majority of the owner count.
func (a *Account) ApprovalThreshold() int {
	return len(a.Owners)/2 + 1
}

// Marshal implements the Persistent interface.
func (a *Account) Marshal() ([]byte, error) {
	return json.Marshal(a)
}

// Unmarshal implements the Persistent interface.
func (a *Account) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, a)
}

var _ orm.Model = (*WithdrawalRequest)(nil)

// WithdrawalRequest is a proposal to debit an account. It collects votes
// from the account owners and becomes immutable once terminal.
type WithdrawalRequest struct {
	// AccountID references the account this request debits.
	AccountID []byte `json:"account_id"`
	// Proposer is the owner that created the request and the
	// destination of the transfer once executed.
	Proposer jointbank.Identity `json:"proposer"`
	// Amount is the requested debit. Must be positive.
	Amount int64 `json:"amount"`
	// Approvals is the set of owners that voted to approve. With the
	// default policy it includes the proposer from creation time.
	Approvals orm.IDSet `json:"approvals"`
	// Denials is the set of owners that voted to deny. Only collected
	// under the majority deny rule, a veto cancels right away.
	Denials orm.IDSet `json:"denials"`
	// Status is the lifecycle state.
	Status Status `json:"status"`
}

// Validate enforces the request invariants.
func (r *WithdrawalRequest) Validate() error {
	if len(r.AccountID) != 8 {
		return errors.Wrapf(errors.ErrModel, "account id must be 8 bytes, got %d", len(r.AccountID))
	}
	if err := r.Proposer.Validate(); err != nil {
		return errors.Wrap(err, "proposer")
	}
	if r.Amount <= 0 {
		return errors.Wrap(errors.ErrModel, "amount must be positive")
	}
	if err := r.Approvals.Validate(); err != nil {
		return errors.Wrap(err, "approvals")
	}
	if err := r.Denials.Validate(); err != nil {
		return errors.Wrap(err, "denials")
	}
	return r.Status.Validate()
}

// Marshal implements the Persistent interface.
func (r *WithdrawalRequest) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// Unmarshal implements the Persistent interface.
func (r *WithdrawalRequest) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, r)
}

// AccountBucket stores all accounts, keyed by an 8 byte sequence value.
type AccountBucket struct {
	orm.Bucket
	idSeq orm.Sequence
}

// NewAccountBucket initializes an AccountBucket with the default name.
func NewAccountBucket() AccountBucket {
	b := orm.NewBucket("account")
	return AccountBucket{
		Bucket: b,
		idSeq:  b.Sequence("id"),
	}
}

// NextID allocates an id for a new account.
func (b AccountBucket) NextID(db jointbank.KVStore) ([]byte, error) {
	return b.idSeq.NextVal(db)
}

// GetAccount returns the account with given id, or ErrNotFound.
func (b AccountBucket) GetAccount(db jointbank.ReadOnlyKVStore, accountID []byte) (*Account, error) {
	var a Account
	if err := b.One(db, accountID, &a); err != nil {
		return nil, errors.Wrapf(err, "account %X", accountID)
	}
	return &a, nil
}

// RequestBucket stores all withdrawal requests. Requests are keyed by
// accountID||requestID where the request id comes from a per account
// sequence, so ids are unique within their account and dense from 1.
type RequestBucket struct {
	orm.Bucket
}

// NewRequestBucket initializes a RequestBucket with the default name.
func NewRequestBucket() RequestBucket {
	return RequestBucket{Bucket: orm.NewBucket("withdrawal")}
}

// NextID allocates a request id scoped to the account.
func (b RequestBucket) NextID(db jointbank.KVStore, accountID []byte) ([]byte, error) {
	seq := b.Sequence(hex.EncodeToString(accountID))
	return seq.NextVal(db)
}

// Key builds the composite storage key of a request.
func (b RequestBucket) Key(accountID, requestID []byte) []byte {
	key := make([]byte, 0, len(accountID)+len(requestID))
	key = append(key, accountID...)
	return append(key, requestID...)
}

// GetRequest returns the request with given id within the account, or
// ErrNotFound.
func (b RequestBucket) GetRequest(db jointbank.ReadOnlyKVStore, accountID, requestID []byte) (*WithdrawalRequest, error) {
	var r WithdrawalRequest
	if err := b.One(db, b.Key(accountID, requestID), &r); err != nil {
		return nil, errors.Wrapf(err, "request %X", requestID)
	}
	return &r, nil
}

// OwnershipBucket is the identity to owned accounts index. It is appended
// on account creation only, owner sets never change afterwards.
type OwnershipBucket struct {
	orm.Bucket
}

// NewOwnershipBucket initializes an OwnershipBucket with the default name.
func NewOwnershipBucket() OwnershipBucket {
	return OwnershipBucket{Bucket: orm.NewBucket("ownership")}
}

// Index registers the account under the owner identity.
func (b OwnershipBucket) Index(db jointbank.KVStore, owner jointbank.Identity, accountID []byte) error {
	var owned orm.IDSet
	switch err := b.One(db, owner, &owned); {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		// first account of this identity
	default:
		return err
	}
	if err := owned.Add(accountID); err != nil {
		return err
	}
	return b.Put(db, owner, &owned)
}

// OwnedBy returns the ids of all accounts the identity owns, in creation
// order. Unknown identities own nothing, this is not an error.
func (b OwnershipBucket) OwnedBy(db jointbank.ReadOnlyKVStore, owner jointbank.Identity) ([][]byte, error) {
	var owned orm.IDSet
	switch err := b.One(db, owner, &owned); {
	case err == nil:
		return owned.All(), nil
	case errors.ErrNotFound.Is(err):
		return nil, nil
	default:
		return nil, err
	}
}

// RequestIndexBucket keeps the per account listing of withdrawal request
// ids, in creation order, for audit visibility.
type RequestIndexBucket struct {
	orm.Bucket
}

// NewRequestIndexBucket initializes a RequestIndexBucket with the default
// name.
func NewRequestIndexBucket() RequestIndexBucket {
	return RequestIndexBucket{Bucket: orm.NewBucket("wdindex")}
}

// Index registers the request under the account.
func (b RequestIndexBucket) Index(db jointbank.KVStore, accountID, requestID []byte) error {
	var reqs orm.IDSet
	switch err := b.One(db, accountID, &reqs); {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		// first request on this account
	default:
		return err
	}
	if err := reqs.Add(requestID); err != nil {
		return err
	}
	return b.Put(db, accountID, &reqs)
}

// ByAccount returns the ids of all requests ever created on the account,
// any status, in creation order.
func (b RequestIndexBucket) ByAccount(db jointbank.ReadOnlyKVStore, accountID []byte) ([][]byte, error) {
	var reqs orm.IDSet
	switch err := b.One(db, accountID, &reqs); {
	case err == nil:
		return reqs.All(), nil
	case errors.ErrNotFound.Is(err):
		return nil, nil
	default:
		return nil, err
	}
}
