package jointaccount

import "github.com/imgyf/web3-joint-bank-account/errors"

// DenyRule selects how denial votes cancel a pending withdrawal request.
type DenyRule uint8

const (
	// DenyVeto cancels a request on the first denial from any owner.
	DenyVeto DenyRule = iota + 1
	// DenyMajority cancels a request once a strict majority of the
	// owners denied it, using the same threshold as approval.
	DenyMajority
)

// Validate returns an error if this is not a known rule.
func (r DenyRule) Validate() error {
	switch r {
	case DenyVeto, DenyMajority:
		return nil
	default:
		return errors.Wrapf(errors.ErrState, "unknown deny rule %d", r)
	}
}

// Config carries the authorization policy knobs of the ledger. Use
// DefaultConfig as base, the zero value is not a valid configuration.
type Config struct {
	// AutoApproveProposer counts the proposer's approval from request
	// creation time. This must be enabled for a sole owner to be able
	// to withdraw at all.
	AutoApproveProposer bool `json:"auto_approve_proposer"`

	// DenyRule decides between veto and majority based cancellation.
	DenyRule DenyRule `json:"deny_rule"`

	// StrictFunding rejects withdrawal proposals exceeding the current
	// balance. When disabled the balance is verified at execution time
	// only, so requests may be proposed in anticipation of a deposit.
	StrictFunding bool `json:"strict_funding"`
}

// DefaultConfig returns the standard joint custody policy: the proposer
// approves implicitly, any owner can veto, and proposals are not checked
// against the balance until execution.
func DefaultConfig() Config {
	return Config{
		AutoApproveProposer: true,
		DenyRule:            DenyVeto,
		StrictFunding:       false,
	}
}

// Validate returns an error if the configuration is unusable.
func (c Config) Validate() error {
	if err := c.DenyRule.Validate(); err != nil {
		return errors.Wrap(err, "deny rule")
	}
	return nil
}
