package jointbank

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/imgyf/web3-joint-bank-account/errors"
)

var (
	// MinIdentityLength and MaxIdentityLength bound the size of an
	// identity token. The resolver that produces tokens decides their
	// exact shape, this module only refuses degenerate values.
	MinIdentityLength = 1
	MaxIdentityLength = 64
)

// Identity is an opaque, unforgeable token naming a single party. It is
// produced by the external identity resolver and the core never inspects
// its content beyond byte equality.
type Identity []byte

// Clone returns a copy of this identity that shares no memory with the
// original.
func (i Identity) Clone() Identity {
	if i == nil {
		return nil
	}
	cpy := make(Identity, len(i))
	copy(cpy, i)
	return cpy
}

// Equals checks if two identities name the same party.
func (i Identity) Equals(other Identity) bool {
	return bytes.Equal(i, other)
}

// String returns a human readable hex encoding of the token.
func (i Identity) String() string {
	if len(i) == 0 {
		return "(empty)"
	}
	return fmt.Sprintf("%X", []byte(i))
}

// Validate returns an error if the identity cannot name a party.
func (i Identity) Validate() error {
	switch n := len(i); {
	case n < MinIdentityLength:
		return errors.Wrap(errors.ErrEmpty, "identity")
	case n > MaxIdentityLength:
		return errors.Wrapf(errors.ErrInput, "identity must not be longer than %d bytes", MaxIdentityLength)
	}
	return nil
}

// MarshalJSON encodes the identity as a hex string.
func (i Identity) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(i))
}

// UnmarshalJSON decodes an identity from its hex string form.
func (i *Identity) UnmarshalJSON(raw []byte) error {
	var enc string
	if err := json.Unmarshal(raw, &enc); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if len(enc) == 0 {
		*i = nil
		return nil
	}
	data, err := hex.DecodeString(enc)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "malformed identity: %s", err)
	}
	*i = data
	return nil
}
