package orm

import (
	"bytes"
	"encoding/hex"
	"encoding/json"

	"github.com/imgyf/web3-joint-bank-account/errors"
)

var _ Model = (*IDSet)(nil)

// IDSet is a compact set of references, sorted by byte order. Because all
// generated ids are big endian sequence values, the byte order is also the
// creation order, so an IDSet doubles as an ordered listing.
type IDSet struct {
	refs [][]byte
}

// NewIDSet creates an IDSet with any number of initial references
func NewIDSet(refs ...[]byte) (*IDSet, error) {
	s := new(IDSet)
	for _, r := range refs {
		if err := s.Add(r); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add inserts this reference in the set, sorted by order.
// Returns an error if already there
func (s *IDSet) Add(ref []byte) error {
	i, found := s.findRef(ref)
	if found {
		return errors.Wrap(errors.ErrDuplicate, "ref already in set")
	}
	// append to end
	if i == len(s.refs) {
		s.refs = append(s.refs, ref)
		return nil
	}
	// or insert in the middle
	s.refs = append(s.refs, nil)
	copy(s.refs[i+1:], s.refs[i:])
	s.refs[i] = ref
	return nil
}

// Remove removes this reference from the set.
// Returns an error if not there
func (s *IDSet) Remove(ref []byte) error {
	i, found := s.findRef(ref)
	if !found {
		return errors.Wrap(errors.ErrNotFound, "ref not in set")
	}
	// splice it out
	s.refs = append(s.refs[:i], s.refs[i+1:]...)
	return nil
}

// Contains returns true if the reference is already in the set
func (s *IDSet) Contains(ref []byte) bool {
	_, found := s.findRef(ref)
	return found
}

// Len returns the number of references in the set
func (s *IDSet) Len() int {
	return len(s.refs)
}

// All returns a copy of all references, in byte (= creation) order
func (s *IDSet) All() [][]byte {
	refs := make([][]byte, len(s.refs))
	for i, r := range s.refs {
		cpy := make([]byte, len(r))
		copy(cpy, r)
		refs[i] = cpy
	}
	return refs
}

// returns (index, found) where found is true if the ref was in the set,
// index is where it is (or where it should be)
func (s *IDSet) findRef(ref []byte) (int, bool) {
	for i, r := range s.refs {
		switch bytes.Compare(ref, r) {
		case -1:
			return i, false
		case 0:
			return i, true
		}
	}
	// hit the end, must append
	return len(s.refs), false
}

// Validate returns an error if the set content is out of order. This is a
// consistency check against hand-crafted values, sets built through Add
// are always valid.
func (s *IDSet) Validate() error {
	for i := 1; i < len(s.refs); i++ {
		if bytes.Compare(s.refs[i-1], s.refs[i]) >= 0 {
			return errors.Wrap(errors.ErrState, "refs out of order")
		}
	}
	return nil
}

// Marshal implements the Persistent interface
func (s *IDSet) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// Unmarshal implements the Persistent interface
func (s *IDSet) Unmarshal(raw []byte) error {
	return json.Unmarshal(raw, s)
}

// MarshalJSON encodes the set as a list of hex strings
func (s IDSet) MarshalJSON() ([]byte, error) {
	enc := make([]string, len(s.refs))
	for i, r := range s.refs {
		enc[i] = hex.EncodeToString(r)
	}
	return json.Marshal(enc)
}

// UnmarshalJSON decodes the set from a list of hex strings
func (s *IDSet) UnmarshalJSON(raw []byte) error {
	var enc []string
	if err := json.Unmarshal(raw, &enc); err != nil {
		return err
	}
	refs := make([][]byte, len(enc))
	for i, e := range enc {
		r, err := hex.DecodeString(e)
		if err != nil {
			return errors.Wrapf(errors.ErrInput, "malformed ref: %s", err)
		}
		refs[i] = r
	}
	s.refs = refs
	return nil
}
