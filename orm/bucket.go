/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
* Each bucket contains only one type of object.
* It has a primary index (which may be composite).
* Easy queries for one object by key.
*/
package orm

import (
	"fmt"
	"regexp"

	jointbank "github.com/imgyf/web3-joint-bank-account"
	"github.com/imgyf/web3-joint-bank-account/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,14}$`).MatchString

// Model is implemented by any entity that can be stored in a Bucket. A
// model knows how to serialize itself and how to verify its own
// consistency before being persisted.
type Model interface {
	jointbank.Persistent
	Validate() error
}

// Bucket is a generic holder that stores data of a single type under a
// prefixed subspace of the DB.
//
// This is a generic building block that should generally be embedded in a
// type-safe wrapper to ensure all data is the same type.
type Bucket struct {
	name   string
	prefix []byte
}

// NewBucket creates a bucket to store data
func NewBucket(name string) Bucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("illegal bucket: %s", name))
	}

	return Bucket{
		name:   name,
		prefix: append([]byte(name), ':'),
	}
}

// Name returns the name of the bucket
func (b Bucket) Name() string {
	return b.name
}

// DBKey is the full key we store in the db, including prefix
// We copy into a new array rather than use append, as we don't
// want consecutive calls to overwrite the same byte array.
func (b Bucket) DBKey(key []byte) []byte {
	l := len(b.prefix)
	out := make([]byte, l+len(key))
	copy(out, b.prefix)
	copy(out[l:], key)
	return out
}

// One loads the entity stored under the key into dest. It returns
// ErrNotFound if the entity does not exist in the database.
func (b Bucket) One(db jointbank.ReadOnlyKVStore, key []byte, dest Model) error {
	raw, err := db.Get(b.DBKey(key))
	if err != nil {
		return errors.Wrap(err, "bucket lookup")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%T not in the %q bucket", dest, b.name)
	}
	if err := dest.Unmarshal(raw); err != nil {
		return errors.Wrapf(errors.ErrType, "cannot deserialize %T: %s", dest, err)
	}
	return nil
}

// Has returns true if an entity is stored under the key.
func (b Bucket) Has(db jointbank.ReadOnlyKVStore, key []byte) (bool, error) {
	return db.Has(b.DBKey(key))
}

// Put validates and saves given model in the database under the key.
func (b Bucket) Put(db jointbank.KVStore, key []byte, m Model) error {
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := m.Marshal()
	if err != nil {
		return errors.Wrapf(errors.ErrType, "cannot serialize %T: %s", m, err)
	}
	if err := db.Set(b.DBKey(key), raw); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

// Delete removes an entity with given primary key from the database. It
// returns ErrNotFound if an entity with given key does not exist.
func (b Bucket) Delete(db jointbank.KVStore, key []byte) error {
	ok, err := b.Has(db, key)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "no entity in the %q bucket", b.name)
	}
	return db.Delete(b.DBKey(key))
}

// Sequence returns a named sequence scoped to this bucket
func (b Bucket) Sequence(name string) Sequence {
	return NewSequence(b.name, name)
}
