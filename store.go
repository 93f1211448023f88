package jointbank

// This file defines all public interfaces for interacting with stores.

// ReadOnlyKVStore is a simple interface to query data.
type ReadOnlyKVStore interface {
	// Get returns nil iff key doesn't exist. Panics on nil key.
	Get(key []byte) ([]byte, error)

	// Has checks if a key exists. Panics on nil key.
	Has(key []byte) (bool, error)
}

// KVStore is a simple interface to get/set data.
//
// For simplicity, we require all backing stores to implement this
// interface. They *may* implement other methods as well, but at least
// these are required.
type KVStore interface {
	ReadOnlyKVStore

	// Set sets the key. Panics on nil key.
	Set(key, value []byte) error

	// Delete deletes the key. Panics on nil key.
	Delete(key []byte) error
}

// SetDeleter is a minimal interface for writing, unifying KVStore and
// Batch.
type SetDeleter interface {
	Set(key, value []byte) error
	Delete(key []byte) error
}

// Batch can write multiple times to the underlying store and flush
// everything at the end.
type Batch interface {
	SetDeleter
	Write() error
}

// CacheableKVStore is a KVStore that supports CacheWrapping.
//
// CacheWrap groups temporary writes which may later be committed to the
// underlying store as one unit, or discarded together. Like postgresql
// SAVEPOINT / ROLLBACK TO SAVEPOINT. Every state transition of this module
// runs inside one cache wrap so a failed operation leaves no trace.
type CacheableKVStore interface {
	KVStore
	CacheWrap() KVCacheWrap
}

// KVCacheWrap allows us to maintain a scratch-pad of uncommitted data that
// we can view with all queries.
//
// At the end, call Write to flush the cached data down, or Discard to drop
// it.
type KVCacheWrap interface {
	// CacheableKVStore allows us to use this Cache recursively.
	CacheableKVStore

	// Write syncs with the underlying store.
	Write() error

	// Discard invalidates this CacheWrap and releases all data.
	Discard()
}

// Persistent objects can be serialized to and deserialized from raw bytes.
// It is implemented by every entity kept in a storage bucket.
type Persistent interface {
	Marshal() ([]byte, error)
	Unmarshal(raw []byte) error
}
