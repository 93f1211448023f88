package store

import jointbank "github.com/imgyf/web3-joint-bank-account"

// Move references for all storage types into this package
// for shorter names everywhere.

type ReadOnlyKVStore = jointbank.ReadOnlyKVStore
type KVStore = jointbank.KVStore
type SetDeleter = jointbank.SetDeleter
type Batch = jointbank.Batch
type CacheableKVStore = jointbank.CacheableKVStore
type KVCacheWrap = jointbank.KVCacheWrap
