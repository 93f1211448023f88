/*
Package jointbank is the root of a joint bank account ledger.

It defines the contracts shared by every layer: the opaque Identity token
that names a party, the KVStore family of storage interfaces and the
Persistent serialization interface. The actual ledger semantics live in
x/jointaccount, the storage implementation in store and the bucket layer
in orm.
*/
package jointbank
