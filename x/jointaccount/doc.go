/*
Package jointaccount implements a joint bank account ledger.

An account is owned by one to four distinct parties. Any owner can deposit
funds. Withdrawing requires collective authorization: an owner proposes a
withdrawal request and the request is executed once a strict majority of
the owners (counting the proposer) approved it. A single owner can veto a
request by denying it.

All state lives in a key-value store and every operation is applied as an
all-or-nothing transaction. The actual movement of value out of custody is
delegated to a CoinMover implementation, which is guaranteed to be invoked
exactly once per executed request.
*/
package jointaccount
