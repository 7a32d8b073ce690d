// Package taskqueue provides the persisted, lockable work queue that decouples
// request-time work from deferred execution.
//
// Items carry a type tag, an opaque JSON payload and a lock flag. Fetch
// returns matching items and flips their lock flags as one unit, so two
// consumers draining the same type never receive the same item. The lock is
// cooperative: a consumer that fails must unlock its items so a later drain
// can retry them, and a caller fetching with respectLocks disabled bypasses
// the flag entirely.
//
// There is no retry counter and no dead-letter queue; failed items are
// retried indefinitely.
package taskqueue
