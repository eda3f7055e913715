// Package locks implements the machine's lock table.
//
// Each lock is identified by a dense ids.LockID and is in one of two states:
//
//	Unlocked
//	LockedBy(t)   thread t holds the lock
//
// Lifecycle:
//
//	Create()                       -> Unlocked
//	Unlocked    --acquire(t)-->       LockedBy(t)
//	LockedBy(t) --release(t)-->       Unlocked          (no waiters)
//	LockedBy(t) --release(t)-->       LockedBy(w)       (hand-off to waiter w)
//
// The table only stores states. The transition rules (who may acquire or
// release, how waiters are chosen) live in package machine, which is the only
// writer of a Table during execution.
//
// The table is append-only: there is no destroy operation in the modeled
// language, so lock ids are never reused or invalidated.
package locks
