// Package machine implements the lock state machine of the abstract machine.
//
// A Machine is the single context object every operation runs against. It
// holds the lock table, the thread table, the active thread and the set of
// threads synchronized during the current step.
//
// Operations (executed by the active thread):
//
//	Create()     -> new Unlocked lock, ids 0, 1, 2, ...
//	Acquire(l)   Unlocked    -> LockedBy(active)
//	             LockedBy(_) -> active becomes BlockedOnLock(l)
//	Release(l)   LockedBy(active), no waiters -> Unlocked
//	             LockedBy(active), waiters W  -> LockedBy(w), w ∈ W picked,
//	                                             w Enabled and synchronized
//
// Undefined behavior (unknown lock, releasing a lock the active thread does
// not hold) is returned as *UBError wrapping ErrUndefinedBehavior. It is
// terminal for the machine step and is never retried.
//
// Scheduling contract:
//
// The lock subsystem does not schedule. It flips threads between Enabled and
// BlockedOnLock, and the external scheduler must never make a blocked thread
// active. There is no resume operation: a blocked thread resumes as a side
// effect of another thread's Release, already holding the lock.
//
// Happens-before:
//
// Release inserts the woken thread into the synchronized set. The scheduler
// passes the set to the happens-before consumer and clears it at the step
// boundary. This is the only synchronization edge the subsystem produces.
//
// Non-determinism:
//
// The wake choice is daemonic and delegated to a nondet.Picker that sees the
// full waiter set. See package nondet.
package machine
