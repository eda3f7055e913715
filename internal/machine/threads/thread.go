package threads

import (
	"fmt"

	"github.com/kolkov/lockmodel/internal/machine/ids"
	"github.com/kolkov/lockmodel/internal/machine/vectorclock"
)

// stateKind discriminates State.
type stateKind uint8

const (
	kindEnabled stateKind = iota
	kindBlocked
	kindTerminated
)

// State is the scheduling state of one thread.
//
// Variants:
//   - Enabled: eligible to be picked by the scheduler
//   - BlockedOnLock(l): waiting to be handed lock l by a release
//   - Terminated: finished; set by the thread-management layer
//
// The lock subsystem only ever moves a thread between Enabled and
// BlockedOnLock. The zero value is Enabled.
type State struct {
	kind stateKind
	lock ids.LockID
}

// Enabled returns the Enabled state.
func Enabled() State {
	return State{kind: kindEnabled}
}

// BlockedOnLock returns the state of a thread waiting for lock l.
func BlockedOnLock(l ids.LockID) State {
	return State{kind: kindBlocked, lock: l}
}

// Terminated returns the state of a finished thread.
func Terminated() State {
	return State{kind: kindTerminated}
}

// IsEnabled reports whether the thread may be scheduled.
func (s State) IsEnabled() bool {
	return s.kind == kindEnabled
}

// IsTerminated reports whether the thread has finished.
func (s State) IsTerminated() bool {
	return s.kind == kindTerminated
}

// BlockedOn returns the lock the thread waits for and true, or false if the
// thread is not blocked.
func (s State) BlockedOn() (ids.LockID, bool) {
	if s.kind != kindBlocked {
		return 0, false
	}
	return s.lock, true
}

// String returns "Enabled", "BlockedOnLock(L0)" or "Terminated".
func (s State) String() string {
	switch s.kind {
	case kindEnabled:
		return "Enabled"
	case kindBlocked:
		return "BlockedOnLock(" + s.lock.String() + ")"
	case kindTerminated:
		return "Terminated"
	default:
		return fmt.Sprintf("State(%d)", s.kind)
	}
}

// Thread is one record of the thread table.
//
// The lock subsystem reads any thread's State and writes exactly that field.
// Everything else belongs to the thread-management layer and to the
// happens-before consumer.
//
// Layout:
//   - ID: index of this record in the table
//   - State: scheduling state
//   - Name: label from the program that spawned the thread
//   - C: vector clock maintained by the happens-before consumer
type Thread struct {
	ID    ids.ThreadID
	State State
	Name  string
	C     *vectorclock.VectorClock
}

// IncrementClock advances this thread's own entry in its vector clock.
//
// Example:
//
//	th := &Thread{ID: 2, C: vectorclock.New()}
//	th.IncrementClock() // C = {2:1}
func (th *Thread) IncrementClock() {
	th.C.Increment(int(th.ID))
}

func (th *Thread) clone() *Thread {
	c := *th
	c.C = th.C.Clone()
	return &c
}
