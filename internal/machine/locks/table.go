package locks

import (
	"fmt"

	"github.com/kolkov/lockmodel/internal/machine/ids"
)

// State is the abstract state of one lock: Unlocked or LockedBy(thread).
//
// The zero value is Unlocked. A State is a small value type; copy it freely.
//
// Layout:
//   - held: discriminator (false = Unlocked, true = LockedBy)
//   - holder: payload, meaningful only when held is true
type State struct {
	held   bool
	holder ids.ThreadID
}

// Unlocked returns the Unlocked state.
func Unlocked() State {
	return State{}
}

// LockedBy returns the state of a lock held by thread t.
func LockedBy(t ids.ThreadID) State {
	return State{held: true, holder: t}
}

// Holder returns the thread holding the lock and true, or false if the lock
// is Unlocked.
func (s State) Holder() (ids.ThreadID, bool) {
	return s.holder, s.held
}

// IsLocked reports whether some thread holds the lock.
func (s State) IsLocked() bool {
	return s.held
}

// HeldBy reports whether the lock is held by exactly thread t.
func (s State) HeldBy(t ids.ThreadID) bool {
	return s.held && s.holder == t
}

// String returns "Unlocked" or "LockedBy(T3)".
func (s State) String() string {
	if !s.held {
		return "Unlocked"
	}
	return "LockedBy(" + s.holder.String() + ")"
}

// Table is the machine's append-only lock table, indexed by ids.LockID.
//
// Entries are never removed: the modeled language has no operation that
// destroys a lock, so every id ever handed out by Create stays in bounds.
//
// Thread Safety: NOT safe for concurrent use. A Table belongs to exactly one
// machine, and a machine executes one atomic step at a time.
//
// Example:
//
//	var t Table
//	l := t.Create()              // L0, Unlocked
//	t.Set(l, LockedBy(0))        // held by T0
//	st, ok := t.Get(l)           // LockedBy(T0), true
//	_, ok = t.Get(ids.LockID(9)) // false: never created
type Table struct {
	states []State
}

// NewTable creates an empty lock table.
func NewTable() *Table {
	return &Table{}
}

// Create appends a new Unlocked lock and returns its id.
//
// Ids are handed out densely starting at 0, so successive calls return
// strictly increasing ids. Create never fails.
func (t *Table) Create() ids.LockID {
	t.states = append(t.states, Unlocked())
	return ids.LockID(len(t.states) - 1)
}

// Get returns the state of lock id and true, or false if id was never
// created.
func (t *Table) Get(id ids.LockID) (State, bool) {
	if !t.Valid(id) {
		return State{}, false
	}
	return t.states[id], true
}

// Valid reports whether id refers to a created lock.
func (t *Table) Valid(id ids.LockID) bool {
	return id >= 0 && int(id) < len(t.states)
}

// Set overwrites the state of lock id.
//
// Callers validate id first; writing an id that was never created means the
// caller skipped that check, and Set panics.
func (t *Table) Set(id ids.LockID, s State) {
	if !t.Valid(id) {
		panic(fmt.Sprintf("locks: Set on unknown lock %s (table has %d entries)", id, len(t.states)))
	}
	t.states[id] = s
}

// Len returns the number of locks ever created.
func (t *Table) Len() int {
	return len(t.states)
}

// Snapshot returns a copy of all lock states in id order.
func (t *Table) Snapshot() []State {
	out := make([]State, len(t.states))
	copy(out, t.states)
	return out
}

// Clone returns an independent copy of the table.
func (t *Table) Clone() *Table {
	return &Table{states: t.Snapshot()}
}
