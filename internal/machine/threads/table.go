package threads

import (
	"fmt"

	"github.com/kolkov/lockmodel/internal/machine/ids"
	"github.com/kolkov/lockmodel/internal/machine/vectorclock"
)

// Table is the machine's thread table, indexed by ids.ThreadID.
//
// Records are created by the thread-management layer through Spawn. Ids are
// dense and never reused.
//
// Thread Safety: NOT safe for concurrent use.
type Table struct {
	threads []*Thread
}

// NewTable creates an empty thread table.
func NewTable() *Table {
	return &Table{}
}

// Spawn appends a new Enabled thread and returns its id.
//
// Each new thread starts at logical time 1 on its own clock entry, so that
// threads spawned without synchronization are concurrent with each other.
func (t *Table) Spawn(name string) ids.ThreadID {
	id := ids.ThreadID(len(t.threads))
	th := &Thread{ID: id, State: Enabled(), Name: name, C: vectorclock.New()}
	th.IncrementClock()
	t.threads = append(t.threads, th)
	return id
}

// Get returns the record of thread id and true, or false for an unknown id.
func (t *Table) Get(id ids.ThreadID) (*Thread, bool) {
	if id < 0 || int(id) >= len(t.threads) {
		return nil, false
	}
	return t.threads[id], true
}

// MustGet returns the record of thread id and panics for an unknown id.
func (t *Table) MustGet(id ids.ThreadID) *Thread {
	th, ok := t.Get(id)
	if !ok {
		panic(fmt.Sprintf("threads: unknown thread %s (table has %d entries)", id, len(t.threads)))
	}
	return th
}

// State returns the scheduling state of thread id.
func (t *Table) State(id ids.ThreadID) State {
	return t.MustGet(id).State
}

// SetState overwrites the scheduling state of thread id.
func (t *Table) SetState(id ids.ThreadID, s State) {
	t.MustGet(id).State = s
}

// Len returns the number of threads ever spawned.
func (t *Table) Len() int {
	return len(t.threads)
}

// All returns the records in id order. The slice is shared; do not modify it.
func (t *Table) All() []*Thread {
	return t.threads
}

// BlockedOn returns all threads currently BlockedOnLock(l), in ascending id
// order. This is the complete wake candidate set for a release of l.
func (t *Table) BlockedOn(l ids.LockID) []ids.ThreadID {
	var out []ids.ThreadID
	for _, th := range t.threads {
		if bl, ok := th.State.BlockedOn(); ok && bl == l {
			out = append(out, th.ID)
		}
	}
	return out
}

// Enabled returns all Enabled threads in ascending id order.
func (t *Table) Enabled() []ids.ThreadID {
	var out []ids.ThreadID
	for _, th := range t.threads {
		if th.State.IsEnabled() {
			out = append(out, th.ID)
		}
	}
	return out
}

// Snapshot returns the scheduling state of every thread in id order.
func (t *Table) Snapshot() []State {
	out := make([]State, len(t.threads))
	for i, th := range t.threads {
		out[i] = th.State
	}
	return out
}

// Clone returns a deep copy of the table, clocks included.
func (t *Table) Clone() *Table {
	c := &Table{threads: make([]*Thread, len(t.threads))}
	for i, th := range t.threads {
		c.threads[i] = th.clone()
	}
	return c
}
