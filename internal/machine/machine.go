package machine

import (
	"log/slog"
	"slices"

	"github.com/kolkov/lockmodel/internal/machine/ids"
	"github.com/kolkov/lockmodel/internal/machine/locks"
	"github.com/kolkov/lockmodel/internal/machine/nondet"
	"github.com/kolkov/lockmodel/internal/machine/threads"
)

// Operation names used in UBError.Op and in logs.
const (
	OpCreate  = "lock.create"
	OpAcquire = "lock.acquire"
	OpRelease = "lock.release"
)

// Options configures a Machine.
type Options struct {
	// Picker resolves wake choices on release. Default: nondet.First.
	Picker nondet.Picker

	// Logger receives Debug-level transition logs. Default: discard.
	Logger *slog.Logger
}

// Machine is the enclosing context of the lock subsystem.
//
// It owns the lock table, shares the thread table with the scheduler, and
// records which threads received a happens-before edge during the current
// step. There are no package-level variables: every operation works on the
// Machine it is called on.
//
// Layout:
//   - locks: append-only lock table
//   - threads: thread table; this package writes only Thread.State
//   - active: the thread executing the current step (set externally)
//   - synchronized: threads woken by a release during the current step
//   - picker: resolves the daemonic wake choice
//
// Thread Safety: NOT safe for concurrent use. The model executes one atomic
// step at a time; explorers give each execution its own Machine.
type Machine struct {
	locks        *locks.Table
	threads      *threads.Table
	active       ids.ThreadID
	synchronized map[ids.ThreadID]struct{}
	picker       nondet.Picker
	log          *slog.Logger
}

// New creates a Machine with default options.
func New() *Machine {
	return NewWithOptions(Options{})
}

// NewWithOptions creates a Machine with empty lock and thread tables.
//
// Example:
//
//	m := NewWithOptions(Options{Picker: nondet.NewRandom(1)})
//	a := m.Threads().Spawn("a")
//	m.SetActive(a)
//	l := m.Create()
//	_ = m.Acquire(l)
func NewWithOptions(opts Options) *Machine {
	if opts.Picker == nil {
		opts.Picker = nondet.First{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Machine{
		locks:        locks.NewTable(),
		threads:      threads.NewTable(),
		synchronized: make(map[ids.ThreadID]struct{}),
		picker:       opts.Picker,
		log:          opts.Logger,
	}
}

// Locks returns the lock table. External layers must treat it as read-only.
func (m *Machine) Locks() *locks.Table {
	return m.locks
}

// Threads returns the thread table. The thread-management layer spawns
// threads through it.
func (m *Machine) Threads() *threads.Table {
	return m.threads
}

// Active returns the thread executing the current step.
func (m *Machine) Active() ids.ThreadID {
	return m.active
}

// SetActive selects the thread that executes the next operations.
//
// The scheduler calls this before each step. It must only select Enabled
// threads; the lock subsystem relies on that and does not re-check it.
func (m *Machine) SetActive(t ids.ThreadID) {
	m.threads.MustGet(t)
	m.active = t
}

// Create appends a new Unlocked lock and returns its id.
//
// Ids are 0, 1, 2, ... in creation order. Create never fails.
func (m *Machine) Create() ids.LockID {
	id := m.locks.Create()
	m.log.Debug("lock created", slog.String("lock", id.String()), slog.String("thread", m.active.String()))
	return id
}

// Acquire attempts to take lock id for the active thread.
//
// Algorithm:
//  1. Unknown id: undefined behavior
//  2. Unlocked: lock := LockedBy(active); the thread stays Enabled
//  3. LockedBy(anyone): active := BlockedOnLock(id); lock unchanged
//
// Case 3 includes the active thread itself. Re-entrant acquisition is not
// special-cased: the thread blocks on a lock only it could release, which is
// the model of self-deadlock. The call still returns nil; the scheduler must
// not pick a blocked thread again until a release hands it the lock.
//
// Acquire is deterministic.
func (m *Machine) Acquire(id ids.LockID) error {
	st, ok := m.locks.Get(id)
	if !ok {
		return newLockUB(OpAcquire, UnknownLock, m.active, id, "acquiring a non-existent lock")
	}

	if holder, held := st.Holder(); held {
		m.threads.SetState(m.active, threads.BlockedOnLock(id))
		m.log.Debug("thread blocked",
			slog.String("lock", id.String()),
			slog.String("thread", m.active.String()),
			slog.String("holder", holder.String()))
		return nil
	}

	m.locks.Set(id, locks.LockedBy(m.active))
	m.log.Debug("lock acquired", slog.String("lock", id.String()), slog.String("thread", m.active.String()))
	return nil
}

// Release gives up lock id, held by the active thread.
//
// Algorithm:
//  1. Unknown id: undefined behavior
//  2. Not LockedBy(active) (Unlocked or another holder): undefined behavior
//  3. No thread BlockedOnLock(id): lock := Unlocked
//  4. Waiters W: w := picker.Pick(Wake, W); then, in one step,
//     w := Enabled, synchronized += {w}, lock := LockedBy(w)
//
// In case 4 the lock never passes through Unlocked, so no third thread can
// take it between the release and the waiter's wake-up. The picker sees the
// complete waiter set; the choice is daemonic, so an explorer must try every
// element of W.
func (m *Machine) Release(id ids.LockID) error {
	st, ok := m.locks.Get(id)
	if !ok {
		return newLockUB(OpRelease, UnknownLock, m.active, id, "releasing a non-existent lock")
	}
	if !st.HeldBy(m.active) {
		return newLockUB(OpRelease, NotHolder, m.active, id, "releasing a lock that is not held by the current thread")
	}

	waiters := m.threads.BlockedOn(id)
	if len(waiters) == 0 {
		m.locks.Set(id, locks.Unlocked())
		m.log.Debug("lock released", slog.String("lock", id.String()), slog.String("thread", m.active.String()))
		return nil
	}

	chosen, ok := m.picker.Pick(nondet.Wake, waiters)
	if !ok {
		panic(violation("wake-choice", "picker returned no candidate for %s with %d waiters", id, len(waiters)))
	}
	if !slices.Contains(waiters, chosen) {
		panic(violation("wake-choice", "picker returned %s, not among waiters %v of %s", chosen, waiters, id))
	}

	m.threads.SetState(chosen, threads.Enabled())
	m.synchronized[chosen] = struct{}{}
	m.locks.Set(id, locks.LockedBy(chosen))
	m.log.Debug("lock handed off",
		slog.String("lock", id.String()),
		slog.String("thread", m.active.String()),
		slog.String("holder", chosen.String()),
		slog.Int("candidates", len(waiters)))
	return nil
}

// WakeCandidates returns every thread a release of id could hand the lock
// to, in ascending id order.
func (m *Machine) WakeCandidates(id ids.LockID) []ids.ThreadID {
	return m.threads.BlockedOn(id)
}

// Synchronized returns the threads that gained a happens-before edge from a
// release during the current step, in ascending id order.
func (m *Machine) Synchronized() []ids.ThreadID {
	out := make([]ids.ThreadID, 0, len(m.synchronized))
	for t := range m.synchronized {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// IsSynchronized reports whether t is in the synchronized set.
func (m *Machine) IsSynchronized(t ids.ThreadID) bool {
	_, ok := m.synchronized[t]
	return ok
}

// ClearSynchronized empties the synchronized set. The scheduler calls it at
// every step boundary, after the happens-before consumer has read the set.
func (m *Machine) ClearSynchronized() {
	clear(m.synchronized)
}

// Clone returns an independent copy of the machine that uses picker for its
// wake choices (nil keeps the current picker).
func (m *Machine) Clone(picker nondet.Picker) *Machine {
	if picker == nil {
		picker = m.picker
	}
	c := &Machine{
		locks:        m.locks.Clone(),
		threads:      m.threads.Clone(),
		active:       m.active,
		synchronized: make(map[ids.ThreadID]struct{}, len(m.synchronized)),
		picker:       picker,
		log:          m.log,
	}
	for t := range m.synchronized {
		c.synchronized[t] = struct{}{}
	}
	return c
}
