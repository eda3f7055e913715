package machine

import (
	"github.com/kolkov/lockmodel/internal/machine/ids"
)

// CheckInvariants validates the lock and thread tables against the
// subsystem's invariants and returns the first violation found.
//
// Checked:
//   - holder: every LockedBy(t) names an existing thread
//   - waiter: every BlockedOnLock(l) names an existing lock that is held.
//     The holder may be the waiter itself (self-deadlock after a re-entrant
//     acquire); a blocked thread waiting on an Unlocked lock is an orphan.
//   - synchronized: every synchronized thread exists, is Enabled, and holds
//     at least one lock (it was just handed one)
//
// Mutual exclusion holds by construction: a lock state names at most one
// holder.
//
// Intended for tests and explorers, which call it after every step.
func (m *Machine) CheckInvariants() error {
	for i, st := range m.locks.Snapshot() {
		holder, held := st.Holder()
		if !held {
			continue
		}
		if _, ok := m.threads.Get(holder); !ok {
			return violation("holder", "%s is %s but thread %s does not exist", ids.LockID(i), st, holder)
		}
	}

	for _, th := range m.threads.All() {
		l, blocked := th.State.BlockedOn()
		if !blocked {
			continue
		}
		st, ok := m.locks.Get(l)
		if !ok {
			return violation("waiter", "%s is blocked on non-existent lock %s", th.ID, l)
		}
		if !st.IsLocked() {
			return violation("waiter", "%s is blocked on %s which is Unlocked", th.ID, l)
		}
	}

	for t := range m.synchronized {
		th, ok := m.threads.Get(t)
		if !ok {
			return violation("synchronized", "synchronized thread %s does not exist", t)
		}
		if !th.State.IsEnabled() {
			return violation("synchronized", "synchronized thread %s is %s", t, th.State)
		}
		if len(m.HeldBy(t)) == 0 {
			return violation("synchronized", "synchronized thread %s holds no lock", t)
		}
	}
	return nil
}

// HeldBy returns the locks currently held by thread t, in id order.
func (m *Machine) HeldBy(t ids.ThreadID) []ids.LockID {
	var out []ids.LockID
	for i, st := range m.locks.Snapshot() {
		if st.HeldBy(t) {
			out = append(out, ids.LockID(i))
		}
	}
	return out
}
