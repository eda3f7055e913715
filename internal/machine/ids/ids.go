// Package ids defines the opaque identifiers shared by the lock table and the
// thread table.
//
// Lock states name their holder thread and thread states name the lock they
// wait on, so both identifier types live here to keep the two tables
// independent of each other.
package ids

import "strconv"

// LockID is an index into the machine's lock table.
//
// A LockID returned by lock creation stays valid for the lifetime of the
// machine. Values past the current table length are invalid.
type LockID int

// String returns the short form used in logs and traces ("L0", "L1", ...).
func (l LockID) String() string {
	return "L" + strconv.Itoa(int(l))
}

// ThreadID is an index into the machine's thread table.
type ThreadID int

// String returns the short form used in logs and traces ("T0", "T1", ...).
func (t ThreadID) String() string {
	return "T" + strconv.Itoa(int(t))
}
