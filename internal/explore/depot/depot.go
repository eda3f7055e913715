// Package depot deduplicates the terminal states reached by an exploration.
//
// Many interleavings end in the same state. The depot keeps one entry per
// distinct terminal state, keyed by a 64-bit FNV-1a fingerprint of its
// canonical text, with a hit count and the smallest choice path (in
// depth-first order) that reaches it.
//
// Design:
//   - Fingerprint: FNV-1a over the canonical state text
//   - Collisions: the canonical text is compared; a different state with the
//     same hash is stored under the next free fingerprint
//   - Witness: smallest path wins, so the result does not depend on which
//     worker got there first
//
// Usage:
//
//	d := depot.New()
//	e, fresh := d.Record(depot.State{Outcome: "Deadlock", Locks: ls, Threads: ts}, path)
//	for _, e := range d.Entries() {
//	    fmt.Println(e.State.Outcome, e.Count(), nondet.FormatPath(e.Witness()))
//	}
//
// Thread Safety: Depot is safe for concurrent use by exploration workers.
package depot

import (
	"hash/fnv"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/kolkov/lockmodel/internal/machine/locks"
	"github.com/kolkov/lockmodel/internal/machine/threads"
)

// State is the part of a run's result that identifies its terminal state.
type State struct {
	Outcome string
	Locks   []locks.State
	Threads []threads.State
	// Detail distinguishes states with the same tables, e.g. the UB message.
	Detail string
}

// Canonical returns the text the fingerprint is computed over.
//
// Format: "Deadlock|L0=LockedBy(T0),L1=Unlocked|T0=BlockedOnLock(L0)|detail"
func (s State) Canonical() string {
	var b strings.Builder
	b.WriteString(s.Outcome)
	b.WriteByte('|')
	for i, l := range s.Locks {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString("L")
		b.WriteString(strconv.Itoa(i))
		b.WriteByte('=')
		b.WriteString(l.String())
	}
	b.WriteByte('|')
	for i, t := range s.Threads {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString("T")
		b.WriteString(strconv.Itoa(i))
		b.WriteByte('=')
		b.WriteString(t.String())
	}
	b.WriteByte('|')
	b.WriteString(s.Detail)
	return b.String()
}

// Entry is one distinct terminal state.
type Entry struct {
	Fingerprint uint64
	State       State

	mu      sync.Mutex
	count   int
	witness []int
}

// Count returns how many runs reached this state.
func (e *Entry) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.count
}

// Witness returns the smallest choice path that reaches this state.
func (e *Entry) Witness() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.witness)
}

func (e *Entry) hit(path []int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.count++
	if slices.Compare(path, e.witness) < 0 {
		e.witness = slices.Clone(path)
	}
}

// Stats summarizes depot usage.
type Stats struct {
	Entries    int // distinct states
	Records    int // total Record calls
	Collisions int // fingerprints that needed probing
}

// Depot stores distinct terminal states.
type Depot struct {
	mu         sync.Mutex
	entries    map[uint64]*Entry
	records    int
	collisions int
}

// New creates an empty depot.
func New() *Depot {
	return &Depot{entries: make(map[uint64]*Entry)}
}

// Record adds one run ending in s, reached by choice path path.
//
// Returns the entry for s and true if s was not seen before.
func (d *Depot) Record(s State, path []int) (*Entry, bool) {
	key := s.Canonical()
	fp := Fingerprint(key)

	d.mu.Lock()
	d.records++
	var e *Entry
	fresh := false
	for {
		existing, ok := d.entries[fp]
		if !ok {
			e = &Entry{Fingerprint: fp, State: s, count: 1, witness: slices.Clone(path)}
			d.entries[fp] = e
			fresh = true
			break
		}
		if existing.State.Canonical() == key {
			e = existing
			break
		}
		d.collisions++
		fp++
	}
	d.mu.Unlock()

	if !fresh {
		e.hit(path)
	}
	return e, fresh
}

// Entries returns all entries ordered by outcome, then witness path.
func (d *Depot) Entries() []*Entry {
	d.mu.Lock()
	out := make([]*Entry, 0, len(d.entries))
	for _, e := range d.entries {
		out = append(out, e)
	}
	d.mu.Unlock()

	slices.SortFunc(out, func(a, b *Entry) int {
		if c := strings.Compare(a.State.Outcome, b.State.Outcome); c != 0 {
			return c
		}
		return slices.Compare(a.Witness(), b.Witness())
	})
	return out
}

// Stats returns usage counters.
func (d *Depot) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Stats{Entries: len(d.entries), Records: d.records, Collisions: d.collisions}
}

// Fingerprint computes the FNV-1a hash of a canonical state text.
func Fingerprint(canonical string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(canonical))
	return h.Sum64()
}
