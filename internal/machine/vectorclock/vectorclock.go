// Package vectorclock implements vector clocks for tracking happens-before relations
// between threads of the modeled machine.
//
// The lock subsystem does not compute clocks itself. It only reports which
// threads were woken by a release during a step (the synchronized set); the
// consumer of that set joins the releasing thread's clock into each woken
// thread's clock.
//
// Key operations:
//   - Join: Synchronization (point-wise maximum) - used on lock hand-off
//   - LessOrEqual: Happens-before check (partial order)
//
// Clocks grow on demand. Model executions are replayed many times during
// exploration, so a clock only stores entries up to the highest thread that
// has ever ticked.
package vectorclock

import (
	"strconv"
	"strings"
)

// VectorClock represents logical time across all threads of one execution.
//
// Element vc[tid] stores the clock value for thread tid. Missing trailing
// entries are zero.
//
// Example: {0:5, 2:3} means Thread0@5, Thread1@0, Thread2@3.
type VectorClock struct {
	c []uint32
}

// New creates a zero-initialized vector clock.
func New() *VectorClock {
	return &VectorClock{}
}

// Clone creates a deep copy of the vector clock.
//
// Used when an execution is forked or when a clock snapshot is stored in a
// report.
func (vc *VectorClock) Clone() *VectorClock {
	clone := &VectorClock{c: make([]uint32, len(vc.c))}
	copy(clone.c, vc.c)
	return clone
}

// Join performs point-wise maximum: vc = vc ⊔ other.
//
// This is the synchronization operation for a lock hand-off: the woken
// thread's clock joins the releasing thread's clock.
func (vc *VectorClock) Join(other *VectorClock) {
	if other == nil {
		return
	}
	vc.grow(len(other.c))
	for i, v := range other.c {
		if v > vc.c[i] {
			vc.c[i] = v
		}
	}
}

// LessOrEqual checks partial order: vc ⊑ other.
//
// Returns true if vc[i] <= other[i] for all threads i.
func (vc *VectorClock) LessOrEqual(other *VectorClock) bool {
	for i, v := range vc.c {
		if v > other.Get(i) {
			return false
		}
	}
	return true
}

// HappensBefore reports whether vc ⊑ other and the two clocks differ.
func (vc *VectorClock) HappensBefore(other *VectorClock) bool {
	return vc.LessOrEqual(other) && !other.LessOrEqual(vc)
}

// Increment advances the clock for thread tid.
func (vc *VectorClock) Increment(tid int) {
	vc.grow(tid + 1)
	vc.c[tid]++
}

// Get returns the clock value for thread tid.
func (vc *VectorClock) Get(tid int) uint32 {
	if tid < 0 || tid >= len(vc.c) {
		return 0
	}
	return vc.c[tid]
}

// Set sets the clock value for thread tid.
func (vc *VectorClock) Set(tid int, clock uint32) {
	vc.grow(tid + 1)
	vc.c[tid] = clock
}

// Len returns the number of thread slots stored, including zero entries
// below the highest non-zero one.
func (vc *VectorClock) Len() int {
	return len(vc.c)
}

func (vc *VectorClock) grow(n int) {
	if n <= len(vc.c) {
		return
	}
	if n <= cap(vc.c) {
		vc.c = vc.c[:n]
		return
	}
	next := make([]uint32, n, 2*n)
	copy(next, vc.c)
	vc.c = next
}

// String returns a debug representation of the vector clock.
//
// Format: "{tid1:clock1, tid2:clock2, ...}" showing only non-zero clocks.
//
// Example: "{0:5, 2:3}".
func (vc *VectorClock) String() string {
	var parts []string
	for i, v := range vc.c {
		if v != 0 {
			parts = append(parts, strconv.Itoa(i)+":"+strconv.FormatUint(uint64(v), 10))
		}
	}
	if len(parts) == 0 {
		return "{}"
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
