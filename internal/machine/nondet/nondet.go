// Package nondet provides the choice functions that resolve the machine's
// non-deterministic choice points.
//
// The machine never picks among candidates itself. Whenever the semantics
// allow several outcomes (which waiter receives a released lock, which
// enabled thread runs next) it hands the complete candidate set to a Picker.
//
// The non-determinism is daemonic: the modeled program must behave for every
// candidate. A single concrete run may use First or Random; proving absence of
// bad behavior requires Script, driven by an explorer that replays the
// program once per candidate at every choice point.
package nondet

import (
	"math/rand/v2"
	"strconv"
	"sync"

	"github.com/kolkov/lockmodel/internal/machine/ids"
)

// Kind identifies the kind of choice point.
type Kind uint8

const (
	// Wake picks which blocked thread receives a released lock.
	Wake Kind = iota

	// Schedule picks which enabled thread executes the next step.
	Schedule
)

// String returns "wake" or "schedule".
func (k Kind) String() string {
	switch k {
	case Wake:
		return "wake"
	case Schedule:
		return "schedule"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Picker resolves one choice point.
//
// Pick is called with a non-empty candidate set in ascending id order and must
// return one element of it and true. Returning false, or an id outside the
// candidate set, is a bug in the picker; the machine treats it as an internal
// invariant violation.
type Picker interface {
	Pick(kind Kind, candidates []ids.ThreadID) (ids.ThreadID, bool)
}

// Func adapts an ordinary function to the Picker interface.
type Func func(kind Kind, candidates []ids.ThreadID) (ids.ThreadID, bool)

// Pick calls f.
func (f Func) Pick(kind Kind, candidates []ids.ThreadID) (ids.ThreadID, bool) {
	return f(kind, candidates)
}

// First always picks the lowest candidate id.
//
// This is the deterministic tie-break for single sample runs.
type First struct{}

// Pick returns candidates[0].
func (First) Pick(_ Kind, candidates []ids.ThreadID) (ids.ThreadID, bool) {
	if len(candidates) == 0 {
		return 0, false
	}
	return candidates[0], true
}

// Random picks uniformly at random from a seeded PCG source.
//
// Two Random pickers created with the same seed make the same sequence of
// choices, so a sampled run can be reproduced from its seed.
//
// Thread Safety: Safe for concurrent calls.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom creates a Random picker for the given seed.
func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Pick returns a uniformly chosen candidate.
func (r *Random) Pick(_ Kind, candidates []ids.ThreadID) (ids.ThreadID, bool) {
	if len(candidates) == 0 {
		return 0, false
	}
	r.mu.Lock()
	i := r.rng.IntN(len(candidates))
	r.mu.Unlock()
	return candidates[i], true
}
