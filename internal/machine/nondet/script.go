package nondet

import (
	"strconv"
	"strings"

	"github.com/kolkov/lockmodel/internal/machine/ids"
)

// Choice records one resolved choice point of an execution.
//
// Only choice points with more than one candidate are recorded; a single
// candidate leaves nothing to explore.
//
// Layout:
//   - Kind: wake or schedule
//   - Index: position of the picked candidate in the candidate set
//   - Width: number of candidates offered
//   - Picked: the picked thread
type Choice struct {
	Kind   Kind
	Index  int
	Width  int
	Picked ids.ThreadID
}

// String returns "schedule:T1(1/3)" style text (index is 0-based).
func (c Choice) String() string {
	return c.Kind.String() + ":" + c.Picked.String() +
		"(" + strconv.Itoa(c.Index) + "/" + strconv.Itoa(c.Width) + ")"
}

// Script replays a fixed prefix of choice indexes and then always picks the
// first candidate, recording every branching choice point it answers.
//
// This is the picker behind exhaustive exploration: an explorer runs the
// program with prefix p, reads back the recorded choices, and derives the next
// prefix by advancing the deepest choice that still has untried candidates.
// Replaying from scratch means no execution state ever has to be copied.
//
// Example:
//
//	s := NewScript([]int{1})
//	s.Pick(Wake, []ids.ThreadID{1, 2, 3}) // T2 (prefix index 1)
//	s.Pick(Wake, []ids.ThreadID{4})       // T4 (not recorded)
//	s.Pick(Wake, []ids.ThreadID{1, 3})    // T1 (past prefix: index 0)
//	s.Choices()                           // [wake:T2(1/3) wake:T1(0/2)]
//
// Thread Safety: NOT safe for concurrent use; one Script per execution.
type Script struct {
	prefix  []int
	choices []Choice
}

// NewScript creates a Script that replays prefix.
func NewScript(prefix []int) *Script {
	return &Script{prefix: prefix}
}

// Pick answers a choice point from the prefix, or with the first candidate
// once the prefix is exhausted.
//
// Returns false if the prefix names an index outside the candidate set, which
// means the program did not replay deterministically.
func (s *Script) Pick(kind Kind, candidates []ids.ThreadID) (ids.ThreadID, bool) {
	switch len(candidates) {
	case 0:
		return 0, false
	case 1:
		return candidates[0], true
	}

	idx := 0
	if pos := len(s.choices); pos < len(s.prefix) {
		idx = s.prefix[pos]
	}
	if idx < 0 || idx >= len(candidates) {
		return 0, false
	}
	s.choices = append(s.choices, Choice{
		Kind:   kind,
		Index:  idx,
		Width:  len(candidates),
		Picked: candidates[idx],
	})
	return candidates[idx], true
}

// Choices returns the branching choice points answered so far, in order.
func (s *Script) Choices() []Choice {
	return s.choices
}

// Path returns the choice indexes answered so far; replaying it as a prefix
// reproduces the same execution.
func (s *Script) Path() []int {
	return Path(s.choices)
}

// Path extracts the index sequence of a choice log.
func Path(choices []Choice) []int {
	out := make([]int, len(choices))
	for i, c := range choices {
		out[i] = c.Index
	}
	return out
}

// Next returns the prefix of the next execution in depth-first order after
// the execution that produced choices, and false when every branch below
// floor has been explored.
//
// The first floor choices are fixed: an explorer that splits work across
// workers gives each worker its own fixed prefix.
func Next(choices []Choice, floor int) ([]int, bool) {
	for i := len(choices) - 1; i >= floor; i-- {
		if choices[i].Index+1 < choices[i].Width {
			next := Path(choices[:i+1])
			next[i]++
			return next, true
		}
	}
	return nil, false
}

// FormatPath renders a choice index path as "1.0.2" ("-" for the empty path).
func FormatPath(path []int) string {
	if len(path) == 0 {
		return "-"
	}
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ".")
}

// ParsePath parses the FormatPath form back into indexes.
func ParsePath(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return nil, nil
	}
	fields := strings.Split(s, ".")
	out := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}
