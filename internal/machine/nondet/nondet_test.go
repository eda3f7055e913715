package nondet

import (
	"reflect"
	"testing"

	"github.com/kolkov/lockmodel/internal/machine/ids"
)

var three = []ids.ThreadID{1, 2, 3}

// TestFirst verifies the deterministic tie-break.
func TestFirst(t *testing.T) {
	got, ok := First{}.Pick(Wake, three)
	if !ok || got != 1 {
		t.Errorf("First.Pick = %s,%v, want T1,true", got, ok)
	}
	if _, ok := (First{}).Pick(Wake, nil); ok {
		t.Error("First.Pick on empty set must fail")
	}
}

// TestRandom_Reproducible verifies same seed, same choices.
func TestRandom_Reproducible(t *testing.T) {
	a, b := NewRandom(42), NewRandom(42)
	for i := 0; i < 50; i++ {
		x, _ := a.Pick(Wake, three)
		y, _ := b.Pick(Wake, three)
		if x != y {
			t.Fatalf("Pick %d diverged: %s vs %s", i, x, y)
		}
	}
}

// TestRandom_CoversAllCandidates verifies no candidate is systematically excluded.
func TestRandom_CoversAllCandidates(t *testing.T) {
	r := NewRandom(7)
	seen := map[ids.ThreadID]bool{}
	for i := 0; i < 200; i++ {
		got, ok := r.Pick(Wake, three)
		if !ok {
			t.Fatal("Random.Pick failed on non-empty set")
		}
		seen[got] = true
	}
	for _, c := range three {
		if !seen[c] {
			t.Errorf("Candidate %s never picked in 200 draws", c)
		}
	}
}

// TestFunc verifies the adapter.
func TestFunc(t *testing.T) {
	last := Func(func(_ Kind, c []ids.ThreadID) (ids.ThreadID, bool) {
		return c[len(c)-1], true
	})
	if got, _ := last.Pick(Schedule, three); got != 3 {
		t.Errorf("Func.Pick = %s, want T3", got)
	}
}

// TestScript_ReplayAndRecord verifies prefix replay and the recorded log.
func TestScript_ReplayAndRecord(t *testing.T) {
	s := NewScript([]int{2})

	if got, _ := s.Pick(Wake, three); got != 3 {
		t.Errorf("Prefix pick = %s, want T3", got)
	}
	if got, _ := s.Pick(Schedule, []ids.ThreadID{9}); got != 9 {
		t.Errorf("Single-candidate pick = %s, want T9", got)
	}
	if got, _ := s.Pick(Schedule, []ids.ThreadID{4, 5}); got != 4 {
		t.Errorf("Past-prefix pick = %s, want T4", got)
	}

	want := []Choice{
		{Kind: Wake, Index: 2, Width: 3, Picked: 3},
		{Kind: Schedule, Index: 0, Width: 2, Picked: 4},
	}
	if !reflect.DeepEqual(s.Choices(), want) {
		t.Errorf("Choices() = %v, want %v", s.Choices(), want)
	}
	if !reflect.DeepEqual(s.Path(), []int{2, 0}) {
		t.Errorf("Path() = %v, want [2 0]", s.Path())
	}
}

// TestScript_Diverged verifies an out-of-range prefix is reported.
func TestScript_Diverged(t *testing.T) {
	s := NewScript([]int{5})
	if _, ok := s.Pick(Wake, three); ok {
		t.Error("Expected out-of-range prefix index to fail")
	}
}

// TestNext_DepthFirst verifies the enumeration order of prefixes.
func TestNext_DepthFirst(t *testing.T) {
	// Two choice points of width 2 and 3: six executions in total.
	var visited [][]int
	prefix := []int(nil)
	for {
		s := NewScript(prefix)
		s.Pick(Schedule, []ids.ThreadID{0, 1})
		s.Pick(Wake, three)
		visited = append(visited, s.Path())

		next, ok := Next(s.Choices(), 0)
		if !ok {
			break
		}
		prefix = next
	}

	want := [][]int{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {1, 2}}
	if !reflect.DeepEqual(visited, want) {
		t.Errorf("Visited %v, want %v", visited, want)
	}
}

// TestNext_Floor verifies fixed prefixes are not advanced.
func TestNext_Floor(t *testing.T) {
	choices := []Choice{{Index: 0, Width: 2}, {Index: 1, Width: 2}}
	if _, ok := Next(choices, 1); ok {
		t.Error("Expected no next prefix above floor 1")
	}
	next, ok := Next(choices, 0)
	if !ok || !reflect.DeepEqual(next, []int{1}) {
		t.Errorf("Next(floor 0) = %v,%v, want [1],true", next, ok)
	}
}

// TestPathFormat verifies FormatPath/ParsePath agree.
func TestPathFormat(t *testing.T) {
	if FormatPath(nil) != "-" {
		t.Errorf("FormatPath(nil) = %q", FormatPath(nil))
	}
	p, err := ParsePath("1.0.2")
	if err != nil || !reflect.DeepEqual(p, []int{1, 0, 2}) {
		t.Errorf("ParsePath = %v,%v", p, err)
	}
	if FormatPath(p) != "1.0.2" {
		t.Errorf("FormatPath = %q", FormatPath(p))
	}
	if _, err := ParsePath("1.x"); err == nil {
		t.Error("Expected error for malformed path")
	}
	if p, err := ParsePath("-"); err != nil || p != nil {
		t.Errorf("ParsePath(-) = %v,%v", p, err)
	}
}

// TestChoiceString verifies trace formatting.
func TestChoiceString(t *testing.T) {
	c := Choice{Kind: Wake, Index: 1, Width: 3, Picked: 2}
	if got := c.String(); got != "wake:T2(1/3)" {
		t.Errorf("String() = %q", got)
	}
}
