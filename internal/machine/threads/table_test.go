package threads

import (
	"reflect"
	"testing"

	"github.com/kolkov/lockmodel/internal/machine/ids"
)

// TestSpawn verifies dense ids and initial state.
func TestSpawn(t *testing.T) {
	tbl := NewTable()
	a := tbl.Spawn("a")
	b := tbl.Spawn("b")

	if a != 0 || b != 1 {
		t.Errorf("Expected ids T0,T1, got %s,%s", a, b)
	}
	th, ok := tbl.Get(b)
	if !ok {
		t.Fatal("Get(T1) failed after Spawn")
	}
	if !th.State.IsEnabled() {
		t.Errorf("Expected new thread to be Enabled, got %s", th.State)
	}
	if th.Name != "b" {
		t.Errorf("Expected name %q, got %q", "b", th.Name)
	}
	if th.C.Get(1) != 1 {
		t.Errorf("Expected fresh clock {1:1}, got %s", th.C)
	}
}

// TestGet_Unknown verifies unknown ids.
func TestGet_Unknown(t *testing.T) {
	tbl := NewTable()
	tbl.Spawn("a")
	if _, ok := tbl.Get(5); ok {
		t.Error("Get(T5) succeeded on a one-thread table")
	}
	if _, ok := tbl.Get(-1); ok {
		t.Error("Get(T-1) succeeded")
	}
}

// TestBlockedOn verifies the wake candidate enumeration.
func TestBlockedOn(t *testing.T) {
	tbl := NewTable()
	for i := 0; i < 5; i++ {
		tbl.Spawn("")
	}
	tbl.SetState(3, BlockedOnLock(0))
	tbl.SetState(1, BlockedOnLock(0))
	tbl.SetState(2, BlockedOnLock(1))
	tbl.SetState(4, Terminated())

	got := tbl.BlockedOn(0)
	want := []ids.ThreadID{1, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BlockedOn(L0) = %v, want %v", got, want)
	}
	if got := tbl.BlockedOn(7); len(got) != 0 {
		t.Errorf("BlockedOn(L7) = %v, want empty", got)
	}
	if got := tbl.Enabled(); !reflect.DeepEqual(got, []ids.ThreadID{0}) {
		t.Errorf("Enabled() = %v, want [T0]", got)
	}
}

// TestStateAccessors verifies the sum type accessors.
func TestStateAccessors(t *testing.T) {
	tests := []struct {
		st         State
		enabled    bool
		terminated bool
		blocked    bool
		lock       ids.LockID
		str        string
	}{
		{st: Enabled(), enabled: true, str: "Enabled"},
		{st: BlockedOnLock(4), blocked: true, lock: 4, str: "BlockedOnLock(L4)"},
		{st: Terminated(), terminated: true, str: "Terminated"},
	}
	for _, tt := range tests {
		if tt.st.IsEnabled() != tt.enabled {
			t.Errorf("%s.IsEnabled() = %v", tt.st, !tt.enabled)
		}
		if tt.st.IsTerminated() != tt.terminated {
			t.Errorf("%s.IsTerminated() = %v", tt.st, !tt.terminated)
		}
		l, ok := tt.st.BlockedOn()
		if ok != tt.blocked || (ok && l != tt.lock) {
			t.Errorf("%s.BlockedOn() = %s,%v", tt.st, l, ok)
		}
		if tt.st.String() != tt.str {
			t.Errorf("String() = %q, want %q", tt.st.String(), tt.str)
		}
	}
}

// TestClone_Independent verifies deep copies, including clocks.
func TestClone_Independent(t *testing.T) {
	tbl := NewTable()
	id := tbl.Spawn("a")
	clone := tbl.Clone()

	clone.SetState(id, BlockedOnLock(0))
	clone.MustGet(id).IncrementClock()

	if !tbl.State(id).IsEnabled() {
		t.Errorf("Original state modified through clone: %s", tbl.State(id))
	}
	if tbl.MustGet(id).C.Get(0) != 1 {
		t.Errorf("Original clock modified through clone: %s", tbl.MustGet(id).C)
	}
}

// TestMustGet_Panics verifies unknown ids are treated as bugs.
func TestMustGet_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected MustGet on unknown thread to panic")
		}
	}()
	NewTable().MustGet(0)
}
