package locks

import (
	"testing"

	"github.com/kolkov/lockmodel/internal/machine/ids"
)

// TestNewTable verifies an empty table.
func TestNewTable(t *testing.T) {
	tbl := NewTable()
	if tbl == nil {
		t.Fatal("NewTable returned nil")
	}
	if tbl.Len() != 0 {
		t.Errorf("Expected empty table, got %d entries", tbl.Len())
	}
}

// TestCreate_MonotonicIDs verifies ids start at 0 and strictly increase.
func TestCreate_MonotonicIDs(t *testing.T) {
	tbl := NewTable()
	for want := 0; want < 5; want++ {
		got := tbl.Create()
		if got != ids.LockID(want) {
			t.Errorf("Create() = %s, want L%d", got, want)
		}
		st, ok := tbl.Get(got)
		if !ok {
			t.Fatalf("Get(%s) reported unknown lock right after Create", got)
		}
		if st.IsLocked() {
			t.Errorf("New lock %s is %s, want Unlocked", got, st)
		}
	}
	if tbl.Len() != 5 {
		t.Errorf("Len() = %d, want 5", tbl.Len())
	}
}

// TestGet_OutOfRange verifies that never-created ids are invalid.
func TestGet_OutOfRange(t *testing.T) {
	tbl := NewTable()
	tbl.Create()

	for _, id := range []ids.LockID{-1, 1, 99} {
		if _, ok := tbl.Get(id); ok {
			t.Errorf("Get(%s) succeeded on a table with one lock", id)
		}
		if tbl.Valid(id) {
			t.Errorf("Valid(%s) = true, want false", id)
		}
	}
}

// TestSet_Roundtrip verifies Set/Get of held states.
func TestSet_Roundtrip(t *testing.T) {
	tbl := NewTable()
	l := tbl.Create()

	tbl.Set(l, LockedBy(3))
	st, _ := tbl.Get(l)
	holder, held := st.Holder()
	if !held || holder != 3 {
		t.Errorf("Expected LockedBy(T3), got %s", st)
	}
	if !st.HeldBy(3) || st.HeldBy(2) {
		t.Errorf("HeldBy mismatch for %s", st)
	}

	tbl.Set(l, Unlocked())
	st, _ = tbl.Get(l)
	if st.IsLocked() {
		t.Errorf("Expected Unlocked, got %s", st)
	}
}

// TestSet_UnknownPanics verifies that writing an unknown id is treated as a bug.
func TestSet_UnknownPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected Set on unknown lock to panic")
		}
	}()
	NewTable().Set(0, Unlocked())
}

// TestClone_Independent verifies clones do not share storage.
func TestClone_Independent(t *testing.T) {
	tbl := NewTable()
	l := tbl.Create()
	clone := tbl.Clone()

	clone.Set(l, LockedBy(1))
	clone.Create()

	if st, _ := tbl.Get(l); st.IsLocked() {
		t.Errorf("Original modified through clone: %s", st)
	}
	if tbl.Len() != 1 {
		t.Errorf("Original grew through clone: Len() = %d", tbl.Len())
	}
}

// TestStateString verifies the trace format.
func TestStateString(t *testing.T) {
	if got := Unlocked().String(); got != "Unlocked" {
		t.Errorf("Unlocked().String() = %q", got)
	}
	if got := LockedBy(2).String(); got != "LockedBy(T2)" {
		t.Errorf("LockedBy(2).String() = %q", got)
	}
	var zero State
	if zero != Unlocked() {
		t.Error("Zero State must equal Unlocked()")
	}
}
