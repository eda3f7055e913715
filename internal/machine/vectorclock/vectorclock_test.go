package vectorclock

import (
	"testing"
)

// TestVectorClockNew tests zero initialization.
func TestVectorClockNew(t *testing.T) {
	vc := New()

	for i := 0; i < 16; i++ {
		if vc.Get(i) != 0 {
			t.Errorf("New() Get(%d) = %d, want 0", i, vc.Get(i))
		}
	}
	if vc.Len() != 0 {
		t.Errorf("New() Len() = %d, want 0", vc.Len())
	}
}

// TestVectorClockClone tests deep copy independence.
func TestVectorClockClone(t *testing.T) {
	original := New()
	original.Set(0, 10)
	original.Set(5, 20)

	clone := original.Clone()
	if clone.Get(0) != 10 || clone.Get(5) != 20 {
		t.Errorf("Clone() = %s, want {0:10, 5:20}", clone)
	}

	clone.Set(0, 999)
	clone.Increment(7)

	if original.Get(0) != 10 {
		t.Errorf("Original modified after clone change: Get(0) = %d, want 10", original.Get(0))
	}
	if original.Get(7) != 0 {
		t.Errorf("Original modified after clone change: Get(7) = %d, want 0", original.Get(7))
	}
}

// TestVectorClockJoinCommutativity tests vc1⊔vc2 == vc2⊔vc1.
func TestVectorClockJoinCommutativity(t *testing.T) {
	vc1 := New()
	vc1.Set(0, 10)
	vc1.Set(1, 30)
	vc1.Set(2, 20)

	vc2 := New()
	vc2.Set(0, 5)
	vc2.Set(1, 40)
	vc2.Set(3, 15)

	vc1Copy := vc1.Clone()
	vc2Copy := vc2.Clone()

	vc1.Join(vc2)
	vc2Copy.Join(vc1Copy)

	if vc1.String() != vc2Copy.String() {
		t.Errorf("Join not commutative: vc1⊔vc2=%s, vc2⊔vc1=%s", vc1, vc2Copy)
	}

	expected := map[int]uint32{0: 10, 1: 40, 2: 20, 3: 15}
	for tid, want := range expected {
		if vc1.Get(tid) != want {
			t.Errorf("Join result[%d] = %d, want %d", tid, vc1.Get(tid), want)
		}
	}
}

// TestVectorClockJoinIdempotent tests vc⊔vc == vc.
func TestVectorClockJoinIdempotent(t *testing.T) {
	vc := New()
	vc.Set(0, 10)
	vc.Set(5, 30)
	original := vc.Clone()

	vc.Join(vc)

	if vc.String() != original.String() {
		t.Errorf("Join not idempotent: got %s, want %s", vc, original)
	}
}

// TestVectorClockJoinNil tests that joining a nil clock is a no-op.
func TestVectorClockJoinNil(t *testing.T) {
	vc := New()
	vc.Set(1, 4)
	vc.Join(nil)
	if vc.Get(1) != 4 {
		t.Errorf("Join(nil) changed clock to %s", vc)
	}
}

// TestVectorClockPartialOrder tests transitivity: vc1⊑vc2 and vc2⊑vc3 => vc1⊑vc3.
func TestVectorClockPartialOrder(t *testing.T) {
	vc1 := New()
	vc1.Set(0, 10)
	vc1.Set(1, 20)

	vc2 := New()
	vc2.Set(0, 15)
	vc2.Set(1, 20)
	vc2.Set(2, 1)

	vc3 := New()
	vc3.Set(0, 15)
	vc3.Set(1, 25)
	vc3.Set(2, 1)

	if !vc1.LessOrEqual(vc2) {
		t.Error("Expected vc1 ⊑ vc2")
	}
	if !vc2.LessOrEqual(vc3) {
		t.Error("Expected vc2 ⊑ vc3")
	}
	if !vc1.LessOrEqual(vc3) {
		t.Error("Expected vc1 ⊑ vc3 (transitivity)")
	}
	if vc3.LessOrEqual(vc1) {
		t.Error("Expected vc3 ⋢ vc1")
	}
}

// TestVectorClockHappensBefore tests strict ordering.
func TestVectorClockHappensBefore(t *testing.T) {
	a := New()
	a.Set(0, 1)

	b := a.Clone()
	b.Increment(1)

	if !a.HappensBefore(b) {
		t.Errorf("Expected %s to happen before %s", a, b)
	}
	if a.HappensBefore(a.Clone()) {
		t.Error("Equal clocks must not be ordered by HappensBefore")
	}

	c := New()
	c.Set(2, 1)
	if a.HappensBefore(c) || c.HappensBefore(a) {
		t.Errorf("Expected %s and %s to be concurrent", a, c)
	}
}

// TestVectorClockIncrement tests per-thread ticks and growth.
func TestVectorClockIncrement(t *testing.T) {
	vc := New()
	vc.Increment(3)
	vc.Increment(3)
	vc.Increment(0)

	if vc.Get(3) != 2 {
		t.Errorf("Get(3) = %d, want 2", vc.Get(3))
	}
	if vc.Get(0) != 1 {
		t.Errorf("Get(0) = %d, want 1", vc.Get(0))
	}
	if vc.Len() != 4 {
		t.Errorf("Len() = %d, want 4", vc.Len())
	}
	if vc.Get(-1) != 0 || vc.Get(100) != 0 {
		t.Error("Out-of-range Get must return 0")
	}
}

// TestVectorClockString tests debug output.
func TestVectorClockString(t *testing.T) {
	tests := []struct {
		name string
		set  map[int]uint32
		want string
	}{
		{name: "empty", set: map[int]uint32{}, want: "{}"},
		{name: "single thread", set: map[int]uint32{0: 42}, want: "{0:42}"},
		{name: "multiple threads", set: map[int]uint32{0: 10, 5: 20, 9: 30}, want: "{0:10, 5:20, 9:30}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vc := New()
			for tid, clock := range tt.set {
				vc.Set(tid, clock)
			}
			if got := vc.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
