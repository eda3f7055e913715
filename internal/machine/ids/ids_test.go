package ids

import "testing"

func TestString(t *testing.T) {
	if got := LockID(0).String(); got != "L0" {
		t.Errorf("Expected L0, got %s", got)
	}
	if got := LockID(12).String(); got != "L12" {
		t.Errorf("Expected L12, got %s", got)
	}
	if got := ThreadID(3).String(); got != "T3" {
		t.Errorf("Expected T3, got %s", got)
	}
}
