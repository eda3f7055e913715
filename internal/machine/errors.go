package machine

import (
	"errors"
	"fmt"

	"github.com/kolkov/lockmodel/internal/machine/ids"
)

// ErrUndefinedBehavior is the sentinel wrapped by every UBError.
//
// Undefined behavior means the modeled program's behavior is unconstrained
// from this point. It is terminal for the whole machine step; nothing in the
// model catches it.
//
//	if errors.Is(err, machine.ErrUndefinedBehavior) { ... }
var ErrUndefinedBehavior = errors.New("undefined behavior")

// UBKind classifies undefined behavior raised by the lock subsystem.
type UBKind uint8

const (
	// UnknownLock: acquire or release of a lock id that was never created.
	UnknownLock UBKind = iota + 1

	// NotHolder: release of a lock the active thread does not hold
	// (the lock is Unlocked or held by another thread).
	NotHolder

	// IllTypedIntrinsic: intrinsic call with the wrong argument count,
	// argument kind, or declared return type.
	IllTypedIntrinsic
)

// String returns a short, stable name for the kind.
func (k UBKind) String() string {
	switch k {
	case UnknownLock:
		return "unknown-lock"
	case NotHolder:
		return "not-holder"
	case IllTypedIntrinsic:
		return "ill-typed-intrinsic"
	default:
		return fmt.Sprintf("ub-kind(%d)", k)
	}
}

// UBError describes one occurrence of undefined behavior.
//
// Fields:
//   - Op: operation that raised it ("lock.create", "lock.acquire", "lock.release")
//   - Kind: classification
//   - Thread: the active thread at the time
//   - Lock: the lock id involved (meaningful when HasLock is true)
//   - Message: human-readable description
//
// Example:
//
//	err := &UBError{Op: "lock.release", Kind: NotHolder, Thread: 3, Lock: 0, HasLock: true,
//	    Message: "releasing a lock that is not held by the current thread"}
//	fmt.Println(err)
//	// undefined behavior: lock.release by T3 on L0: releasing a lock that is not held by the current thread
//
// Thread Safety: Immutable after creation, safe for concurrent use.
type UBError struct {
	Op      string
	Kind    UBKind
	Thread  ids.ThreadID
	Lock    ids.LockID
	HasLock bool
	Message string
}

// Error implements the error interface.
func (e *UBError) Error() string {
	if e.HasLock {
		return fmt.Sprintf("undefined behavior: %s by %s on %s: %s", e.Op, e.Thread, e.Lock, e.Message)
	}
	return fmt.Sprintf("undefined behavior: %s by %s: %s", e.Op, e.Thread, e.Message)
}

// Unwrap returns ErrUndefinedBehavior so that errors.Is works through any
// wrapping the caller adds.
func (e *UBError) Unwrap() error {
	return ErrUndefinedBehavior
}

// NewUBError creates an UBError not tied to a particular lock.
//
// Used by the intrinsic binding layer for malformed calls.
func NewUBError(op string, kind UBKind, thread ids.ThreadID, format string, args ...any) *UBError {
	return &UBError{
		Op:      op,
		Kind:    kind,
		Thread:  thread,
		Message: fmt.Sprintf(format, args...),
	}
}

func newLockUB(op string, kind UBKind, thread ids.ThreadID, lock ids.LockID, msg string) *UBError {
	return &UBError{
		Op:      op,
		Kind:    kind,
		Thread:  thread,
		Lock:    lock,
		HasLock: true,
		Message: msg,
	}
}

// AsUB returns the UBError inside err, if any.
func AsUB(err error) (*UBError, bool) {
	var ub *UBError
	if errors.As(err, &ub) {
		return ub, true
	}
	return nil, false
}

// InvariantViolation reports a state the lock subsystem must never reach.
//
// Unlike UBError it is not a property of the modeled program but a bug in
// this implementation (or in a Picker). Operations panic with it; only
// CheckInvariants returns it as an error, for tests and explorers.
type InvariantViolation struct {
	Invariant string
	Detail    string
}

// Error implements the error interface.
func (v *InvariantViolation) Error() string {
	return fmt.Sprintf("lock machine invariant %s violated: %s", v.Invariant, v.Detail)
}

func violation(invariant, format string, args ...any) *InvariantViolation {
	return &InvariantViolation{Invariant: invariant, Detail: fmt.Sprintf(format, args...)}
}
