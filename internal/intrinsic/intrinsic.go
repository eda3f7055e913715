// Package intrinsic binds the lock operations of the machine to the
// intrinsic calls of the modeled language.
//
// The binding layer is the only place where values and types meet the lock
// subsystem. It checks the shape of each call and converts between language
// values and lock ids:
//
//	lock.create()       : int  -> Int(new lock id)
//	lock.acquire(id: _) : ()   -> Unit
//	lock.release(id: _) : ()   -> Unit
//
// A malformed call (wrong argument count, non-integer argument, wrong
// declared return type) is undefined behavior of kind IllTypedIntrinsic.
// Undefined behavior raised by the machine is returned unchanged.
package intrinsic

import (
	"fmt"
	"math"
	"strings"

	"github.com/kolkov/lockmodel/internal/machine"
	"github.com/kolkov/lockmodel/internal/machine/ids"
)

// Op identifies a lock intrinsic.
type Op uint8

const (
	LockCreate Op = iota
	LockAcquire
	LockRelease
)

// String returns the qualified intrinsic name ("lock.create", ...).
func (op Op) String() string {
	switch op {
	case LockCreate:
		return machine.OpCreate
	case LockAcquire:
		return machine.OpAcquire
	case LockRelease:
		return machine.OpRelease
	default:
		return fmt.Sprintf("op(%d)", uint8(op))
	}
}

// ParseOp accepts both the qualified name ("lock.acquire") and the short
// form used in scenario files ("acquire").
func ParseOp(s string) (Op, error) {
	switch strings.TrimPrefix(strings.TrimSpace(s), "lock.") {
	case "create":
		return LockCreate, nil
	case "acquire":
		return LockAcquire, nil
	case "release":
		return LockRelease, nil
	default:
		return 0, fmt.Errorf("unknown intrinsic %q", s)
	}
}

// Arity returns the number of arguments op takes.
func (op Op) Arity() int {
	if op == LockCreate {
		return 0
	}
	return 1
}

// Call executes op on m for the active thread.
//
// Algorithm:
//  1. Check the argument count and, for acquire/release, that the
//     argument value is an integer
//  2. Check the declared return type: integer for create, unit otherwise
//  3. Convert the integer to a lock id (negative or out-of-range values
//     name no lock) and delegate to the machine
//  4. Wrap the result: Int(id) for create, Unit otherwise
//
// The argument's declared type is not inspected; only its value matters.
// A blocking acquire still returns Unit: the thread's state, not the result,
// tells the scheduler that it must not run again.
func Call(m *machine.Machine, op Op, args []Arg, ret Type) (Value, error) {
	if len(args) != op.Arity() {
		return Value{}, illTyped(m, op, "expected %d argument(s), got %d", op.Arity(), len(args))
	}

	switch op {
	case LockCreate:
		if !ret.IsInt() {
			return Value{}, illTyped(m, op, "return type must be an integer, got %s", ret)
		}
		// Ids are dense, so the next one is the table length.
		if next := m.Locks().Len(); !ret.Fits(int64(next)) {
			return Value{}, illTyped(m, op, "lock id %d does not fit in %s", next, ret)
		}
		return Int(int64(m.Create())), nil

	case LockAcquire, LockRelease:
		raw, ok := args[0].Value.AsInt()
		if !ok {
			return Value{}, illTyped(m, op, "argument must be an integer, got %s", args[0].Value.Kind())
		}
		if !ret.IsUnit() {
			return Value{}, illTyped(m, op, "return type must be (), got %s", ret)
		}
		if raw < 0 || raw > math.MaxInt {
			return Value{}, machine.NewUBError(op.String(), machine.UnknownLock, m.Active(),
				"lock id %d is out of range", raw)
		}

		id := ids.LockID(raw)
		var err error
		if op == LockAcquire {
			err = m.Acquire(id)
		} else {
			err = m.Release(id)
		}
		if err != nil {
			return Value{}, err
		}
		return Unit(), nil

	default:
		return Value{}, illTyped(m, op, "unknown intrinsic")
	}
}

func illTyped(m *machine.Machine, op Op, format string, args ...any) error {
	return machine.NewUBError(op.String(), machine.IllTypedIntrinsic, m.Active(), format, args...)
}
