package lockmodel

import (
	"context"
	"io"

	"github.com/kolkov/lockmodel/internal/explore"
	"github.com/kolkov/lockmodel/internal/intrinsic"
	"github.com/kolkov/lockmodel/internal/machine"
	"github.com/kolkov/lockmodel/internal/machine/ids"
	"github.com/kolkov/lockmodel/internal/machine/nondet"
	"github.com/kolkov/lockmodel/internal/program"
)

// Core types.
type (
	// Machine is the lock state machine: lock table, thread table, active
	// thread and synchronized set.
	Machine = machine.Machine

	// MachineOptions configures NewMachineWithOptions.
	MachineOptions = machine.Options

	// LockID names a lock. Ids are dense and assigned in creation order.
	LockID = ids.LockID

	// ThreadID names a thread of the thread table.
	ThreadID = ids.ThreadID

	// UBError describes undefined behavior raised by a lock operation.
	UBError = machine.UBError

	// Picker resolves the daemonic choices of the model.
	Picker = nondet.Picker
)

// Intrinsic binding types.
type (
	Op    = intrinsic.Op
	Value = intrinsic.Value
	Type  = intrinsic.Type
	Arg   = intrinsic.Arg
)

// Lock intrinsics.
const (
	LockCreate  = intrinsic.LockCreate
	LockAcquire = intrinsic.LockAcquire
	LockRelease = intrinsic.LockRelease
)

// Scenario and exploration types.
type (
	Program = program.Program
	Result  = explore.Result
	Summary = explore.Summary
	Options = explore.Options
	Outcome = explore.Outcome
)

// Run outcomes.
const (
	Stop      = explore.Stop
	UB        = explore.UB
	Deadlock  = explore.Deadlock
	StepLimit = explore.StepLimit
)

// ErrUndefinedBehavior is wrapped by every undefined behavior error:
//
//	if errors.Is(err, lockmodel.ErrUndefinedBehavior) { ... }
var ErrUndefinedBehavior = machine.ErrUndefinedBehavior

// NewMachine creates a machine with empty tables. Wake choices pick the
// lowest waiting thread id.
func NewMachine() *Machine {
	return machine.New()
}

// NewMachineWithOptions creates a machine with a custom picker or logger.
//
// Example:
//
//	m := lockmodel.NewMachineWithOptions(lockmodel.MachineOptions{
//	    Picker: lockmodel.RandomPicker(42),
//	})
func NewMachineWithOptions(opts MachineOptions) *Machine {
	return machine.NewWithOptions(opts)
}

// RandomPicker returns a picker that resolves every choice uniformly at
// random, reproducibly for a given seed.
func RandomPicker(seed uint64) Picker {
	return nondet.NewRandom(seed)
}

// Call executes a lock intrinsic on m for the active thread.
//
// Example:
//
//	v, err := lockmodel.Call(m, lockmodel.LockCreate, nil, lockmodel.IntType(false, 8))
//	id, _ := v.AsInt()
//	_, err = lockmodel.Call(m, lockmodel.LockAcquire,
//	    []lockmodel.Arg{{Value: lockmodel.Int(id), Type: lockmodel.IntType(false, 8)}},
//	    lockmodel.UnitType())
func Call(m *Machine, op Op, args []Arg, ret Type) (Value, error) {
	return intrinsic.Call(m, op, args, ret)
}

// Int returns an integer value.
func Int(v int64) Value { return intrinsic.Int(v) }

// Unit returns the unit value.
func Unit() Value { return intrinsic.Unit() }

// IntType returns the integer type with the given signedness and byte size.
func IntType(signed bool, size int) Type { return intrinsic.IntType(signed, size) }

// UnitType returns the unit type.
func UnitType() Type { return intrinsic.UnitType() }

// ParseProgram parses a scenario program from r.
func ParseProgram(r io.Reader) (*Program, error) {
	return program.Parse(r)
}

// ParseProgramFile parses the scenario program at path.
func ParseProgramFile(path string) (*Program, error) {
	return program.ParseFile(path)
}

// Run executes one interleaving of prog, resolving choices with picker
// (nil picks the lowest id every time).
func Run(ctx context.Context, prog *Program, picker Picker) (*Result, error) {
	return explore.Run(ctx, prog, explore.RunOptions{Picker: picker})
}

// Explore runs prog under every resolution of its scheduling and wake
// choices, or a random sample of them when opts.Sample is set.
func Explore(ctx context.Context, prog *Program, opts Options) (*Summary, error) {
	return explore.Explore(ctx, prog, opts)
}

// DefaultOptions returns the default exploration options.
func DefaultOptions() Options {
	return explore.DefaultOptions()
}
