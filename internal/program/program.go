// Package program defines scenario programs: small straight-line threads of
// lock intrinsic calls that drive the machine.
//
// Scenario files stand in for the instruction evaluator of the full abstract
// machine. Each thread is a list of instructions; the only effects are the
// lock intrinsics, so every interleaving of a program is a sequence of
// lock.create, lock.acquire and lock.release calls.
//
// Format:
//
//	format v1.0.0          # required first line, semver with major v1
//	locks 1                # optional: pre-create L0 before any thread runs
//	thread main            # threads are spawned in declaration order
//	  create r0            # r0 := lock.create() : usize
//	  acquire r0           # lock.acquire(r0) : ()
//	  yield                # no-op step, a scheduling point
//	  release r0
//	thread worker
//	  acquire 0            # integer literal lock id
//	  release 0 : i32      # declared return type override (ill-typed)
//
// Arguments are registers (rN), integer literals, true/false or unit.
// Registers are per thread and must be written by a create before they are
// read.
package program

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kolkov/lockmodel/internal/intrinsic"
)

// InstrKind discriminates Instr.
type InstrKind uint8

const (
	// Call invokes a lock intrinsic.
	Call InstrKind = iota
	// Yield consumes a step without touching the machine.
	Yield
)

// Operand is the argument of an acquire or release: a register or a literal.
type Operand struct {
	IsReg   bool
	Reg     int
	Literal intrinsic.Value
}

// Resolve returns the operand's value given the thread's registers.
func (o Operand) Resolve(regs map[int]intrinsic.Value) (intrinsic.Value, error) {
	if !o.IsReg {
		return o.Literal, nil
	}
	v, ok := regs[o.Reg]
	if !ok {
		return intrinsic.Value{}, fmt.Errorf("register r%d read before it was written", o.Reg)
	}
	return v, nil
}

// String renders the operand in source form.
func (o Operand) String() string {
	if o.IsReg {
		return "r" + strconv.Itoa(o.Reg)
	}
	if o.Literal.Kind() == intrinsic.KindUnit {
		return "unit"
	}
	return o.Literal.String()
}

// Instr is one instruction of a thread.
//
// Layout:
//   - Kind: Call or Yield
//   - Op: intrinsic to call (Call only)
//   - Dst: register receiving the result of create, -1 for none
//   - Arg: argument of acquire/release
//   - Ret: declared return type passed to the intrinsic
//   - Line: source line, for traces and errors
type Instr struct {
	Kind InstrKind
	Op   intrinsic.Op
	Dst  int
	Arg  Operand
	Ret  intrinsic.Type
	Line int
}

// Args returns the intrinsic arguments of a Call instruction, resolved
// against regs. Literal arguments are declared usize.
func (in Instr) Args(regs map[int]intrinsic.Value) ([]intrinsic.Arg, error) {
	if in.Op.Arity() == 0 {
		return nil, nil
	}
	v, err := in.Arg.Resolve(regs)
	if err != nil {
		return nil, err
	}
	return []intrinsic.Arg{{Value: v, Type: intrinsic.IntType(false, 8)}}, nil
}

// String renders the instruction in source form ("acquire r0", "create r1 : u8").
func (in Instr) String() string {
	if in.Kind == Yield {
		return "yield"
	}
	var b strings.Builder
	b.WriteString(strings.TrimPrefix(in.Op.String(), "lock."))
	switch {
	case in.Op == intrinsic.LockCreate && in.Dst >= 0:
		b.WriteString(" r" + strconv.Itoa(in.Dst))
	case in.Op != intrinsic.LockCreate:
		b.WriteString(" " + in.Arg.String())
	}
	if in.Ret != defaultRet(in.Op) {
		b.WriteString(" : " + in.Ret.String())
	}
	return b.String()
}

func defaultRet(op intrinsic.Op) intrinsic.Type {
	if op == intrinsic.LockCreate {
		return intrinsic.IntType(false, 8)
	}
	return intrinsic.UnitType()
}

// Thread is a named instruction sequence.
type Thread struct {
	Name string
	Code []Instr
}

// Program is a parsed scenario.
type Program struct {
	// Format is the declared format version ("v1.0.0").
	Format string
	// Locks is the number of locks created before any thread runs; they
	// get ids 0 .. Locks-1.
	Locks int
	// Threads in declaration order; thread i runs as ThreadID i.
	Threads []Thread
}

// Steps returns the total number of instructions across all threads.
func (p *Program) Steps() int {
	n := 0
	for _, th := range p.Threads {
		n += len(th.Code)
	}
	return n
}
