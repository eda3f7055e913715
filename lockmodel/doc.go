// Package lockmodel provides the public API of the lock model: the lock
// and thread-blocking subsystem of an abstract machine for a concurrent
// language, plus a model checker that explores its interleavings.
//
// # Quick Start
//
// Scenario programs are checked from the command line:
//
//	$ lockmodel explore examples/abba_deadlock.lm
//
// or from Go:
//
//	prog, err := lockmodel.ParseProgramFile("examples/abba_deadlock.lm")
//	if err != nil {
//		log.Fatal(err)
//	}
//	sum, err := lockmodel.Explore(ctx, prog, lockmodel.DefaultOptions())
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(sum.Count(lockmodel.Deadlock), "deadlocking runs")
//
// # API Overview
//
// The package provides:
//   - The machine and its operations: [NewMachine], [Machine.Create],
//     [Machine.Acquire], [Machine.Release]
//   - Intrinsic calls with value and type checking: [Call]
//   - Scenario programs: [ParseProgram], [ParseProgramFile]
//   - Single runs and exhaustive exploration: [Run], [Explore]
//   - Version information: [GetInfo], [Version]
//
// # Lock Semantics
//
// A lock is Unlocked or LockedBy(t). Acquire on an unlocked lock takes it;
// acquire on a held lock, including one the caller holds itself, blocks
// the caller. Release by the holder either unlocks the lock or, if threads
// are waiting, hands it directly to one of them. The waiter to wake is a
// daemonic choice: Explore tries every one.
//
// Using a lock id that was never created, or releasing a lock the thread
// does not hold, is undefined behavior. It is reported as an error that
// wraps [ErrUndefinedBehavior] and ends the run.
//
// # Happens-Before
//
// Each hand-off adds the woken thread to the machine's synchronized set.
// The explorer consumes the set at every step and joins the releaser's
// vector clock into the woken thread's clock; the clocks are printed in run
// reports.
//
// # Thread Safety
//
// A Machine is not safe for concurrent use. Explore runs each interleaving
// on its own Machine and parallelizes across interleavings.
package lockmodel
