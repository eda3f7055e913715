// Package explore runs scenario programs on the lock machine and explores
// their interleavings.
//
// Run executes one interleaving. It plays the roles the lock subsystem
// leaves to its environment: the scheduler (which enabled thread steps
// next), the instruction evaluator (which intrinsic a step calls), and the
// happens-before consumer (vector clocks joined along release/wake edges).
//
// Explore enumerates every resolution of the daemonic choices, both
// scheduling and lock hand-off, by stateless depth-first search: each run
// replays a prefix of choice indexes from scratch, and the recorded choice
// points yield the next prefix. Subtrees below the first choice run in
// parallel. Sampling mode instead runs a fixed number of seeded random
// interleavings.
//
// Outcomes:
//
//	Stop       all threads finished
//	UB         undefined behavior (unknown lock, release by a non-holder,
//	           ill-typed intrinsic call)
//	Deadlock   no enabled thread, some blocked; see Result.Deadlock
//	StepLimit  the run exceeded RunOptions.MaxSteps
//
// Example:
//
//	prog, _ := program.ParseFile("examples/abba_deadlock.lm")
//	sum, err := explore.Explore(ctx, prog, explore.DefaultOptions())
//	if err != nil {
//		return err
//	}
//	sum.Format(os.Stdout)
package explore
