package explore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/kolkov/lockmodel/internal/explore/waitgraph"
	"github.com/kolkov/lockmodel/internal/intrinsic"
	"github.com/kolkov/lockmodel/internal/logging"
	"github.com/kolkov/lockmodel/internal/machine"
	"github.com/kolkov/lockmodel/internal/machine/ids"
	"github.com/kolkov/lockmodel/internal/machine/locks"
	"github.com/kolkov/lockmodel/internal/machine/nondet"
	"github.com/kolkov/lockmodel/internal/machine/threads"
	"github.com/kolkov/lockmodel/internal/program"
)

// DefaultMaxSteps bounds a single run.
const DefaultMaxSteps = 10000

// ErrReplay is returned when a picker cannot answer a scheduling choice,
// which means a replayed choice path no longer matches the program.
var ErrReplay = errors.New("choice path does not replay")

// RunOptions configures a single run.
type RunOptions struct {
	// Picker answers both scheduling and wake choices. Default: nondet.First.
	Picker nondet.Picker

	// MaxSteps bounds the number of steps. Default: DefaultMaxSteps.
	MaxSteps int

	// Logger receives machine transitions and undefined behavior at Debug.
	Logger *slog.Logger
}

// Event is one executed step.
type Event struct {
	Step   int
	Thread ids.ThreadID
	Name   string
	Line   int
	Instr  string
	// Result is the intrinsic result, "blocked on Lx", or the UB message.
	Result string
	// Woken lists threads handed a lock by this step.
	Woken []ids.ThreadID
	// Clock is the active thread's vector clock after the step.
	Clock string
}

// String renders the event as one trace line.
func (e Event) String() string {
	s := fmt.Sprintf("%4d  %-10s %-22s -> %s", e.Step, e.Name, e.Instr, e.Result)
	for _, w := range e.Woken {
		s += fmt.Sprintf(" (woke %s)", w)
	}
	return s
}

// Result describes one complete run.
//
// Layout:
//   - Outcome, Err: how the run ended; Err is the *machine.UBError for UB
//   - Trace: executed steps in order
//   - Choices: branching choice points answered, in order
//   - Locks, Threads, Clocks: final state, indexed by id
//   - Names: thread names, indexed by id
//   - Deadlock: wait-for analysis when Outcome is Deadlock
type Result struct {
	Outcome  Outcome
	Err      error
	Trace    []Event
	Choices  []nondet.Choice
	Locks    []locks.State
	Threads  []threads.State
	Clocks   []string
	Names    []string
	Deadlock *waitgraph.Report
	Steps    int
}

// Path returns the choice index path that replays this run.
func (r *Result) Path() []int {
	return nondet.Path(r.Choices)
}

// recorder wraps a picker so the runner sees every branching choice,
// including wake choices answered inside the machine.
//
// A wake choice the inner picker cannot answer is remembered in err and
// answered with the first waiter, so the machine completes the release
// and the runner fails the run after the step.
type recorder struct {
	inner   nondet.Picker
	choices []nondet.Choice
	err     error
}

func (r *recorder) Pick(kind nondet.Kind, candidates []ids.ThreadID) (ids.ThreadID, bool) {
	t, ok := r.inner.Pick(kind, candidates)
	if kind == nondet.Wake && len(candidates) > 0 && (!ok || !slices.Contains(candidates, t)) {
		if r.err == nil {
			r.err = fmt.Errorf("wake among %v at choice %d: %w", candidates, len(r.choices), ErrReplay)
		}
		return candidates[0], true
	}
	if ok && len(candidates) > 1 {
		idx := 0
		for i, c := range candidates {
			if c == t {
				idx = i
				break
			}
		}
		r.choices = append(r.choices, nondet.Choice{Kind: kind, Index: idx, Width: len(candidates), Picked: t})
	}
	return t, ok
}

// runner holds the per-run state outside the machine: program counters,
// registers and pending acquires.
type runner struct {
	prog    *program.Program
	m       *machine.Machine
	picker  *recorder
	log     *slog.Logger
	pc      []int
	regs    []map[int]intrinsic.Value
	pending []bool
	res     *Result
}

// Run executes one interleaving of prog.
//
// Algorithm (per step):
//  1. Enabled threads are the scheduling candidates; none left means Stop
//     (all finished) or Deadlock
//  2. Pick one (choice point Schedule), make it active, execute its next
//     instruction through the intrinsic layer
//  3. A blocked acquire leaves the pc in place; a release that hands the
//     lock over completes the waiter's acquire
//  4. Check the machine invariants, join the releaser's clock into every
//     synchronized thread, clear the synchronized set
//
// Undefined behavior ends the run with Outcome UB. The returned error is
// reserved for harness failures: a broken invariant, a choice path that
// does not replay, or ctx cancellation.
func Run(ctx context.Context, prog *program.Program, opts RunOptions) (*Result, error) {
	if opts.Picker == nil {
		opts.Picker = nondet.First{}
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	rec := &recorder{inner: opts.Picker}
	r := &runner{
		prog:    prog,
		m:       machine.NewWithOptions(machine.Options{Picker: rec, Logger: opts.Logger}),
		picker:  rec,
		log:     opts.Logger,
		pc:      make([]int, len(prog.Threads)),
		regs:    make([]map[int]intrinsic.Value, len(prog.Threads)),
		pending: make([]bool, len(prog.Threads)),
		res:     &Result{},
	}
	for range prog.Locks {
		r.m.Create()
	}
	for i, th := range prog.Threads {
		r.m.Threads().Spawn(th.Name)
		r.regs[i] = make(map[int]intrinsic.Value)
		r.res.Names = append(r.res.Names, th.Name)
	}
	for i := range prog.Threads {
		r.finishIfDone(ids.ThreadID(i))
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		runnable := r.m.Threads().Enabled()
		if len(runnable) == 0 {
			if r.allTerminated() {
				r.res.Outcome = Stop
			} else {
				r.res.Outcome = Deadlock
				r.res.Deadlock = waitgraph.Analyze(r.m.Locks().Snapshot(), r.m.Threads().Snapshot())
				r.log.Debug("deadlock", slog.String("analysis", r.res.Deadlock.String()))
			}
			return r.finish(), nil
		}
		if r.res.Steps >= opts.MaxSteps {
			r.res.Outcome = StepLimit
			return r.finish(), nil
		}

		t, ok := rec.Pick(nondet.Schedule, runnable)
		if !ok || !slices.Contains(runnable, t) {
			return nil, fmt.Errorf("schedule among %v at step %d: %w", runnable, r.res.Steps, ErrReplay)
		}
		done, err := r.step(t)
		if err != nil {
			return nil, err
		}
		if rec.err != nil {
			return nil, rec.err
		}
		if done {
			return r.finish(), nil
		}
	}
}

// step executes the next instruction of thread t. It returns true when the
// run ended in undefined behavior.
func (r *runner) step(t ids.ThreadID) (bool, error) {
	r.m.SetActive(t)
	code := r.prog.Threads[t].Code
	in := code[r.pc[t]]
	r.res.Steps++

	ev := Event{
		Step:   r.res.Steps,
		Thread: t,
		Name:   r.prog.Threads[t].Name,
		Line:   in.Line,
		Instr:  in.String(),
	}

	switch in.Kind {
	case program.Yield:
		ev.Result = intrinsic.Unit().String()
		r.pc[t]++

	case program.Call:
		args, err := in.Args(r.regs[t])
		if err != nil {
			return false, fmt.Errorf("%s line %d: %w", ev.Name, in.Line, err)
		}
		v, err := intrinsic.Call(r.m, in.Op, args, in.Ret)
		if err != nil {
			if !errors.Is(err, machine.ErrUndefinedBehavior) {
				return false, err
			}
			ev.Result = err.Error()
			r.res.Outcome = UB
			r.res.Err = err
			r.record(ev, t)
			logging.WithThread(r.log, ev.Name).Debug("undefined behavior",
				slog.Int("line", in.Line),
				slog.String("instr", ev.Instr),
				slog.Any("err", err))
			return true, nil
		}

		if l, blocked := r.m.Threads().State(t).BlockedOn(); blocked {
			ev.Result = "blocked on " + l.String()
			r.pending[t] = true
		} else {
			ev.Result = v.String()
			if in.Op == intrinsic.LockCreate && in.Dst >= 0 {
				r.regs[t][in.Dst] = v
			}
			r.pc[t]++
		}
	}

	if err := r.m.CheckInvariants(); err != nil {
		return false, err
	}
	ev.Woken = r.consumeSynchronized(t)
	r.finishIfDone(t)
	r.record(ev, t)
	return false, nil
}

// consumeSynchronized hands the releaser's clock to every thread woken in
// this step, completes their pending acquires, and clears the set.
func (r *runner) consumeSynchronized(releaser ids.ThreadID) []ids.ThreadID {
	woken := r.m.Synchronized()
	if len(woken) == 0 {
		return nil
	}
	rel := r.m.Threads().MustGet(releaser)
	for _, w := range woken {
		th := r.m.Threads().MustGet(w)
		th.C.Join(rel.C)
		th.IncrementClock()
		if !rel.C.HappensBefore(th.C) {
			panic(&machine.InvariantViolation{
				Invariant: "release-order",
				Detail:    fmt.Sprintf("release by %s %s does not happen before %s %s", releaser, rel.C, w, th.C),
			})
		}

		if !r.pending[w] {
			panic(&machine.InvariantViolation{
				Invariant: "wake-pending",
				Detail:    fmt.Sprintf("%s woken without a pending acquire", w),
			})
		}
		r.pending[w] = false
		r.pc[w]++
		r.finishIfDone(w)
	}
	rel.IncrementClock()
	r.m.ClearSynchronized()
	return woken
}

func (r *runner) record(ev Event, t ids.ThreadID) {
	ev.Clock = r.m.Threads().MustGet(t).C.String()
	r.res.Trace = append(r.res.Trace, ev)
}

func (r *runner) finishIfDone(t ids.ThreadID) {
	if r.pc[t] >= len(r.prog.Threads[t].Code) && r.m.Threads().State(t).IsEnabled() {
		r.m.Threads().SetState(t, threads.Terminated())
	}
}

func (r *runner) allTerminated() bool {
	for _, st := range r.m.Threads().Snapshot() {
		if !st.IsTerminated() {
			return false
		}
	}
	return true
}

func (r *runner) finish() *Result {
	r.res.Choices = r.picker.choices
	r.res.Locks = r.m.Locks().Snapshot()
	r.res.Threads = r.m.Threads().Snapshot()
	for _, th := range r.m.Threads().All() {
		r.res.Clocks = append(r.res.Clocks, th.C.String())
	}
	return r.res
}
