package explore

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/kolkov/lockmodel/internal/explore/depot"
	"github.com/kolkov/lockmodel/internal/logging"
	"github.com/kolkov/lockmodel/internal/machine/nondet"
	"github.com/kolkov/lockmodel/internal/program"
)

// Exploration modes reported in Summary.Mode.
const (
	ModeExhaustive = "exhaustive"
	ModeSample     = "sample"
)

// Options configures an exploration.
type Options struct {
	// MaxRuns caps the number of runs; 0 means no cap. Hitting the cap sets
	// Summary.Truncated.
	MaxRuns int

	// MaxSteps bounds each run. Default: DefaultMaxSteps.
	MaxSteps int

	// Workers is the number of runs executed in parallel.
	// Default: GOMAXPROCS.
	Workers int

	// Sample switches to random sampling: run Sample interleavings with
	// pickers seeded Seed, Seed+1, ... instead of enumerating all of them.
	Sample int
	Seed   uint64

	// Logger receives per-run logs tagged with the run number and path.
	Logger *slog.Logger

	// Observe, if set, is called with every completed run. Calls are
	// serialized but come from worker goroutines in no particular order.
	Observe func(*Result)
}

// DefaultOptions returns the options used by the CLI when no flag is given.
func DefaultOptions() Options {
	return Options{
		MaxRuns:  100000,
		MaxSteps: DefaultMaxSteps,
		Workers:  runtime.GOMAXPROCS(0),
	}
}

// Summary aggregates the runs of one exploration.
type Summary struct {
	Mode      string
	Runs      int
	Outcomes  map[Outcome]int
	Distinct  []*depot.Entry
	Stats     depot.Stats
	Truncated bool
}

// Count returns the number of runs that ended in o.
func (s *Summary) Count(o Outcome) int {
	return s.Outcomes[o]
}

// Worst returns the most severe outcome observed.
func (s *Summary) Worst() Outcome {
	return Worst(s.Outcomes)
}

// explorer holds the state shared by exploration workers.
type explorer struct {
	prog      *program.Program
	opts      Options
	depot     *depot.Depot
	runs      atomic.Int64
	truncated atomic.Bool

	mu       sync.Mutex
	outcomes map[Outcome]int
}

// Explore runs prog under every resolution of its non-determinism.
//
// Algorithm (exhaustive mode):
//  1. Run once with an empty choice prefix; every branching choice point
//     answers with its first candidate and is recorded
//  2. The width of the first choice point splits the tree into subtrees,
//     one per candidate, explored in parallel by up to Workers goroutines
//  3. Within a subtree, the next prefix is the recorded path with its
//     deepest non-exhausted choice advanced (depth-first, replay from
//     scratch); choice 0 stays fixed
//
// Both scheduling choices and wake choices are branched on, so every thread
// a release could hand a lock to is tried.
//
// Terminal states are deduplicated in a depot with the smallest witness
// path. The returned error is a harness failure or ctx cancellation;
// undefined behavior and deadlocks are outcomes, not errors.
func Explore(ctx context.Context, prog *program.Program, opts Options) (*Summary, error) {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	e := &explorer{
		prog:     prog,
		opts:     opts,
		depot:    depot.New(),
		outcomes: make(map[Outcome]int),
	}

	mode := ModeExhaustive
	var err error
	if opts.Sample > 0 {
		mode = ModeSample
		err = e.sample(ctx)
	} else {
		err = e.exhaustive(ctx)
	}
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return &Summary{
		Mode:      mode,
		Runs:      int(e.runs.Load()),
		Outcomes:  e.outcomes,
		Distinct:  e.depot.Entries(),
		Stats:     e.depot.Stats(),
		Truncated: e.truncated.Load(),
	}, nil
}

func (e *explorer) exhaustive(ctx context.Context) error {
	n, ok := e.reserve()
	if !ok {
		return nil
	}
	first, err := e.run(ctx, n, nondet.NewScript(nil))
	if err != nil {
		return err
	}
	if len(first.Choices) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i := range first.Choices[0].Width {
		g.Go(func() error {
			res := first
			if i > 0 {
				n, ok := e.reserve()
				if !ok {
					return nil
				}
				var err error
				if res, err = e.run(gctx, n, nondet.NewScript([]int{i})); err != nil {
					return err
				}
			}
			return e.dfs(gctx, res)
		})
	}
	return g.Wait()
}

// dfs explores the subtree below the first choice of res.
func (e *explorer) dfs(ctx context.Context, res *Result) error {
	for {
		next, ok := nondet.Next(res.Choices, 1)
		if !ok {
			return nil
		}
		n, ok := e.reserve()
		if !ok {
			return nil
		}
		var err error
		if res, err = e.run(ctx, n, nondet.NewScript(next)); err != nil {
			return err
		}
	}
}

func (e *explorer) sample(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i := range e.opts.Sample {
		n, ok := e.reserve()
		if !ok {
			break
		}
		g.Go(func() error {
			_, err := e.run(gctx, n, nondet.NewRandom(e.opts.Seed+uint64(i)))
			return err
		})
	}
	return g.Wait()
}

// reserve claims one run from the MaxRuns budget and returns its number.
func (e *explorer) reserve() (int, bool) {
	n := e.runs.Add(1)
	if e.opts.MaxRuns > 0 && n > int64(e.opts.MaxRuns) {
		e.runs.Add(-1)
		e.truncated.Store(true)
		return 0, false
	}
	return int(n), true
}

func (e *explorer) run(ctx context.Context, n int, picker nondet.Picker) (*Result, error) {
	res, err := Run(ctx, e.prog, RunOptions{
		Picker:   picker,
		MaxSteps: e.opts.MaxSteps,
		Logger:   e.opts.Logger.With(slog.Int("run", n)),
	})
	if err != nil {
		return nil, err
	}

	path := res.Path()
	entry, fresh := e.depot.Record(stateOf(res), path)
	if fresh {
		level := slog.LevelInfo
		if res.Outcome != Stop {
			level = slog.LevelWarn
		}
		logging.WithRun(e.opts.Logger, n, nondet.FormatPath(path)).Log(ctx, level, "new terminal state",
			slog.String("outcome", res.Outcome.String()),
			slog.Uint64("fingerprint", entry.Fingerprint))
	}

	e.mu.Lock()
	e.outcomes[res.Outcome]++
	if e.opts.Observe != nil {
		e.opts.Observe(res)
	}
	e.mu.Unlock()
	return res, nil
}

func stateOf(res *Result) depot.State {
	s := depot.State{
		Outcome: res.Outcome.String(),
		Locks:   res.Locks,
		Threads: res.Threads,
	}
	switch {
	case res.Err != nil:
		s.Detail = res.Err.Error()
	case res.Deadlock != nil:
		s.Detail = res.Deadlock.String()
	}
	return s
}

// Replay re-executes the run identified by a choice path.
//
// The path must be consumed exactly: an index outside its choice point, or
// indexes left over when the run ends, fail with ErrReplay.
func Replay(ctx context.Context, prog *program.Program, path []int, opts RunOptions) (*Result, error) {
	opts.Picker = nondet.NewScript(path)
	res, err := Run(ctx, prog, opts)
	if err != nil {
		return nil, err
	}
	if len(path) > len(res.Choices) {
		return nil, fmt.Errorf("path %s has %d choices, run made %d: %w",
			nondet.FormatPath(path), len(path), len(res.Choices), ErrReplay)
	}
	return res, nil
}
