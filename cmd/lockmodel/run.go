// run.go implements the 'lockmodel run' command.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/kolkov/lockmodel/internal/explore"
	"github.com/kolkov/lockmodel/internal/explore/waitgraph"
	"github.com/kolkov/lockmodel/internal/machine/ids"
	"github.com/kolkov/lockmodel/internal/machine/nondet"
	"github.com/kolkov/lockmodel/internal/program"
)

// runConfig holds the parsed flags of 'lockmodel run'.
type runConfig struct {
	commonConfig
	picker  string
	seed    uint64
	path    []int
	hasPath bool
}

// runCommand implements the 'lockmodel run' command.
//
// This command executes exactly one interleaving of the scenario and prints
// its trace, the final lock and thread states and the choice path that
// reproduces it.
//
// Flow:
//  1. Parse arguments (flags + scenario file)
//  2. Parse the scenario
//  3. Run it under the selected picker (-path replays a recorded run)
//  4. Print the report, and the wait-for graph with -dot
//  5. Exit with the outcome's exit code
//
// Example:
//
//	lockmodel run examples/handoff.lm
//	lockmodel run -picker random -seed 42 examples/three_waiters.lm
//	lockmodel run -path 1.0 examples/abba_deadlock.lm
func runCommand(args []string) {
	config, err := parseRunArgs(args)
	if err != nil {
		fail("%v", err)
	}
	if err := config.applyEnv(os.Getenv); err != nil {
		fail("%v", err)
	}

	prog, err := program.ParseFile(config.scenario)
	if err != nil {
		fail("%v", err)
	}

	log, closeLog, err := config.logger(os.Stderr)
	if err != nil {
		fail("%v", err)
	}
	defer func() { _ = closeLog() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := explore.Run(ctx, prog, explore.RunOptions{
		Picker:   config.newPicker(),
		MaxSteps: config.maxSteps,
		Logger:   log,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Run failed: %v\n", err)
		_ = closeLog()
		os.Exit(1)
	}

	printResult(os.Stdout, res, config.commonConfig)
	_ = closeLog()
	stop()
	os.Exit(res.Outcome.ExitCode())
}

// parseRunArgs parses the flags of 'lockmodel run'.
//
// Supported forms:
//
//	lockmodel run file.lm
//	lockmodel run -picker random -seed 7 file.lm
//	lockmodel run -path=1.0.2 -plain file.lm
//
// Flags and the scenario file may come in any order.
func parseRunArgs(args []string) (*runConfig, error) {
	config := &runConfig{commonConfig: defaultCommon(), picker: "first"}

	positional, err := forEachFlag(args, func(flag, value string) error {
		if ok, err := config.parseCommonFlag(flag, value); ok {
			return err
		}
		switch flag {
		case "-picker":
			if value != "first" && value != "random" {
				return fmt.Errorf("-picker must be first or random, got %q", value)
			}
			config.picker = value
		case "-seed":
			seed, err := parseSeed(value)
			if err != nil {
				return err
			}
			config.seed = seed
		case "-path":
			path, err := nondet.ParsePath(value)
			if err != nil {
				return fmt.Errorf("-path: %w", err)
			}
			config.path = path
			config.hasPath = true
		default:
			return fmt.Errorf("unknown flag %s for run", flag)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if config.hasPath && config.picker == "random" {
		return nil, fmt.Errorf("-path and -picker random are mutually exclusive")
	}
	if config.scenario, err = scenarioArg(positional); err != nil {
		return nil, err
	}
	return config, nil
}

// newPicker returns the scheduler selected by the flags.
func (c *runConfig) newPicker() nondet.Picker {
	switch {
	case c.hasPath:
		return nondet.NewScript(c.path)
	case c.picker == "random":
		return nondet.NewRandom(c.seed)
	default:
		return nondet.First{}
	}
}

// printResult writes the run report and, with -dot, the wait-for graph.
func printResult(w io.Writer, res *explore.Result, config commonConfig) {
	if config.plain {
		res.Format(w)
	} else {
		fmt.Fprintln(w, renderResult(res))
	}
	if config.dot && res.Deadlock != nil {
		fmt.Fprint(w, waitForDot(res))
	}
}

// waitForDot renders the final wait-for graph of res in DOT.
func waitForDot(res *explore.Result) string {
	g := waitgraph.Build(res.Locks, res.Threads)
	return g.Dot(func(t ids.ThreadID) string {
		if int(t) < len(res.Names) {
			return fmt.Sprintf("%s %s", t, res.Names[t])
		}
		return t.String()
	})
}
