// explore.go implements the 'lockmodel explore' command.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/kolkov/lockmodel/internal/explore"
	"github.com/kolkov/lockmodel/internal/program"
)

// exploreConfig holds the parsed flags of 'lockmodel explore'.
type exploreConfig struct {
	commonConfig
	maxRuns int
	workers int
	sample  int
	seed    uint64
}

// exploreCommand implements the 'lockmodel explore' command.
//
// This command enumerates the interleavings of a scenario depth-first,
// splitting the first choice point across workers, and prints every distinct
// final state with the shortest choice path that reaches it. With -sample it
// runs that many randomly scheduled interleavings instead.
//
// Example:
//
//	lockmodel explore examples/abba_deadlock.lm
//	lockmodel explore -workers 1 -max-runs 500 examples/three_waiters.lm
//	lockmodel explore -sample 1000 -seed 3 examples/three_waiters.lm
func exploreCommand(args []string) {
	config, err := parseExploreArgs(args)
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

	opts := config.options()
	opts.Logger = log
	sum, err := explore.Explore(ctx, prog, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Exploration failed: %v\n", err)
		_ = closeLog()
		os.Exit(1)
	}

	if err := printSummary(ctx, os.Stdout, prog, sum, config); err != nil {
		fmt.Fprintf(os.Stderr, "Replay failed: %v\n", err)
	}
	_ = closeLog()
	stop()
	os.Exit(sum.Worst().ExitCode())
}

// parseExploreArgs parses the flags of 'lockmodel explore'.
//
// Defaults come from explore.DefaultOptions.
func parseExploreArgs(args []string) (*exploreConfig, error) {
	defaults := explore.DefaultOptions()
	config := &exploreConfig{
		commonConfig: defaultCommon(),
		maxRuns:      defaults.MaxRuns,
		workers:      defaults.Workers,
	}
	config.maxSteps = defaults.MaxSteps

	positional, err := forEachFlag(args, func(flag, value string) error {
		if ok, err := config.parseCommonFlag(flag, value); ok {
			return err
		}
		var err error
		switch flag {
		case "-max-runs":
			config.maxRuns, err = parseCount(flag, value)
		case "-workers":
			config.workers, err = parseWorkers(value)
		case "-sample":
			config.sample, err = parseCount(flag, value)
		case "-seed":
			config.seed, err = parseSeed(value)
		default:
			err = fmt.Errorf("unknown flag %s for explore", flag)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	if config.scenario, err = scenarioArg(positional); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnv applies LOCKMODEL_WORKERS on top of the common overrides.
func (c *exploreConfig) applyEnv(getenv func(string) string) error {
	if err := c.commonConfig.applyEnv(getenv); err != nil {
		return err
	}
	if v := getenv("LOCKMODEL_WORKERS"); v != "" {
		n, err := parseWorkers(v)
		if err != nil {
			return fmt.Errorf("LOCKMODEL_WORKERS: %w", err)
		}
		c.workers = n
	}
	return nil
}

func (c *exploreConfig) options() explore.Options {
	return explore.Options{
		MaxRuns:  c.maxRuns,
		MaxSteps: c.maxSteps,
		Workers:  c.workers,
		Sample:   c.sample,
		Seed:     c.seed,
	}
}

func parseWorkers(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("-workers must be a positive integer, got %q", value)
	}
	return n, nil
}

// printSummary writes the exploration summary. With -dot it replays the
// witness of every deadlocked state and prints its wait-for graph.
func printSummary(ctx context.Context, w io.Writer, prog *program.Program, sum *explore.Summary, config *exploreConfig) error {
	if config.plain {
		sum.Format(w)
	} else {
		fmt.Fprintln(w, renderSummary(sum))
	}
	if !config.dot {
		return nil
	}

	for _, e := range sum.Distinct {
		if e.State.Outcome != explore.Deadlock.String() {
			continue
		}
		res, err := explore.Replay(ctx, prog, e.Witness(), explore.RunOptions{MaxSteps: config.maxSteps})
		if err != nil {
			return err
		}
		fmt.Fprint(w, waitForDot(res))
	}
	return nil
}
