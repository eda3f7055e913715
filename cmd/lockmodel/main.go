// Package main implements the lockmodel CLI tool.
//
// The lockmodel tool executes scenario programs against the lock and
// thread-blocking model of the abstract machine. It works by:
//
//  1. Parsing a scenario file (format v1) into threads of lock intrinsics
//  2. Running the threads under a scheduler picker, one interleaving at a
//     time, with every machine invariant checked after each step
//  3. Reporting how each run ended: stop, undefined behavior, deadlock or
//     step limit
//
// Usage:
//
//	lockmodel run abba.lm              # One interleaving, first-candidate scheduler
//	lockmodel explore abba.lm          # Every interleaving, distinct outcomes
//	lockmodel check abba.lm            # Parse only
//
// The process exit code is the worst outcome observed (0 stop, 2 undefined
// behavior, 3 deadlock, 4 step limit) or 1 on usage and parse errors.
package main

import (
	"fmt"
	"os"

	"github.com/kolkov/lockmodel/lockmodel"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "run":
		runCommand(os.Args[2:])
	case "explore":
		exploreCommand(os.Args[2:])
	case "check":
		checkCommand(os.Args[2:])
	case "version", "--version", "-v":
		info := lockmodel.GetInfo()
		fmt.Printf("lockmodel version %s (scenario format %s)\n", info.Version, info.ScenarioFormat)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`lockmodel - Lock and thread-blocking model checker

USAGE:
    lockmodel <command> [flags] <scenario.lm>

COMMANDS:
    run        Execute one interleaving of a scenario
    explore    Execute every interleaving (or a random sample)
    check      Parse a scenario and report errors
    version    Show version information
    help       Show this help message

RUN FLAGS:
    -picker first|random   Scheduler for run (default: first)
    -seed N                Seed for -picker random
    -path 0.1.1            Replay a choice path printed by explore

EXPLORE FLAGS:
    -max-runs N            Stop after N runs (default: 100000, 0 = no cap)
    -workers N             Parallel runs (default: GOMAXPROCS)
    -sample N              Run N random interleavings instead of all
    -seed N                First seed for -sample

COMMON FLAGS:
    -max-steps N           Step bound per run (default: 10000)
    -log-level LEVEL       debug, info, warn or error (default: warn)
    -log-format FORMAT     text or json (default: text)
    -log-file PATH         Write logs to PATH instead of stderr
    -plain                 Plain text report, no colors or tables
    -dot                   Print the wait-for graph of deadlocks in DOT

ENVIRONMENT:
    LOCKMODEL_LOG_LEVEL    Overrides -log-level
    LOCKMODEL_WORKERS      Overrides -workers

EXIT CODES:
    0 stop, 1 usage or parse error, 2 undefined behavior,
    3 deadlock, 4 step limit exceeded

EXAMPLES:
    # Find the lock-order inversion in a scenario
    lockmodel explore examples/abba_deadlock.lm

    # Replay the deadlocking interleaving it reports
    lockmodel run -path 1 examples/abba_deadlock.lm

    # Render the wait-for graph with graphviz
    lockmodel run -path 1 -dot examples/abba_deadlock.lm | dot -Tsvg > wait.svg

`)
}

// checkCommand implements the 'lockmodel check' command.
//
// Example:
//
//	lockmodel check examples/handoff.lm
func checkCommand(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Error: check takes exactly one scenario file")
		os.Exit(1)
	}
	prog, err := lockmodel.ParseProgramFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s: format %s, %d threads, %d instructions\n",
		args[0], prog.Format, len(prog.Threads), prog.Steps())
}
