// explore_test.go tests the 'lockmodel explore' command.
package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/kolkov/lockmodel/internal/explore"
	"github.com/kolkov/lockmodel/internal/program"
)

const abbaScenario = `format v1
locks 2
thread a
  acquire 0
  acquire 1
  release 1
  release 0
thread b
  acquire 1
  acquire 0
  release 0
  release 1
`

// TestParseExploreArgs_Defaults tests that defaults match explore.DefaultOptions.
func TestParseExploreArgs_Defaults(t *testing.T) {
	config, err := parseExploreArgs([]string{"abba.lm"})
	if err != nil {
		t.Fatalf("parseExploreArgs() error: %v", err)
	}

	defaults := explore.DefaultOptions()
	opts := config.options()
	if opts.MaxRuns != defaults.MaxRuns {
		t.Errorf("Expected max runs %d, got %d", defaults.MaxRuns, opts.MaxRuns)
	}
	if opts.MaxSteps != defaults.MaxSteps {
		t.Errorf("Expected max steps %d, got %d", defaults.MaxSteps, opts.MaxSteps)
	}
	if opts.Workers != defaults.Workers {
		t.Errorf("Expected %d workers, got %d", defaults.Workers, opts.Workers)
	}
	if opts.Sample != 0 {
		t.Errorf("Expected exhaustive mode, got sample %d", opts.Sample)
	}
}

// TestParseExploreArgs_Flags tests every explore flag.
func TestParseExploreArgs_Flags(t *testing.T) {
	args := []string{"-max-runs", "10", "-workers=3", "-sample", "25", "-seed", "0x10", "-plain", "abba.lm"}
	config, err := parseExploreArgs(args)
	if err != nil {
		t.Fatalf("parseExploreArgs() error: %v", err)
	}

	opts := config.options()
	if opts.MaxRuns != 10 {
		t.Errorf("Expected max runs 10, got %d", opts.MaxRuns)
	}
	if opts.Workers != 3 {
		t.Errorf("Expected 3 workers, got %d", opts.Workers)
	}
	if opts.Sample != 25 {
		t.Errorf("Expected sample 25, got %d", opts.Sample)
	}
	if opts.Seed != 16 {
		t.Errorf("Expected seed 16, got %d", opts.Seed)
	}
	if !config.plain {
		t.Error("Expected -plain to be set")
	}
}

// TestParseExploreArgs_Errors tests rejected command lines.
func TestParseExploreArgs_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no args", nil, "no scenario file"},
		{"zero workers", []string{"-workers", "0", "a.lm"}, "positive integer"},
		{"negative runs", []string{"-max-runs", "-3", "a.lm"}, "non-negative integer"},
		{"run-only flag", []string{"-picker", "random", "a.lm"}, "unknown flag -picker"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseExploreArgs(tt.args)
			if err == nil {
				t.Fatalf("Expected error containing %q, got nil", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

// TestExploreApplyEnv tests LOCKMODEL_WORKERS overriding -workers.
func TestExploreApplyEnv(t *testing.T) {
	config, err := parseExploreArgs([]string{"-workers", "2", "a.lm"})
	if err != nil {
		t.Fatalf("parseExploreArgs() error: %v", err)
	}

	env := map[string]string{"LOCKMODEL_WORKERS": "5", "LOCKMODEL_LOG_LEVEL": "debug"}
	if err := config.applyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("applyEnv() error: %v", err)
	}
	if config.workers != 5 {
		t.Errorf("Expected 5 workers, got %d", config.workers)
	}
	if config.logLevel != "DEBUG" {
		t.Errorf("Expected DEBUG, got %s", config.logLevel)
	}

	env["LOCKMODEL_WORKERS"] = "none"
	if err := config.applyEnv(func(k string) string { return env[k] }); err == nil {
		t.Error("Expected error for invalid LOCKMODEL_WORKERS")
	}
}

// TestPrintSummary tests the styled summary and the DOT graphs of
// deadlocked witnesses.
func TestPrintSummary(t *testing.T) {
	prog, err := program.ParseString(abbaScenario)
	if err != nil {
		t.Fatalf("ParseString() error: %v", err)
	}
	config, err := parseExploreArgs([]string{"-dot", "abba.lm"})
	if err != nil {
		t.Fatalf("parseExploreArgs() error: %v", err)
	}

	ctx := context.Background()
	sum, err := explore.Explore(ctx, prog, config.options())
	if err != nil {
		t.Fatalf("Explore() error: %v", err)
	}
	if sum.Worst() != explore.Deadlock {
		t.Fatalf("Expected worst outcome Deadlock, got %s", sum.Worst())
	}

	var buf bytes.Buffer
	if err := printSummary(ctx, &buf, prog, sum, config); err != nil {
		t.Fatalf("printSummary() error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"lockmodel explore (exhaustive)",
		"Stop",
		"Deadlock",
		"cycle: T0 -L1-> T1 -L0-> T0",
		"digraph",
		"T1 b",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}

	config.plain = true
	config.dot = false
	buf.Reset()
	if err := printSummary(ctx, &buf, prog, sum, config); err != nil {
		t.Fatalf("printSummary() error: %v", err)
	}
	if !strings.Contains(buf.String(), "EXPLORATION SUMMARY (exhaustive)") {
		t.Errorf("Expected plain summary, got:\n%s", buf.String())
	}
}
