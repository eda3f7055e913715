// run_test.go tests the 'lockmodel run' command.
package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/kolkov/lockmodel/internal/explore"
	"github.com/kolkov/lockmodel/internal/logging"
	"github.com/kolkov/lockmodel/internal/machine/nondet"
	"github.com/kolkov/lockmodel/internal/program"
)

const selfDeadlock = `format v1
thread main
  create r0
  acquire r0
  acquire r0
`

// TestParseRunArgs_SimpleFile tests parsing a lone scenario file.
func TestParseRunArgs_SimpleFile(t *testing.T) {
	config, err := parseRunArgs([]string{"abba.lm"})
	if err != nil {
		t.Fatalf("parseRunArgs() error: %v", err)
	}

	if config.scenario != "abba.lm" {
		t.Errorf("Expected abba.lm, got %s", config.scenario)
	}
	if config.picker != "first" {
		t.Errorf("Expected first picker, got %s", config.picker)
	}
	if config.logLevel != logging.LevelWarn {
		t.Errorf("Expected WARN log level, got %s", config.logLevel)
	}
	if _, ok := config.newPicker().(nondet.First); !ok {
		t.Errorf("Expected nondet.First, got %T", config.newPicker())
	}
}

// TestParseRunArgs_RandomPicker tests -picker random with a seed.
func TestParseRunArgs_RandomPicker(t *testing.T) {
	config, err := parseRunArgs([]string{"-picker", "random", "-seed=42", "abba.lm"})
	if err != nil {
		t.Fatalf("parseRunArgs() error: %v", err)
	}

	if config.picker != "random" {
		t.Errorf("Expected random picker, got %s", config.picker)
	}
	if config.seed != 42 {
		t.Errorf("Expected seed 42, got %d", config.seed)
	}
	if _, ok := config.newPicker().(*nondet.Random); !ok {
		t.Errorf("Expected *nondet.Random, got %T", config.newPicker())
	}
}

// TestParseRunArgs_Path tests replaying a choice path.
func TestParseRunArgs_Path(t *testing.T) {
	config, err := parseRunArgs([]string{"abba.lm", "--path", "1.0.2", "-plain"})
	if err != nil {
		t.Fatalf("parseRunArgs() error: %v", err)
	}

	if !config.hasPath {
		t.Fatal("Expected hasPath")
	}
	expected := []int{1, 0, 2}
	if len(config.path) != len(expected) {
		t.Fatalf("Expected path %v, got %v", expected, config.path)
	}
	for i := range expected {
		if config.path[i] != expected[i] {
			t.Errorf("Path %d: expected %d, got %d", i, expected[i], config.path[i])
		}
	}
	if !config.plain {
		t.Error("Expected -plain to be set")
	}
	if _, ok := config.newPicker().(*nondet.Script); !ok {
		t.Errorf("Expected *nondet.Script, got %T", config.newPicker())
	}
}

// TestParseRunArgs_CommonFlags tests the flags shared with explore.
func TestParseRunArgs_CommonFlags(t *testing.T) {
	args := []string{
		"-max-steps", "50",
		"-log-level", "debug",
		"-log-format=json",
		"-log-file", "/tmp/lockmodel.log",
		"-dot",
		"handoff.lm",
	}
	config, err := parseRunArgs(args)
	if err != nil {
		t.Fatalf("parseRunArgs() error: %v", err)
	}

	if config.maxSteps != 50 {
		t.Errorf("Expected max steps 50, got %d", config.maxSteps)
	}
	if config.logLevel != logging.LevelDebug {
		t.Errorf("Expected DEBUG, got %s", config.logLevel)
	}
	if config.logFormat != "json" {
		t.Errorf("Expected json, got %s", config.logFormat)
	}
	if config.logFile != "/tmp/lockmodel.log" {
		t.Errorf("Expected log file, got %q", config.logFile)
	}
	if !config.dot {
		t.Error("Expected -dot to be set")
	}
}

// TestParseRunArgs_Errors tests rejected command lines.
func TestParseRunArgs_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no args", nil, "no scenario file"},
		{"two files", []string{"a.lm", "b.lm"}, "expected one scenario file"},
		{"unknown flag", []string{"-workers", "2", "a.lm"}, "unknown flag -workers"},
		{"missing value", []string{"a.lm", "-seed"}, "needs a value"},
		{"bad picker", []string{"-picker", "fair", "a.lm"}, "first or random"},
		{"bad seed", []string{"-seed", "-1", "a.lm"}, "unsigned integer"},
		{"bad path", []string{"-path", "1.x", "a.lm"}, "-path"},
		{"bad steps", []string{"-max-steps", "many", "a.lm"}, "non-negative integer"},
		{"bad level", []string{"-log-level", "loud", "a.lm"}, "unknown log level"},
		{"bad format", []string{"-log-format", "xml", "a.lm"}, "text or json"},
		{"path and random", []string{"-path", "0", "-picker", "random", "a.lm"}, "mutually exclusive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseRunArgs(tt.args)
			if err == nil {
				t.Fatalf("Expected error containing %q, got nil", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

// TestApplyEnv_LogLevel tests LOCKMODEL_LOG_LEVEL overriding the flag.
func TestApplyEnv_LogLevel(t *testing.T) {
	config, err := parseRunArgs([]string{"-log-level", "error", "a.lm"})
	if err != nil {
		t.Fatalf("parseRunArgs() error: %v", err)
	}

	env := map[string]string{"LOCKMODEL_LOG_LEVEL": "info"}
	if err := config.applyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("applyEnv() error: %v", err)
	}
	if config.logLevel != logging.LevelInfo {
		t.Errorf("Expected INFO, got %s", config.logLevel)
	}

	env["LOCKMODEL_LOG_LEVEL"] = "chatty"
	if err := config.applyEnv(func(k string) string { return env[k] }); err == nil {
		t.Error("Expected error for invalid LOCKMODEL_LOG_LEVEL")
	}
}

// TestPrintResult tests the plain and styled run reports.
func TestPrintResult(t *testing.T) {
	prog, err := program.ParseString(selfDeadlock)
	if err != nil {
		t.Fatalf("ParseString() error: %v", err)
	}
	res, err := explore.Run(context.Background(), prog, explore.RunOptions{})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	var plain bytes.Buffer
	printResult(&plain, res, commonConfig{plain: true})
	if !strings.Contains(plain.String(), "WARNING: DEADLOCK") {
		t.Errorf("Expected plain headline, got:\n%s", plain.String())
	}
	if strings.Contains(plain.String(), "digraph") {
		t.Error("Expected no DOT output without -dot")
	}

	var styled bytes.Buffer
	printResult(&styled, res, commonConfig{dot: true})
	out := styled.String()
	for _, want := range []string{
		"WARNING: DEADLOCK",
		"LockedBy(T0)",
		"BlockedOnLock(L0)",
		"self-deadlock: T0 -L0-> T0",
		"Choices: -",
		"digraph",
		"T0 main",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}
