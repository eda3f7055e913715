// flags.go holds the flag handling shared by the run and explore commands.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/kolkov/lockmodel/internal/logging"
)

// commonConfig holds the flags every executing command accepts.
type commonConfig struct {
	scenario  string
	maxSteps  int
	logLevel  logging.LogLevel
	logFormat string
	logFile   string
	plain     bool
	dot       bool
}

func defaultCommon() commonConfig {
	return commonConfig{
		logLevel:  logging.LevelWarn,
		logFormat: "text",
	}
}

// needsValue reports whether flag consumes the following argument.
func needsValue(flag string) bool {
	switch flag {
	case "-max-steps", "-log-level", "-log-format", "-log-file",
		"-picker", "-seed", "-path",
		"-max-runs", "-workers", "-sample":
		return true
	}
	return false
}

// splitFlag splits "-flag=value" and normalizes "--flag" to "-flag".
func splitFlag(arg string) (string, string, bool) {
	if strings.HasPrefix(arg, "--") {
		arg = arg[1:]
	}
	if i := strings.IndexByte(arg, '='); i >= 0 {
		return arg[:i], arg[i+1:], true
	}
	return arg, "", false
}

// parseCommonFlag applies flag to c. It returns false when the flag is not
// a common one.
func (c *commonConfig) parseCommonFlag(flag, value string) (bool, error) {
	switch flag {
	case "-max-steps":
		n, err := parseCount(flag, value)
		if err != nil {
			return true, err
		}
		c.maxSteps = n
	case "-log-level":
		lvl, err := logging.ParseLevel(value)
		if err != nil {
			return true, err
		}
		c.logLevel = lvl
	case "-log-format":
		if value != "text" && value != "json" {
			return true, fmt.Errorf("-log-format must be text or json, got %q", value)
		}
		c.logFormat = value
	case "-log-file":
		c.logFile = value
	case "-plain":
		c.plain = true
	case "-dot":
		c.dot = true
	default:
		return false, nil
	}
	return true, nil
}

// applyEnv lets LOCKMODEL_LOG_LEVEL override the log level flag.
func (c *commonConfig) applyEnv(getenv func(string) string) error {
	if v := getenv("LOCKMODEL_LOG_LEVEL"); v != "" {
		lvl, err := logging.ParseLevel(v)
		if err != nil {
			return fmt.Errorf("LOCKMODEL_LOG_LEVEL: %w", err)
		}
		c.logLevel = lvl
	}
	return nil
}

// logger builds the command's logger on stderr or the -log-file.
func (c *commonConfig) logger(stderr io.Writer) (*slog.Logger, func() error, error) {
	return logging.New(logging.Config{
		Level:      c.logLevel,
		OutputPath: c.logFile,
		Format:     c.logFormat,
		Writer:     stderr,
	})
}

// forEachFlag walks args, handing every flag and its value to apply and
// collecting positional arguments.
func forEachFlag(args []string, apply func(flag, value string) error) ([]string, error) {
	var positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			positional = append(positional, arg)
			continue
		}

		flag, value, inline := splitFlag(arg)
		if needsValue(flag) && !inline {
			if i+1 >= len(args) {
				return nil, fmt.Errorf("flag %s needs a value", flag)
			}
			i++
			value = args[i]
		}
		if err := apply(flag, value); err != nil {
			return nil, err
		}
	}
	return positional, nil
}

func scenarioArg(positional []string) (string, error) {
	switch len(positional) {
	case 0:
		return "", fmt.Errorf("no scenario file specified")
	case 1:
		return positional[0], nil
	default:
		return "", fmt.Errorf("expected one scenario file, got %d: %v", len(positional), positional)
	}
}

func parseCount(flag, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", flag, value)
	}
	return n, nil
}

// fail prints err and exits with the usage error code.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func parseSeed(value string) (uint64, error) {
	seed, err := strconv.ParseUint(value, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("-seed must be an unsigned integer, got %q", value)
	}
	return seed, nil
}
