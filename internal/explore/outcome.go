package explore

import "fmt"

// Outcome classifies how one run ended.
type Outcome uint8

const (
	// Stop: every thread ran to completion.
	Stop Outcome = iota
	// UB: a thread raised undefined behavior.
	UB
	// Deadlock: no thread is enabled but some have not finished.
	Deadlock
	// StepLimit: the run exceeded the step budget.
	StepLimit
)

// Outcomes lists every outcome in report order.
var Outcomes = []Outcome{Stop, UB, Deadlock, StepLimit}

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Stop:
		return "Stop"
	case UB:
		return "UB"
	case Deadlock:
		return "Deadlock"
	case StepLimit:
		return "StepLimit"
	default:
		return fmt.Sprintf("Outcome(%d)", uint8(o))
	}
}

// ExitCode returns the process exit status the CLI uses for o.
//
//	Stop      0
//	UB        2
//	Deadlock  3
//	StepLimit 4
func (o Outcome) ExitCode() int {
	switch o {
	case Stop:
		return 0
	case UB:
		return 2
	case Deadlock:
		return 3
	default:
		return 4
	}
}

// Worst returns the outcome with the highest exit code, the one a CLI
// reports for a whole exploration.
func Worst(outcomes map[Outcome]int) Outcome {
	worst := Stop
	for o, n := range outcomes {
		if n > 0 && o.ExitCode() > worst.ExitCode() {
			worst = o
		}
	}
	return worst
}
