package explore

import (
	"fmt"
	"io"
	"strings"

	"github.com/kolkov/lockmodel/internal/machine/nondet"
)

const banner = "=================="

// Headline returns the first line of a run report.
func (r *Result) Headline() string {
	switch r.Outcome {
	case UB:
		return "WARNING: UNDEFINED BEHAVIOR"
	case Deadlock:
		return "WARNING: DEADLOCK"
	case StepLimit:
		return "WARNING: STEP LIMIT EXCEEDED"
	default:
		return "PROGRAM STOPPED"
	}
}

// Format writes the run report in plain text:
//
//	==================
//	WARNING: DEADLOCK
//	Trace:
//	   1  main       create r0              -> 0
//	   2  main       acquire r0             -> ()
//	   3  main       acquire r0             -> blocked on L0
//
//	Locks:
//	  L0: LockedBy(T0)
//	Threads:
//	  T0 main: BlockedOnLock(L0) {0:1}
//
//	Wait-for:
//	  self-deadlock: T0 -L0-> T0
//	Choices: -
//	==================
//
//nolint:errcheck // Error handling omitted for report formatting
func (r *Result) Format(w io.Writer) {
	fmt.Fprintf(w, "%s\n", banner)
	fmt.Fprintf(w, "%s\n", r.Headline())
	if r.Err != nil {
		fmt.Fprintf(w, "%v\n", r.Err)
	}

	fmt.Fprintf(w, "Trace:\n")
	for _, ev := range r.Trace {
		fmt.Fprintf(w, "%s\n", ev)
	}
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "Locks:\n")
	if len(r.Locks) == 0 {
		fmt.Fprintf(w, "  (none)\n")
	}
	for i, l := range r.Locks {
		fmt.Fprintf(w, "  L%d: %s\n", i, l)
	}
	fmt.Fprintf(w, "Threads:\n")
	for i, st := range r.Threads {
		fmt.Fprintf(w, "  T%d %s: %s %s\n", i, r.name(i), st, r.clock(i))
	}

	if r.Deadlock != nil {
		fmt.Fprintf(w, "\nWait-for:\n")
		for _, line := range strings.Split(r.Deadlock.String(), "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
	fmt.Fprintf(w, "Choices: %s\n", nondet.FormatPath(r.Path()))
	fmt.Fprintf(w, "%s\n", banner)
}

func (r *Result) name(i int) string {
	if i < len(r.Names) {
		return r.Names[i]
	}
	return "?"
}

func (r *Result) clock(i int) string {
	if i < len(r.Clocks) {
		return r.Clocks[i]
	}
	return ""
}

// Format writes the exploration summary in plain text.
//
//nolint:errcheck // Error handling omitted for report formatting
func (s *Summary) Format(w io.Writer) {
	fmt.Fprintf(w, "%s\n", banner)
	fmt.Fprintf(w, "EXPLORATION SUMMARY (%s)\n", s.Mode)
	fmt.Fprintf(w, "Runs: %d", s.Runs)
	if s.Truncated {
		fmt.Fprintf(w, " (truncated)")
	}
	fmt.Fprintf(w, "\n")
	for _, o := range Outcomes {
		if n := s.Outcomes[o]; n > 0 {
			fmt.Fprintf(w, "  %-10s %d\n", o, n)
		}
	}

	fmt.Fprintf(w, "Distinct final states: %d\n", len(s.Distinct))
	for i, e := range s.Distinct {
		fmt.Fprintf(w, "  #%d %s x%d  witness %s\n", i+1, e.State.Outcome, e.Count(), nondet.FormatPath(e.Witness()))
		for j, l := range e.State.Locks {
			fmt.Fprintf(w, "      L%d: %s\n", j, l)
		}
		for j, t := range e.State.Threads {
			fmt.Fprintf(w, "      T%d: %s\n", j, t)
		}
		if e.State.Detail != "" {
			for _, line := range strings.Split(e.State.Detail, "\n") {
				fmt.Fprintf(w, "      %s\n", line)
			}
		}
	}
	fmt.Fprintf(w, "%s\n", banner)
}
