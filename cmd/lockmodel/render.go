// render.go renders run and exploration reports as styled terminal tables.
package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/kolkov/lockmodel/internal/explore"
	"github.com/kolkov/lockmodel/internal/machine/nondet"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		}).
		Headers(headers...)
}

// renderResult renders one run: headline, trace, final states, wait-for
// analysis and the replay path.
func renderResult(res *explore.Result) string {
	parts := []string{
		lipgloss.JoinHorizontal(lipgloss.Top,
			titleStyle.Render("lockmodel run"),
			outcomeStyle(res.Outcome).Render(res.Headline())),
	}
	if res.Err != nil {
		parts = append(parts, errorTextStyle.Render(res.Err.Error()))
	}

	trace := newTable("#", "Thread", "Line", "Instruction", "Result", "Clock")
	for _, ev := range res.Trace {
		result := ev.Result
		for _, w := range ev.Woken {
			result += " (woke " + w.String() + ")"
		}
		trace.Row(strconv.Itoa(ev.Step), ev.Name, strconv.Itoa(ev.Line), ev.Instr, result, ev.Clock)
	}
	parts = append(parts, sectionStyle.Render("Trace"), trace.Render())

	lockTable := newTable("Lock", "State")
	for i, l := range res.Locks {
		lockTable.Row(fmt.Sprintf("L%d", i), l.String())
	}
	parts = append(parts, sectionStyle.Render("Locks"))
	if len(res.Locks) == 0 {
		parts = append(parts, mutedStyle.Render("(none)"))
	} else {
		parts = append(parts, lockTable.Render())
	}

	threadTable := newTable("Thread", "Name", "State", "Clock")
	for i, st := range res.Threads {
		name, clock := "", ""
		if i < len(res.Names) {
			name = res.Names[i]
		}
		if i < len(res.Clocks) {
			clock = res.Clocks[i]
		}
		threadTable.Row(fmt.Sprintf("T%d", i), name, st.String(), clock)
	}
	parts = append(parts, sectionStyle.Render("Threads"), threadTable.Render())

	if res.Deadlock != nil {
		parts = append(parts, sectionStyle.Render("Wait-for"), errorTextStyle.Render(res.Deadlock.String()))
	}
	parts = append(parts, "", mutedStyle.Render("Choices: "+nondet.FormatPath(res.Path())))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderSummary renders an exploration: outcome counts and one row per
// distinct final state with its witness path.
func renderSummary(sum *explore.Summary) string {
	runs := fmt.Sprintf("Runs: %d", sum.Runs)
	if sum.Truncated {
		runs += " (truncated)"
	}
	parts := []string{
		lipgloss.JoinHorizontal(lipgloss.Top,
			titleStyle.Render("lockmodel explore ("+sum.Mode+")"),
			outcomeStyle(sum.Worst()).Render(sum.Worst().String())),
		mutedStyle.Render(runs),
	}

	outcomes := newTable("Outcome", "Runs", "Exit code")
	for _, o := range explore.Outcomes {
		if n := sum.Outcomes[o]; n > 0 {
			outcomes.Row(o.String(), strconv.Itoa(n), strconv.Itoa(o.ExitCode()))
		}
	}
	parts = append(parts, sectionStyle.Render("Outcomes"), outcomes.Render())

	distinct := newTable("#", "Outcome", "Runs", "Witness", "Locks", "Threads", "Detail")
	for i, e := range sum.Distinct {
		distinct.Row(
			strconv.Itoa(i+1),
			e.State.Outcome,
			strconv.Itoa(e.Count()),
			nondet.FormatPath(e.Witness()),
			joinStates("L", e.State.Locks),
			joinStates("T", e.State.Threads),
			e.State.Detail,
		)
	}
	parts = append(parts,
		sectionStyle.Render(fmt.Sprintf("Distinct final states (%d)", len(sum.Distinct))),
		distinct.Render(),
		mutedStyle.Render("Replay a state with: lockmodel run -path <witness> <scenario>"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func joinStates[S fmt.Stringer](prefix string, states []S) string {
	lines := make([]string, len(states))
	for i, st := range states {
		lines[i] = fmt.Sprintf("%s%d: %s", prefix, i, st)
	}
	return strings.Join(lines, "\n")
}
