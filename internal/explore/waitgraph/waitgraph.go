// Package waitgraph analyzes the wait-for graph of a machine state.
//
// Nodes are threads. A thread blocked on lock l has one edge to the holder
// of l, labeled l. A state where no thread is enabled is a deadlock; the
// strongly-connected components of this graph name the threads that wait
// on each other. A self-loop is a thread waiting for a lock it holds itself
// (non-reentrant self-deadlock).
//
// Example:
//
//	g := waitgraph.Build(m.Locks().Snapshot(), m.Threads().Snapshot())
//	r := g.Analyze()
//	fmt.Println(r) // cycle: T0 -L1-> T1 -L0-> T0
package waitgraph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aclements/go-moremath/graph"
	"github.com/aclements/go-moremath/graph/graphalg"
	"github.com/aclements/go-moremath/graph/graphout"

	"github.com/kolkov/lockmodel/internal/machine/ids"
	"github.com/kolkov/lockmodel/internal/machine/locks"
	"github.com/kolkov/lockmodel/internal/machine/threads"
)

// Edge is a wait-for edge: From is blocked on Lock, which To holds.
type Edge struct {
	From ids.ThreadID
	To   ids.ThreadID
	Lock ids.LockID
}

// String returns "T0 -L1-> T1".
func (e Edge) String() string {
	return fmt.Sprintf("%s -%s-> %s", e.From, e.Lock, e.To)
}

// Graph is the wait-for graph of one state. It satisfies graph.Graph.
//
// Layout:
//   - out[t]: at most one successor, the holder of the lock t waits for
//   - via[t]: the lock labeling out[t]
//
// Thread Safety: Immutable after Build, safe for concurrent use.
type Graph struct {
	out [][]int
	via []ids.LockID
}

// Build constructs the wait-for graph of the given lock and thread states,
// indexed by id.
//
// A blocked thread whose lock is unknown or unlocked gets no edge; such a
// state violates the machine's invariants and is reported elsewhere.
func Build(lockStates []locks.State, threadStates []threads.State) *Graph {
	g := &Graph{
		out: make([][]int, len(threadStates)),
		via: make([]ids.LockID, len(threadStates)),
	}
	for t, st := range threadStates {
		l, blocked := st.BlockedOn()
		if !blocked || int(l) < 0 || int(l) >= len(lockStates) {
			continue
		}
		holder, held := lockStates[l].Holder()
		if !held || int(holder) >= len(threadStates) {
			continue
		}
		g.out[t] = []int{int(holder)}
		g.via[t] = l
	}
	return g
}

// NumNodes returns the number of threads.
func (g *Graph) NumNodes() int {
	return len(g.out)
}

// Out returns the thread that node i waits for, if any.
func (g *Graph) Out(i int) []int {
	return g.out[i]
}

var _ graph.Graph = (*Graph)(nil)

// Edges returns every wait-for edge in ascending order of the waiting thread.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for t, succ := range g.out {
		for _, h := range succ {
			edges = append(edges, Edge{From: ids.ThreadID(t), To: ids.ThreadID(h), Lock: g.via[t]})
		}
	}
	return edges
}

// Cycle is a set of threads each waiting for the next, in wait order
// starting from the lowest id.
type Cycle struct {
	Edges []Edge
}

// Threads returns the threads on the cycle.
func (c Cycle) Threads() []ids.ThreadID {
	out := make([]ids.ThreadID, len(c.Edges))
	for i, e := range c.Edges {
		out[i] = e.From
	}
	return out
}

// IsSelf reports whether the cycle is a single thread waiting for itself.
func (c Cycle) IsSelf() bool {
	return len(c.Edges) == 1
}

// String returns "T0 -L1-> T1 -L0-> T0".
func (c Cycle) String() string {
	if len(c.Edges) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(c.Edges[0].From.String())
	for _, e := range c.Edges {
		fmt.Fprintf(&b, " -%s-> %s", e.Lock, e.To)
	}
	return b.String()
}

// Report is the result of analyzing a wait-for graph.
//
// Cycles holds every wait cycle. Waiting holds the blocked threads that are
// not on a cycle (they wait, possibly transitively, for a cycle member or
// for a thread that is still running).
type Report struct {
	Cycles  []Cycle
	Waiting []Edge
}

// Deadlocked reports whether at least one wait cycle exists.
func (r *Report) Deadlocked() bool {
	return len(r.Cycles) > 0
}

// String renders one line per cycle, then one per other waiting thread.
func (r *Report) String() string {
	var lines []string
	for _, c := range r.Cycles {
		if c.IsSelf() {
			lines = append(lines, "self-deadlock: "+c.String())
		} else {
			lines = append(lines, "cycle: "+c.String())
		}
	}
	for _, e := range r.Waiting {
		lines = append(lines, "waiting: "+e.String())
	}
	if len(lines) == 0 {
		return "no waiting threads"
	}
	return strings.Join(lines, "\n")
}

// Analyze finds the wait cycles of g.
//
// Algorithm:
//  1. Compute strongly-connected components
//  2. Components with more than one thread are cycles; a single thread is a
//     cycle only if it has a self-loop
//  3. Each thread waits for at most one other, so a cyclic component is a
//     simple cycle; walk it from its lowest id to order the edges
func (g *Graph) Analyze() *Report {
	scc := graphalg.SCC(g, graphalg.SCCSubnodeComponent)
	onCycle := graphalg.NewNodeMarks()

	var cycles []Cycle
	for cid := 0; cid < scc.NumNodes(); cid++ {
		nids := scc.Subnodes(cid)
		if len(nids) == 1 && !slices.Contains(g.out[nids[0]], nids[0]) {
			continue
		}
		for _, nid := range nids {
			onCycle.Mark(nid)
		}
		cycles = append(cycles, g.walk(slices.Min(nids)))
	}
	slices.SortFunc(cycles, func(a, b Cycle) int {
		return int(a.Edges[0].From) - int(b.Edges[0].From)
	})

	r := &Report{Cycles: cycles}
	for _, e := range g.Edges() {
		if !onCycle.Test(int(e.From)) {
			r.Waiting = append(r.Waiting, e)
		}
	}
	return r
}

func (g *Graph) walk(start int) Cycle {
	var c Cycle
	for t := start; ; {
		next := g.out[t][0]
		c.Edges = append(c.Edges, Edge{From: ids.ThreadID(t), To: ids.ThreadID(next), Lock: g.via[t]})
		if next == start {
			return c
		}
		t = next
	}
}

// Analyze builds the wait-for graph of the given states and analyzes it.
func Analyze(lockStates []locks.State, threadStates []threads.State) *Report {
	return Build(lockStates, threadStates).Analyze()
}

// Dot renders g in Graphviz form. label names thread nodes (nil uses
// "T<n>"); edges on a cycle are drawn red.
func (g *Graph) Dot(label func(ids.ThreadID) string) string {
	if label == nil {
		label = func(t ids.ThreadID) string { return t.String() }
	}
	r := g.Analyze()
	onCycle := graphalg.NewNodeMarks()
	for _, c := range r.Cycles {
		for _, t := range c.Threads() {
			onCycle.Mark(int(t))
		}
	}
	return graphout.Dot{
		Name:  "waitfor",
		Label: func(node int) string { return label(ids.ThreadID(node)) },
		EdgeAttrs: func(node, edge int) []graphout.DotAttr {
			attrs := []graphout.DotAttr{{Name: "label", Val: g.via[node].String()}}
			if onCycle.Test(node) {
				attrs = append(attrs, graphout.DotAttr{Name: "color", Val: "red"})
			}
			return attrs
		},
	}.Sprint(g)
}
