package analysis

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

// Ring groups accounts that are mutually reachable through transfers, or a
// single self-transferring account. Membership is the full strongly connected
// component, not just one exemplar cycle through it: accounts off the
// shortest loop are still mutually reachable and equally implicated.
type Ring struct {
	ID      string
	Members []string
}

var errEmptyComponent = errors.New("component has no members")

// DetectRings partitions the graph into strongly connected components and
// emits one ring per component of size > 1 or per self-looping singleton.
// Ring ids are sequential within a run (RING_001, RING_002, ...) and carry no
// meaning beyond uniqueness. A component that cannot be assembled is logged
// and skipped; the remaining components still produce rings.
func DetectRings(g *Graph, logger *slog.Logger) []Ring {
	if logger == nil {
		logger = slog.Default()
	}

	rings := []Ring{}
	next := 1
	for _, comp := range stronglyConnected(g) {
		ring, ok, err := ringFromComponent(g, comp)
		if err != nil {
			logger.Warn("skipping undetectable component", "error", err, "size", len(comp))
			continue
		}
		if !ok {
			continue
		}
		ring.ID = fmt.Sprintf("RING_%03d", next)
		next++
		rings = append(rings, ring)
	}
	return rings
}

// ringFromComponent decides whether a component constitutes a ring. Singleton
// components qualify only when the account transfers to itself.
func ringFromComponent(g *Graph, comp []string) (Ring, bool, error) {
	if len(comp) == 0 {
		return Ring{}, false, errEmptyComponent
	}
	if len(comp) == 1 && !g.HasSelfLoop(comp[0]) {
		return Ring{}, false, nil
	}

	members := append([]string(nil), comp...)
	sort.Strings(members)
	return Ring{Members: members}, true, nil
}

// stronglyConnected computes SCCs with an iterative Tarjan traversal so deep
// transfer chains cannot exhaust the stack. Runs in O(V+E).
func stronglyConnected(g *Graph) [][]string {
	index := make(map[string]int, len(g.Accounts))
	lowlink := make(map[string]int, len(g.Accounts))
	onStack := make(map[string]bool, len(g.Accounts))
	var stack []string
	var components [][]string
	counter := 0

	type frame struct {
		node string
		next int // index of the next outgoing edge to examine
	}

	discover := func(node string) {
		index[node] = counter
		lowlink[node] = counter
		counter++
		stack = append(stack, node)
		onStack[node] = true
	}

	for _, root := range g.Accounts {
		if _, visited := index[root]; visited {
			continue
		}
		discover(root)
		frames := []frame{{node: root}}

		for len(frames) > 0 {
			f := &frames[len(frames)-1]
			edges := g.Out[f.node]

			descended := false
			for f.next < len(edges) {
				succ := edges[f.next].To
				f.next++
				if _, visited := index[succ]; !visited {
					discover(succ)
					frames = append(frames, frame{node: succ})
					descended = true
					break
				}
				if onStack[succ] && index[succ] < lowlink[f.node] {
					lowlink[f.node] = index[succ]
				}
			}
			if descended {
				continue
			}

			done := *f
			frames = frames[:len(frames)-1]

			if lowlink[done.node] == index[done.node] {
				var comp []string
				for {
					top := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[top] = false
					comp = append(comp, top)
					if top == done.node {
						break
					}
				}
				components = append(components, comp)
			}

			if len(frames) > 0 {
				parent := &frames[len(frames)-1]
				if lowlink[done.node] < lowlink[parent.node] {
					lowlink[parent.node] = lowlink[done.node]
				}
			}
		}
	}
	return components
}
