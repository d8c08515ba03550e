package lineage

import (
	"fmt"
	"sort"
)

// PathSeparator joins labels in a Step's route.
const PathSeparator = " -> "

// Step is one node reached by a walk.
type Step struct {
	Key   Key
	Level int    // hop distance from the seed, 0 for the seed itself
	Path  string // labels along the first-discovered route from the seed
	Via   *Edge  // edge the node was first reached through, nil for the seed
}

// Result is the outcome of a walk over a loaded graph.
type Result struct {
	Seed      Key
	Direction Direction
	// Steps lists every reached node once, in discovery order.
	Steps []Step
	// Edges lists every edge examined, including those leading to nodes that
	// were already reached (diamonds and cycles).
	Edges    []Edge
	Findings []Finding
}

// Keys returns the reached keys in step order.
func (r *Result) Keys() []Key {
	out := make([]Key, len(r.Steps))
	for i, s := range r.Steps {
		out[i] = s.Key
	}
	return out
}

// Contains reports whether key was reached.
func (r *Result) Contains(key Key) bool {
	for _, s := range r.Steps {
		if s.Key == key {
			return true
		}
	}
	return false
}

// Walk traverses g breadth-first from seed following dir, which must be
// Forward or Backward. Within a level, nodes appear in the order their edges
// were discovered. A node reached again is not re-expanded; the first
// discovery fixes its level and path.
func Walk(g *Graph, seed Key, dir Direction) (*Result, error) {
	if dir != Forward && dir != Backward {
		return nil, fmt.Errorf("%w: walk direction must be forward or backward, got %s", ErrInvalidArgument, dir)
	}
	root, ok := g.Node(seed)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not in the loaded graph", ErrNotFound, seed)
	}

	res := &Result{Seed: seed, Direction: dir}
	index := map[Key]int{seed: 0}
	res.Steps = append(res.Steps, Step{Key: seed, Level: 0, Path: root.Label})

	for head := 0; head < len(res.Steps); head++ {
		cur := res.Steps[head]
		for _, e := range g.neighbors(cur.Key, dir) {
			res.Edges = append(res.Edges, e)
			next := e.To
			if dir == Backward {
				next = e.From
			}
			if _, seen := index[next]; seen {
				continue
			}
			n, _ := g.Node(next)
			via := e
			index[next] = len(res.Steps)
			res.Steps = append(res.Steps, Step{
				Key:   next,
				Level: cur.Level + 1,
				Path:  cur.Path + PathSeparator + n.Label,
				Via:   &via,
			})
		}
	}

	res.Findings = detectCycles(g, seed, dir, index)
	return res, nil
}

// Chain is the forward walk from seed with steps ordered by (level, label).
func Chain(g *Graph, seed Key) (*Result, error) {
	res, err := Walk(g, seed, Forward)
	if err != nil {
		return nil, err
	}
	labels := make(map[Key]string, len(res.Steps))
	for _, s := range res.Steps {
		n, _ := g.Node(s.Key)
		labels[s.Key] = n.Label
	}
	sort.SliceStable(res.Steps, func(i, j int) bool {
		a, b := res.Steps[i], res.Steps[j]
		if a.Level != b.Level {
			return a.Level < b.Level
		}
		if labels[a.Key] != labels[b.Key] {
			return labels[a.Key] < labels[b.Key]
		}
		return a.Key.less(b.Key)
	})
	return res, nil
}

// detectCycles runs a depth-first pass over the reached subgraph and reports
// every edge that points back at a node still on the current DFS path.
func detectCycles(g *Graph, seed Key, dir Direction, reached map[Key]int) []Finding {
	const (
		white = iota
		grey
		black
	)
	color := make(map[Key]int, len(reached))
	var findings []Finding

	var visit func(k Key)
	visit = func(k Key) {
		color[k] = grey
		for _, e := range g.neighbors(k, dir) {
			next := e.To
			if dir == Backward {
				next = e.From
			}
			switch color[next] {
			case grey:
				findings = append(findings, Finding{
					Code:    CycleDetected,
					Subject: next,
					Message: fmt.Sprintf("%s edge %s -> %s closes a cycle", e.Kind, e.From, e.To),
				})
			case white:
				visit(next)
			}
		}
		color[k] = black
	}
	visit(seed)
	return findings
}
