// Package graph exposes a task dependency relation as ordered views:
// topological order, reverse topological order, reachable ancestor/descendant
// sets, and cycle/unknown-dependency validation.
//
// Graph is deliberately independent of the project package's Task type —
// it only needs an id and a list of dependency ids per node — so that
// project can depend on graph without creating an import cycle, and so the
// dependency relation can be rebuilt fresh from whatever Task list is
// current rather than stored as stale back-edges (per the "no stored
// back-edges" design note).
package graph

import (
	"sort"
	"strconv"
	"strings"

	"dagr/internal/dagerr"
)

// Node is the minimal shape graph needs from a task: its id and the ids it
// depends on.
type Node struct {
	ID        string
	DependsOn []string
}

// Graph is an index-based adjacency view over a fixed set of Nodes.
type Graph struct {
	nodes []Node
	index map[string]int // id -> position in nodes
	order []int          // indices sorted by ascending numeric id suffix
}

// New builds a Graph from nodes and validates it (unknown dependency
// references, cycles). A Graph returned from New is always valid.
func New(nodes []Node) (*Graph, error) {
	g := &Graph{
		nodes: nodes,
		index: make(map[string]int, len(nodes)),
	}
	for i, n := range nodes {
		g.index[n.ID] = i
	}
	g.order = sortedIndicesBySuffix(nodes)

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// suffix extracts the numeric part of a "T-<n>" id for deterministic
// tie-breaking. Ids that don't parse sort after all that do, in
// lexicographic order, so a malformed id never panics a tie-break.
func suffix(id string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimPrefix(id, "T-"))
	if err != nil {
		return 0, false
	}
	return n, true
}

func sortedIndicesBySuffix(nodes []Node) []int {
	idx := make([]int, len(nodes))
	for i := range nodes {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		sa, oka := suffix(nodes[idx[a]].ID)
		sb, okb := suffix(nodes[idx[b]].ID)
		if oka && okb {
			return sa < sb
		}
		if oka != okb {
			return oka // parsed ids sort before unparsed ones
		}
		return nodes[idx[a]].ID < nodes[idx[b]].ID
	})
	return idx
}

func (g *Graph) sortedDeps(deps []string) []string {
	sorted := append([]string{}, deps...)
	sort.Slice(sorted, func(a, b int) bool {
		sa, oka := suffix(sorted[a])
		sb, okb := suffix(sorted[b])
		if oka && okb {
			return sa < sb
		}
		if oka != okb {
			return oka
		}
		return sorted[a] < sorted[b]
	})
	return sorted
}

// Validate fails with UnknownTask if a dependency reference doesn't exist,
// or CycleDetected with the offending path if the relation is cyclic.
func (g *Graph) Validate() error {
	for _, n := range g.nodes {
		for _, dep := range n.DependsOn {
			if _, ok := g.index[dep]; !ok {
				return dagerr.New(dagerr.UnknownTask, "task %s depends on unknown task %s", n.ID, dep)
			}
		}
	}

	color := make([]int, len(g.nodes)) // 0 = white, 1 = gray, 2 = black
	var path []string

	var visit func(i int) error
	visit = func(i int) error {
		color[i] = 1
		path = append(path, g.nodes[i].ID)

		for _, dep := range g.sortedDeps(g.nodes[i].DependsOn) {
			j := g.index[dep]
			if color[j] == 1 {
				start := 0
				for k, id := range path {
					if id == dep {
						start = k
						break
					}
				}
				cycle := append(append([]string{}, path[start:]...), dep)
				return dagerr.CycleErr(cycle)
			}
			if color[j] == 0 {
				if err := visit(j); err != nil {
					return err
				}
			}
		}

		path = path[:len(path)-1]
		color[i] = 2
		return nil
	}

	for _, i := range g.order {
		if color[i] == 0 {
			if err := visit(i); err != nil {
				return err
			}
		}
	}
	return nil
}

// TopologicalOrder lists every node such that all of a node's dependencies
// appear before it, tie-breaking on ascending numeric id suffix.
func (g *Graph) TopologicalOrder() ([]string, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	visited := make([]bool, len(g.nodes))
	result := make([]string, 0, len(g.nodes))

	var visit func(i int)
	visit = func(i int) {
		if visited[i] {
			return
		}
		visited[i] = true
		for _, dep := range g.sortedDeps(g.nodes[i].DependsOn) {
			visit(g.index[dep])
		}
		result = append(result, g.nodes[i].ID)
	}

	for _, i := range g.order {
		visit(i)
	}
	return result, nil
}

// ReverseTopologicalOrder is the reverse of TopologicalOrder, used by the
// CPM backward pass.
func (g *Graph) ReverseTopologicalOrder() ([]string, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	rev := make([]string, len(order))
	for i, id := range order {
		rev[len(order)-1-i] = id
	}
	return rev, nil
}

// ReachableAncestors returns the set of ids that id transitively depends
// on.
func (g *Graph) ReachableAncestors(id string) (map[string]bool, error) {
	i, ok := g.index[id]
	if !ok {
		return nil, dagerr.UnknownTaskErr(id)
	}
	seen := map[string]bool{}
	var dfs func(idx int)
	dfs = func(idx int) {
		for _, dep := range g.nodes[idx].DependsOn {
			if !seen[dep] {
				seen[dep] = true
				dfs(g.index[dep])
			}
		}
	}
	dfs(i)
	return seen, nil
}

// ReachableDescendants returns the set of ids that transitively depend on
// id.
func (g *Graph) ReachableDescendants(id string) (map[string]bool, error) {
	if _, ok := g.index[id]; !ok {
		return nil, dagerr.UnknownTaskErr(id)
	}
	children := make(map[string][]string, len(g.nodes))
	for _, n := range g.nodes {
		for _, dep := range n.DependsOn {
			children[dep] = append(children[dep], n.ID)
		}
	}
	seen := map[string]bool{}
	var dfs func(curID string)
	dfs = func(curID string) {
		for _, child := range children[curID] {
			if !seen[child] {
				seen[child] = true
				dfs(child)
			}
		}
	}
	dfs(id)
	return seen, nil
}
