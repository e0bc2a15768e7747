// SPDX-License-Identifier: MPL-2.0

// Package dag provides directed acyclic graph operations for topological sorting
// and cycle detection. The task runner builds one node per task and one edge per
// prerequisite, then asks the graph for the execution plan of the requested targets.
package dag

import (
	"fmt"
	"slices"
	"strings"
)

type (
	// CycleError indicates that the graph contains a cycle, preventing topological ordering.
	CycleError struct {
		// Cycle contains the nodes that form the cycle (not necessarily all of them,
		// but enough to identify the problem).
		Cycle []string
	}

	// UnknownNodeError is returned when a plan is requested for a node that was
	// never added to the graph.
	UnknownNodeError struct {
		Node string
	}

	// Graph is a directed graph for topological sorting.
	// Nodes are identified by string keys. Edges represent "must run before" relationships:
	// an edge from A to B means A must complete before B starts.
	Graph struct {
		// adjacency maps each node to its outgoing neighbors (nodes that depend on it).
		adjacency map[string][]string
		// reverse maps each node to its prerequisites, in edge insertion order.
		reverse map[string][]string
		// nodes tracks all nodes in insertion order for deterministic output.
		nodes []string
		// nodeSet provides O(1) lookup for node existence.
		nodeSet map[string]bool
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("unknown node %q", e.Node)
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		adjacency: make(map[string][]string),
		reverse:   make(map[string][]string),
		nodeSet:   make(map[string]bool),
	}
}

// AddNode adds a node to the graph. If the node already exists, this is a no-op.
func (g *Graph) AddNode(name string) {
	if g.nodeSet[name] {
		return
	}
	g.nodeSet[name] = true
	g.nodes = append(g.nodes, name)
}

// AddEdge adds a directed edge from -> to, meaning "from" must run before "to".
// Both nodes are implicitly added if they don't exist.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	g.adjacency[from] = append(g.adjacency[from], to)
	g.reverse[to] = append(g.reverse[to], from)
}

// Has reports whether the node exists in the graph.
func (g *Graph) Has(name string) bool {
	return g.nodeSet[name]
}

// Ancestors returns every node that must run before name, transitively, in
// depth-first discovery order. The node itself is not included.
func (g *Graph) Ancestors(name string) ([]string, error) {
	if !g.nodeSet[name] {
		return nil, &UnknownNodeError{Node: name}
	}

	seen := map[string]bool{name: true}
	var out []string
	var visit func(string)
	visit = func(n string) {
		for _, p := range g.reverse[n] {
			if seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
			visit(p)
		}
	}
	visit(name)
	return out, nil
}

// PlanFor returns the execution order for the given targets: each target
// preceded by all of its ancestors. Prerequisites are visited depth-first in
// edge insertion order, so a node's prerequisites run in the order they were
// declared, and a node reachable from several targets appears once, at its
// first position. Nodes unrelated to the targets are left out.
func (g *Graph) PlanFor(targets ...string) ([]string, error) {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[string]int)
	var order, stack []string

	var visit func(string) error
	visit = func(n string) error {
		switch state[n] {
		case done:
			return nil
		case visiting:
			idx := slices.Index(stack, n)
			cycle := append(slices.Clone(stack[idx:]), n)
			return &CycleError{Cycle: cycle}
		}
		state[n] = visiting
		stack = append(stack, n)
		for _, p := range g.reverse[n] {
			if err := visit(p); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[n] = done
		order = append(order, n)
		return nil
	}

	for _, t := range targets {
		if !g.nodeSet[t] {
			return nil, &UnknownNodeError{Node: t}
		}
		if err := visit(t); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// TopologicalSort returns a valid execution order using Kahn's algorithm.
// Returns CycleError if the graph contains a cycle.
// The returned order is deterministic: nodes at the same topological level
// appear in the order they were first added to the graph.
func (g *Graph) TopologicalSort() ([]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	// Compute in-degrees.
	inDegree := make(map[string]int, len(g.nodes))
	for _, node := range g.nodes {
		inDegree[node] = 0
	}
	for _, neighbors := range g.adjacency {
		for _, neighbor := range neighbors {
			inDegree[neighbor]++
		}
	}

	// Seed the queue with nodes that have no incoming edges, in insertion order.
	queue := make([]string, 0)
	for _, node := range g.nodes {
		if inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range g.adjacency[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
			}
		}
	}

	if len(result) != len(g.nodes) {
		// Remaining nodes with non-zero in-degree form the cycle.
		var cycleNodes []string
		for _, node := range g.nodes {
			if inDegree[node] > 0 {
				cycleNodes = append(cycleNodes, node)
			}
		}
		return nil, &CycleError{Cycle: cycleNodes}
	}

	return result, nil
}
