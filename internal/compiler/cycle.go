package compiler

import (
	"fmt"
	"strings"
)

// orderIndexables sorts sets and aliases so that every declaration follows
// the sets its domain and alias target refer to.
//
// The order is otherwise stable: among independent declarations, source
// order is kept. A set whose domain reaches back to itself, directly or
// through aliases, is a *CompileError.
//
// The algorithm:
//  1. Build a name → dependencies graph from domain and alias references
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Tarjan emits an SCC after every SCC it depends on, so singleton
//     components without self-loops come out in dependency order
func orderIndexables(decls []Decl) ([]Decl, error) {
	if len(decls) == 0 {
		return []Decl{}, nil
	}

	byName := make(map[string]Decl, len(decls))
	names := make([]string, 0, len(decls))
	for _, d := range decls {
		byName[d.Name] = d
		names = append(names, d.Name)
	}

	graph := buildDependencyGraph(decls, byName)
	sccs := tarjanSCC(names, graph)

	ordered := make([]Decl, 0, len(decls))
	for _, scc := range sccs {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			d := byName[scc[0]]
			path := reconstructCyclePath(scc, graph)
			return nil, &CompileError{
				Field:   fmt.Sprintf("%s.%s.domain", d.Kind, d.Name),
				Message: fmt.Sprintf("circular set definition: %s", strings.Join(path, " -> ")),
				Pos:     d.Pos,
			}
		}
		ordered = append(ordered, byName[scc[0]])
	}
	return ordered, nil
}

// dependencyGraph maps a set or alias name to the names it refers to.
type dependencyGraph map[string][]string

func buildDependencyGraph(decls []Decl, byName map[string]Decl) dependencyGraph {
	graph := make(dependencyGraph, len(decls))
	for _, d := range decls {
		deps := []string{}
		if d.Of != "" {
			if _, ok := byName[d.Of]; ok {
				deps = append(deps, d.Of)
			}
		}
		for _, dim := range d.Domain {
			if _, ok := byName[dim]; ok {
				deps = append(deps, dim)
			}
		}
		graph[d.Name] = deps
	}
	return graph
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, graph dependencyGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Roots are visited in the order of nodes, which keeps the result
// deterministic.
func tarjanSCC(nodes []string, graph dependencyGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// reconstructCyclePath builds a cycle path from an SCC by following edges
// between members until it returns to the first one.
func reconstructCyclePath(scc []string, graph dependencyGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	sccSet := make(map[string]bool)
	for _, node := range scc {
		sccSet[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if sccSet[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}

		if next == "" {
			break
		}

		path = append(path, next)

		if next == start {
			break
		}

		current = next
	}

	return path
}
