package planner

import (
	"github.com/kbukum/graphflow/operation"
	"github.com/kbukum/graphflow/pipeerr"
)

type edge struct {
	from, to  string
	sideffect bool
}

// buildEdges returns, for ops, one edge per (producer, consumer) pair
// linked by a shared data name, tagged as a sideffect edge when that name
// is a sideffect pseudo-name.
func buildEdges(ops []*operation.Operation) []edge {
	type provider struct {
		name      string
		sideffect bool
	}
	producers := make(map[string][]string) // data base name -> producing op names
	for _, op := range ops {
		for _, p := range op.Provides() {
			producers[p.Base()] = append(producers[p.Base()], op.Name())
		}
	}

	var edges []edge
	seen := make(map[edge]bool)
	for _, op := range ops {
		for _, n := range op.Needs() {
			for _, prodName := range producers[n.Base()] {
				if prodName == op.Name() {
					continue
				}
				e := edge{from: prodName, to: op.Name(), sideffect: n.IsSideffect()}
				if !seen[e] {
					seen[e] = true
					edges = append(edges, e)
				}
			}
		}
	}
	return edges
}

// schedule computes a deterministic topological order (composition-order
// ties broken by ops' original position) and a layered grouping suitable
// for parallel execution, using Kahn's algorithm the way this module's
// graph utilities compute dependency levels elsewhere.
//
// The data-only subgraph of ops is assumed already verified acyclic by the
// caller. Sideffect edges may still close a cycle across an otherwise
// acyclic data graph; when Kahn's algorithm stalls, the offending sideffect
// edges are dropped (ordering-only edges never gate correctness the way a
// data dependency does) and scheduling resumes.
func schedule(ops []*operation.Operation) ([]*operation.Operation, [][]*operation.Operation, error) {
	byName := make(map[string]*operation.Operation, len(ops))
	for _, op := range ops {
		byName[op.Name()] = op
	}
	edges := buildEdges(ops)

	inDegree := make(map[string]int, len(ops))
	dependents := make(map[string][]edge)
	for _, op := range ops {
		inDegree[op.Name()] = 0
	}
	for _, e := range edges {
		inDegree[e.to]++
		dependents[e.from] = append(dependents[e.from], e)
	}

	scheduled := make(map[string]bool, len(ops))
	var order []*operation.Operation
	var layers [][]*operation.Operation

	for len(scheduled) < len(ops) {
		var ready []string
		for _, op := range ops {
			if scheduled[op.Name()] {
				continue
			}
			if inDegree[op.Name()] == 0 {
				ready = append(ready, op.Name())
			}
		}
		if len(ready) == 0 {
			if !breakSideffectCycle(ops, inDegree, dependents, scheduled) {
				return nil, nil, &pipeerr.CyclicDependencyError{Cycle: unscheduledNames(ops, scheduled)}
			}
			continue
		}

		layer := make([]*operation.Operation, 0, len(ready))
		for _, name := range ready {
			layer = append(layer, byName[name])
			scheduled[name] = true
		}
		for _, op := range layer {
			order = append(order, op)
			for _, e := range dependents[op.Name()] {
				if inDegree[e.to] > 0 {
					inDegree[e.to]--
				}
			}
		}
		layers = append(layers, layer)
	}

	return order, layers, nil
}

func unscheduledNames(ops []*operation.Operation, scheduled map[string]bool) []string {
	var names []string
	for _, op := range ops {
		if !scheduled[op.Name()] {
			names = append(names, op.Name())
		}
	}
	return names
}

// breakSideffectCycle removes one sideffect edge feeding into a still-stuck
// node, unsticking Kahn's algorithm. It returns false if no such edge
// exists, meaning the stall is a genuine (non-sideffect) cycle.
func breakSideffectCycle(ops []*operation.Operation, inDegree map[string]int, dependents map[string][]edge, scheduled map[string]bool) bool {
	for from, edges := range dependents {
		if scheduled[from] {
			continue
		}
		for i, e := range edges {
			if !e.sideffect || scheduled[e.to] {
				continue
			}
			if inDegree[e.to] > 0 {
				inDegree[e.to]--
			}
			dependents[from] = append(append([]edge(nil), edges[:i]...), edges[i+1:]...)
			return true
		}
	}
	return false
}
