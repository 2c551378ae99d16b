package planner

import (
	"fmt"

	"github.com/kbukum/graphflow/config"
	"github.com/kbukum/graphflow/operation"
	"github.com/kbukum/graphflow/pipeerr"
	"github.com/kbukum/graphflow/pipegraph"
	"github.com/kbukum/graphflow/plan"
)

// Request describes a compile: what is already known, what is asked for,
// and which operations of the network are eligible to run.
type Request struct {
	KnownInputs  []string
	AskedOutputs []string
	Predicate    plan.Predicate
	Config       config.EngineConfig
}

// Compile prunes net down to the operations that can and must run to
// deliver req.AskedOutputs from req.KnownInputs, then schedules the
// survivors into a plan.Plan.
func Compile(net *pipegraph.Network, req Request) (*plan.Plan, error) {
	known := toSet(req.KnownInputs)
	asked := toSet(req.AskedOutputs)

	var comments []string

	candidates := net.Operations()
	if req.Predicate != nil {
		filtered := candidates[:0:0]
		for _, op := range candidates {
			if req.Predicate(op) {
				filtered = append(filtered, op)
			} else {
				comments = append(comments, fmt.Sprintf("dropped %q: excluded by predicate", op.Name()))
			}
		}
		candidates = filtered
	}

	survivors, removedByOutput := pruneUnsatisfiable(candidates, known, &comments)

	kept := pruneUnreachable(survivors, asked, &comments)

	final := make([]*operation.Operation, 0, len(kept))
	for _, op := range net.Operations() {
		if kept[op.Name()] {
			final = append(final, op)
		}
	}

	provided := providesSet(final)
	for out := range asked {
		if known[out] || provided[out] {
			continue
		}
		return nil, &pipeerr.UnsolvableGraphError{Output: out, Chain: removedByOutput[out]}
	}

	if cycle := findDataCycle(final); cycle != nil {
		return nil, &pipeerr.CyclicDependencyError{Cycle: cycle}
	}

	order, layers, err := schedule(final)
	if err != nil {
		return nil, err
	}

	retained := computeRetained(known, asked)
	steps := buildSteps(order, retained, req.Config)
	evictAfterLayer := buildLayerEvictions(layers, retained, req.Config)

	p := &plan.Plan{
		Network:         net,
		KnownInputs:     append([]string(nil), req.KnownInputs...),
		AskedOutputs:    append([]string(nil), req.AskedOutputs...),
		Predicate:       req.Predicate,
		Config:          req.Config,
		Steps:           steps,
		Layers:          layers,
		EvictAfterLayer: evictAfterLayer,
		Comments:        comments,
		CacheKey:        plan.BuildCacheKey(net.Name(), req.KnownInputs, req.AskedOutputs, req.Predicate, req.Config),
	}
	return p, nil
}

func toSet(names []string) map[string]bool {
	s := make(map[string]bool, len(names))
	for _, n := range names {
		s[n] = true
	}
	return s
}

func providesSet(ops []*operation.Operation) map[string]bool {
	s := make(map[string]bool)
	for _, op := range ops {
		for _, p := range op.Provides() {
			s[p.Base()] = true
		}
	}
	return s
}

// pruneUnsatisfiable removes, to a fixpoint, any operation whose required
// (non-optional) needs cannot be satisfied by known inputs or by another
// surviving operation. It returns the survivors and, for every data name
// that a removed operation would have provided, the chain of removed
// operation names responsible.
func pruneUnsatisfiable(ops []*operation.Operation, known map[string]bool, comments *[]string) ([]*operation.Operation, map[string][]string) {
	survivors := append([]*operation.Operation(nil), ops...)
	removedByOutput := make(map[string][]string)

	for {
		provided := providesSet(survivors)
		var next []*operation.Operation
		changed := false
		for _, op := range survivors {
			if satisfiable(op, known, provided) {
				next = append(next, op)
				continue
			}
			changed = true
			*comments = append(*comments, fmt.Sprintf("pruned %q: unsatisfied required need", op.Name()))
			for _, p := range op.Provides() {
				removedByOutput[p.Base()] = append(removedByOutput[p.Base()], op.Name())
			}
		}
		survivors = next
		if !changed {
			break
		}
	}
	return survivors, removedByOutput
}

func satisfiable(op *operation.Operation, known map[string]bool, provided map[string]bool) bool {
	for _, need := range op.Needs() {
		if need.IsOptional() {
			continue
		}
		if known[need.Base()] || provided[need.Base()] {
			continue
		}
		return false
	}
	return true
}

// pruneUnreachable keeps only operations on a backward path from asked
// outputs: an operation is kept if it provides a needed name, and keeping
// it adds its own needs to the needed set. When asked is empty there is no
// output to trace a path back from, so every surviving operation is kept
// (spec.md §8: empty asked_outputs includes every op reachable from known
// inputs, which pruneUnsatisfiable has already established).
func pruneUnreachable(ops []*operation.Operation, asked map[string]bool, comments *[]string) map[string]bool {
	if len(asked) == 0 {
		keep := make(map[string]bool, len(ops))
		for _, op := range ops {
			keep[op.Name()] = true
		}
		return keep
	}

	needed := make(map[string]bool, len(asked))
	for k := range asked {
		needed[k] = true
	}
	keep := make(map[string]bool)

	changed := true
	for changed {
		changed = false
		for _, op := range ops {
			if keep[op.Name()] {
				continue
			}
			provides := false
			for _, p := range op.Provides() {
				if needed[p.Base()] {
					provides = true
					break
				}
			}
			if !provides {
				continue
			}
			keep[op.Name()] = true
			changed = true
			for _, n := range op.Needs() {
				if !needed[n.Base()] {
					needed[n.Base()] = true
				}
			}
		}
	}
	for _, op := range ops {
		if !keep[op.Name()] {
			*comments = append(*comments, fmt.Sprintf("pruned %q: not on a path to any asked output", op.Name()))
		}
	}
	return keep
}

// findDataCycle runs a DFS over the data-only edges (provide -> need,
// sideffect edges excluded) of ops and returns the participating operation
// names if a cycle exists, nil otherwise.
func findDataCycle(ops []*operation.Operation) []string {
	producers := make(map[string][]*operation.Operation) // data base name -> ops that provide it
	byName := make(map[string]*operation.Operation, len(ops))
	for _, op := range ops {
		byName[op.Name()] = op
	}
	adj := make(map[string][]string) // op name -> op names that depend on it (data-only)
	for _, op := range ops {
		for _, p := range op.Provides() {
			if p.IsSideffect() {
				continue
			}
			producers[p.Base()] = append(producers[p.Base()], op)
		}
	}
	for _, op := range ops {
		for _, n := range op.Needs() {
			if n.IsSideffect() {
				continue
			}
			for _, producer := range producers[n.Base()] {
				adj[producer.Name()] = append(adj[producer.Name()], op.Name())
			}
		}
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(ops))
	var stack []string
	var cycle []string

	var visit func(name string) bool
	visit = func(name string) bool {
		color[name] = gray
		stack = append(stack, name)
		for _, next := range adj[name] {
			switch color[next] {
			case white:
				if visit(next) {
					return true
				}
			case gray:
				idx := 0
				for i, s := range stack {
					if s == next {
						idx = i
						break
					}
				}
				cycle = append(append([]string(nil), stack[idx:]...), next)
				return true
			}
		}
		stack = stack[:len(stack)-1]
		color[name] = black
		return false
	}

	for _, op := range ops {
		if color[op.Name()] == white {
			if visit(op.Name()) {
				return cycle
			}
		}
	}
	return nil
}
