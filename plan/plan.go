package plan

import (
	"github.com/kbukum/graphflow/config"
	"github.com/kbukum/graphflow/operation"
	"github.com/kbukum/graphflow/pipegraph"
)

// StepKind distinguishes a compute step from an eviction step.
type StepKind int

const (
	// StepCompute invokes an operation.
	StepCompute StepKind = iota
	// StepEvict drops a data value from the solution because it has no
	// remaining consumers in the plan.
	StepEvict
)

func (k StepKind) String() string {
	if k == StepEvict {
		return "evict"
	}
	return "compute"
}

// Step is one entry in a Plan's sequential execution order.
type Step struct {
	Kind StepKind
	// Op is set when Kind is StepCompute.
	Op *operation.Operation
	// EvictName is the data base name released when Kind is StepEvict.
	EvictName string
}

// Predicate filters which operations of a Network are eligible to be
// compiled into a Plan.
type Predicate func(*operation.Operation) bool

// Plan is the compiled, immutable result of a compile request: the pruned
// subset of a Network's operations, in an order safe to execute, plus the
// original compile request so an executor can ask for a recompile after a
// reschedule.
type Plan struct {
	Network      *pipegraph.Network
	KnownInputs  []string
	AskedOutputs []string
	Predicate    Predicate
	Config       config.EngineConfig

	// Steps is the sequential execution order: computes interleaved with
	// evictions. Populated regardless of execution mode; a parallel
	// executor uses Layers instead but Steps remains available for
	// introspection and for the sequential executor.
	Steps []Step

	// Layers groups the plan's operations for parallel execution: index i
	// holds every operation whose dependencies are satisfied once every
	// operation in layers 0..i-1 has completed. Composition order is
	// preserved within a layer.
	Layers [][]*operation.Operation

	// EvictAfterLayer[i] lists data base names safe to evict once every
	// operation in Layers[i] has completed, because layer i contains the
	// last remaining consumer of that name in this plan.
	EvictAfterLayer [][]string

	// Comments records human-readable pruning/scheduling decisions, in the
	// order they were made, for diagnostics and plan introspection.
	Comments []string

	// CacheKey is the canonical encoding of this plan's compile request,
	// used by the plan cache and safe to compare across compiles of the
	// same Network.
	CacheKey string
}

// Operations returns the plan's operations in sequential (Steps) order,
// omitting eviction steps.
func (p *Plan) Operations() []*operation.Operation {
	ops := make([]*operation.Operation, 0, len(p.Steps))
	for _, s := range p.Steps {
		if s.Kind == StepCompute {
			ops = append(ops, s.Op)
		}
	}
	return ops
}

// Len returns the number of compute steps in the plan.
func (p *Plan) Len() int {
	n := 0
	for _, s := range p.Steps {
		if s.Kind == StepCompute {
			n++
		}
	}
	return n
}
