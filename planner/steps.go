package planner

import (
	"github.com/kbukum/graphflow/config"
	"github.com/kbukum/graphflow/operation"
	"github.com/kbukum/graphflow/plan"
)

// computeRetained returns the data base names that must never be evicted:
// known inputs (the caller may still hold a reference to them) and asked
// outputs (the whole point of running the plan).
func computeRetained(known, asked map[string]bool) map[string]bool {
	retained := make(map[string]bool, len(known)+len(asked))
	for k := range known {
		retained[k] = true
	}
	for k := range asked {
		retained[k] = true
	}
	return retained
}

// lastConsumerIndex maps each data base name to the index, within order, of
// the last operation that needs it in any capacity.
func lastConsumerIndex(order []*operation.Operation) map[string]int {
	last := make(map[string]int)
	for i, op := range order {
		for _, n := range op.Needs() {
			last[n.Base()] = i
		}
	}
	return last
}

// buildSteps interleaves a StepCompute for every operation in order with a
// StepEvict immediately after the compute step of the last operation that
// needs a data name (or, for a name no later operation needs, right after
// the step that provides it), when eviction is enabled. Sideffects and
// retained names are never evicted.
func buildSteps(order []*operation.Operation, retained map[string]bool, cfg config.EngineConfig) []plan.Step {
	steps := make([]plan.Step, 0, len(order))
	if !cfg.Evict || cfg.SkipEvictions {
		for _, op := range order {
			steps = append(steps, plan.Step{Kind: plan.StepCompute, Op: op})
		}
		return steps
	}

	last := lastConsumerIndex(order)
	for i, op := range order {
		steps = append(steps, plan.Step{Kind: plan.StepCompute, Op: op})
		for _, n := range op.Needs() {
			if n.IsSideffect() || retained[n.Base()] || last[n.Base()] != i {
				continue
			}
			steps = append(steps, plan.Step{Kind: plan.StepEvict, EvictName: n.Base()})
		}
		for _, p := range op.Provides() {
			if p.IsSideffect() || retained[p.Base()] {
				continue
			}
			if lastIdx, ok := last[p.Base()]; !ok || lastIdx < i {
				steps = append(steps, plan.Step{Kind: plan.StepEvict, EvictName: p.Base()})
			}
		}
	}
	return steps
}

// buildLayerEvictions returns, per layer, the data base names safe to
// evict once every operation in that layer has completed: each name
// provided in the plan is listed at the last layer that needs it, or at
// its providing layer when no later layer needs it. Sideffects and
// retained names are never listed.
func buildLayerEvictions(layers [][]*operation.Operation, retained map[string]bool, cfg config.EngineConfig) [][]string {
	result := make([][]string, len(layers))
	if !cfg.Evict || cfg.SkipEvictions {
		return result
	}

	layerOf := make(map[string]int)
	for i, layer := range layers {
		for _, op := range layer {
			layerOf[op.Name()] = i
		}
	}

	lastLayerNeeded := make(map[string]int)
	for i, layer := range layers {
		for _, op := range layer {
			for _, n := range op.Needs() {
				if cur, ok := lastLayerNeeded[n.Base()]; !ok || i > cur {
					lastLayerNeeded[n.Base()] = i
				}
			}
		}
	}

	for i, layer := range layers {
		for _, op := range layer {
			for _, p := range op.Provides() {
				if p.IsSideffect() || retained[p.Base()] {
					continue
				}
				at := i
				if lastNeeded, needed := lastLayerNeeded[p.Base()]; needed && lastNeeded > i {
					at = lastNeeded
				}
				result[at] = append(result[at], p.Base())
			}
		}
	}
	return result
}
