package executor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kbukum/graphflow/config"
	"github.com/kbukum/graphflow/logger"
	"github.com/kbukum/graphflow/observability"
	"github.com/kbukum/graphflow/operation"
	"github.com/kbukum/graphflow/pipeerr"
	"github.com/kbukum/graphflow/pipegraph"
	"github.com/kbukum/graphflow/plan"
	"github.com/kbukum/graphflow/planner"
	"github.com/kbukum/graphflow/solution"
	"github.com/kbukum/graphflow/workerpool"
)

// unavailableSet tracks provides that have become unreachable (an endured
// failure or a canceled op), guarded by a mutex because Parallel operations
// in the same layer run in pool goroutines concurrently with the main
// loop's cancellation checks for the rest of the layer.
type unavailableSet struct {
	mu sync.Mutex
	m  map[string]bool
}

func newUnavailableSet() *unavailableSet {
	return &unavailableSet{m: make(map[string]bool)}
}

func (u *unavailableSet) has(name string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.m[name]
}

func (u *unavailableSet) set(name string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.m[name] = true
}

// Executor runs a compiled plan.Plan against a set of input values.
type Executor struct {
	Config  config.EngineConfig
	Logger  *logger.Logger
	Metrics *observability.Metrics
}

// New returns an Executor configured with cfg. log may be nil, in which case
// logger.Get("executor") is used: the logger registered under that name, or
// the global logger tagged with that component.
func New(cfg config.EngineConfig, log *logger.Logger) *Executor {
	if log == nil {
		log = logger.Get("executor")
	}
	return &Executor{Config: cfg, Logger: log}
}

// Execute compiles net under req and runs every scheduled step, producing a
// finalized Solution. On a fatal operation failure it returns a
// PipelineExecutionError wrapping the operation's error, with the partial
// Solution attached for inspection.
func (e *Executor) Execute(ctx context.Context, net *pipegraph.Network, req planner.Request, initial map[string]any) (*solution.Solution, error) {
	p, err := planner.Compile(net, req)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, net, req, p, initial)
}

// Run executes an already-compiled plan p, recompiling against net/req
// (passing the current solution's values as known inputs) whenever a
// rescheduled operation under-delivers.
func (e *Executor) Run(ctx context.Context, net *pipegraph.Network, req planner.Request, p *plan.Plan, initial map[string]any) (*solution.Solution, error) {
	sol := solution.New(p, initial)
	unavailable := newUnavailableSet()
	rescheduledOnce := make(map[string]bool)

	layers := p.Layers
	evictAfterLayer := p.EvictAfterLayer

	for i := 0; i < len(layers); i++ {
		layer := layers[i]

		var pool workerpool.Pool
		if e.Config.ParallelTasks > 0 {
			pool = workerpool.New(e.Config.ParallelTasks)
		}

		for _, op := range layer {
			op := op
			if e.canceledByUnavailableNeed(op, unavailable) {
				e.recordCanceled(sol, op, unavailable)
				continue
			}

			run := func(ctx context.Context) error {
				return e.runOne(ctx, op, sol, unavailable, rescheduledOnce)
			}

			if pool != nil && op.Parallel() {
				if err := pool.Submit(ctx, run); err != nil {
					return sol, err
				}
				continue
			}
			if err := run(ctx); err != nil {
				return sol, err
			}
		}

		if pool != nil {
			if err := pool.WaitAll(); err != nil {
				return sol, err
			}
		}

		if e.Config.Evict && !e.Config.SkipEvictions && i < len(evictAfterLayer) {
			for _, name := range evictAfterLayer[i] {
				_ = sol.Evict(name)
			}
		}

		if name, ok := e.pendingReschedule(sol, layer, rescheduledOnce); ok {
			newKnown := knownFromSolution(req.KnownInputs, sol)
			predicate := excludeExecuted(sol, req.Predicate)

			newPlan, err := recompileForReschedule(net, req.Config, newKnown, req.AskedOutputs, predicate, sol)
			if err != nil {
				return sol, &PipelineExecutionError{Op: name, Cause: err, Solution: sol}
			}

			// Splice the remainder of the new plan in place of the layers
			// still to come, resuming at the current position instead of
			// restarting from layer 0. excludeExecuted keeps any op with an
			// already-recorded result (completed, failed, or canceled by
			// layers 0..i) out of the new plan entirely, so it cannot be
			// rescheduled a second time; cancelPrunedOps records Canceled
			// for not-yet-run ops the recompile dropped.
			cancelPrunedOps(sol, layers[i+1:], newPlan)
			layers = append(append([][]*operation.Operation(nil), layers[:i+1]...), newPlan.Layers...)
			evictAfterLayer = append(append([][]string(nil), evictAfterLayer[:i+1]...), newPlan.EvictAfterLayer...)
			continue
		}
	}

	sol.Finalize()
	return sol, nil
}

// runOne invokes op's body, merges its output into sol, and records the
// outcome. Endured failures are tolerated: the operation's required provides
// are added to unavailable so downstream consumers cancel instead of
// running on missing data.
func (e *Executor) runOne(ctx context.Context, op *operation.Operation, sol *solution.Solution, unavailable *unavailableSet, rescheduledOnce map[string]bool) error {
	start := time.Now()
	_ = sol.RecordResult(solution.OpResult{Name: op.Name(), Status: solution.StatusRunning})

	ctx, span := observability.StartSpan(ctx, "operation."+op.Name())
	defer span.End()

	result, missing, err := op.Compute(ctx, sol.Values())
	duration := time.Since(start)

	if err == nil && len(missing) > 0 {
		// A rescheduled op under-delivers without raising: Compute
		// suppresses MissingOutputsError for it (operation.Compute), so
		// reconstruct it here to drive the reschedule-once handling below,
		// which turns a second short delivery into PartialOutputFailure.
		err = &pipeerr.MissingOutputsError{Op: op.Name(), Missing: missing}
	}

	if err != nil {
		var missingErr *pipeerr.MissingOutputsError
		isMissing := asMissingOutputsError(err, &missingErr)

		if isMissing && op.Rescheduled() && !rescheduledOnce[op.Name()] {
			_ = sol.Merge(result)
			observability.SetSpanError(ctx, err)
			if e.Metrics != nil {
				e.Metrics.RecordOperation(ctx, e.Config.Name, op.Name(), "rescheduled", duration)
			}
			return sol.RecordResult(solution.OpResult{
				Name: op.Name(), Status: solution.StatusPartial, Duration: duration, Missing: missing, Err: err,
			})
		}

		if isMissing && op.Rescheduled() {
			err = &pipeerr.PartialOutputFailure{Op: op.Name(), Missing: missing}
		}

		observability.SetSpanError(ctx, err)
		if e.Metrics != nil {
			e.Metrics.RecordError(ctx, "operation_failure", op.Name())
		}

		if op.Endured() {
			_ = sol.Merge(result)
			markUnavailable(op, result, unavailable)
			return sol.RecordResult(solution.OpResult{
				Name: op.Name(), Status: solution.StatusFailedEndured, Duration: duration, Missing: missing, Err: err,
			})
		}

		_ = sol.RecordResult(solution.OpResult{
			Name: op.Name(), Status: solution.StatusFailedFatal, Duration: duration, Missing: missing, Err: err,
		})
		return &PipelineExecutionError{Op: op.Name(), Cause: err, Solution: sol}
	}

	if err := sol.Merge(result); err != nil {
		return err
	}
	if e.Metrics != nil {
		e.Metrics.RecordOperation(ctx, e.Config.Name, op.Name(), "ok", duration)
	}
	return sol.RecordResult(solution.OpResult{
		Name: op.Name(), Status: solution.StatusCompleted, Duration: duration,
	})
}

// pendingReschedule reports the first operation in layer whose last recorded
// result is Partial and has not yet consumed its one reschedule, if any.
func (e *Executor) pendingReschedule(sol *solution.Solution, layer []*operation.Operation, rescheduledOnce map[string]bool) (string, bool) {
	if !e.Config.RescheduleEnabled {
		return "", false
	}
	for _, op := range layer {
		if rescheduledOnce[op.Name()] {
			continue
		}
		r, ok := sol.Result(op.Name())
		if !ok || r.Status != solution.StatusPartial {
			continue
		}
		rescheduledOnce[op.Name()] = true
		return op.Name(), true
	}
	return "", false
}

func (e *Executor) canceledByUnavailableNeed(op *operation.Operation, unavailable *unavailableSet) bool {
	for _, need := range op.Needs() {
		if need.IsOptional() || need.IsSideffect() || need.IsImplicit() {
			continue
		}
		if unavailable.has(need.Base()) {
			return true
		}
	}
	return false
}

func (e *Executor) recordCanceled(sol *solution.Solution, op *operation.Operation, unavailable *unavailableSet) {
	markUnavailable(op, nil, unavailable)
	_ = sol.RecordResult(solution.OpResult{Name: op.Name(), Status: solution.StatusCanceled})
}

// markUnavailable flags every non-optional provide of op that is absent from
// delivered (an already-merged partial result, or nil for a total failure)
// so downstream consumers cancel instead of running on missing data.
func markUnavailable(op *operation.Operation, delivered map[string]any, unavailable *unavailableSet) {
	for _, provide := range op.Provides() {
		if provide.IsOptional() {
			continue
		}
		if _, ok := delivered[provide.Base()]; ok {
			continue
		}
		unavailable.set(provide.Base())
	}
}

func asMissingOutputsError(err error, target **pipeerr.MissingOutputsError) bool {
	type unwrapper interface{ Unwrap() error }
	for err != nil {
		if m, ok := err.(*pipeerr.MissingOutputsError); ok {
			*target = m
			return true
		}
		u, ok := err.(unwrapper)
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// excludeExecuted returns a Predicate that rejects any operation with an
// already-recorded result, composed with orig if non-nil. Excluding executed
// ops from the candidate set (rather than just from the resulting layers)
// means the planner's own satisfiability analysis treats their provides as
// unreachable when not otherwise known, exactly as spec.md §4.5.2 describes
// ("as if the op had predicate=false for their downstream consumers").
func excludeExecuted(sol *solution.Solution, orig plan.Predicate) plan.Predicate {
	done := sol.Results()
	return func(op *operation.Operation) bool {
		if _, ok := done[op.Name()]; ok {
			return false
		}
		return orig == nil || orig(op)
	}
}

// recompileForReschedule compiles net for a post-reschedule continuation,
// tolerating asked outputs that became unreachable because their only
// producer already ran and under-delivered: such an output is dropped from
// the recompile (its pruned chain recorded as Canceled) and compilation is
// retried, instead of surfacing planner.Compile's normal UnsolvableGraphError
// for a request the caller never actually made.
func recompileForReschedule(net *pipegraph.Network, cfg config.EngineConfig, known, asked []string, predicate plan.Predicate, sol *solution.Solution) (*plan.Plan, error) {
	remainingAsked := append([]string(nil), asked...)
	for {
		newPlan, err := planner.Compile(net, planner.Request{
			KnownInputs:  known,
			AskedOutputs: remainingAsked,
			Predicate:    predicate,
			Config:       cfg,
		})
		if err == nil {
			return newPlan, nil
		}

		var unsolvable *pipeerr.UnsolvableGraphError
		if !errors.As(err, &unsolvable) {
			return nil, err
		}
		remainingAsked = removeName(remainingAsked, unsolvable.Output)
		for _, opName := range unsolvable.Chain {
			if _, done := sol.Result(opName); done {
				continue
			}
			_ = sol.RecordResult(solution.OpResult{Name: opName, Status: solution.StatusCanceled})
		}
	}
}

func removeName(names []string, target string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != target {
			out = append(out, n)
		}
	}
	return out
}

// cancelPrunedOps records Canceled for every not-yet-executed op present in
// oldRemaining (the layers that were still pending before a reschedule
// recompile) but absent from newPlan, because the recompile determined it is
// no longer reachable from any asked output.
func cancelPrunedOps(sol *solution.Solution, oldRemaining [][]*operation.Operation, newPlan *plan.Plan) {
	keep := make(map[string]bool)
	for _, layer := range newPlan.Layers {
		for _, op := range layer {
			keep[op.Name()] = true
		}
	}
	for _, layer := range oldRemaining {
		for _, op := range layer {
			if keep[op.Name()] {
				continue
			}
			if _, done := sol.Result(op.Name()); done {
				continue
			}
			_ = sol.RecordResult(solution.OpResult{Name: op.Name(), Status: solution.StatusCanceled})
		}
	}
}

func knownFromSolution(original []string, sol *solution.Solution) []string {
	values := sol.Values()
	known := make([]string, 0, len(values))
	for name := range values {
		known = append(known, name)
	}
	for _, name := range original {
		if _, ok := values[name]; !ok {
			known = append(known, name)
		}
	}
	return known
}
