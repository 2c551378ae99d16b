// Package executor runs a compiled plan.Plan against a set of input values,
// producing a solution.Solution.
//
// Execution proceeds layer by layer, the same level-batched shape this
// module's DAG engine uses elsewhere: operations within a layer have no
// dependency on one another and, when parallel execution is configured, run
// concurrently through a workerpool.Pool bounded by the engine's
// parallel_tasks option. Endured operations that fail cancel their
// downstream consumers without aborting the run; rescheduled operations
// that under-deliver trigger one plan recompile before their shortfall is
// treated as fatal.
package executor
