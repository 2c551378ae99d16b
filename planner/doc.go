// Package planner compiles a pipegraph.Network plus a compile request
// (known inputs, asked outputs, an optional predicate) into an executable
// plan.Plan.
//
// Compilation runs three pruning passes (predicate filter, unsatisfied-needs
// fixpoint, backward reachability from asked outputs; there is no separate
// orphaned-data pass) and then schedules the surviving
// operations: a deterministic topological order for sequential execution,
// and a layered grouping — Kahn's algorithm, as used elsewhere in this
// module's graph utilities — for parallel execution.
package planner
