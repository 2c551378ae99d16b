// Package plan holds the compiled, immutable output of the planner: the
// pruned set of operations to run, the step sequence (or layers, for
// parallel execution), and enough of the original compile request to let an
// executor trigger a recompile when an operation reschedules.
package plan
