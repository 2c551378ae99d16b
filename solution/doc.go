// Package solution holds the mutable state an executor builds up while
// running a plan.Plan: the accumulated data values, per-operation status,
// and any endured failures, behind a mutex the way this module's DAG state
// store guards its map.
//
// A Solution is finalized once execution completes; further mutation
// attempts return pipeerr.SolutionFinalizedError rather than silently
// corrupting a result the caller may already be reading.
package solution
