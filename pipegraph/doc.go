// Package pipegraph holds the Network: an ordered collection of operations
// composed together, plus the adjacency helpers the planner needs to prune
// and schedule it. Network itself does no pruning or scheduling; it only
// guarantees composition-order bookkeeping and name-to-operation lookups.
package pipegraph
