// Package dataname implements the modifier-decorated data-name type used
// throughout the pipeline engine: plain names, and names wrapped with
// optional, sideffect, implicit, aliased or keyword-rename semantics.
//
// Name-equality compares only the base name; the modifier is consulted by
// the planner and executor to decide pruning, ordering and argument-binding
// behavior. This mirrors graphtik's decorator-based name modifiers
// (optional, sfx, keyword) collapsed into one tagged-variant Go type.
package dataname
