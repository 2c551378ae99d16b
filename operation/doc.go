// Package operation defines the unit of work in the pipeline engine: a named
// function over a set of needs and provides, each a dataname.Name carrying
// its own modifier semantics.
//
// An Operation is inert until compiled into a plan and invoked by an
// executor; Compute is the single entry point that applies keyword renames,
// withholds sideffect/implicit names from the body's argument map, and
// validates the returned outputs against the declared provides.
package operation
