package pipeerr

import (
	"fmt"
	"strings"
)

// Code is a machine-readable error code, mirroring the unified AppError
// pattern used by this module's ambient error handling.
type Code string

const (
	CodeCyclicDependency   Code = "CYCLIC_DEPENDENCY"
	CodeUnsolvableGraph    Code = "UNSOLVABLE_GRAPH"
	CodeDuplicateOperation Code = "DUPLICATE_OPERATION"
	CodeUserFn             Code = "USER_FN_ERROR"
	CodeMissingOutputs     Code = "MISSING_OUTPUTS"
	CodePartialOutput      Code = "PARTIAL_OUTPUT_FAILURE"
	CodeSolutionFinalized  Code = "SOLUTION_FINALIZED"
)

// CyclicDependencyError is raised at compile time when the data-edge
// subgraph (sideffect ordering edges excluded) contains a cycle.
type CyclicDependencyError struct {
	// Cycle lists the data/operation names participating in the detected
	// cycle, in traversal order.
	Cycle []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("%s: cyclic dependency: %s", CodeCyclicDependency, strings.Join(e.Cycle, " -> "))
}

// UnsolvableGraphError is raised at compile time when an asked output is
// neither a known input nor provided by any surviving operation.
type UnsolvableGraphError struct {
	// Output is the missing asked-output name.
	Output string
	// Chain names the operations pruned earlier in compilation that would
	// have produced Output, had their own needs been satisfiable.
	Chain []string
}

func (e *UnsolvableGraphError) Error() string {
	if len(e.Chain) == 0 {
		return fmt.Sprintf("%s: output %q is unreachable: no operation provides it", CodeUnsolvableGraph, e.Output)
	}
	return fmt.Sprintf("%s: output %q is unreachable: pruned chain %s", CodeUnsolvableGraph, e.Output, strings.Join(e.Chain, " -> "))
}

// DuplicateOperationError is raised at composition time when two operations
// share a name under append-only composition.
type DuplicateOperationError struct {
	Name string
}

func (e *DuplicateOperationError) Error() string {
	return fmt.Sprintf("%s: operation %q already exists in network", CodeDuplicateOperation, e.Name)
}

// UserFnError wraps a panic/error raised by an operation's body, annotated
// with the operation name and the inputs it was invoked with.
type UserFnError struct {
	Op     string
	Inputs map[string]any
	Cause  error
}

func (e *UserFnError) Error() string {
	return fmt.Sprintf("%s: operation %q failed on inputs %v: %v", CodeUserFn, e.Op, keysOf(e.Inputs), e.Cause)
}

func (e *UserFnError) Unwrap() error { return e.Cause }

// MissingOutputsError is raised when a non-rescheduled operation returns a
// mapping missing one or more of its required (non-optional) provides.
type MissingOutputsError struct {
	Op      string
	Missing []string
}

func (e *MissingOutputsError) Error() string {
	return fmt.Sprintf("%s: operation %q did not deliver required outputs: %s", CodeMissingOutputs, e.Op, strings.Join(e.Missing, ", "))
}

// PartialOutputFailure is raised when a rescheduled operation under-delivers
// a second time in the same execution, so no further reschedule is allowed.
type PartialOutputFailure struct {
	Op      string
	Missing []string
}

func (e *PartialOutputFailure) Error() string {
	return fmt.Sprintf("%s: operation %q repeatedly failed to deliver %s; reschedule budget exhausted", CodePartialOutput, e.Op, strings.Join(e.Missing, ", "))
}

// SolutionFinalizedError is raised when code attempts to mutate a Solution
// after Finalize() has been called.
type SolutionFinalizedError struct {
	// Attempted names the mutation that was rejected (e.g. "merge", "evict").
	Attempted string
}

func (e *SolutionFinalizedError) Error() string {
	return fmt.Sprintf("%s: cannot %s: solution is finalized", CodeSolutionFinalized, e.Attempted)
}

func keysOf(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
