package executor

import (
	"fmt"

	"github.com/kbukum/graphflow/solution"
)

// PipelineExecutionError is raised when execution aborts before delivering
// every asked output: a non-endured operation failed, or a rescheduled
// operation exhausted its reschedule budget. It carries the partial
// Solution so callers can inspect whatever was computed before the abort.
type PipelineExecutionError struct {
	// Op is the operation whose failure aborted execution.
	Op string
	// Cause is the underlying error.
	Cause error
	// Solution is the partial solution as of the abort.
	Solution *solution.Solution
}

func (e *PipelineExecutionError) Error() string {
	return fmt.Sprintf("PIPELINE_EXECUTION_ERROR: operation %q aborted execution: %v", e.Op, e.Cause)
}

func (e *PipelineExecutionError) Unwrap() error { return e.Cause }
