package operation

import (
	"context"
	"fmt"

	"github.com/kbukum/graphflow/dataname"
	"github.com/kbukum/graphflow/pipeerr"
)

// Body is the user-supplied function wrapped by an Operation. It receives
// one value per non-sideffect, non-implicit need (renamed per Keyword
// modifiers) and returns one value per non-sideffect provide, keyed by base
// name. A rescheduled operation may omit entries for any of its provides.
type Body func(ctx context.Context, inputs map[string]any) (map[string]any, error)

// Config describes an Operation at construction time, mirroring the
// provider-backed node configuration pattern used elsewhere in this module
// but generalized to a dynamic argument map instead of a fixed generic pair.
type Config struct {
	// Name uniquely identifies the operation within a network.
	Name string
	// Needs lists the operation's input data names, in declaration order.
	Needs []dataname.Name
	// Provides lists the operation's output data names, in declaration order.
	Provides []dataname.Name
	// Fn is the body invoked by Compute.
	Fn Body
	// Endured marks the operation as non-fatal: a failure is recorded but
	// does not abort the pipeline.
	Endured bool
	// Rescheduled marks the operation as tolerant of partial output: a
	// short delivery triggers a plan recompile instead of an error, once.
	Rescheduled bool
	// Parallel allows this operation to run concurrently with others in the
	// same scheduling layer under a parallel executor.
	Parallel bool
	// Marshalled is the operation's marshal flag. It is stored and reported
	// by Marshalled(); neither Compute nor the executor marshals, serializes
	// or copies the operation's inputs or outputs.
	Marshalled bool
}

// Operation is a named function over a set of needs and provides.
type Operation struct {
	cfg Config
}

// New constructs an Operation from cfg. It panics if Name is empty or Fn is
// nil, mirroring the fail-fast constructors used throughout this module.
func New(cfg Config) *Operation {
	if cfg.Name == "" {
		panic("operation: Config.Name must not be empty")
	}
	if cfg.Fn == nil {
		panic("operation: Config.Fn must not be nil")
	}
	return &Operation{cfg: cfg}
}

// Name returns the operation's unique name.
func (o *Operation) Name() string { return o.cfg.Name }

// Needs returns the operation's declared needs.
func (o *Operation) Needs() []dataname.Name { return o.cfg.Needs }

// Provides returns the operation's declared provides.
func (o *Operation) Provides() []dataname.Name { return o.cfg.Provides }

// Endured reports whether a failure of this operation should be tolerated
// by the executor rather than aborting the pipeline.
func (o *Operation) Endured() bool { return o.cfg.Endured }

// Rescheduled reports whether partial output from this operation should
// trigger a plan recompile rather than an error.
func (o *Operation) Rescheduled() bool { return o.cfg.Rescheduled }

// Parallel reports whether this operation may run concurrently with its
// scheduling-layer siblings.
func (o *Operation) Parallel() bool { return o.cfg.Parallel }

// Marshalled reports the operation's marshal flag. The executor does not
// read it; values pass to and from the body unmarshalled.
func (o *Operation) Marshalled() bool { return o.cfg.Marshalled }

// Compute invokes the body with available built from solutionValues (keyed
// by base data name), applying keyword renames and withholding sideffect and
// implicit names. It validates the returned map against the declared
// provides and returns the provide-keyed result map (with any aliases
// copied in) for the caller to merge into a Solution.
//
// missing lists the required provides (neither optional nor sideffect) that
// were not present in the body's return value. For a non-rescheduled
// operation, a non-empty missing is reported as a MissingOutputsError; the
// caller decides how a rescheduled operation's missing list is handled.
func (o *Operation) Compute(ctx context.Context, solutionValues map[string]any) (result map[string]any, missing []string, err error) {
	args := make(map[string]any, len(o.cfg.Needs))
	for _, need := range o.cfg.Needs {
		if need.IsSideffect() || need.IsImplicit() {
			continue
		}
		val, ok := solutionValues[need.Base()]
		if !ok {
			if need.IsOptional() {
				continue
			}
			return nil, nil, &pipeerr.UserFnError{
				Op:    o.cfg.Name,
				Cause: fmt.Errorf("missing required need %q", need.Base()),
			}
		}
		key := need.Base()
		if kw, ok := need.Keyword(); ok {
			key = kw
		}
		args[key] = val
	}

	raw, err := func() (out map[string]any, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return o.cfg.Fn(ctx, args)
	}()
	if err != nil {
		return nil, nil, &pipeerr.UserFnError{Op: o.cfg.Name, Inputs: args, Cause: err}
	}

	result = make(map[string]any, len(o.cfg.Provides))
	for _, provide := range o.cfg.Provides {
		if provide.IsSideffect() {
			result[provide.Base()] = struct{}{}
			continue
		}
		val, ok := raw[provide.Base()]
		if !ok {
			if provide.IsOptional() {
				continue
			}
			missing = append(missing, provide.Base())
			continue
		}
		result[provide.Base()] = val
		if dst, isAlias := provide.Alias(); isAlias {
			result[dst] = val
		}
	}

	if len(missing) > 0 && !o.cfg.Rescheduled {
		return result, missing, &pipeerr.MissingOutputsError{Op: o.cfg.Name, Missing: missing}
	}
	return result, missing, nil
}
