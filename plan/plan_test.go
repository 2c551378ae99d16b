package plan

import (
	"context"
	"testing"

	"github.com/kbukum/graphflow/dataname"
	"github.com/kbukum/graphflow/operation"
)

func TestPlanOperationsAndLen(t *testing.T) {
	a := operation.New(operation.Config{
		Name:     "A",
		Provides: []dataname.Name{dataname.NewPlain("x")},
		Fn: func(ctx context.Context, in map[string]any) (map[string]any, error) {
			return map[string]any{"x": 1}, nil
		},
	})
	p := &Plan{Steps: []Step{
		{Kind: StepCompute, Op: a},
		{Kind: StepEvict, EvictName: "x"},
	}}
	if p.Len() != 1 {
		t.Errorf("Len() = %d, want 1", p.Len())
	}
	ops := p.Operations()
	if len(ops) != 1 || ops[0].Name() != "A" {
		t.Errorf("Operations() = %v, want [A]", ops)
	}
}

func TestStepKindString(t *testing.T) {
	if StepCompute.String() != "compute" {
		t.Errorf("StepCompute.String() = %q, want compute", StepCompute.String())
	}
	if StepEvict.String() != "evict" {
		t.Errorf("StepEvict.String() = %q, want evict", StepEvict.String())
	}
}
