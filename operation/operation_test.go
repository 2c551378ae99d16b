package operation

import (
	"context"
	"errors"
	"testing"

	"github.com/kbukum/graphflow/dataname"
	"github.com/kbukum/graphflow/pipeerr"
)

func TestComputeBasic(t *testing.T) {
	op := New(Config{
		Name:     "add",
		Needs:    []dataname.Name{dataname.NewPlain("a"), dataname.NewPlain("b")},
		Provides: []dataname.Name{dataname.NewPlain("sum")},
		Fn: func(ctx context.Context, in map[string]any) (map[string]any, error) {
			return map[string]any{"sum": in["a"].(int) + in["b"].(int)}, nil
		},
	})

	result, missing, err := op.Compute(context.Background(), map[string]any{"a": 2, "b": 3})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if len(missing) != 0 {
		t.Fatalf("Compute() missing = %v, want none", missing)
	}
	if result["sum"] != 5 {
		t.Errorf("result[sum] = %v, want 5", result["sum"])
	}
}

func TestComputeOptionalNeedOmitted(t *testing.T) {
	op := New(Config{
		Name:     "greet",
		Needs:    []dataname.Name{dataname.NewPlain("name"), dataname.NewOptional("title")},
		Provides: []dataname.Name{dataname.NewPlain("greeting")},
		Fn: func(ctx context.Context, in map[string]any) (map[string]any, error) {
			if _, ok := in["title"]; ok {
				t.Error("title should not be present when not supplied")
			}
			return map[string]any{"greeting": "hi " + in["name"].(string)}, nil
		},
	})
	_, _, err := op.Compute(context.Background(), map[string]any{"name": "ada"})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
}

func TestComputeMissingRequiredNeed(t *testing.T) {
	op := New(Config{
		Name:     "needs-x",
		Needs:    []dataname.Name{dataname.NewPlain("x")},
		Provides: []dataname.Name{dataname.NewPlain("y")},
		Fn: func(ctx context.Context, in map[string]any) (map[string]any, error) {
			return map[string]any{"y": 1}, nil
		},
	})
	_, _, err := op.Compute(context.Background(), map[string]any{})
	var ufe *pipeerr.UserFnError
	if !errors.As(err, &ufe) {
		t.Fatalf("Compute() error = %v, want *pipeerr.UserFnError", err)
	}
}

func TestComputeKeywordRename(t *testing.T) {
	op := New(Config{
		Name:     "kw",
		Needs:    []dataname.Name{dataname.NewKeyword("raw_input", "input")},
		Provides: []dataname.Name{dataname.NewPlain("out")},
		Fn: func(ctx context.Context, in map[string]any) (map[string]any, error) {
			if _, ok := in["raw_input"]; ok {
				t.Error("body should not see the original base name for a keyword need")
			}
			return map[string]any{"out": in["input"]}, nil
		},
	})
	result, _, err := op.Compute(context.Background(), map[string]any{"raw_input": 42})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if result["out"] != 42 {
		t.Errorf("result[out] = %v, want 42", result["out"])
	}
}

func TestComputeAliasedProvide(t *testing.T) {
	op := New(Config{
		Name:     "alias",
		Needs:    nil,
		Provides: []dataname.Name{dataname.NewAliased("value", "value_copy")},
		Fn: func(ctx context.Context, in map[string]any) (map[string]any, error) {
			return map[string]any{"value": 7}, nil
		},
	})
	result, _, err := op.Compute(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if result["value"] != 7 || result["value_copy"] != 7 {
		t.Errorf("result = %v, want both value and value_copy set to 7", result)
	}
}

func TestComputeSideffectProvideNoValue(t *testing.T) {
	op := New(Config{
		Name:     "lock",
		Needs:    nil,
		Provides: []dataname.Name{dataname.NewSideffect("locked")},
		Fn: func(ctx context.Context, in map[string]any) (map[string]any, error) {
			return map[string]any{}, nil
		},
	})
	result, missing, err := op.Compute(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if len(missing) != 0 {
		t.Fatalf("missing = %v, want none", missing)
	}
	if _, ok := result["locked"]; !ok {
		t.Error("sideffect provide should still be present as a marker in result")
	}
}

func TestComputeMissingRequiredProvideNonRescheduled(t *testing.T) {
	op := New(Config{
		Name:     "partial",
		Needs:    nil,
		Provides: []dataname.Name{dataname.NewPlain("a"), dataname.NewPlain("b")},
		Fn: func(ctx context.Context, in map[string]any) (map[string]any, error) {
			return map[string]any{"a": 1}, nil
		},
	})
	_, missing, err := op.Compute(context.Background(), map[string]any{})
	if len(missing) != 1 || missing[0] != "b" {
		t.Fatalf("missing = %v, want [b]", missing)
	}
	var moe *pipeerr.MissingOutputsError
	if !errors.As(err, &moe) {
		t.Fatalf("error = %v, want *pipeerr.MissingOutputsError", err)
	}
}

func TestComputeMissingRequiredProvideRescheduledTolerated(t *testing.T) {
	op := New(Config{
		Name:        "partial-ok",
		Needs:       nil,
		Provides:    []dataname.Name{dataname.NewPlain("a"), dataname.NewPlain("b")},
		Rescheduled: true,
		Fn: func(ctx context.Context, in map[string]any) (map[string]any, error) {
			return map[string]any{"a": 1}, nil
		},
	})
	_, missing, err := op.Compute(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("Compute() error = %v, want nil for rescheduled op", err)
	}
	if len(missing) != 1 || missing[0] != "b" {
		t.Fatalf("missing = %v, want [b]", missing)
	}
}

func TestComputeBodyPanicWrapped(t *testing.T) {
	op := New(Config{
		Name:     "panicky",
		Provides: []dataname.Name{dataname.NewPlain("out")},
		Fn: func(ctx context.Context, in map[string]any) (map[string]any, error) {
			panic("boom")
		},
	})
	_, _, err := op.Compute(context.Background(), map[string]any{})
	var ufe *pipeerr.UserFnError
	if !errors.As(err, &ufe) {
		t.Fatalf("error = %v, want *pipeerr.UserFnError", err)
	}
}
