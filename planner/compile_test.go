package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/kbukum/graphflow/config"
	"github.com/kbukum/graphflow/dataname"
	"github.com/kbukum/graphflow/operation"
	"github.com/kbukum/graphflow/pipeerr"
	"github.com/kbukum/graphflow/pipegraph"
	"github.com/kbukum/graphflow/plan"
)

func op(name string, needs, provides []string, fn operation.Body) *operation.Operation {
	needNames := make([]dataname.Name, len(needs))
	for i, n := range needs {
		needNames[i] = dataname.NewPlain(n)
	}
	provNames := make([]dataname.Name, len(provides))
	for i, p := range provides {
		provNames[i] = dataname.NewPlain(p)
	}
	if fn == nil {
		fn = func(ctx context.Context, in map[string]any) (map[string]any, error) {
			out := make(map[string]any, len(provides))
			for _, p := range provides {
				out[p] = nil
			}
			return out, nil
		}
	}
	return operation.New(operation.Config{Name: name, Needs: needNames, Provides: provNames, Fn: fn})
}

func TestCompileLinearChain(t *testing.T) {
	a := op("A", []string{"x"}, []string{"y"}, nil)
	b := op("B", []string{"y"}, []string{"z"}, nil)
	net, err := pipegraph.Compose("net", a, b)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	p, err := Compile(net, Request{KnownInputs: []string{"x"}, AskedOutputs: []string{"z"}})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	ops := p.Operations()
	if len(ops) != 2 || ops[0].Name() != "A" || ops[1].Name() != "B" {
		t.Fatalf("Operations() = %v, want [A B]", names(ops))
	}
}

func TestCompilePrunesUnneededOperation(t *testing.T) {
	a := op("A", []string{"x"}, []string{"y"}, nil)
	unrelated := op("Unrelated", []string{"x"}, []string{"w"}, nil)
	net, _ := pipegraph.Compose("net", a, unrelated)

	p, err := Compile(net, Request{KnownInputs: []string{"x"}, AskedOutputs: []string{"y"}})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	ops := p.Operations()
	if len(ops) != 1 || ops[0].Name() != "A" {
		t.Fatalf("Operations() = %v, want [A]", names(ops))
	}
}

func TestCompileEmptyAskedOutputsKeepsEveryReachableOperation(t *testing.T) {
	a := op("A", []string{"x"}, []string{"y"}, nil)
	b := op("B", []string{"y"}, []string{"z"}, nil)
	unreachable := op("Unreachable", []string{"missing"}, []string{"w"}, nil)
	net, _ := pipegraph.Compose("net", a, b, unreachable)

	p, err := Compile(net, Request{KnownInputs: []string{"x"}, AskedOutputs: nil})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	ops := names(p.Operations())
	if len(ops) != 2 || ops[0] != "A" || ops[1] != "B" {
		t.Fatalf("Operations() = %v, want [A B]: every op reachable from known_inputs, excluding Unreachable whose own need is unsatisfiable", ops)
	}
}

func TestCompileUnsolvableGraph(t *testing.T) {
	a := op("A", []string{"missing"}, []string{"y"}, nil)
	net, _ := pipegraph.Compose("net", a)

	_, err := Compile(net, Request{KnownInputs: nil, AskedOutputs: []string{"y"}})
	var usg *pipeerr.UnsolvableGraphError
	if !errors.As(err, &usg) {
		t.Fatalf("Compile() error = %v, want *pipeerr.UnsolvableGraphError", err)
	}
}

func TestCompileCycleDetected(t *testing.T) {
	a := op("A", []string{"z"}, []string{"y"}, nil)
	b := op("B", []string{"y"}, []string{"z"}, nil)
	net, _ := pipegraph.Compose("net", a, b)

	_, err := Compile(net, Request{KnownInputs: []string{"z"}, AskedOutputs: []string{"z"}})
	var cde *pipeerr.CyclicDependencyError
	if !errors.As(err, &cde) {
		t.Fatalf("Compile() error = %v, want *pipeerr.CyclicDependencyError", err)
	}
}

func TestCompileParallelLayer(t *testing.T) {
	a := op("A", []string{"x"}, []string{"a_out"}, nil)
	b := op("B", []string{"x"}, []string{"b_out"}, nil)
	c := op("C", []string{"a_out", "b_out"}, []string{"z"}, nil)
	net, _ := pipegraph.Compose("net", a, b, c)

	p, err := Compile(net, Request{KnownInputs: []string{"x"}, AskedOutputs: []string{"z"}})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if len(p.Layers) != 2 {
		t.Fatalf("Layers = %v, want 2 layers", p.Layers)
	}
	if len(p.Layers[0]) != 2 {
		t.Fatalf("Layers[0] = %v, want 2 ops (A and B in parallel)", names(p.Layers[0]))
	}
	if len(p.Layers[1]) != 1 || p.Layers[1][0].Name() != "C" {
		t.Fatalf("Layers[1] = %v, want [C]", names(p.Layers[1]))
	}
}

func TestCompileEvictionInsertsStepAfterLastConsumer(t *testing.T) {
	a := op("A", []string{"x"}, []string{"y"}, nil)
	b := op("B", []string{"y"}, []string{"z"}, nil)
	net, _ := pipegraph.Compose("net", a, b)

	cfg := config.EngineConfig{Evict: true}
	p, err := Compile(net, Request{KnownInputs: []string{"x"}, AskedOutputs: []string{"z"}, Config: cfg})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	foundEvict := false
	for _, s := range p.Steps {
		if s.Kind == plan.StepEvict && s.EvictName == "y" {
			foundEvict = true
		}
	}
	if !foundEvict {
		t.Error("expected an eviction step for intermediate value y")
	}
}

func TestCompileSkipEvictionsDisablesEviction(t *testing.T) {
	a := op("A", []string{"x"}, []string{"y"}, nil)
	b := op("B", []string{"y"}, []string{"z"}, nil)
	net, _ := pipegraph.Compose("net", a, b)

	cfg := config.EngineConfig{Evict: true, SkipEvictions: true}
	p, err := Compile(net, Request{KnownInputs: []string{"x"}, AskedOutputs: []string{"z"}, Config: cfg})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	for _, s := range p.Steps {
		if s.Kind == plan.StepEvict {
			t.Error("expected no eviction steps when SkipEvictions is set")
		}
	}
}

func names(ops []*operation.Operation) []string {
	out := make([]string, len(ops))
	for i, op := range ops {
		out[i] = op.Name()
	}
	return out
}
