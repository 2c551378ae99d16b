package declnet

import (
	"context"
	"testing"
)

func testBody(name string) func(ctx context.Context, in map[string]any) (map[string]any, error) {
	return func(ctx context.Context, in map[string]any) (map[string]any, error) {
		return map[string]any{name: name}, nil
	}
}

func TestResolveSimpleNetwork(t *testing.T) {
	registry := NewBodyRegistry()
	registry.Register("make_y", testBody("y"))
	registry.Register("make_z", testBody("z"))

	def := &NetworkDef{
		Name: "net",
		Operations: []OperationDef{
			{Name: "A", Component: "make_y", Needs: []NeedDef{{Name: "x"}}, Provides: []ProvideDef{{Name: "y"}}},
			{Name: "B", Component: "make_z", Needs: []NeedDef{{Name: "y"}}, Provides: []ProvideDef{{Name: "z"}}},
		},
	}

	result, err := Resolve(def, registry, nil)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if result.Network.Name() != "net" {
		t.Errorf("Network.Name() = %q, want %q", result.Network.Name(), "net")
	}
	if len(result.Network.Operations()) != 2 {
		t.Fatalf("Operations() = %d, want 2", len(result.Network.Operations()))
	}
	if len(result.Instances) != 2 {
		t.Errorf("Instances = %d, want 2", len(result.Instances))
	}
}

func TestResolveMissingComponent(t *testing.T) {
	registry := NewBodyRegistry()
	def := &NetworkDef{
		Name: "net",
		Operations: []OperationDef{
			{Name: "A", Component: "missing", Provides: []ProvideDef{{Name: "y"}}},
		},
	}
	if _, err := Resolve(def, registry, nil); err == nil {
		t.Fatal("expected error for unregistered component")
	}
}

func TestResolveValidationFailsOnMissingName(t *testing.T) {
	registry := NewBodyRegistry()
	def := &NetworkDef{
		Operations: []OperationDef{
			{Name: "A", Component: "x", Provides: []ProvideDef{{Name: "y"}}},
		},
	}
	if _, err := Resolve(def, registry, nil); err == nil {
		t.Fatal("expected validation error for missing network name")
	}
}

func TestResolveIncludesWithDiamondDedup(t *testing.T) {
	registry := NewBodyRegistry()
	registry.Register("shared_body", testBody("shared"))
	registry.Register("leaf_body", testBody("leaf"))

	shared := &NetworkDef{
		Name: "shared",
		Operations: []OperationDef{
			{Name: "Shared", Component: "shared_body", Provides: []ProvideDef{{Name: "shared"}}},
		},
	}
	left := &NetworkDef{Name: "left", Includes: []string{"shared"}}
	right := &NetworkDef{Name: "right", Includes: []string{"shared"}}
	top := &NetworkDef{
		Name:     "top",
		Includes: []string{"left", "right"},
		Operations: []OperationDef{
			{Name: "Leaf", Component: "leaf_body", Needs: []NeedDef{{Name: "shared"}}, Provides: []ProvideDef{{Name: "leaf"}}},
		},
	}

	loader := stubLoader{"shared": shared, "left": left, "right": right}

	result, err := Resolve(top, registry, loader)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if _, ok := result.Network.Operation("Shared"); !ok {
		t.Fatal("expected Shared operation to survive dedup")
	}
	if len(result.Network.Operations()) != 2 {
		t.Fatalf("Operations() = %d, want 2 (Shared deduped once, Leaf)", len(result.Network.Operations()))
	}
}

func TestResolveCircularIncludeDetected(t *testing.T) {
	a := &NetworkDef{Name: "a", Includes: []string{"b"}}
	b := &NetworkDef{Name: "b", Includes: []string{"a"}}
	loader := stubLoader{"a": a, "b": b}

	if _, err := Resolve(a, NewBodyRegistry(), loader); err == nil {
		t.Fatal("expected circular include error")
	}
}

type stubLoader map[string]*NetworkDef

func (s stubLoader) Load(name string) (*NetworkDef, error) {
	def, ok := s[name]
	if !ok {
		return nil, errNotFound(name)
	}
	return def, nil
}

type notFoundError string

func (e notFoundError) Error() string { return "declnet: stub network not found: " + string(e) }

func errNotFound(name string) error { return notFoundError(name) }
