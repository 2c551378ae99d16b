package declnet

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/kbukum/graphflow/dataname"
	"github.com/kbukum/graphflow/errors"
	"github.com/kbukum/graphflow/operation"
	"github.com/kbukum/graphflow/pipegraph"
	"github.com/kbukum/graphflow/validation"
)

// Result is the output of resolving a NetworkDef.
type Result struct {
	// Network is the composed network, ready for planner.Compile.
	Network *pipegraph.Network
	// Instances maps each operation name to the instance tag assigned to
	// the occurrence that won diamond-include dedup (first wins).
	Instances map[string]uuid.UUID
}

// Resolve validates def, recursively resolves its includes (first-wins
// dedup on diamond includes, cycle detection on circular includes), looks
// up each operation's body in registry, and composes the result into a
// pipegraph.Network.
func Resolve(def *NetworkDef, registry *BodyRegistry, loader Loader) (*Result, error) {
	stack := make(map[string]bool)
	resolved := make(map[string]bool)
	ops := make(map[string]*operation.Operation)
	instances := make(map[string]uuid.UUID)
	var order []string

	if err := resolveDef(def, registry, loader, stack, resolved, ops, instances, &order); err != nil {
		return nil, err
	}

	opList := make([]*operation.Operation, 0, len(order))
	for _, name := range order {
		opList = append(opList, ops[name])
	}

	net, err := pipegraph.Compose(def.Name, opList...)
	if err != nil {
		return nil, err
	}
	return &Result{Network: net, Instances: instances}, nil
}

func resolveDef(
	def *NetworkDef,
	registry *BodyRegistry,
	loader Loader,
	stack, resolved map[string]bool,
	ops map[string]*operation.Operation,
	instances map[string]uuid.UUID,
	order *[]string,
) error {
	if stack[def.Name] {
		return fmt.Errorf("declnet: circular include detected for network %q", def.Name)
	}
	stack[def.Name] = true
	defer delete(stack, def.Name)

	if err := validation.Validate(def); err != nil {
		return fmt.Errorf("declnet: invalid network %q: %w", def.Name, err)
	}

	for _, include := range def.Includes {
		if resolved[include] {
			continue
		}
		if loader == nil {
			return fmt.Errorf("declnet: network %q includes %q but no loader was given", def.Name, include)
		}
		sub, err := loader.Load(include)
		if err != nil {
			return fmt.Errorf("declnet: loading include %q: %w", include, err)
		}
		if err := resolveDef(sub, registry, loader, stack, resolved, ops, instances, order); err != nil {
			return err
		}
	}

	for _, opDef := range def.Operations {
		if _, exists := ops[opDef.Name]; exists {
			continue
		}
		op, err := buildOperation(opDef, registry)
		if err != nil {
			return fmt.Errorf("declnet: network %q: %w", def.Name, err)
		}
		ops[opDef.Name] = op
		instances[opDef.Name] = uuid.New()
		*order = append(*order, opDef.Name)
	}

	resolved[def.Name] = true
	return nil
}

func buildOperation(opDef OperationDef, registry *BodyRegistry) (*operation.Operation, error) {
	body, ok := registry.Get(opDef.Component)
	if !ok {
		return nil, errors.ComponentNotRegistered(opDef.Component).WithDetail("op", opDef.Name)
	}

	needs := make([]dataname.Name, 0, len(opDef.Needs))
	for _, n := range opDef.Needs {
		needs = append(needs, toNeedName(n))
	}
	provides := make([]dataname.Name, 0, len(opDef.Provides))
	for _, p := range opDef.Provides {
		provides = append(provides, toProvideName(p))
	}

	return operation.New(operation.Config{
		Name:        opDef.Name,
		Needs:       needs,
		Provides:    provides,
		Fn:          body,
		Endured:     opDef.Endured,
		Rescheduled: opDef.Rescheduled,
		Parallel:    opDef.Parallel,
		Marshalled:  opDef.Marshalled,
	}), nil
}

func toNeedName(n NeedDef) dataname.Name {
	switch n.Modifier {
	case "optional":
		return dataname.NewOptional(n.Name)
	case "sideffect":
		return dataname.NewSideffect(n.Name)
	case "implicit":
		return dataname.NewImplicit(n.Name)
	case "keyword":
		return dataname.NewKeyword(n.Name, n.Keyword)
	default:
		return dataname.NewPlain(n.Name)
	}
}

func toProvideName(p ProvideDef) dataname.Name {
	switch p.Modifier {
	case "optional":
		return dataname.NewOptional(p.Name)
	case "sideffect":
		return dataname.NewSideffect(p.Name)
	case "aliased":
		return dataname.NewAliased(p.Name, p.Alias)
	default:
		return dataname.NewPlain(p.Name)
	}
}
