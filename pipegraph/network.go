package pipegraph

import (
	"github.com/kbukum/graphflow/dataname"
	"github.com/kbukum/graphflow/operation"
	"github.com/kbukum/graphflow/pipeerr"
)

// Network is an ordered, named collection of operations. Order is
// composition order: the order operations were appended, used by the
// planner to break topological-sort ties deterministically.
type Network struct {
	name  string
	ops   []*operation.Operation
	byOp  map[string]*operation.Operation
}

// Compose builds a new Network named name from ops, appended in order. It
// returns a DuplicateOperationError if two operations share a name.
func Compose(name string, ops ...*operation.Operation) (*Network, error) {
	n := &Network{name: name, byOp: make(map[string]*operation.Operation, len(ops))}
	for _, op := range ops {
		if err := n.add(op); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (n *Network) add(op *operation.Operation) error {
	if _, exists := n.byOp[op.Name()]; exists {
		return &pipeerr.DuplicateOperationError{Name: op.Name()}
	}
	n.byOp[op.Name()] = op
	n.ops = append(n.ops, op)
	return nil
}

// Merge returns a new Network combining the receiver's operations (in their
// existing order) followed by other's. It returns a DuplicateOperationError
// if any operation name collides, matching graphtik's append-only
// composition semantics — merging never silently overwrites.
func (n *Network) Merge(name string, other *Network) (*Network, error) {
	merged := &Network{name: name, byOp: make(map[string]*operation.Operation, len(n.ops)+len(other.ops))}
	for _, op := range n.ops {
		if err := merged.add(op); err != nil {
			return nil, err
		}
	}
	for _, op := range other.ops {
		if err := merged.add(op); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// Name returns the network's name.
func (n *Network) Name() string { return n.name }

// Operations returns the network's operations in composition order. The
// returned slice must not be mutated by callers.
func (n *Network) Operations() []*operation.Operation { return n.ops }

// Operation looks up an operation by name.
func (n *Network) Operation(name string) (*operation.Operation, bool) {
	op, ok := n.byOp[name]
	return op, ok
}

// Producers returns, in composition order, every operation that provides
// (non-sideffect) the data name base.
func (n *Network) Producers(base string) []*operation.Operation {
	var out []*operation.Operation
	for _, op := range n.ops {
		for _, p := range op.Provides() {
			if p.Base() == base && !p.IsSideffect() {
				out = append(out, op)
				break
			}
		}
	}
	return out
}

// Consumers returns, in composition order, every operation that needs
// (including sideffect needs, for ordering purposes) the data name base.
func (n *Network) Consumers(base string) []*operation.Operation {
	var out []*operation.Operation
	for _, op := range n.ops {
		for _, need := range op.Needs() {
			if need.Base() == base {
				out = append(out, op)
				break
			}
		}
	}
	return out
}

// DataNames returns the set of distinct base data names mentioned anywhere
// in the network, across needs and provides.
func (n *Network) DataNames() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(names []dataname.Name) {
		for _, nm := range names {
			if _, ok := seen[nm.Base()]; !ok {
				seen[nm.Base()] = struct{}{}
				out = append(out, nm.Base())
			}
		}
	}
	for _, op := range n.ops {
		add(op.Needs())
		add(op.Provides())
	}
	return out
}
