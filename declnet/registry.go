package declnet

import (
	"sort"
	"sync"

	"github.com/kbukum/graphflow/operation"
)

// BodyRegistry provides named lookup of operation.Body implementations for
// declarative wiring.
type BodyRegistry struct {
	mu    sync.RWMutex
	bodies map[string]operation.Body
}

// NewBodyRegistry creates an empty BodyRegistry.
func NewBodyRegistry() *BodyRegistry {
	return &BodyRegistry{bodies: make(map[string]operation.Body)}
}

// Register adds a body implementation under name.
func (r *BodyRegistry) Register(name string, body operation.Body) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bodies[name] = body
}

// Get retrieves a body implementation by name.
func (r *BodyRegistry) Get(name string) (operation.Body, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bodies[name]
	return b, ok
}

// List returns sorted names of all registered components.
func (r *BodyRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.bodies))
	for name := range r.bodies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
