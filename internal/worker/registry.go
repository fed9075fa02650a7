package worker

import (
	"fmt"
	"sort"
	"sync"

	"github.com/orchestra-ai/orchestra/internal/types"
)

// Registry maps role names to worker handles. It is populated at
// startup and frozen when the orchestrator is built; registration after
// freezing is rejected so the set of roles the planner may target is
// fixed for the process lifetime.
type Registry struct {
	mu      sync.RWMutex
	workers map[string]Worker
	frozen  bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		workers: make(map[string]Worker),
	}
}

// Register binds a worker to its role name. Duplicate roles and
// registration after Freeze are rejected.
func (r *Registry) Register(w Worker) error {
	if w == nil {
		return fmt.Errorf("worker cannot be nil")
	}
	role := w.Role()
	if role == "" {
		return fmt.Errorf("worker role cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("registry is frozen, cannot register role %q", role)
	}
	if _, exists := r.workers[role]; exists {
		return fmt.Errorf("role %q is already registered", role)
	}

	r.workers[role] = w
	return nil
}

// Freeze closes the registry for mutation. Idempotent.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Get returns the worker registered for the role, or an
// EXEC_UNKNOWN_WORKER error if none is.
func (r *Registry) Get(role string) (Worker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, exists := r.workers[role]
	if !exists {
		return nil, types.NewError(types.EXEC_UNKNOWN_WORKER,
			fmt.Sprintf("no worker registered for role %q", role)).
			WithContext("worker_role", role)
	}
	return w, nil
}

// Has reports whether a worker is registered for the role.
func (r *Registry) Has(role string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.workers[role]
	return exists
}

// Roles returns all registered role names, sorted.
func (r *Registry) Roles() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roles := make([]string, 0, len(r.workers))
	for role := range r.workers {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

// Len returns the number of registered workers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workers)
}
