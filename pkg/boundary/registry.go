package boundary

import (
	"sync"

	"github.com/google/uuid"
)

// Registry resolves handle ids to live handles.
// Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	handles map[uuid.UUID]Handle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handles: make(map[uuid.UUID]Handle),
	}
}

// Register makes h resolvable by its id.
func (r *Registry) Register(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles[h.ID()] = h
}

// Resolve returns the handle registered under id.
func (r *Registry) Resolve(id uuid.UUID) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[id]
	return h, ok
}

// Release forgets the handle registered under id. Releasing an unknown id is a no-op.
func (r *Registry) Release(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handles, id)
}

// Len returns the number of live handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}
