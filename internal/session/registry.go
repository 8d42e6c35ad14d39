// Package session maps user identifiers to reasoning engine threads and owns
// the process-wide engine instance. The engine is built lazily on the first
// query from any user and shared until a reset replaces it wholesale.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/raihansyah/sql-agent/internal/engine"
)

// Handle associates a user with an engine-owned thread reference. Exactly one
// live handle exists per user until a reset invalidates all of them at once.
type Handle struct {
	UserID    string
	ThreadID  string
	CreatedAt time.Time
}

// Factory builds the shared engine instance
type Factory func() (engine.Engine, error)

// Registry is the user-to-handle mapping. The mutex guards only lookup and
// creation; engine invocations never run under it.
type Registry struct {
	factory Factory

	mu      sync.Mutex
	engine  engine.Engine
	handles map[string]*Handle
}

// NewRegistry creates a registry that builds its engine with factory on first use
func NewRegistry(factory Factory) *Registry {
	return &Registry{
		factory: factory,
		handles: make(map[string]*Handle),
	}
}

// SessionFor returns the existing handle for the user, lazily creating the
// shared engine and the handle as needed. Idempotent per user: two sequential
// calls without a reset return the same thread reference.
func (r *Registry) SessionFor(userID string) (*Handle, engine.Engine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.engine == nil {
		eng, err := r.factory()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create engine: %w", err)
		}
		r.engine = eng
	}

	h, ok := r.handles[userID]
	if !ok {
		h = &Handle{
			UserID:    userID,
			ThreadID:  userID,
			CreatedAt: time.Now(),
		}
		r.handles[userID] = h
	}

	return h, r.engine, nil
}

// ResetAll drops the shared engine and every handle. The reset is global on
// purpose: the engine keeps all thread memory in one instance, so clearing one
// user is indistinguishable from clearing everyone. The next SessionFor call
// rebuilds from scratch.
func (r *Registry) ResetAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.engine != nil {
		r.engine.Close()
		r.engine = nil
	}
	r.handles = make(map[string]*Handle)
}
