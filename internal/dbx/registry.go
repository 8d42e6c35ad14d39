package dbx

import (
	"context"
	"fmt"
	"sync"
)

// AdapterFactory creates a new, unconnected adapter instance
type AdapterFactory func() Adapter

// Registry maps database type identifiers to adapter factories
type Registry struct {
	factories map[string]AdapterFactory
	mu        sync.RWMutex
}

// NewRegistry creates an empty adapter registry
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]AdapterFactory)}
}

// Register registers an adapter factory for a database type
func (r *Registry) Register(dbType string, factory AdapterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[dbType] = factory
}

// SupportedDatabases returns list of supported database types
func (r *Registry) SupportedDatabases() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for dbType := range r.factories {
		types = append(types, dbType)
	}
	return types
}

// Open creates and connects the adapter for the configured database type
func (r *Registry) Open(ctx context.Context, dbType string, config ConnectionConfig) (Adapter, error) {
	r.mu.RLock()
	factory, ok := r.factories[dbType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}

	adapter := factory()
	if err := adapter.Connect(ctx, config); err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return adapter, nil
}
