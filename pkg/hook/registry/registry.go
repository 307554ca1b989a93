// Package registry maps connection types to hook factories so callers can
// build a hook from nothing but a connection id. Hook packages register their
// factory in init; the CLI and transfer actions create hooks through the
// registry without importing every hook package directly.
package registry

import (
	"sync"

	"go.uber.org/zap"

	"github.com/lassohq/lasso/pkg/connection"
	"github.com/lassohq/lasso/pkg/hook"
	"github.com/lassohq/lasso/pkg/lassoerrors"
	"github.com/lassohq/lasso/pkg/logger"
)

// Factory creates a hook bound to the given connection id. The factory
// resolves the record itself (through base.NewBaseHook) so that hooks built
// directly and hooks built through the registry behave identically.
type Factory func(connID string) (hook.Hook, error)

// Registry manages hook factory registration and instantiation.
type Registry struct {
	factories map[string]Factory
	mu        sync.RWMutex
	logger    *zap.Logger
}

// Global registry instance
var globalRegistry = NewRegistry()

// NewRegistry creates a new hook registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		logger:    logger.Get().With(zap.String("component", "hook_registry")),
	}
}

// Register registers a hook factory for a connection type.
func (r *Registry) Register(connType string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[connType]; exists {
		return lassoerrors.Newf(lassoerrors.ErrorTypeConfig, "hook for connection type %s already registered", connType)
	}

	r.factories[connType] = factory
	r.logger.Debug("hook registered", zap.String("connection_type", connType))
	return nil
}

// Create resolves the named connection record and builds the hook registered
// for the record's type.
func (r *Registry) Create(connID string) (hook.Hook, error) {
	conn, err := connection.Resolve(connID)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	factory, exists := r.factories[conn.Type]
	r.mu.RUnlock()

	if !exists {
		return nil, lassoerrors.Newf(lassoerrors.ErrorTypeNotFound, "no hook registered for connection type %s", conn.Type)
	}

	h, err := factory(connID)
	if err != nil {
		return nil, lassoerrors.Wrap(err, lassoerrors.ErrorTypeConfig, "failed to create hook").
			WithDetail("conn_id", connID).
			WithDetail("connection_type", conn.Type)
	}

	return h, nil
}

// List returns the registered connection types.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for connType := range r.factories {
		types = append(types, connType)
	}
	return types
}

// Has checks whether a connection type has a registered hook.
func (r *Registry) Has(connType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.factories[connType]
	return exists
}

// Clear removes all registered factories (mainly for testing).
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories = make(map[string]Factory)
}

// Global registry functions

// Register registers a hook factory in the global registry.
func Register(connType string, factory Factory) error {
	return globalRegistry.Register(connType, factory)
}

// Create builds a hook from the global registry.
func Create(connID string) (hook.Hook, error) {
	return globalRegistry.Create(connID)
}

// List returns registered connection types from the global registry.
func List() []string {
	return globalRegistry.List()
}

// Has checks a connection type in the global registry.
func Has(connType string) bool {
	return globalRegistry.Has(connType)
}

// GetRegistry returns the global registry instance.
func GetRegistry() *Registry {
	return globalRegistry
}
