package task

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ErrUnknownTaskType is returned when no factory is registered for a task type.
var ErrUnknownTaskType = errors.New("unknown task type")

// Factory builds an executable task from its ID and JSON payload.
type Factory func(id uuid.UUID, payload []byte) (Task, error)

// Registry maps task types to factories. It is used both to create new tasks
// from events and to rebuild persisted tasks during recovery.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces the factory for taskType.
func (r *Registry) Register(taskType string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[taskType] = factory
}

// Has reports whether a factory is registered for taskType.
func (r *Registry) Has(taskType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[taskType]
	return ok
}

// Build creates a task of taskType.
func (r *Registry) Build(taskType string, id uuid.UUID, payload []byte) (Task, error) {
	r.mu.RLock()
	factory, ok := r.factories[taskType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTaskType, taskType)
	}
	return factory(id, payload)
}

// Rebuild turns a persisted record back into an executable task.
func (r *Registry) Rebuild(rec Record) (Task, error) {
	return r.Build(rec.Type, rec.ID, rec.Payload)
}
