package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fitdash/fitdash-api/internal/events"
	"github.com/google/uuid"
)

// Submitter accepts tasks for background execution. *TaskRunner satisfies it.
type Submitter interface {
	Submit(ctx context.Context, task Task) error
}

// TaskFactoryEventHandler turns emitted events into submitted tasks. An
// event is handled when the registry has a factory for its type; other
// events are ignored.
type TaskFactoryEventHandler struct {
	registry  *Registry
	submitter Submitter
	logger    *slog.Logger
}

// NewTaskFactoryEventHandler creates a handler that builds tasks with registry
// and hands them to submitter.
func NewTaskFactoryEventHandler(registry *Registry, submitter Submitter, logger *slog.Logger) *TaskFactoryEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskFactoryEventHandler{
		registry:  registry,
		submitter: submitter,
		logger:    logger.With(slog.String("component", "task_factory_event_handler")),
	}
}

// HandleEvent implements events.EventHandler.
func (h *TaskFactoryEventHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	log := h.logger.With(slog.String("event_id", event.ID.String()), slog.String("event_type", event.Type))

	if !h.registry.Has(event.Type) {
		log.Debug("ignoring event with unsupported type")
		return nil
	}

	task, err := h.registry.Build(event.Type, uuid.New(), event.Payload)
	if err != nil {
		log.Error("failed to create task", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.submitter.Submit(ctx, task); err != nil {
		log.Error("failed to submit task",
			slog.String("task_id", task.ID().String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to submit task: %w", err)
	}

	log.Info("task created and submitted", slog.String("task_id", task.ID().String()))
	return nil
}

var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)
