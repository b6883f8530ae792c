package task

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// stubTask is a Task whose behavior is supplied by the test.
type stubTask struct {
	id        uuid.UUID
	taskType  string
	payload   []byte
	executeFn func(ctx context.Context) error
}

func newStubTask(taskType string) *stubTask {
	return &stubTask{id: uuid.New(), taskType: taskType, payload: []byte(`{}`)}
}

func (t *stubTask) ID() uuid.UUID      { return t.id }
func (t *stubTask) Type() string       { return t.taskType }
func (t *stubTask) Payload() []byte    { return t.payload }
func (t *stubTask) Status() TaskStatus { return TaskStatusPending }
func (t *stubTask) Execute(ctx context.Context) error {
	if t.executeFn == nil {
		return nil
	}
	return t.executeFn(ctx)
}

// memoryTaskStore is an in-memory TaskStore.
type memoryTaskStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*Record
	saveErr error
}

func newMemoryTaskStore() *memoryTaskStore {
	return &memoryTaskStore{records: make(map[uuid.UUID]*Record)}
}

func (s *memoryTaskStore) SaveTask(_ context.Context, task Task) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.records[task.ID()] = &Record{
		ID: task.ID(), Type: task.Type(), Payload: task.Payload(), Status: task.Status(),
		CreatedAt: now, UpdatedAt: now,
	}
	return nil
}

func (s *memoryTaskStore) put(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = &rec
}

func (s *memoryTaskStore) UpdateTaskStatus(_ context.Context, id uuid.UUID, status TaskStatus, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[id]; ok {
		rec.Status = status
		rec.ErrorMessage = errorMsg
		rec.UpdatedAt = time.Now()
	}
	return nil
}

func (s *memoryTaskStore) byStatus(status TaskStatus, olderThan time.Duration) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Record
	for _, rec := range s.records {
		if rec.Status != status {
			continue
		}
		if olderThan > 0 && time.Since(rec.UpdatedAt) < olderThan {
			continue
		}
		out = append(out, *rec)
	}
	return out
}

func (s *memoryTaskStore) GetPendingTasks(_ context.Context) ([]Record, error) {
	return s.byStatus(TaskStatusPending, 0), nil
}

func (s *memoryTaskStore) GetProcessingTasks(_ context.Context, olderThan time.Duration) ([]Record, error) {
	return s.byStatus(TaskStatusProcessing, olderThan), nil
}

func (s *memoryTaskStore) WithTx(*sql.Tx) TaskStore { return s }

func (s *memoryTaskStore) status(id uuid.UUID) (TaskStatus, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return "", ""
	}
	return rec.Status, rec.ErrorMessage
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
