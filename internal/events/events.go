package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types. Each one matches the task type that handles it.
const (
	// TypePaymentSettlement carries a PaymentOutcome reported by a payment provider.
	TypePaymentSettlement = "payment_settlement"
)

// PaymentOutcome is the payload of a TypePaymentSettlement event.
type PaymentOutcome struct {
	Provider    string `json:"provider"`
	ProviderRef string `json:"provider_ref"`
	// Status is the terminal payment status: "succeeded" or "failed".
	Status string `json:"status"`
	// EventID is the provider's own event identifier, kept for log correlation.
	EventID string `json:"event_id,omitempty"`
}

// TaskRequestEvent asks for a background task of Type to be created from Payload.
type TaskRequestEvent struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewTaskRequestEvent serializes payload into a new event of eventType.
func NewTaskRequestEvent(eventType string, payload any) (*TaskRequestEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &TaskRequestEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   data,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// UnmarshalPayload decodes the event payload into v.
func (e *TaskRequestEvent) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// EventHandler processes emitted events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *TaskRequestEvent) error
}

// EventEmitter publishes events to whatever handlers are registered.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *TaskRequestEvent) error
}
