package shared

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/fitdash/fitdash-api/internal/service"
)

// ContextKey is the type of the request-scoped values set by the middleware.
type ContextKey string

const (
	// ActorContextKey holds the authenticated service.Actor.
	ActorContextKey ContextKey = "actor"
	// TraceIDKey holds the request trace ID.
	TraceIDKey ContextKey = "traceID"
	// TraceIDLength is the number of random bytes in a trace ID (32 hex characters).
	TraceIDLength = 16
)

// WithActor stores the authenticated caller in ctx.
func WithActor(ctx context.Context, actor service.Actor) context.Context {
	return context.WithValue(ctx, ActorContextKey, actor)
}

// ActorFrom returns the authenticated caller stored in ctx.
func ActorFrom(ctx context.Context) (service.Actor, bool) {
	actor, ok := ctx.Value(ActorContextKey).(service.Actor)
	return actor, ok
}

// SetTraceID adds a fresh trace ID to ctx.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// GetTraceID returns the trace ID stored in ctx, or "".
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}

var fallbackSeq atomic.Uint64

func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	if _, err := rand.Read(b); err != nil {
		slog.Error("failed to generate random trace ID, using time-based fallback", slog.Any("error", err))
		return fallbackTraceID()
	}
	return hex.EncodeToString(b)
}

// fallbackTraceID derives an ID from the clock and a process-wide sequence,
// so it stays unique even when two requests share a timestamp.
func fallbackTraceID() string {
	b := make([]byte, TraceIDLength)
	binary.BigEndian.PutUint64(b[:8], uint64(time.Now().UnixNano()))
	binary.BigEndian.PutUint64(b[8:], fallbackSeq.Add(1))
	return hex.EncodeToString(b)
}
