package telemetry

import (
	"context"
	"time"
)

// Publisher is the transport the audit emitter writes to.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// AuditEmitter ships privileged chat operations (grants, role changes,
// revocations, pin toggles) to the audit log.
type AuditEmitter struct {
	publisher   Publisher
	routingKey  string
	service     string
	environment string
}

// AuditEnvelope is the versioned wire format of one audit record.
type AuditEnvelope struct {
	SchemaVersion int          `json:"schema_version"`
	EventType     string       `json:"event_type"`
	OccurredAt    string       `json:"occurred_at"`
	Service       string       `json:"service"`
	Environment   string       `json:"environment"`
	RequestID     string       `json:"request_id"`
	ActorID       *int64       `json:"actor_id,omitempty"`
	Payload       AuditPayload `json:"payload"`
}

// AuditPayload describes what happened to which event's chatroom.
type AuditPayload struct {
	Action       string `json:"action"`
	EventID      int    `json:"event_id,omitempty"`
	TargetUserID int    `json:"target_user_id,omitempty"`
	Detail       string `json:"detail,omitempty"`
}

// NewAuditEmitter constructs an AuditEmitter.
func NewAuditEmitter(publisher Publisher, routingKey, service, environment string) *AuditEmitter {
	return &AuditEmitter{
		publisher:   publisher,
		routingKey:  routingKey,
		service:     service,
		environment: environment,
	}
}

// Emit publishes one audit record. A nil emitter or publisher is a no-op so
// call sites never need to guard.
func (e *AuditEmitter) Emit(ctx context.Context, payload AuditPayload, requestID string, actorID *int64) {
	if e == nil || e.publisher == nil {
		return
	}

	envelope := AuditEnvelope{
		SchemaVersion: 1,
		EventType:     "chat_audit",
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		RequestID:     requestID,
		ActorID:       actorID,
		Payload:       payload,
	}

	_ = e.publisher.Publish(ctx, e.routingKey, envelope)
}
