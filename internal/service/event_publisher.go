package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// SubjectEvaluationCreated is published after an evaluation is stored.
const SubjectEvaluationCreated = "profileiq.evaluation.created"

// EventPublisher fans domain events out to other services.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data any) error
}

// Event is the envelope published for every domain event.
type Event struct {
	ID         string    `json:"id"`
	Subject    string    `json:"subject"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

// EvaluationCreatedEvent is the payload of SubjectEvaluationCreated.
type EvaluationCreatedEvent struct {
	EvaluationID        uint      `json:"evaluationId"`
	StudentID           uint      `json:"studentId"`
	FinalProfileiqScore float64   `json:"finalProfileiqScore"`
	AIModel             string    `json:"aiModel"`
	CreatedAt           time.Time `json:"createdAt"`
}

type natsPublisher struct {
	conn *nats.Conn
	now  func() time.Time
}

// NewNATSPublisher publishes events on conn. A nil connection makes Publish a no-op.
func NewNATSPublisher(conn *nats.Conn) EventPublisher {
	return &natsPublisher{conn: conn, now: time.Now}
}

func (p *natsPublisher) Publish(ctx context.Context, subject string, data any) error {
	if p.conn == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(Event{
		ID:         uuid.NewString(),
		Subject:    subject,
		OccurredAt: p.now().UTC(),
		Data:       data,
	})
	if err != nil {
		return err
	}

	return p.conn.Publish(subject, payload)
}
