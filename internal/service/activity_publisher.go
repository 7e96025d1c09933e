package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/noah-isme/taskboard-api/internal/models"
)

// ActivityEvent is the message published for every persisted audit entry.
type ActivityEvent struct {
	ID        uint                   `json:"id"`
	UserID    *uint                  `json:"user_id"`
	Action    string                 `json:"action"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewActivityEvent converts a stored log into its published form.
func NewActivityEvent(model models.ActivityLog) ActivityEvent {
	return ActivityEvent{
		ID:        model.ID,
		UserID:    model.UserID,
		Action:    model.Action,
		Metadata:  model.Metadata,
		Timestamp: model.Timestamp,
	}
}

// ActivityPublisher fans out audit events to other services.
type ActivityPublisher interface {
	Publish(ctx context.Context, event ActivityEvent) error
}

type natsActivityPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSActivityPublisher publishes events on subject. It returns nil when
// conn is nil so callers can pass the result straight to NewActivityService.
func NewNATSActivityPublisher(conn *nats.Conn, subject string) ActivityPublisher {
	if conn == nil || subject == "" {
		return nil
	}
	return &natsActivityPublisher{conn: conn, subject: subject}
}

func (p *natsActivityPublisher) Publish(_ context.Context, event ActivityEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.conn.Publish(p.subject, payload)
}
