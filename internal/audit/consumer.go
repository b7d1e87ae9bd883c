package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/nurox-platform/nurox/internal/events"
)

// Consumer drains the event stream into the audit_logs table.
type Consumer struct {
	consumerMgr *events.ConsumerManager
	repo        Repository
}

func NewConsumer(consumerMgr *events.ConsumerManager, repo Repository) *Consumer {
	return &Consumer{consumerMgr: consumerMgr, repo: repo}
}

// Start runs the consume loop until the context is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	consumer, err := c.consumerMgr.EnsureConsumer(ctx, events.StreamEvents, "audit-writer", "nurox.events.>")
	if err != nil {
		return err
	}

	slog.Info("audit consumer started")

	for {
		msgs, err := consumer.Fetch(10, jetstream.FetchMaxWait(events.FetchTimeout))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Debug("audit: fetching events", "error", err)
			continue
		}

		for msg := range msgs.Messages() {
			c.handleEvent(ctx, msg)
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *Consumer) handleEvent(ctx context.Context, msg jetstream.Msg) {
	entry := &Log{
		ID:        uuid.New(),
		EventType: eventTypeForSubject(msg.Subject()),
		Subject:   msg.Subject(),
		Payload:   msg.Data(),
		CreatedAt: time.Now().UTC(),
	}

	// Every event type carries user_id.
	var envelope struct {
		UserID uuid.UUID `json:"user_id"`
	}
	if err := json.Unmarshal(msg.Data(), &envelope); err == nil {
		entry.UserID = envelope.UserID
	}

	if err := c.repo.Insert(ctx, entry); err != nil {
		slog.Error("persisting audit log", "error", err, "subject", msg.Subject())
		if nakErr := msg.Nak(); nakErr != nil {
			slog.Warn("nacking event", "error", nakErr)
		}
		return
	}

	if err := msg.Ack(); err != nil {
		slog.Warn("acking event", "error", err)
	}
}

func eventTypeForSubject(subject string) string {
	switch subject {
	case events.SubjectDebateCompleted:
		return events.TypeDebateCompleted
	case events.SubjectQuotaDenied:
		return events.TypeQuotaDenied
	case events.SubjectPlanChanged:
		return events.TypePlanChanged
	default:
		return subject
	}
}
