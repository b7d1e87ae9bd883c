package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

// Publisher provides typed methods for publishing events to NATS JetStream.
// A nil *Publisher is valid and drops every event, so callers never branch
// on whether the trail is configured.
type Publisher struct {
	js jetstream.JetStream
}

// NewPublisher creates a new Publisher.
func NewPublisher(js jetstream.JetStream) *Publisher {
	return &Publisher{js: js}
}

// PublishDebateCompleted records a finished debate run.
func (p *Publisher) PublishDebateCompleted(ctx context.Context, event DebateCompleted) error {
	return p.publish(ctx, SubjectDebateCompleted, event)
}

// PublishQuotaDenied records a limiter rejection.
func (p *Publisher) PublishQuotaDenied(ctx context.Context, event QuotaDenied) error {
	return p.publish(ctx, SubjectQuotaDenied, event)
}

// PublishPlanChanged records an admin plan change.
func (p *Publisher) PublishPlanChanged(ctx context.Context, event PlanChanged) error {
	return p.publish(ctx, SubjectPlanChanged, event)
}

func (p *Publisher) publish(ctx context.Context, subject string, data any) error {
	if p == nil {
		return nil
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling event for %s: %w", subject, err)
	}
	_, err = p.js.Publish(ctx, subject, payload)
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	return nil
}
