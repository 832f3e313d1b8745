package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"StaffHub/internal/model"
	"StaffHub/pkg/logger"
	"StaffHub/pkg/metrics"
	"StaffHub/pkg/snowflake"
	"StaffHub/storage/mq"
)

// EventPublisher sends workflow events to the events exchange, routed by event type.
type EventPublisher struct {
	now func() time.Time
}

func NewEventPublisher() *EventPublisher {
	return &EventPublisher{now: time.Now}
}

// Publish wraps payload in an EventMessage with a fresh message id.
func (p *EventPublisher) Publish(ctx context.Context, eventType model.EventType, payload interface{}) (err error) {
	defer func() {
		metrics.RecordEventPublished(ctx, string(eventType), err)
	}()

	env, err := p.envelope(eventType, payload)
	if err != nil {
		return err
	}

	if err = mq.PublishMessage(ctx, mq.EventsExchange, string(eventType), env.MessageID, env); err != nil {
		logger.Logger.Error("Failed to publish event",
			zap.String("type", string(eventType)),
			zap.String("message_id", env.MessageID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Debug("Published event",
		zap.String("type", string(eventType)),
		zap.String("message_id", env.MessageID),
	)
	return nil
}

func (p *EventPublisher) envelope(eventType model.EventType, payload interface{}) (*model.EventMessage, error) {
	id, err := snowflake.NextString()
	if err != nil {
		return nil, fmt.Errorf("failed to generate message ID: %w", err)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	return &model.EventMessage{
		MessageID:  "evt_" + id,
		Type:       eventType,
		OccurredAt: p.now().UTC().Format(time.RFC3339),
		Payload:    raw,
	}, nil
}
