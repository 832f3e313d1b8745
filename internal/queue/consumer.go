package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"StaffHub/internal/model"
	"StaffHub/pkg/logger"
	"StaffHub/storage/mq"
)

// Notifier creates in-app notifications for event recipients.
type Notifier interface {
	NotifyUsers(ctx context.Context, userIDs []int64, title, message string) (int, error)
	UserIDsWithRole(ctx context.Context, role model.Role) ([]int64, error)
}

// Deduper guards against handling a redelivered message twice.
type Deduper interface {
	TryMark(ctx context.Context, messageID string) (bool, error)
	Unmark(ctx context.Context, messageID string) error
	MarkDone(ctx context.Context, messageID string) error
}

// Dispatcher turns workflow events into notifications.
type Dispatcher struct {
	notifier Notifier
	dedupe   Deduper
}

func NewDispatcher(notifier Notifier, dedupe Deduper) *Dispatcher {
	return &Dispatcher{notifier: notifier, dedupe: dedupe}
}

// StartEventConsumer blocks consuming the notify queue until ctx is cancelled.
func StartEventConsumer(ctx context.Context, d *Dispatcher) error {
	return mq.Consume(ctx, mq.ConsumeOptions{
		Queue:         mq.NotifyQueue,
		ConsumerTag:   "notify_consumer",
		PrefetchCount: 10,
		Handler:       d.Handle,
	})
}

// Handle processes one delivery. Malformed bodies are rejected; duplicates are acked
// without side effects.
func (d *Dispatcher) Handle(ctx context.Context, body []byte) error {
	var msg model.EventMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	if msg.MessageID != "" {
		fresh, err := d.dedupe.TryMark(ctx, msg.MessageID)
		if err != nil {
			// redis down: process anyway and accept a possible duplicate
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		} else if !fresh {
			logger.Logger.Info("Message already processed, skipping",
				zap.String("message_id", msg.MessageID),
				zap.String("type", string(msg.Type)),
			)
			return nil
		}
	}

	if err := d.dispatch(ctx, &msg); err != nil {
		if msg.MessageID != "" {
			_ = d.dedupe.Unmark(ctx, msg.MessageID)
		}
		return err
	}

	if msg.MessageID != "" {
		if err := d.dedupe.MarkDone(ctx, msg.MessageID); err != nil {
			logger.Logger.Warn("Failed to mark message as processed",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (d *Dispatcher) dispatch(ctx context.Context, msg *model.EventMessage) error {
	switch msg.Type {
	case model.EventComplaintSubmitted:
		var ev model.ComplaintSubmittedEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			return fmt.Errorf("failed to decode %s: %w", msg.Type, err)
		}
		role := model.RoleHR
		if ev.RecipientType == model.ComplaintRecipientManager {
			role = model.RoleManager
		}
		ids, err := d.notifier.UserIDsWithRole(ctx, role)
		if err != nil {
			return err
		}
		return d.notify(ctx, msg, ids, "New complaint", ev.Title)

	case model.EventComplaintReplied:
		var ev model.ComplaintRepliedEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			return fmt.Errorf("failed to decode %s: %w", msg.Type, err)
		}
		return d.notify(ctx, msg, []int64{ev.SenderID}, "Your complaint was answered", ev.Title)

	case model.EventTaskAssigned:
		var ev model.TaskAssignedEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			return fmt.Errorf("failed to decode %s: %w", msg.Type, err)
		}
		ids := ev.UserIDs
		if ev.HRTeam {
			hr, err := d.notifier.UserIDsWithRole(ctx, model.RoleHR)
			if err != nil {
				return err
			}
			ids = append(append([]int64{}, ids...), hr...)
		}
		return d.notify(ctx, msg, ids, "New task assigned", ev.Title)

	case model.EventPointsAdjusted:
		var ev model.PointsAdjustedEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			return fmt.Errorf("failed to decode %s: %w", msg.Type, err)
		}
		text := fmt.Sprintf("%+d points: %s. Balance %d.", ev.Delta, ev.Reason, ev.Balance)
		return d.notify(ctx, msg, []int64{ev.UserID}, "Points updated", text)

	case model.EventSurveySubmitted:
		// nobody is notified about submissions
		return nil
	}

	logger.Logger.Warn("Unknown event type, dropping",
		zap.String("type", string(msg.Type)),
		zap.String("message_id", msg.MessageID),
	)
	return nil
}

func (d *Dispatcher) notify(ctx context.Context, msg *model.EventMessage, ids []int64, title, text string) error {
	if len(ids) == 0 {
		return nil
	}
	n, err := d.notifier.NotifyUsers(ctx, ids, title, text)
	if err != nil {
		return fmt.Errorf("failed to notify for %s: %w", msg.Type, err)
	}
	logger.Logger.Info("Event delivered",
		zap.String("type", string(msg.Type)),
		zap.String("message_id", msg.MessageID),
		zap.Int("recipients", n),
	)
	return nil
}
