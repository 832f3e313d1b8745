package mq

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"StaffHub/config"
	"StaffHub/pkg/logger"
)

const (
	// EventsExchange receives every workflow event, routed by event type.
	EventsExchange = "portal.events"
	// NotifyQueue is consumed by the worker to create in-app notifications.
	NotifyQueue = "portal.events.notify"

	deadLetterExchange = "portal.events.dlx"
	deadLetterQueue    = "portal.events.dead"
)

var (
	conn     *amqp.Connection
	connMu   sync.RWMutex
	connOnce sync.Once
	connErr  error
)

func Init() error {
	connOnce.Do(func() {
		c, err := amqp.Dial(config.Cfg.GetRabbitMQURL())
		if err != nil {
			connErr = fmt.Errorf("failed to dial rabbitmq: %w", err)
			return
		}

		connMu.Lock()
		conn = c
		connMu.Unlock()

		if err := declareTopology(); err != nil {
			connErr = err
			return
		}
		logger.Logger.Info("RabbitMQ connected", zap.String("component", "rabbitmq"))
	})
	return connErr
}

// Connection returns the shared connection, nil before Init.
func Connection() *amqp.Connection {
	connMu.RLock()
	defer connMu.RUnlock()
	return conn
}

// declareTopology creates the events exchange, the notify queue and its dead-letter pair.
func declareTopology() error {
	ch, err := Connection().Channel()
	if err != nil {
		return fmt.Errorf("failed to open topology channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(EventsExchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", EventsExchange, err)
	}
	if err := ch.ExchangeDeclare(deadLetterExchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", deadLetterExchange, err)
	}
	if _, err := ch.QueueDeclare(deadLetterQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", deadLetterQueue, err)
	}
	if err := ch.QueueBind(deadLetterQueue, "", deadLetterExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", deadLetterQueue, err)
	}

	if _, err := ch.QueueDeclare(NotifyQueue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange": deadLetterExchange,
	}); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", NotifyQueue, err)
	}
	if err := ch.QueueBind(NotifyQueue, "#", EventsExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", NotifyQueue, err)
	}
	return nil
}

func Close(ctx context.Context) error {
	closePublisher()

	c := Connection()
	if c == nil || c.IsClosed() {
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- c.Close() }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
