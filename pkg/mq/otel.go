package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("staffhub.rabbitmq")

	mqMessagesTotal metric.Int64Counter
	mqErrorsTotal   metric.Int64Counter
)

func init() {
	meter := otel.Meter("staffhub.rabbitmq")
	mqMessagesTotal, _ = meter.Int64Counter("mq.messages.total",
		metric.WithDescription("RabbitMQ messages published or consumed"),
		metric.WithUnit("{message}"))
	mqErrorsTotal, _ = meter.Int64Counter("mq.errors.total",
		metric.WithDescription("RabbitMQ publish or consume failures"),
		metric.WithUnit("{error}"))
}

// HeaderCarrier adapts amqp.Table to a propagation.TextMapCarrier.
type HeaderCarrier amqp.Table

func (h HeaderCarrier) Get(key string) string {
	v, ok := h[key]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func (h HeaderCarrier) Set(key, value string) {
	h[key] = value
}

func (h HeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	return keys
}

var _ propagation.TextMapCarrier = HeaderCarrier{}

// StartPublish opens a producer span and injects its context into headers.
func StartPublish(ctx context.Context, exchange, routingKey string, headers amqp.Table) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "rabbitmq.publish "+exchange,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystem("rabbitmq"),
			attribute.String("messaging.destination.name", exchange),
			attribute.String("messaging.rabbitmq.routing_key", routingKey),
		),
	)
	otel.GetTextMapPropagator().Inject(ctx, HeaderCarrier(headers))
	return ctx, span
}

// StartConsume extracts the producer context from headers and opens a consumer span.
func StartConsume(ctx context.Context, queue string, headers amqp.Table) (context.Context, trace.Span) {
	if headers != nil {
		ctx = otel.GetTextMapPropagator().Extract(ctx, HeaderCarrier(headers))
	}
	return tracer.Start(ctx, "rabbitmq.consume "+queue,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			semconv.MessagingSystem("rabbitmq"),
			attribute.String("messaging.source.name", queue),
		),
	)
}

// Record counts one message and, when err is set, one failure for the given direction.
func Record(ctx context.Context, direction, destination string, err error) {
	attrs := metric.WithAttributes(
		attribute.String("direction", direction),
		attribute.String("destination", destination),
	)
	mqMessagesTotal.Add(ctx, 1, attrs)
	if err != nil {
		mqErrorsTotal.Add(ctx, 1, attrs)
	}
}
