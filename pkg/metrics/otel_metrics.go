package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instruments are created against the global meter, which forwards to the real
// provider once pkg/otel installs one. Until then they record nothing.
var (
	meter = otel.Meter("staffhub")

	pointsAdjustedTotal  metric.Int64Counter
	pointsDeltaSum       metric.Int64Counter
	surveySubmissions    metric.Int64Counter
	taskTransitions      metric.Int64Counter
	complaintsTotal      metric.Int64Counter
	notificationsFanout  metric.Int64Histogram
	eventsPublishedTotal metric.Int64Counter
	ledgerDivergences    metric.Int64Counter
)

func init() {
	pointsAdjustedTotal, _ = meter.Int64Counter("points_adjustments_total",
		metric.WithDescription("Point adjustments committed"))
	pointsDeltaSum, _ = meter.Int64Counter("points_delta_abs_total",
		metric.WithDescription("Sum of absolute point deltas committed"))
	surveySubmissions, _ = meter.Int64Counter("survey_submissions_total",
		metric.WithDescription("Survey submissions by outcome"))
	taskTransitions, _ = meter.Int64Counter("task_transitions_total",
		metric.WithDescription("Task and phase state transitions"))
	complaintsTotal, _ = meter.Int64Counter("complaints_total",
		metric.WithDescription("Complaint submissions and replies"))
	notificationsFanout, _ = meter.Int64Histogram("notification_fanout_recipients",
		metric.WithDescription("Recipients per sent notification"),
		metric.WithUnit("{user}"))
	eventsPublishedTotal, _ = meter.Int64Counter("events_published_total",
		metric.WithDescription("Workflow events published by outcome"))
	ledgerDivergences, _ = meter.Int64Counter("points_ledger_divergences_total",
		metric.WithDescription("Users whose counter differed from the ledger sum"))
}

func RecordPointsAdjusted(ctx context.Context, delta int) {
	pointsAdjustedTotal.Add(ctx, 1)
	if delta < 0 {
		delta = -delta
	}
	pointsDeltaSum.Add(ctx, int64(delta))
}

// RecordSurveySubmission records an accepted or rejected submission; reason is the error code.
func RecordSurveySubmission(ctx context.Context, accepted bool, reason string) {
	outcome := "accepted"
	if !accepted {
		outcome = "rejected"
	}
	surveySubmissions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("reason", reason),
	))
}

func RecordTaskTransition(ctx context.Context, kind, status string) {
	taskTransitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("status", status),
	))
}

func RecordComplaint(ctx context.Context, action, recipientType string) {
	complaintsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("recipient_type", recipientType),
	))
}

func RecordNotificationFanout(ctx context.Context, recipients int) {
	notificationsFanout.Record(ctx, int64(recipients))
}

func RecordEventPublished(ctx context.Context, eventType string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	eventsPublishedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", eventType),
		attribute.String("status", status),
	))
}

func RecordLedgerDivergence(ctx context.Context) {
	ledgerDivergences.Add(ctx, 1)
}
