package database

import (
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	spanKey  = "otel:span"
	startKey = "otel:start"
)

var (
	dbQueriesTotal  metric.Int64Counter
	dbQueryDuration metric.Float64Histogram
)

func init() {
	meter := otel.Meter("staffhub.gorm")
	dbQueriesTotal, _ = meter.Int64Counter("db.queries.total",
		metric.WithDescription("Total number of database statements"),
		metric.WithUnit("{query}"))
	dbQueryDuration, _ = meter.Float64Histogram("db.query.duration",
		metric.WithDescription("Database statement duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0))
}

// OTELPlugin opens a client span around every gorm statement and records its duration.
type OTELPlugin struct {
	tracer       trace.Tracer
	dbSystem     attribute.KeyValue
	maxSQLLength int
}

// NewOTELPlugin creates the plugin. dialect is the gorm dialector name (postgres, sqlite).
func NewOTELPlugin(serviceName, dialect string) *OTELPlugin {
	system := semconv.DBSystemPostgreSQL
	if dialect == "sqlite" {
		system = semconv.DBSystemSqlite
	}
	return &OTELPlugin{
		tracer:       otel.Tracer(serviceName + ".gorm"),
		dbSystem:     system,
		maxSQLLength: 500,
	}
}

func (p *OTELPlugin) Name() string {
	return "otel_plugin"
}

func (p *OTELPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	errs := []error{
		cb.Query().Before("gorm:query").Register("otel:before_query", p.before),
		cb.Query().After("gorm:query").Register("otel:after_query", p.after),
		cb.Create().Before("gorm:create").Register("otel:before_create", p.before),
		cb.Create().After("gorm:create").Register("otel:after_create", p.after),
		cb.Update().Before("gorm:update").Register("otel:before_update", p.before),
		cb.Update().After("gorm:update").Register("otel:after_update", p.after),
		cb.Delete().Before("gorm:delete").Register("otel:before_delete", p.before),
		cb.Delete().After("gorm:delete").Register("otel:after_delete", p.after),
		cb.Row().Before("gorm:row").Register("otel:before_row", p.before),
		cb.Row().After("gorm:row").Register("otel:after_row", p.after),
		cb.Raw().Before("gorm:raw").Register("otel:before_raw", p.before),
		cb.Raw().After("gorm:raw").Register("otel:after_raw", p.after),
	}
	return errors.Join(errs...)
}

func (p *OTELPlugin) before(db *gorm.DB) {
	ctx, _ := p.tracer.Start(db.Statement.Context, "db."+db.Statement.Table,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(p.dbSystem, attribute.String("db.table", db.Statement.Table)),
	)
	db.InstanceSet(spanKey, trace.SpanFromContext(ctx))
	db.InstanceSet(startKey, time.Now())
	db.Statement.Context = ctx
}

func (p *OTELPlugin) after(db *gorm.DB) {
	v, ok := db.InstanceGet(spanKey)
	if !ok {
		return
	}
	span, ok := v.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	op := operationName(db.Statement.SQL.String())
	sql := db.Statement.SQL.String()
	if len(sql) > p.maxSQLLength {
		sql = sql[:p.maxSQLLength] + "..."
	}
	span.SetName(op)
	span.SetAttributes(
		semconv.DBStatement(sql),
		attribute.Int64("db.rows_affected", db.Statement.RowsAffected),
	)

	status := "success"
	switch {
	case db.Error == nil, errors.Is(db.Error, gorm.ErrRecordNotFound):
		span.SetStatus(codes.Ok, "")
	default:
		status = "error"
		span.RecordError(db.Error)
		span.SetStatus(codes.Error, db.Error.Error())
	}

	attrs := metric.WithAttributes(
		attribute.String("db.operation", op),
		attribute.String("db.status", status),
	)
	dbQueriesTotal.Add(db.Statement.Context, 1, attrs)
	if start, ok := db.InstanceGet(startKey); ok {
		if t, ok := start.(time.Time); ok {
			dbQueryDuration.Record(db.Statement.Context, time.Since(t).Seconds(), attrs)
		}
	}
}

func operationName(sql string) string {
	sql = strings.ToUpper(strings.TrimSpace(sql))
	for _, verb := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(sql, verb) {
			return "db." + strings.ToLower(verb)
		}
	}
	return "db.query"
}
