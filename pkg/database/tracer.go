package database

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/dungpham-npc/storefront/pkg/database"

type queryStartKey struct{}

type queryStart struct {
	at        time.Time
	sql       string
	operation string
	span      trace.Span
}

// QueryTracer is a pgx.QueryTracer that opens an OpenTelemetry span per
// statement and logs statements slower than the threshold.
type QueryTracer struct {
	tracer    trace.Tracer
	threshold time.Duration
	logger    *slog.Logger
}

var _ pgx.QueryTracer = (*QueryTracer)(nil)

// NewQueryTracer creates a tracer. A zero threshold or nil logger disables
// slow query logging.
func NewQueryTracer(threshold time.Duration, logger *slog.Logger) *QueryTracer {
	return &QueryTracer{
		tracer:    otel.Tracer(tracerName),
		threshold: threshold,
		logger:    logger,
	}
}

// TraceQueryStart implements pgx.QueryTracer.
func (t *QueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	op := operationOf(data.SQL)
	ctx, span := t.tracer.Start(ctx, "db."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", op),
			attribute.String("db.statement", data.SQL),
		),
	)
	return context.WithValue(ctx, queryStartKey{}, queryStart{at: time.Now(), sql: data.SQL, operation: op, span: span})
}

// TraceQueryEnd implements pgx.QueryTracer.
func (t *QueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok {
		return
	}

	if data.Err != nil {
		start.span.RecordError(data.Err)
		start.span.SetStatus(codes.Error, data.Err.Error())
	}
	start.span.SetAttributes(attribute.Int64("db.rows_affected", data.CommandTag.RowsAffected()))
	start.span.End()

	if t.threshold <= 0 || t.logger == nil {
		return
	}
	if elapsed := time.Since(start.at); elapsed >= t.threshold {
		attrs := []any{
			slog.String("operation", start.operation),
			slog.String("statement", start.sql),
			slog.Duration("duration", elapsed),
		}
		if data.Err != nil {
			attrs = append(attrs, slog.String("error", data.Err.Error()))
		}
		t.logger.WarnContext(ctx, "slow query detected", attrs...)
	}
}

// operationOf returns the upper-cased leading keyword of a statement.
func operationOf(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "UNKNOWN"
	}
	return strings.ToUpper(fields[0])
}
