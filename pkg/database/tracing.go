package database

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/vedantkulkarni1234/website/pkg/database"

// QueryTracer wraps repository queries in client spans and warns about
// queries slower than SlowThreshold. A zero threshold disables the warning.
type QueryTracer struct {
	SlowThreshold time.Duration
	Logger        *slog.Logger
}

// Start begins a span for operation; call the returned func with the
// query's final error:
//
//	ctx, end := tracer.Start(ctx, "ListExtensions", query)
//	defer func() { end(err) }()
func (qt *QueryTracer) Start(ctx context.Context, operation, statement string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "db."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", operation),
			attribute.String("db.statement", statement),
		),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		if qt == nil || qt.SlowThreshold <= 0 || qt.Logger == nil {
			return
		}
		if elapsed := time.Since(start); elapsed >= qt.SlowThreshold {
			attrs := []any{
				slog.String("operation", operation),
				slog.Duration("duration", elapsed),
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
			}
			qt.Logger.WarnContext(ctx, "slow query detected", attrs...)
		}
	}
}
