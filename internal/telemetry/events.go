package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// AnalysisAttrs describe one scoring operation
type AnalysisAttrs struct {
	Engine        string
	Jurisdiction  string
	Platform      string
	ContentLength int
}

// TraceAnalysis starts a span around a scoring operation
func TraceAnalysis(ctx context.Context, attrs AnalysisAttrs) (context.Context, trace.Span) {
	ctx, span := otel.Tracer("postcheck").Start(ctx, "analysis.analyze",
		trace.WithAttributes(
			attribute.String("analysis.engine", attrs.Engine),
			attribute.String("analysis.jurisdiction", attrs.Jurisdiction),
			attribute.Int("analysis.content_length", attrs.ContentLength),
		),
	)
	if attrs.Platform != "" {
		span.SetAttributes(attribute.String("analysis.platform", attrs.Platform))
	}
	return ctx, span
}

// RecordAnalysisResult annotates the span with the outcome
func RecordAnalysisResult(span trace.Span, score int, verdict string, degradedReason string, cacheHit bool) {
	span.SetAttributes(
		attribute.Int("analysis.risk_score", score),
		attribute.String("analysis.verdict", verdict),
		attribute.Bool("analysis.cache_hit", cacheHit),
	)
	if degradedReason != "" {
		span.SetAttributes(attribute.String("analysis.degraded_reason", degradedReason))
		span.AddEvent("analysis.degraded")
	}
	span.SetStatus(codes.Ok, "")
}

// RecordError marks the span failed
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
