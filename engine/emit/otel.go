package emit

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fallout-harness/fallout/engine"
)

// OtelSink turns each Operation into an OpenTelemetry span, named after the
// Operation's type, tagged with process/module/time attributes, and marked
// as an error span for fail/error Operations. Grounded on
// graph/emit/otel.go's OTelEmitter, generalized from "observability event"
// to "history Operation".
//
// Spans are point-in-time (created and immediately ended), matching the
// teacher's instant-event convention — Operations are events, not spans
// with independent duration.
type OtelSink struct {
	tracer trace.Tracer
}

// NewOtelSink creates an OtelSink backed by the given tracer, typically
// obtained from otel.Tracer("fallout").
func NewOtelSink(tracer trace.Tracer) *OtelSink {
	return &OtelSink{tracer: tracer}
}

// Append implements engine.Sink.
func (o *OtelSink) Append(op engine.Operation) {
	_, span := o.tracer.Start(context.Background(), string(op.Type))
	defer span.End()

	span.SetAttributes(
		attribute.String("fallout.process_id", op.ProcessID),
		attribute.String("fallout.module_ref", op.ModuleRef),
		attribute.Int64("fallout.time_ns", op.TimeNS),
		attribute.String("fallout.media_type", op.MediaType),
	)

	if op.Type == engine.OpFail || op.Type == engine.OpError {
		msg := fmt.Sprintf("%v", op.Value)
		span.SetStatus(codes.Error, msg)
		span.RecordError(fmt.Errorf("%s", msg))
	}
}
