package otelhelper

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SetError marks span as failed and records err with attrs.
// A cancelled run is not a failure: it only gets an "execution_cancelled" event.
func SetError(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if err == nil {
		return
	}

	if errors.Is(err, context.Canceled) {
		span.AddEvent("execution_cancelled", trace.WithAttributes(attrs...))

		return
	}

	span.RecordError(err, trace.WithAttributes(attrs...))
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String(ErrorMessageKey, err.Error()))
}
