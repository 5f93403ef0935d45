// SPDX-License-Identifier: EPL-2.0

package observe

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestTracerProvider(t *testing.T) (*sdktrace.TracerProvider, *tracetest.InMemoryExporter) {
	t.Helper()
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, exp
}

func TestEndSpan_RecordsError(t *testing.T) {
	t.Parallel()

	tp, exp := newTestTracerProvider(t)
	tracer := tp.Tracer("test")

	_, ok := tracer.Start(context.Background(), "ok")
	EndSpan(ok, nil)
	_, bad := tracer.Start(context.Background(), "bad")
	EndSpan(bad, errors.New("boom"))

	spans := exp.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	if spans[0].Status.Code == codes.Error {
		t.Errorf("span %q has error status", spans[0].Name)
	}
	if spans[1].Status.Code != codes.Error || spans[1].Status.Description != "boom" {
		t.Errorf("span %q status = %+v, want error boom", spans[1].Name, spans[1].Status)
	}
	if len(spans[1].Events) == 0 {
		t.Errorf("span %q has no error event", spans[1].Name)
	}
}

func TestSpanLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	if got := SpanLogger(context.Background(), base); got != base {
		t.Error("SpanLogger without a span should return the logger unchanged")
	}

	tp, _ := newTestTracerProvider(t)
	ctx, span := tp.Tracer("test").Start(context.Background(), "run")
	defer span.End()

	SpanLogger(ctx, base).Info("hello")
	out := buf.String()
	if !strings.Contains(out, "trace_id="+span.SpanContext().TraceID().String()) {
		t.Errorf("log line %q lacks trace_id", out)
	}
	if !strings.Contains(out, "span_id=") {
		t.Errorf("log line %q lacks span_id", out)
	}
}

func TestNewTracerProvider_Samples(t *testing.T) {
	t.Parallel()

	tp := NewTracerProvider("surround-test")
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, span := tp.Tracer("test").Start(context.Background(), "run")
	defer span.End()
	if !span.SpanContext().HasTraceID() {
		t.Error("span has no trace ID")
	}
}
