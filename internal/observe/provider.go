// SPDX-License-Identifier: EPL-2.0

package observe

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// NewProvider builds an SDK meter provider read through a ManualReader.
// Batch programs have nothing to export to, so they collect once at the end.
func NewProvider(service string) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(resource.NewSchemaless(semconv.ServiceName(service))),
		sdkmetric.WithReader(reader),
	)
	return mp, reader
}

// Totals collects reader and sums every counter and histogram count by
// instrument name, attributes folded into the key as name{value}.
func Totals(ctx context.Context, reader *sdkmetric.ManualReader) (map[string]float64, error) {
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		return nil, fmt.Errorf("collect metrics: %w", err)
	}

	out := make(map[string]float64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					out[key(m.Name, dp.Attributes.ToSlice())] += float64(dp.Value)
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					out[m.Name+".count"] += float64(dp.Count)
					out[m.Name+".sum"] += dp.Sum
				}
			}
		}
	}
	return out, nil
}

func key(name string, attrs []attribute.KeyValue) string {
	if len(attrs) == 0 {
		return name
	}
	k := name + "{"
	for i, a := range attrs {
		if i > 0 {
			k += ","
		}
		k += a.Value.Emit()
	}
	return k + "}"
}

// LogSummary writes the run totals as a single info record.
func LogSummary(ctx context.Context, logger *slog.Logger, reader *sdkmetric.ManualReader) {
	totals, err := Totals(ctx, reader)
	if err != nil {
		logger.Warn("metrics summary unavailable", "err", err)
		return
	}

	names := make([]string, 0, len(totals))
	for n := range totals {
		names = append(names, n)
	}
	sort.Strings(names)

	args := make([]any, 0, 2*len(names))
	for _, n := range names {
		args = append(args, n, totals[n])
	}
	logger.Info("run summary", args...)
}
