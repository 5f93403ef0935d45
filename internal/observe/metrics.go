// SPDX-License-Identifier: EPL-2.0

// Package observe holds the OpenTelemetry instruments the surround pipelines
// record into. Library code takes a *Metrics and falls back to Nop; programs
// build an SDK provider with NewProvider and log the totals at the end of a
// run with LogSummary. Tests use NewMetrics with a ManualReader backed
// provider.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// meterName is the instrumentation scope of every surround instrument.
const meterName = "github.com/ik5/surround"

// Stage attribute values.
const (
	StageEncode = "encode"
	StageDecode = "decode"
	StageRender = "render"
)

// Metrics holds the instruments. All fields are safe for concurrent use.
type Metrics struct {
	// Packets counts framed codec packets. Attribute: stage.
	Packets metric.Int64Counter

	// Bytes counts payload bytes of those packets. Attribute: stage.
	Bytes metric.Int64Counter

	// Blocks counts processed audio blocks. Attribute: stage.
	Blocks metric.Int64Counter

	// FrameMismatches counts decoded packets whose frame count differed
	// from the configured frame size.
	FrameMismatches metric.Int64Counter

	// RenderedFrames counts binaural output frames.
	RenderedFrames metric.Int64Counter

	// FilterLoadDuration tracks how long loading an HRTF filter set took.
	FilterLoadDuration metric.Float64Histogram
}

var loadBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1,
}

// NewMetrics creates every instrument on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Packets, err = m.Int64Counter("surround.packets",
		metric.WithDescription("Codec packets framed or unframed, by stage."),
	); err != nil {
		return nil, err
	}
	if met.Bytes, err = m.Int64Counter("surround.packet.bytes",
		metric.WithDescription("Codec payload bytes, by stage."),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}
	if met.Blocks, err = m.Int64Counter("surround.blocks",
		metric.WithDescription("Audio blocks processed, by stage."),
	); err != nil {
		return nil, err
	}
	if met.FrameMismatches, err = m.Int64Counter("surround.frame_mismatches",
		metric.WithDescription("Decoded packets with an unexpected frame count."),
	); err != nil {
		return nil, err
	}
	if met.RenderedFrames, err = m.Int64Counter("surround.rendered_frames",
		metric.WithDescription("Binaural frames rendered."),
	); err != nil {
		return nil, err
	}
	if met.FilterLoadDuration, err = m.Float64Histogram("surround.filter_load.duration",
		metric.WithDescription("Time spent loading an HRTF filter set."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(loadBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// Nop returns instruments that record nothing.
func Nop() *Metrics {
	m, err := NewMetrics(noop.NewMeterProvider())
	if err != nil {
		panic("observe: noop metrics: " + err.Error())
	}
	return m
}

func stage(s string) metric.AddOption {
	return metric.WithAttributes(attribute.String("stage", s))
}

// RecordPacket counts one packet of size bytes.
func (m *Metrics) RecordPacket(ctx context.Context, st string, size int) {
	m.Packets.Add(ctx, 1, stage(st))
	m.Bytes.Add(ctx, int64(size), stage(st))
}

func (m *Metrics) RecordBlock(ctx context.Context, st string) {
	m.Blocks.Add(ctx, 1, stage(st))
}

func (m *Metrics) RecordFrameMismatch(ctx context.Context) {
	m.FrameMismatches.Add(ctx, 1)
}

func (m *Metrics) RecordRenderedFrames(ctx context.Context, frames int) {
	m.RenderedFrames.Add(ctx, int64(frames))
}

func (m *Metrics) RecordFilterLoad(ctx context.Context, d time.Duration) {
	m.FilterLoadDuration.Record(ctx, d.Seconds())
}
