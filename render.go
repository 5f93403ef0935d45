// SPDX-License-Identifier: EPL-2.0

package surround

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ik5/surround/formats/wav"
	"github.com/ik5/surround/hrtf"
	"github.com/ik5/surround/internal/config"
	"github.com/ik5/surround/internal/observe"
)

// RenderFile renders the 5 channel file at in to a binaural WAV at out with
// the filters in filterDir. The input layout is checked before any filter
// is read.
func RenderFile(ctx context.Context, cfg *config.Config, in, out, filterDir string, opts Options) (frames int64, err error) {
	ctx, span := observe.StartSpan(ctx, "surround.render", trace.WithAttributes(
		attribute.String("in", in),
		attribute.String("out", out),
		attribute.String("filter_dir", filterDir),
	))
	defer func() { observe.EndSpan(span, err) }()

	o := opts.withDefaults()
	o.Logger = observe.SpanLogger(ctx, o.Logger)

	src, err := openSource(o.Registry, in)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	if src.Channels() != hrtf.Channels {
		return 0, fmt.Errorf("%s has %d channels, want %d: %w", in, src.Channels(), hrtf.Channels, hrtf.ErrInvalidChannelCount)
	}

	fs, err := hrtf.LoadFilterSet(ctx, filterDir,
		hrtf.WithTaps(cfg.Render.Taps),
		hrtf.WithStrictRate(cfg.Render.StrictRate),
		hrtf.WithLoadLogger(o.Logger),
		hrtf.WithLoadMetrics(o.Metrics),
	)
	if err != nil {
		return 0, err
	}

	eng, err := hrtf.NewEngine(src.Channels(), fs,
		hrtf.WithNormalization(cfg.Render.Normalize),
		hrtf.WithBlockSize(cfg.Render.BlockSize),
		hrtf.WithLogger(o.Logger),
		hrtf.WithMetrics(o.Metrics),
	)
	if err != nil {
		return 0, err
	}

	w, err := wav.Create(out, src.SampleRate(), 2, cfg.Output.BitDepth)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrResourceUnavailable, err)
	}
	defer func() {
		if cerr := w.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close %s: %w: %w", out, ErrResourceUnavailable, cerr))
		}
	}()

	frames, err = eng.Run(ctx, src, w)
	if c := w.Clipped(); c > 0 {
		o.Logger.Warn("output clipped at full scale", "out", out, "samples", c)
	}
	if err != nil {
		return frames, fmt.Errorf("%w: %w", ErrResourceUnavailable, err)
	}

	o.Logger.Info("rendered",
		"out", out,
		"frames", frames,
		"taps", fs.Taps(),
		"normalize", cfg.Render.Normalize,
	)
	return frames, nil
}
