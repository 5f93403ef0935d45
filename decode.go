// SPDX-License-Identifier: EPL-2.0

package surround

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ik5/surround/codec"
	"github.com/ik5/surround/formats/wav"
	"github.com/ik5/surround/internal/config"
	"github.com/ik5/surround/internal/observe"
	"github.com/ik5/surround/mapping"
	"github.com/ik5/surround/packet"
)

// DecodeFile decodes the packet file at in into a multichannel WAV at out.
// When the packet file turns out to be corrupt, the frames decoded before
// the bad record are kept in out and the error is returned.
func DecodeFile(ctx context.Context, cfg *config.Config, in, out string, opts Options) (st codec.Stats, err error) {
	ctx, span := observe.StartSpan(ctx, "surround.decode", trace.WithAttributes(
		attribute.String("in", in),
		attribute.String("out", out),
	))
	defer func() { observe.EndSpan(span, err) }()

	o := opts.withDefaults()
	o.Logger = observe.SpanLogger(ctx, o.Logger)

	m, err := mapping.Plan(cfg.Codec.Channels, cfg.Codec.MappingFamily)
	if err != nil {
		return st, err
	}
	logLayout(o.Logger, m, nil)

	dec, err := codec.NewDecoder(o.Codec, m,
		codec.WithLogger(o.Logger),
		codec.WithMetrics(o.Metrics),
		codec.WithFrameSize(cfg.Codec.FrameSize),
	)
	if err != nil {
		return st, err
	}

	f, err := os.Open(in)
	if err != nil {
		return st, fmt.Errorf("%w: %w", ErrResourceUnavailable, err)
	}
	defer f.Close()

	w, err := wav.Create(out, codec.SampleRate, m.Channels, cfg.Output.BitDepth)
	if err != nil {
		return st, fmt.Errorf("%w: %w", ErrResourceUnavailable, err)
	}
	defer func() {
		if cerr := w.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close %s: %w: %w", out, ErrResourceUnavailable, cerr))
		}
	}()

	st, err = dec.Run(ctx, packet.NewReader(bufio.NewReader(f)), w)
	if c := w.Clipped(); c > 0 {
		o.Logger.Warn("output clipped at full scale", "out", out, "samples", c)
	}
	if err != nil {
		return st, err
	}

	if st.Mismatches > 0 {
		o.Logger.Warn("decoded packets with unexpected frame counts", "count", st.Mismatches)
	}
	o.Logger.Info("decoded",
		"out", out,
		"mapping", m,
		"packets", st.Packets,
		"frames", st.Frames,
	)
	return st, nil
}
