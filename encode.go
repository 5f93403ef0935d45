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

	"github.com/ik5/surround/audio"
	"github.com/ik5/surround/codec"
	"github.com/ik5/surround/internal/config"
	"github.com/ik5/surround/internal/observe"
	"github.com/ik5/surround/mapping"
	"github.com/ik5/surround/packet"
)

// EncodeFiles encodes one mono stem per channel into a packet file at out.
// inputs are in channel order (FL, C, FR, RL, RR).
func EncodeFiles(ctx context.Context, cfg *config.Config, out string, inputs []string, opts Options) (st codec.Stats, err error) {
	ctx, span := observe.StartSpan(ctx, "surround.encode", trace.WithAttributes(
		attribute.String("out", out),
		attribute.Int("inputs", len(inputs)),
	))
	defer func() { observe.EndSpan(span, err) }()

	o := opts.withDefaults()
	o.Logger = observe.SpanLogger(ctx, o.Logger)

	m, err := mapping.Plan(cfg.Codec.Channels, cfg.Codec.MappingFamily)
	if err != nil {
		return st, err
	}
	if len(inputs) != m.Channels {
		return st, fmt.Errorf("%d inputs for %d channels: %w", len(inputs), m.Channels, audio.ErrChannelCount)
	}
	logLayout(o.Logger, m, inputs)

	sources := make([]audio.Source, 0, len(inputs))
	defer func() {
		for _, src := range sources {
			if cerr := src.Close(); cerr != nil {
				o.Logger.Warn("closing input", "err", cerr)
			}
		}
	}()

	for ch, path := range inputs {
		src, err := openSource(o.Registry, path)
		if err != nil {
			return st, err
		}
		sources = append(sources, src)

		if src.Channels() != 1 {
			if !cfg.Encode.DownmixInputs {
				return st, fmt.Errorf("%s has %d channels, want mono: %w", path, src.Channels(), audio.ErrChannelCount)
			}
			o.Logger.Info("downmixing input", "path", path, "channels", src.Channels())
			sources[ch] = audio.NewMonoMixer(src)
		}
	}

	enc, err := codec.NewEncoder(o.Codec, m,
		codec.EncoderOptions{
			Bitrate:     cfg.Encode.Bitrate,
			Complexity:  cfg.Encode.Complexity,
			Application: cfg.Encode.Application,
		},
		codec.WithLogger(o.Logger),
		codec.WithMetrics(o.Metrics),
		codec.WithFrameSize(cfg.Codec.FrameSize),
	)
	if err != nil {
		return st, err
	}

	f, err := os.Create(out)
	if err != nil {
		return st, fmt.Errorf("%w: %w", ErrResourceUnavailable, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close %s: %w: %w", out, ErrResourceUnavailable, cerr))
		}
	}()

	st, err = enc.Run(ctx, sources, packet.NewWriter(bufio.NewWriter(f)))
	if err != nil {
		return st, err
	}

	o.Logger.Info("encoded",
		"out", out,
		"mapping", m,
		"bitrate", cfg.Encode.Bitrate,
		"packets", st.Packets,
		"bytes", st.Bytes,
		"dropped_frames", st.DroppedFrames,
	)
	return st, nil
}
