// SPDX-License-Identifier: EPL-2.0

package hrtf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gonum.org/v1/gonum/floats"

	"github.com/ik5/surround/audio"
	"github.com/ik5/surround/internal/observe"
)

// DefaultBlockSize is the number of frames Run moves per iteration.
const DefaultBlockSize = 512

type options struct {
	normalize bool
	blockSize int
	logger    *slog.Logger
	metrics   *observe.Metrics
}

// Option configures an Engine.
type Option func(*options)

// WithNormalization scales every filter to unit energy. Off by default.
func WithNormalization(on bool) Option {
	return func(o *options) { o.normalize = on }
}

func WithBlockSize(frames int) Option {
	return func(o *options) { o.blockSize = frames }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithMetrics(m *observe.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// Engine renders 5.0 input to binaural stereo by direct FIR convolution.
//
// Each channel keeps its last taps input samples in a ring of 2*taps values
// where every sample is stored twice, taps apart. hist[pos:pos+taps] is
// then always the history newest first, and one dot product per ear and
// channel yields the output.
type Engine struct {
	channels  int
	taps      int
	left      [][]float64
	right     [][]float64
	hist      [][]float64
	pos       int
	blockSize int
	logger    *slog.Logger
	metrics   *observe.Metrics
}

func NewEngine(channels int, filters *FilterSet, opts ...Option) (*Engine, error) {
	if channels != Channels {
		return nil, fmt.Errorf("%d channels, want %d: %w", channels, Channels, ErrInvalidChannelCount)
	}
	if filters == nil {
		return nil, fmt.Errorf("no filters: %w", ErrFilterShape)
	}

	o := options{blockSize: DefaultBlockSize}
	for _, fn := range opts {
		fn(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.metrics == nil {
		o.metrics = observe.Nop()
	}
	if o.blockSize <= 0 {
		o.blockSize = DefaultBlockSize
	}

	fs := filters
	if o.normalize {
		fs = filters.normalized()
	}

	e := &Engine{
		channels:  channels,
		taps:      fs.taps,
		left:      fs.left,
		right:     fs.right,
		hist:      make([][]float64, channels),
		blockSize: o.blockSize,
		logger:    o.logger,
		metrics:   o.metrics,
	}
	for ch := range e.hist {
		e.hist[ch] = make([]float64, 2*fs.taps)
	}
	return e, nil
}

func (e *Engine) Channels() int { return e.channels }
func (e *Engine) Taps() int     { return e.taps }

// Reset clears the history, as if no sample had been processed.
func (e *Engine) Reset() {
	for _, h := range e.hist {
		clear(h)
	}
	e.pos = 0
}

// Process renders interleaved 5 channel frames from in into interleaved
// stereo frames in out and returns the frame count. History carries over
// between calls, so block boundaries do not change the result.
func (e *Engine) Process(in, out []float32) (int, error) {
	if len(in)%e.channels != 0 {
		return 0, fmt.Errorf("%d samples for %d channels: %w", len(in), e.channels, audio.ErrBlockShape)
	}
	frames := len(in) / e.channels
	if len(out) < 2*frames {
		return 0, fmt.Errorf("%d output samples for %d frames: %w", len(out), frames, audio.ErrBlockShape)
	}

	for f := range frames {
		e.pos--
		if e.pos < 0 {
			e.pos = e.taps - 1
		}

		var l, r float64
		for ch := range e.channels {
			x := float64(in[f*e.channels+ch])
			h := e.hist[ch]
			h[e.pos] = x
			h[e.pos+e.taps] = x

			window := h[e.pos : e.pos+e.taps]
			l += floats.Dot(window, e.left[ch])
			r += floats.Dot(window, e.right[ch])
		}
		out[2*f] = float32(l)
		out[2*f+1] = float32(r)
	}
	return frames, nil
}

// Run renders src into sink until src ends and returns the frames written.
// The channel count of src is checked before anything is read.
func (e *Engine) Run(ctx context.Context, src audio.Source, sink audio.Sink) (int64, error) {
	if src.Channels() != e.channels {
		return 0, fmt.Errorf("input has %d channels, want %d: %w", src.Channels(), e.channels, ErrInvalidChannelCount)
	}
	if sink.Channels() != 2 {
		return 0, fmt.Errorf("output has %d channels, want 2: %w", sink.Channels(), audio.ErrChannelCount)
	}

	block := audio.NewBlock(e.channels, e.blockSize)
	out := audio.NewBlock(2, e.blockSize)

	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		rerr := audio.ReadBlock(src, block)
		if rerr != nil && !errors.Is(rerr, io.EOF) {
			return total, fmt.Errorf("read input: %w", rerr)
		}

		if block.Frames > 0 {
			frames, err := e.Process(block.Samples(), out.Data)
			if err != nil {
				return total, err
			}
			out.Frames = frames
			if err := audio.WriteBlock(sink, out); err != nil {
				return total, fmt.Errorf("write output: %w", err)
			}
			total += int64(frames)
			e.metrics.RecordBlock(ctx, observe.StageRender)
			e.metrics.RecordRenderedFrames(ctx, frames)
		}

		if rerr != nil {
			break
		}
	}

	e.logger.Debug("rendered", "frames", total)
	return total, nil
}
