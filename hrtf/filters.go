// SPDX-License-Identifier: EPL-2.0

package hrtf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/ik5/surround/audio"
	"github.com/ik5/surround/formats/wav"
	"github.com/ik5/surround/internal/observe"
)

const (
	// Channels is the only input layout the renderer accepts (5.0).
	Channels = 5
	// DefaultTaps is the filter length used unless WithTaps says otherwise.
	DefaultTaps = 1024
	// filterRate is the rate the filters are expected to be sampled at.
	filterRate = 48000
)

// azimuths per input channel in decoder order: FL, C, FR, RL, RR.
var azimuths = [Channels]string{"330", "000", "030", "240", "120"}

// FilterFiles returns the left and right ear file names for input channel ch.
func FilterFiles(ch int) (left, right string) {
	return "L0e" + azimuths[ch] + "a.wav", "R0e" + azimuths[ch] + "a.wav"
}

// FilterSet holds one left and one right impulse response per input channel.
// It is not modified after construction.
type FilterSet struct {
	taps  int
	left  [][]float64
	right [][]float64
}

// NewFilterSet copies left and right, which must hold Channels filters of
// equal, non-zero length.
func NewFilterSet(left, right [][]float64) (*FilterSet, error) {
	if len(left) != Channels || len(right) != Channels {
		return nil, fmt.Errorf("%d left and %d right filters, want %d: %w", len(left), len(right), Channels, ErrFilterShape)
	}

	taps := len(left[0])
	if taps == 0 {
		return nil, fmt.Errorf("empty filter: %w", ErrFilterShape)
	}

	fs := &FilterSet{
		taps:  taps,
		left:  make([][]float64, Channels),
		right: make([][]float64, Channels),
	}
	for ch := range Channels {
		if len(left[ch]) != taps || len(right[ch]) != taps {
			return nil, fmt.Errorf("channel %d has %d/%d taps, want %d: %w", ch, len(left[ch]), len(right[ch]), taps, ErrFilterShape)
		}
		fs.left[ch] = append([]float64(nil), left[ch]...)
		fs.right[ch] = append([]float64(nil), right[ch]...)
	}
	return fs, nil
}

func (fs *FilterSet) Taps() int { return fs.taps }

// Left returns a copy of the left ear response for channel ch.
func (fs *FilterSet) Left(ch int) []float64 { return append([]float64(nil), fs.left[ch]...) }

// Right returns a copy of the right ear response for channel ch.
func (fs *FilterSet) Right(ch int) []float64 { return append([]float64(nil), fs.right[ch]...) }

// normalized returns a copy where every filter has unit L2 norm. Silent
// filters stay silent.
func (fs *FilterSet) normalized() *FilterSet {
	out := &FilterSet{
		taps:  fs.taps,
		left:  make([][]float64, Channels),
		right: make([][]float64, Channels),
	}
	norm := func(h []float64) []float64 {
		c := append([]float64(nil), h...)
		if n := floats.Norm(c, 2); n > 0 {
			floats.Scale(1/n, c)
		}
		return c
	}
	for ch := range Channels {
		out.left[ch] = norm(fs.left[ch])
		out.right[ch] = norm(fs.right[ch])
	}
	return out
}

type loadOptions struct {
	taps       int
	strictRate bool
	logger     *slog.Logger
	metrics    *observe.Metrics
}

// LoadOption configures LoadFilterSet.
type LoadOption func(*loadOptions)

// WithTaps sets the filter length. Files must hold at least n samples;
// longer files are cut.
func WithTaps(n int) LoadOption {
	return func(o *loadOptions) { o.taps = n }
}

// WithStrictRate makes a filter file whose sample rate is not 48 kHz a load
// failure instead of a warning.
func WithStrictRate(on bool) LoadOption {
	return func(o *loadOptions) { o.strictRate = on }
}

func WithLoadLogger(l *slog.Logger) LoadOption {
	return func(o *loadOptions) { o.logger = l }
}

func WithLoadMetrics(m *observe.Metrics) LoadOption {
	return func(o *loadOptions) { o.metrics = m }
}

// LoadFilterSet reads the ten filter files from dir concurrently. The first
// failure cancels the rest and is returned as a *FilterLoadError.
func LoadFilterSet(ctx context.Context, dir string, opts ...LoadOption) (*FilterSet, error) {
	o := loadOptions{taps: DefaultTaps}
	for _, fn := range opts {
		fn(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.metrics == nil {
		o.metrics = observe.Nop()
	}
	if o.taps <= 0 {
		return nil, fmt.Errorf("%d taps: %w", o.taps, ErrFilterShape)
	}

	start := time.Now()
	fs := &FilterSet{
		taps:  o.taps,
		left:  make([][]float64, Channels),
		right: make([][]float64, Channels),
	}

	g, gctx := errgroup.WithContext(ctx)
	for ch := range Channels {
		l, r := FilterFiles(ch)
		g.Go(func() (err error) {
			fs.left[ch], err = loadFilter(gctx, filepath.Join(dir, l), o)
			return err
		})
		g.Go(func() (err error) {
			fs.right[ch], err = loadFilter(gctx, filepath.Join(dir, r), o)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	o.metrics.RecordFilterLoad(ctx, elapsed)
	o.logger.Debug("filters loaded", "dir", dir, "taps", o.taps, "elapsed", elapsed)
	return fs, nil
}

func loadFilter(ctx context.Context, path string, o loadOptions) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FilterLoadError{Path: path, Err: err}
	}

	src, err := wav.Open(path)
	if err != nil {
		return nil, &FilterLoadError{Path: path, Err: err}
	}
	defer src.Close()

	if src.Channels() != 1 {
		return nil, &FilterLoadError{Path: path, Err: fmt.Errorf("%d channels, want mono: %w", src.Channels(), audio.ErrChannelCount)}
	}
	if src.SampleRate() != filterRate {
		if o.strictRate {
			return nil, &FilterLoadError{Path: path, Err: fmt.Errorf("%d Hz, want %d: %w", src.SampleRate(), filterRate, audio.ErrSampleRate)}
		}
		o.logger.Warn("filter sample rate differs from pipeline rate", "path", path, "rate", src.SampleRate(), "want", filterRate)
	}

	buf := make([]float32, o.taps)
	n, err := audio.ReadFrames(src, buf)
	switch {
	case err != nil && !errors.Is(err, io.EOF):
		return nil, &FilterLoadError{Path: path, Err: err}
	case n < o.taps:
		return nil, &FilterLoadError{Path: path, Err: fmt.Errorf("read %d of %d taps: %w", n, o.taps, ErrShortFilter)}
	}

	h := make([]float64, o.taps)
	for i, v := range buf {
		h[i] = float64(v)
	}
	return h, nil
}
