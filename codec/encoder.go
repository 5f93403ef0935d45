// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ik5/surround/audio"
	"github.com/ik5/surround/internal/observe"
	"github.com/ik5/surround/mapping"
	"github.com/ik5/surround/packet"
)

// Encoder turns one mono source per logical channel into framed packets.
// A session runs once.
type Encoder struct {
	enc       BlockEncoder
	mapping   mapping.Mapping
	frameSize int
	logger    *slog.Logger
	metrics   *observe.Metrics
	state     State
}

func NewEncoder(f Factory, m mapping.Mapping, eo EncoderOptions, opts ...Option) (*Encoder, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	o := buildOptions(opts)
	enc, err := f.NewBlockEncoder(m, SampleRate, eo)
	if err != nil {
		return nil, err
	}

	return &Encoder{
		enc:       enc,
		mapping:   m,
		frameSize: o.frameSize,
		logger:    o.logger,
		metrics:   o.metrics,
	}, nil
}

func (e *Encoder) State() State { return e.state }

func (e *Encoder) checkSources(sources []audio.Source) error {
	if len(sources) != e.mapping.Channels {
		return fmt.Errorf("%d sources for %d channels: %w", len(sources), e.mapping.Channels, audio.ErrChannelCount)
	}
	for ch, src := range sources {
		if src.Channels() != 1 {
			return fmt.Errorf("channel %d source has %d channels, want mono: %w", ch, src.Channels(), audio.ErrChannelCount)
		}
		if src.SampleRate() != SampleRate {
			return fmt.Errorf("channel %d source runs at %d Hz, want %d: %w", ch, src.SampleRate(), SampleRate, audio.ErrSampleRate)
		}
	}
	return nil
}

// Run encodes until any source runs out of whole frames. The partial tail
// is dropped and reported in Stats.DroppedFrames. Packets go to w, which is
// flushed before Run returns successfully.
func (e *Encoder) Run(ctx context.Context, sources []audio.Source, w *packet.Writer) (Stats, error) {
	var st Stats
	if e.state != Idle {
		return st, ErrSessionUsed
	}
	if err := e.checkSources(sources); err != nil {
		e.state = Failed
		return st, err
	}

	e.state = Encoding
	e.logger.Debug("encoding", "mapping", e.mapping, "frame_size", e.frameSize)

	channels := e.mapping.Channels
	planar := make([][]float32, channels)
	for ch := range planar {
		planar[ch] = make([]float32, e.frameSize)
	}
	pcm := make([]float32, e.frameSize*channels)
	data := make([]byte, packet.MaxPacketSize)

	for {
		if err := ctx.Err(); err != nil {
			e.state = Failed
			return st, err
		}

		// every channel is read so the dropped tail is the longest one
		short := false
		for ch, src := range sources {
			frames, err := audio.ReadFrames(src, planar[ch])
			if err != nil && !errors.Is(err, io.EOF) {
				e.state = Failed
				return st, fmt.Errorf("read channel %d: %w: %w", ch, ErrResourceUnavailable, err)
			}
			if frames < e.frameSize {
				short = true
				st.DroppedFrames = max(st.DroppedFrames, frames)
			}
		}
		if short {
			break
		}

		if err := audio.Interleave(pcm, planar, e.frameSize); err != nil {
			e.state = Failed
			return st, err
		}

		n, err := e.enc.Encode(pcm, data)
		if err != nil {
			e.state = Failed
			return st, &CodecError{Op: "encode", Kind: ErrEncodeFailure, Err: err}
		}

		if err := w.WritePacket(data[:n]); err != nil {
			e.state = Failed
			return st, fmt.Errorf("packet %d: %w: %w", st.Packets, ErrResourceUnavailable, err)
		}

		st.Blocks++
		st.Packets++
		st.Bytes += int64(n)
		st.Frames += int64(e.frameSize)
		e.metrics.RecordBlock(ctx, observe.StageEncode)
		e.metrics.RecordPacket(ctx, observe.StageEncode, n)
	}

	if err := w.Flush(); err != nil {
		e.state = Failed
		return st, fmt.Errorf("flush packets: %w: %w", ErrResourceUnavailable, err)
	}

	if st.DroppedFrames > 0 {
		e.logger.Debug("dropped partial tail", "frames", st.DroppedFrames)
	}
	e.state = Finished
	return st, nil
}
