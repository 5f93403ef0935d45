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

// Decoder expands framed packets into interleaved blocks.
// A session runs once.
type Decoder struct {
	dec       BlockDecoder
	mapping   mapping.Mapping
	frameSize int
	logger    *slog.Logger
	metrics   *observe.Metrics
	state     State
}

func NewDecoder(f Factory, m mapping.Mapping, opts ...Option) (*Decoder, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	o := buildOptions(opts)
	dec, err := f.NewBlockDecoder(m, SampleRate)
	if err != nil {
		return nil, err
	}

	return &Decoder{
		dec:       dec,
		mapping:   m,
		frameSize: o.frameSize,
		logger:    o.logger,
		metrics:   o.metrics,
	}, nil
}

func (d *Decoder) State() State { return d.state }

// Run decodes packets until the clean end of r. A corrupt stream stops the
// run with the packet error; whatever was already written to sink stays.
func (d *Decoder) Run(ctx context.Context, r *packet.Reader, sink audio.Sink) (Stats, error) {
	var st Stats
	if d.state != Idle {
		return st, ErrSessionUsed
	}

	channels := d.mapping.Channels
	if sink.Channels() != channels {
		d.state = Failed
		return st, fmt.Errorf("sink has %d channels, mapping %d: %w", sink.Channels(), channels, audio.ErrChannelCount)
	}

	d.state = Decoding
	d.logger.Debug("decoding", "mapping", d.mapping, "frame_size", d.frameSize)

	block := audio.NewBlock(channels, d.frameSize)
	for {
		if err := ctx.Err(); err != nil {
			d.state = Failed
			return st, err
		}

		p, err := r.ReadPacket()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			d.state = Failed
			var fe *packet.FormatError
			if errors.As(err, &fe) {
				return st, err
			}
			return st, fmt.Errorf("packet %d: %w: %w", st.Packets, ErrResourceUnavailable, err)
		}
		st.Packets++
		st.Bytes += int64(len(p))
		d.metrics.RecordPacket(ctx, observe.StageDecode, len(p))

		frames, err := d.dec.Decode(p, block.Data)
		if err != nil {
			d.state = Failed
			return st, &CodecError{Op: fmt.Sprintf("decode packet %d", st.Packets-1), Kind: ErrDecodeFailure, Err: err}
		}

		if frames != d.frameSize {
			st.Mismatches++
			d.metrics.RecordFrameMismatch(ctx)
			d.logger.Warn("unexpected frame count",
				"packet", st.Packets-1,
				"frames", frames,
				"want", d.frameSize,
			)
		}
		frames = min(frames, block.Capacity())
		if frames <= 0 {
			continue
		}

		block.Frames = frames
		if err := audio.WriteBlock(sink, block); err != nil {
			d.state = Failed
			return st, fmt.Errorf("write block %d: %w: %w", st.Blocks, ErrResourceUnavailable, err)
		}
		st.Blocks++
		st.Frames += int64(frames)
		d.metrics.RecordBlock(ctx, observe.StageDecode)
	}

	d.state = Finished
	return st, nil
}
