// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
)

// maxEmptyReads bounds how many (0, nil) reads ReadFrames tolerates.
const maxEmptyReads = 100

// Block is a fixed shape matrix of interleaved samples: Frames rows of
// Channels values each. The backing slice is allocated once and reused.
type Block struct {
	Channels int
	Frames   int
	Data     []float32
}

// NewBlock allocates a block with capacity for frames x channels samples.
func NewBlock(channels, frames int) *Block {
	return &Block{
		Channels: channels,
		Frames:   frames,
		Data:     make([]float32, channels*frames),
	}
}

// Samples returns the filled part of the block.
func (b *Block) Samples() []float32 {
	return b.Data[:b.Frames*b.Channels]
}

// Capacity is the number of frames the block can hold.
func (b *Block) Capacity() int {
	if b.Channels == 0 {
		return 0
	}
	return len(b.Data) / b.Channels
}

// Interleave writes frames samples of every planar channel into dst in
// channel order: dst[f*len(planar)+ch] = planar[ch][f].
func Interleave(dst []float32, planar [][]float32, frames int) error {
	channels := len(planar)
	if len(dst) < frames*channels {
		return fmt.Errorf("interleave %d frames x %d channels into %d: %w", frames, channels, len(dst), ErrBlockShape)
	}

	for ch, p := range planar {
		if len(p) < frames {
			return fmt.Errorf("channel %d holds %d frames, need %d: %w", ch, len(p), frames, ErrBlockShape)
		}
		for f := range frames {
			dst[f*channels+ch] = p[f]
		}
	}
	return nil
}

// ReadFrames reads from src until dst is full or the stream ends.
// It returns the number of whole frames stored in dst. err is nil when dst
// was filled, io.EOF when the stream ended first (frames may be > 0), or the
// underlying read error.
func ReadFrames(src Source, dst []float32) (int, error) {
	channels := src.Channels()
	if channels <= 0 || len(dst)%channels != 0 {
		return 0, ErrInvalidDstSize
	}

	filled := 0
	empty := 0
	for filled < len(dst) {
		n, err := src.ReadSamples(dst[filled:])
		filled += n

		if err != nil {
			if errors.Is(err, io.EOF) {
				if filled == len(dst) {
					// full; the next call reports the end
					return filled / channels, nil
				}
				return filled / channels, io.EOF
			}
			return filled / channels, fmt.Errorf("read samples: %w", err)
		}

		if n == 0 {
			empty++
			if empty >= maxEmptyReads {
				return filled / channels, io.ErrNoProgress
			}
			continue
		}
		empty = 0
	}

	return filled / channels, nil
}

// ReadBlock fills b from src and sets b.Frames to the number of frames read.
func ReadBlock(src Source, b *Block) error {
	if src.Channels() != b.Channels {
		return fmt.Errorf("source has %d channels, block %d: %w", src.Channels(), b.Channels, ErrChannelCount)
	}

	frames, err := ReadFrames(src, b.Data[:b.Capacity()*b.Channels])
	b.Frames = frames
	return err
}

// WriteBlock writes the filled part of b to sink.
func WriteBlock(sink Sink, b *Block) error {
	if sink.Channels() != b.Channels {
		return fmt.Errorf("sink has %d channels, block %d: %w", sink.Channels(), b.Channels, ErrChannelCount)
	}
	if b.Frames == 0 {
		return nil
	}
	return sink.WriteSamples(b.Samples())
}
