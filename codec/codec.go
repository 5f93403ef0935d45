// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"log/slog"

	"github.com/ik5/surround/internal/observe"
	"github.com/ik5/surround/mapping"
)

const (
	// SampleRate is the only rate the pipelines run at.
	SampleRate = 48000
	// FrameSize is 20 ms at SampleRate, in samples per channel.
	FrameSize = 960
)

// BlockEncoder compresses one block of interleaved PCM into data and
// returns the packet length. len(pcm) is frame size times channels.
type BlockEncoder interface {
	Encode(pcm []float32, data []byte) (int, error)
}

// BlockDecoder expands one packet into pcm and returns the decoded frame
// count per channel.
type BlockDecoder interface {
	Decode(data []byte, pcm []float32) (int, error)
}

// EncoderOptions are the tunables passed to a Factory.
type EncoderOptions struct {
	// Bitrate in bits per second; 0 keeps the library default.
	Bitrate    int
	Complexity int
	// Application is "audio", "voip" or "lowdelay"; empty means audio.
	Application string
}

// Factory opens codec sessions for a channel mapping.
type Factory interface {
	NewBlockEncoder(m mapping.Mapping, sampleRate int, opts EncoderOptions) (BlockEncoder, error)
	NewBlockDecoder(m mapping.Mapping, sampleRate int) (BlockDecoder, error)
}

// State of an Encoder or Decoder session.
type State int

const (
	Idle State = iota
	Encoding
	Decoding
	Finished
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Encoding:
		return "encoding"
	case Decoding:
		return "decoding"
	case Finished:
		return "finished"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Stats describes a finished or failed run.
type Stats struct {
	Blocks  int
	Packets int
	// Bytes of packet payload, length prefixes excluded.
	Bytes int64
	// Frames per channel that went through the codec.
	Frames int64
	// DroppedFrames is the partial tail the encoder never encoded.
	DroppedFrames int
	// Mismatches counts decoded packets whose frame count was not the
	// configured frame size.
	Mismatches int
}

type options struct {
	logger    *slog.Logger
	metrics   *observe.Metrics
	frameSize int
}

// Option configures an Encoder or Decoder.
type Option func(*options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithMetrics(m *observe.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithFrameSize overrides FrameSize. The codec must accept it.
func WithFrameSize(n int) Option {
	return func(o *options) { o.frameSize = n }
}

func buildOptions(opts []Option) options {
	o := options{frameSize: FrameSize}
	for _, fn := range opts {
		fn(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.metrics == nil {
		o.metrics = observe.Nop()
	}
	if o.frameSize <= 0 {
		o.frameSize = FrameSize
	}
	return o
}
