// SPDX-License-Identifier: EPL-2.0

package surround

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ik5/surround/audio"
	"github.com/ik5/surround/codec"
	"github.com/ik5/surround/formats/aiff"
	"github.com/ik5/surround/formats/mp3"
	"github.com/ik5/surround/formats/vorbis"
	"github.com/ik5/surround/formats/wav"
	"github.com/ik5/surround/hrtf"
	"github.com/ik5/surround/internal/observe"
	"github.com/ik5/surround/mapping"
	"github.com/ik5/surround/packet"
)

// ErrResourceUnavailable marks a file that could not be opened, read or
// written.
var ErrResourceUnavailable = codec.ErrResourceUnavailable

// Exit statuses of the programs.
const (
	ExitOK = iota
	ExitUsage
	ExitFileOpen
	ExitEncode
	ExitDecode
	ExitChannelLayout
)

// ExitCode maps err to an exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, hrtf.ErrFilterLoadFailure):
		return ExitFileOpen
	case errors.Is(err, mapping.ErrUnsupportedLayout),
		errors.Is(err, hrtf.ErrInvalidChannelCount),
		errors.Is(err, audio.ErrChannelCount),
		errors.Is(err, audio.ErrSampleRate):
		return ExitChannelLayout
	case errors.Is(err, codec.ErrEncodeFailure):
		return ExitEncode
	case errors.Is(err, codec.ErrDecodeFailure),
		errors.Is(err, packet.ErrTruncatedStream),
		errors.Is(err, packet.ErrPacketTooLarge):
		return ExitDecode
	case errors.Is(err, ErrResourceUnavailable):
		return ExitFileOpen
	}
	return ExitUsage
}

// NewRegistry returns a registry with every input format this module reads.
func NewRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("wave", wav.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("aif", aiff.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("oga", vorbis.Decoder{})
	return reg
}

// Options carries the collaborators of a pipeline. Zero values pick the
// defaults: Opus, NewRegistry, slog.Default and no metrics.
type Options struct {
	Codec    codec.Factory
	Registry *audio.Registry
	Logger   *slog.Logger
	Metrics  *observe.Metrics
}

func (o Options) withDefaults() Options {
	if o.Codec == nil {
		o.Codec = codec.OpusFactory{}
	}
	if o.Registry == nil {
		o.Registry = NewRegistry()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Metrics == nil {
		o.Metrics = observe.Nop()
	}
	return o
}

// fileSource closes the file behind decoders that do not own it.
type fileSource struct {
	audio.Source
	f *os.File
}

func (s *fileSource) Close() error {
	return errors.Join(s.Source.Close(), s.f.Close())
}

// openSource decodes path with the decoder registered for its extension.
func openSource(reg *audio.Registry, path string) (audio.Source, error) {
	dec, err := reg.ForPath(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, ErrResourceUnavailable, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResourceUnavailable, err)
	}

	src, err := dec.Decode(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("decode %s: %w: %w", path, ErrResourceUnavailable, err)
	}
	return &fileSource{Source: src, f: f}, nil
}

// logLayout writes one debug record per channel naming its loudspeaker and
// the coded stream carrying it. files, when given, are in channel order.
func logLayout(l *slog.Logger, m mapping.Mapping, files []string) {
	for ch, pos := range m.Positions() {
		r, err := m.StreamOf(ch)
		if err != nil {
			l.Warn("channel has no route", "channel", ch, "err", err)
			continue
		}
		args := []any{
			"channel", ch,
			"position", string(pos),
			"stream", r.Stream,
			"coupled", r.Coupled,
			"side", r.Side,
			"silent", r.Silent,
		}
		if ch < len(files) {
			args = append(args, "file", files[ch])
		}
		l.Debug("channel route", args...)
	}
}
