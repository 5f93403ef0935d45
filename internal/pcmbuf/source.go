// SPDX-License-Identifier: EPL-2.0

// Package pcmbuf adapts the go-audio integer decoders (wav, aiff) to
// audio.Source.
package pcmbuf

import (
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/surround/utils"
)

// Reader is the subset of wav.Decoder and aiff.Decoder used here.
type Reader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Source streams normalized float32 samples out of a Reader.
type Source struct {
	dec        Reader
	sampleRate int
	channels   int
	bitDepth   int
	offset     int
	intBuf     *goaudio.IntBuffer
	closer     io.Closer
	done       bool
}

// NewSource wraps dec. closer, when not nil, is closed by Close.
func NewSource(dec Reader, sampleRate, channels, bitDepth int, closer io.Closer) *Source {
	return &Source{
		dec:        dec,
		sampleRate: sampleRate,
		channels:   channels,
		bitDepth:   bitDepth,
		closer:     closer,
	}
}

// SetOffset sets a value subtracted from every raw sample before scaling.
// 8-bit WAV stores unsigned samples centred on 128.
func (s *Source) SetOffset(v int) { s.offset = v }

func (s *Source) SampleRate() int { return s.sampleRate }
func (s *Source) Channels() int   { return s.channels }
func (s *Source) BitDepth() int   { return s.bitDepth }

func (s *Source) BufSize() int {
	if s.intBuf != nil {
		return cap(s.intBuf.Data)
	}
	return 4096
}

func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	c := s.closer
	s.closer = nil
	if err := c.Close(); err != nil {
		return fmt.Errorf("close pcm source: %w", err)
	}
	return nil
}

func (s *Source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if s.done {
		return 0, io.EOF
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < len(dst) {
		s.intBuf = &goaudio.IntBuffer{
			Data:           make([]int, len(dst)),
			Format:         &goaudio.Format{NumChannels: s.channels, SampleRate: s.sampleRate},
			SourceBitDepth: s.bitDepth,
		}
	}
	s.intBuf.Data = s.intBuf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.intBuf)
	for i := range n {
		dst[i] = utils.PCMToFloat32(s.intBuf.Data[i]-s.offset, s.bitDepth)
	}

	switch {
	case err == nil && n == 0:
		// go-audio reports the end of the data chunk as (0, nil)
		s.done = true
		return 0, io.EOF
	case errors.Is(err, io.EOF):
		s.done = true
		return n, io.EOF
	case err != nil:
		return n, fmt.Errorf("read pcm: %w", err)
	}
	return n, nil
}
