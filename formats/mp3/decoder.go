// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/surround/audio"
	"github.com/ik5/surround/utils"
)

// go-mp3 always emits 16-bit little-endian stereo.
const (
	outChannels    = 2
	bytesPerSample = 2
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type source struct {
	dec        mp3Reader
	sampleRate int
	buf        []byte
	// pending holds a trailing odd byte from the previous read
	pending []byte
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return outChannels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.buf) / bytesPerSample }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	need := len(dst) * bytesPerSample
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	s.buf = s.buf[:need]

	carried := copy(s.buf, s.pending)
	s.pending = s.pending[:0]

	n, err := s.dec.Read(s.buf[carried:need])
	n += carried

	samples := n / bytesPerSample
	for i := range samples {
		dst[i] = utils.PCMToFloat32(int(int16(binary.LittleEndian.Uint16(s.buf[2*i:]))), 16)
	}
	if rest := n % bytesPerSample; rest > 0 {
		s.pending = append(s.pending, s.buf[n-rest:n]...)
	}

	if err != nil && !errors.Is(err, io.EOF) {
		return samples, fmt.Errorf("decode mp3: %w", err)
	}
	if errors.Is(err, io.EOF) {
		return samples, io.EOF
	}
	return samples, nil
}

// Decoder decodes MP3 stems through github.com/hajimehoshi/go-mp3.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("open mp3 stream: %w", err)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
	}, nil
}
