// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"
	"os"

	gowav "github.com/go-audio/wav"

	"github.com/ik5/surround/audio"
	"github.com/ik5/surround/internal/pcmbuf"
)

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE

	// 8-bit PCM is unsigned; this is the silence level.
	unsigned8Zero = 128
)

// Decoder reads integer PCM WAV files through go-audio/wav.
type Decoder struct{}

// Decode parses the header and returns a streaming Source. go-audio needs
// to seek, so plain readers are buffered in memory first.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	src, err := decode(r, nil)
	if err != nil {
		return nil, err
	}
	return src, nil
}

// Open decodes the file at path. Closing the Source closes the file.
func Open(path string) (*pcmbuf.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	src, err := decode(f, f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}

func decode(r io.Reader, closer io.Closer) (*pcmbuf.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := gowav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}

	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("read wav info: %w", err)
	}
	if dec.NumChans == 0 || dec.SampleRate == 0 {
		return nil, ErrMissingFormat
	}

	switch dec.WavAudioFormat {
	case formatPCM, formatExtensible:
	default:
		return nil, fmt.Errorf("format tag %d: %w", dec.WavAudioFormat, ErrUnsupportedEncoding)
	}

	switch dec.BitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%d bits: %w", dec.BitDepth, ErrUnsupportedBitDepth)
	}

	src := pcmbuf.NewSource(dec, int(dec.SampleRate), int(dec.NumChans), int(dec.BitDepth), closer)
	if dec.BitDepth == 8 {
		src.SetOffset(unsigned8Zero)
	}
	return src, nil
}
