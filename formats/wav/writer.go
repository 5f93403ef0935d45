// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/surround/utils"
)

// DefaultBitDepth is used when a writer is created with bitDepth 0.
const DefaultBitDepth = 24

// Writer is an audio.Sink producing an integer PCM WAV file.
type Writer struct {
	enc        *gowav.Encoder
	sampleRate int
	channels   int
	bitDepth   int
	buf        *goaudio.IntBuffer
	frames     int
	clipped    int
	closer     io.Closer
	closed     bool
}

// NewWriter starts a WAV stream on ws. The header sizes are patched on Close,
// which is why a seeker is needed. ws itself is not closed.
func NewWriter(ws io.WriteSeeker, sampleRate, channels, bitDepth int) (*Writer, error) {
	if bitDepth == 0 {
		bitDepth = DefaultBitDepth
	}
	switch bitDepth {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%d bits: %w", bitDepth, ErrUnsupportedBitDepth)
	}

	format := &goaudio.Format{NumChannels: channels, SampleRate: sampleRate}
	return &Writer{
		enc:        gowav.NewEncoder(ws, sampleRate, bitDepth, channels, formatPCM),
		sampleRate: sampleRate,
		channels:   channels,
		bitDepth:   bitDepth,
		buf:        &goaudio.IntBuffer{Format: format, SourceBitDepth: bitDepth},
	}, nil
}

// Create truncates or creates path and returns a Writer owning the file.
func Create(path string, sampleRate, channels, bitDepth int) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}

	w, err := NewWriter(f, sampleRate, channels, bitDepth)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

func (w *Writer) SampleRate() int { return w.sampleRate }
func (w *Writer) Channels() int   { return w.channels }
func (w *Writer) BitDepth() int   { return w.bitDepth }

// Frames is the number of frames written so far.
func (w *Writer) Frames() int { return w.frames }

// Clipped is the number of samples written so far that were outside
// [-1, 1] and got clamped to full scale.
func (w *Writer) Clipped() int { return w.clipped }

// WriteSamples quantizes interleaved samples to the writer's bit depth.
func (w *Writer) WriteSamples(src []float32) error {
	if len(src)%w.channels != 0 {
		return ErrMisalignedWrite
	}
	if len(src) == 0 {
		return nil
	}

	if cap(w.buf.Data) < len(src) {
		w.buf.Data = make([]int, len(src))
	}
	w.buf.Data = w.buf.Data[:len(src)]
	for i, s := range src {
		if s > 1 || s < -1 {
			w.clipped++
		}
		w.buf.Data[i] = utils.Float32ToPCM(s, w.bitDepth)
	}

	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("write wav samples: %w", err)
	}
	w.frames += len(src) / w.channels
	return nil
}

// Close finalizes the header and closes the file when the Writer owns one.
// Calling Close more than once is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if w.frames == 0 {
		// go-audio writes the header lazily on the first Write
		w.buf.Data = w.buf.Data[:0]
		if err := w.enc.Write(w.buf); err != nil {
			return fmt.Errorf("write wav header: %w", err)
		}
	}

	err := w.enc.Close()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("close wav: %w", err)
	}
	return nil
}
