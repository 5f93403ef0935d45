// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds generators and recorders shared by package tests.
// The types satisfy audio.Source and audio.Sink structurally, so the package
// does not import audio.
package audiotest

import (
	"errors"
	"io"
	"math"
)

// MockSource generates frames from a waveform function.
type MockSource struct {
	sampleRate  int
	channels    int
	totalFrames int
	generated   int
	waveform    func(frame int, channel int) float32

	// MaxChunk caps the frames returned by one ReadSamples call (0 = no cap).
	MaxChunk int
	closed   bool
}

// NewMockSource creates a source of totalFrames frames produced by waveform.
func NewMockSource(sampleRate, channels, totalFrames int, waveform func(frame int, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate:  sampleRate,
		channels:    channels,
		totalFrames: totalFrames,
		waveform:    waveform,
	}
}

// NewSilentSource creates a mock source that generates silence.
func NewSilentSource(sampleRate, channels, totalFrames int) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(int, int) float32 { return 0 })
}

// NewSineSource creates a mock source that generates the same sine on every channel.
func NewSineSource(sampleRate, channels, totalFrames int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(frame int, _ int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewConstantSource creates a mock source with one constant value.
func NewConstantSource(sampleRate, channels, totalFrames int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(int, int) float32 { return value })
}

// NewChannelConstantSource holds values[ch] on channel ch (a DC level per speaker).
func NewChannelConstantSource(sampleRate, totalFrames int, values []float32) *MockSource {
	return NewMockSource(sampleRate, len(values), totalFrames, func(_ int, ch int) float32 { return values[ch] })
}

// NewImpulseSource emits a unit impulse at frame 0 of channel, silence elsewhere.
func NewImpulseSource(sampleRate, channels, totalFrames, channel int) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(frame int, ch int) float32 {
		if frame == 0 && ch == channel {
			return 1
		}
		return 0
	})
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }
func (m *MockSource) Close() error    { m.closed = true; return nil }

// Closed reports whether Close was called.
func (m *MockSource) Closed() bool { return m.closed }

// Reset rewinds the generator.
func (m *MockSource) Reset() {
	m.generated = 0
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.generated >= m.totalFrames {
		return 0, io.EOF
	}

	count := min(len(dst)/m.channels, m.totalFrames-m.generated)
	if m.MaxChunk > 0 {
		count = min(count, m.MaxChunk)
	}

	for frame := range count {
		idx := m.generated + frame
		for ch := range m.channels {
			dst[frame*m.channels+ch] = m.waveform(idx, ch)
		}
	}
	m.generated += count

	if m.generated >= m.totalFrames {
		return count * m.channels, io.EOF
	}
	return count * m.channels, nil
}

// ErrSinkFull is returned by a RecordingSink once its limit is reached.
var ErrSinkFull = errors.New("audiotest: sink full")

// RecordingSink keeps every sample written to it.
type RecordingSink struct {
	Rate   int
	Chans  int
	Data   []float32
	Writes int
	Closed bool
	// Limit makes WriteSamples fail after that many calls (0 = unlimited).
	Limit int
}

// NewRecordingSink creates an unlimited recording sink.
func NewRecordingSink(sampleRate, channels int) *RecordingSink {
	return &RecordingSink{Rate: sampleRate, Chans: channels}
}

func (s *RecordingSink) SampleRate() int { return s.Rate }
func (s *RecordingSink) Channels() int   { return s.Chans }
func (s *RecordingSink) Close() error    { s.Closed = true; return nil }

func (s *RecordingSink) WriteSamples(src []float32) error {
	if s.Limit > 0 && s.Writes >= s.Limit {
		return ErrSinkFull
	}
	s.Writes++
	s.Data = append(s.Data, src...)
	return nil
}

// Frames is the number of whole frames recorded.
func (s *RecordingSink) Frames() int {
	return len(s.Data) / s.Chans
}

// Channel extracts one channel from the recording.
func (s *RecordingSink) Channel(ch int) []float32 {
	out := make([]float32, 0, s.Frames())
	for f := range s.Frames() {
		out = append(out, s.Data[f*s.Chans+ch])
	}
	return out
}

// Mean of a sample slice.
func Mean(x []float32) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += float64(v)
	}
	return sum / float64(len(x))
}

// RMS of a sample slice.
func RMS(x []float32) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(x)))
}
