// SPDX-License-Identifier: EPL-2.0

// Package audio provides the sample plumbing shared by the surround pipelines.
//
// This package contains:
//   - Source and Sink interfaces for pull based input and push based output
//   - Block, a reusable interleaved frame matrix, with Interleave
//   - ReadFrames, ReadBlock and WriteBlock for whole-block I/O
//   - MonoMixer for folding multichannel stems to mono
//   - Registry for picking a decoder by format key or file extension
//
// # Source and Sink
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// A Source may return fewer samples than asked for. ReadFrames loops until
// the destination is full, so codec and renderer code can work in fixed
// blocks:
//
//	b := audio.NewBlock(src.Channels(), 960)
//	for {
//	    err := audio.ReadBlock(src, b)
//	    // b.Frames holds the frames read, b.Samples() the data
//	    if errors.Is(err, io.EOF) {
//	        break
//	    }
//	}
//
// # Channel Mixing
//
// The MonoMixer converts multi-channel audio to mono by averaging:
//
//	mono := audio.NewMonoMixer(source)
//
// # Format Registry
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	decoder, err := registry.ForPath("stems/center.wav")
//
// # Sample Format
//
// Samples are float32 in [-1.0, 1.0], interleaved frame by frame in channel
// order. Integer formats are scaled by their full scale value on the way in
// and clamped on the way out.
//
// # Error Handling
//
// io.EOF marks the normal end of a stream. ErrChannelCount, ErrSampleRate
// and ErrBlockShape report layout mismatches and are wrapped with context.
package audio
