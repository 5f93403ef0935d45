// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/ik5/surround/audio"
	"github.com/ik5/surround/internal/audiotest"
	"github.com/ik5/surround/internal/observe"
	"github.com/ik5/surround/mapping"
	"github.com/ik5/surround/packet"
)

func plan(t *testing.T) mapping.Mapping {
	t.Helper()

	m, err := mapping.Plan(5, mapping.FamilyVorbis)
	if err != nil {
		t.Fatalf("mapping.Plan() error = %v", err)
	}
	return m
}

func quietLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, nil))
}

// dcSources returns one mono source per channel holding levels[ch].
func dcSources(frames int, levels ...float32) []audio.Source {
	out := make([]audio.Source, len(levels))
	for ch, v := range levels {
		out[ch] = audiotest.NewConstantSource(SampleRate, 1, frames, v)
	}
	return out
}

func encode(t *testing.T, f Factory, sources []audio.Source, opts ...Option) ([]byte, Stats) {
	t.Helper()

	enc, err := NewEncoder(f, plan(t), EncoderOptions{Bitrate: 256000, Complexity: 10}, opts...)
	if err != nil {
		t.Fatalf("NewEncoder() error = %v", err)
	}

	var buf bytes.Buffer
	st, err := enc.Run(context.Background(), sources, packet.NewWriter(&buf))
	if err != nil {
		t.Fatalf("Encoder.Run() error = %v", err)
	}
	if enc.State() != Finished {
		t.Errorf("encoder state = %s, want finished", enc.State())
	}
	return buf.Bytes(), st
}

func TestRoundTrip_DCLevels(t *testing.T) {
	t.Parallel()

	levels := []float32{0.1, 0.2, 0.3, 0.4, 0.5}
	f := newFakeFactory(5)

	stream, est := encode(t, f, dcSources(3*FrameSize+100, levels...))
	if est.Packets != 3 || est.DroppedFrames != 100 || est.Frames != 3*FrameSize {
		t.Errorf("encode stats = %+v", est)
	}

	dec, err := NewDecoder(f, plan(t))
	if err != nil {
		t.Fatalf("NewDecoder() error = %v", err)
	}
	sink := audiotest.NewRecordingSink(SampleRate, 5)
	dst, err := dec.Run(context.Background(), packet.NewReader(bytes.NewReader(stream)), sink)
	if err != nil {
		t.Fatalf("Decoder.Run() error = %v", err)
	}
	if dec.State() != Finished {
		t.Errorf("decoder state = %s, want finished", dec.State())
	}

	if dst.Blocks != 3 || dst.Mismatches != 0 || sink.Frames() != 3*FrameSize {
		t.Fatalf("decode stats = %+v, frames %d", dst, sink.Frames())
	}
	for ch, want := range levels {
		for i, got := range sink.Channel(ch) {
			if got != want {
				t.Fatalf("channel %d frame %d = %v, want %v", ch, i, got, want)
			}
		}
	}
}

func TestEncoder_ShortestSourceStops(t *testing.T) {
	t.Parallel()

	sources := dcSources(4*FrameSize, 0.1, 0.1, 0.1, 0.1, 0.1)
	sources[3] = audiotest.NewConstantSource(SampleRate, 1, 2*FrameSize+7, 0.1)

	_, st := encode(t, newFakeFactory(5), sources)
	if st.Packets != 2 {
		t.Errorf("packets = %d, want 2", st.Packets)
	}
	if st.DroppedFrames != FrameSize {
		t.Errorf("dropped = %d, want %d", st.DroppedFrames, FrameSize)
	}
}

func TestEncoder_EmptyInput(t *testing.T) {
	t.Parallel()

	stream, st := encode(t, newFakeFactory(5), dcSources(FrameSize-1, 0, 0, 0, 0, 0))
	if len(stream) != 0 || st.Packets != 0 {
		t.Errorf("wrote %d bytes in %d packets for sub-block input", len(stream), st.Packets)
	}
}

func TestEncoder_ChunkedSources(t *testing.T) {
	t.Parallel()

	sources := make([]audio.Source, 5)
	for ch := range sources {
		src := audiotest.NewConstantSource(SampleRate, 1, 2*FrameSize, 0.25)
		src.MaxChunk = 37
		sources[ch] = src
	}

	_, st := encode(t, newFakeFactory(5), sources)
	if st.Packets != 2 || st.DroppedFrames != 0 {
		t.Errorf("stats = %+v", st)
	}
}

func TestEncoder_RejectsSources(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		sources []audio.Source
		want    error
	}{
		{"four sources", dcSources(FrameSize, 0, 0, 0, 0), audio.ErrChannelCount},
		{
			"stereo stem",
			append(dcSources(FrameSize, 0, 0, 0, 0), audiotest.NewSilentSource(SampleRate, 2, FrameSize)),
			audio.ErrChannelCount,
		},
		{
			"44.1 kHz stem",
			append(dcSources(FrameSize, 0, 0, 0, 0), audiotest.NewSilentSource(44100, 1, FrameSize)),
			audio.ErrSampleRate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			enc, err := NewEncoder(newFakeFactory(5), plan(t), EncoderOptions{})
			if err != nil {
				t.Fatal(err)
			}
			var buf bytes.Buffer
			_, err = enc.Run(context.Background(), tt.sources, packet.NewWriter(&buf))
			if !errors.Is(err, tt.want) {
				t.Errorf("Run() error = %v, want %v", err, tt.want)
			}
			if enc.State() != Failed {
				t.Errorf("state = %s, want failed", enc.State())
			}
		})
	}
}

func TestEncoder_CodecFailure(t *testing.T) {
	t.Parallel()

	libErr := errors.New("opus: internal error")
	f := newFakeFactory(5)
	f.codec.encErr = libErr

	enc, err := NewEncoder(f, plan(t), EncoderOptions{})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	_, err = enc.Run(context.Background(), dcSources(FrameSize, 0, 0, 0, 0, 0), packet.NewWriter(&buf))

	var ce *CodecError
	if !errors.As(err, &ce) || ce.Op != "encode" {
		t.Fatalf("Run() error = %v, want *CodecError{Op: encode}", err)
	}
	if !errors.Is(err, ErrEncodeFailure) || !errors.Is(err, libErr) {
		t.Errorf("error chain %v lacks ErrEncodeFailure or library error", err)
	}
	if enc.State() != Failed {
		t.Errorf("state = %s, want failed", enc.State())
	}
}

func TestEncoder_FactoryFailure(t *testing.T) {
	t.Parallel()

	f := newFakeFactory(5)
	f.createErr = &CodecError{Op: "create encoder", Kind: ErrEncodeFailure, Err: errors.New("bad args")}
	if _, err := NewEncoder(f, plan(t), EncoderOptions{}); !errors.Is(err, ErrEncodeFailure) {
		t.Errorf("NewEncoder() error = %v, want ErrEncodeFailure", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestEncoder_WriteFailure(t *testing.T) {
	t.Parallel()

	enc, err := NewEncoder(newFakeFactory(5), plan(t), EncoderOptions{})
	if err != nil {
		t.Fatal(err)
	}
	_, err = enc.Run(context.Background(), dcSources(FrameSize, 0, 0, 0, 0, 0), packet.NewWriter(failingWriter{}))
	if !errors.Is(err, ErrResourceUnavailable) {
		t.Errorf("Run() error = %v, want ErrResourceUnavailable", err)
	}
}

func TestEncoder_SingleUse(t *testing.T) {
	t.Parallel()

	enc, err := NewEncoder(newFakeFactory(5), plan(t), EncoderOptions{})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	w := packet.NewWriter(&buf)
	if _, err := enc.Run(context.Background(), dcSources(0, 0, 0, 0, 0, 0), w); err != nil {
		t.Fatal(err)
	}
	if _, err := enc.Run(context.Background(), dcSources(0, 0, 0, 0, 0, 0), w); !errors.Is(err, ErrSessionUsed) {
		t.Errorf("second Run() error = %v, want ErrSessionUsed", err)
	}
}

func TestEncoder_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	enc, err := NewEncoder(newFakeFactory(5), plan(t), EncoderOptions{})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if _, err := enc.Run(ctx, dcSources(FrameSize, 0, 0, 0, 0, 0), packet.NewWriter(&buf)); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestDecoder_TruncatedStream(t *testing.T) {
	t.Parallel()

	f := newFakeFactory(5)
	stream, _ := encode(t, f, dcSources(2*FrameSize, 0.1, 0.2, 0.3, 0.4, 0.5))
	cut := stream[:len(stream)-10]

	dec, err := NewDecoder(f, plan(t))
	if err != nil {
		t.Fatal(err)
	}
	sink := audiotest.NewRecordingSink(SampleRate, 5)
	st, err := dec.Run(context.Background(), packet.NewReader(bytes.NewReader(cut)), sink)

	if !errors.Is(err, packet.ErrTruncatedStream) {
		t.Fatalf("Run() error = %v, want ErrTruncatedStream", err)
	}
	if st.Blocks != 1 || sink.Frames() != FrameSize {
		t.Errorf("kept %d blocks / %d frames before corruption, want 1 / %d", st.Blocks, sink.Frames(), FrameSize)
	}
	if dec.State() != Failed {
		t.Errorf("state = %s, want failed", dec.State())
	}
}

func TestDecoder_EmptyStream(t *testing.T) {
	t.Parallel()

	dec, err := NewDecoder(newFakeFactory(5), plan(t))
	if err != nil {
		t.Fatal(err)
	}
	sink := audiotest.NewRecordingSink(SampleRate, 5)
	st, err := dec.Run(context.Background(), packet.NewReader(bytes.NewReader(nil)), sink)
	if err != nil || st.Blocks != 0 || sink.Writes != 0 {
		t.Errorf("Run() = %+v, %v; writes %d", st, err, sink.Writes)
	}
}

func TestDecoder_CodecFailure(t *testing.T) {
	t.Parallel()

	f := newFakeFactory(5)
	stream, _ := encode(t, f, dcSources(FrameSize, 0, 0, 0, 0, 0))

	libErr := errors.New("opus: corrupted stream")
	f.codec.decErr = libErr
	dec, err := NewDecoder(f, plan(t))
	if err != nil {
		t.Fatal(err)
	}
	_, err = dec.Run(context.Background(), packet.NewReader(bytes.NewReader(stream)), audiotest.NewRecordingSink(SampleRate, 5))
	if !errors.Is(err, ErrDecodeFailure) || !errors.Is(err, libErr) {
		t.Errorf("Run() error = %v, want ErrDecodeFailure wrapping %v", err, libErr)
	}
}

func TestDecoder_FrameMismatchIsCounted(t *testing.T) {
	t.Parallel()

	f := newFakeFactory(5)
	stream, _ := encode(t, f, dcSources(2*FrameSize, 0.3, 0.3, 0.3, 0.3, 0.3))
	f.codec.frames = FrameSize / 2

	mp, reader := observe.NewProvider("codec-test")
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	met, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer
	dec, err := NewDecoder(f, plan(t), WithLogger(quietLogger(&logs)), WithMetrics(met))
	if err != nil {
		t.Fatal(err)
	}
	sink := audiotest.NewRecordingSink(SampleRate, 5)
	st, err := dec.Run(context.Background(), packet.NewReader(bytes.NewReader(stream)), sink)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if st.Mismatches != 2 || sink.Frames() != FrameSize {
		t.Errorf("mismatches = %d, frames = %d; want 2 and %d", st.Mismatches, sink.Frames(), FrameSize)
	}
	if !strings.Contains(logs.String(), "unexpected frame count") {
		t.Errorf("no warning logged: %q", logs.String())
	}

	totals, err := observe.Totals(context.Background(), reader)
	if err != nil {
		t.Fatal(err)
	}
	if totals["surround.frame_mismatches"] != 2 || totals["surround.packets{decode}"] != 2 {
		t.Errorf("totals = %v", totals)
	}
}

func TestDecoder_SinkChannelMismatch(t *testing.T) {
	t.Parallel()

	dec, err := NewDecoder(newFakeFactory(5), plan(t))
	if err != nil {
		t.Fatal(err)
	}
	_, err = dec.Run(context.Background(), packet.NewReader(bytes.NewReader(nil)), audiotest.NewRecordingSink(SampleRate, 2))
	if !errors.Is(err, audio.ErrChannelCount) {
		t.Errorf("Run() error = %v, want ErrChannelCount", err)
	}
}

func TestDecoder_SinkFailure(t *testing.T) {
	t.Parallel()

	f := newFakeFactory(5)
	stream, _ := encode(t, f, dcSources(2*FrameSize, 0, 0, 0, 0, 0))

	dec, err := NewDecoder(f, plan(t))
	if err != nil {
		t.Fatal(err)
	}
	sink := audiotest.NewRecordingSink(SampleRate, 5)
	sink.Limit = 1
	_, err = dec.Run(context.Background(), packet.NewReader(bytes.NewReader(stream)), sink)
	if !errors.Is(err, ErrResourceUnavailable) || !errors.Is(err, audiotest.ErrSinkFull) {
		t.Errorf("Run() error = %v, want ErrResourceUnavailable wrapping ErrSinkFull", err)
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()

	for s, want := range map[State]string{Idle: "idle", Encoding: "encoding", Decoding: "decoding", Finished: "finished", Failed: "failed", State(42): "unknown"} {
		if s.String() != want {
			t.Errorf("State(%d).String() = %q, want %q", s, s.String(), want)
		}
	}
}
