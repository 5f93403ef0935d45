// SPDX-License-Identifier: EPL-2.0

package pcmbuf

import (
	"errors"
	"io"
	"testing"

	goaudio "github.com/go-audio/audio"
)

type mockReader struct {
	samples []int
	offset  int
	chunk   int
	fail    error
	eofErr  bool
}

func (m *mockReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if m.fail != nil {
		return 0, m.fail
	}
	if m.offset >= len(m.samples) {
		if m.eofErr {
			return 0, io.EOF
		}
		return 0, nil
	}

	n := min(len(buf.Data), len(m.samples)-m.offset)
	if m.chunk > 0 {
		n = min(n, m.chunk)
	}
	copy(buf.Data, m.samples[m.offset:m.offset+n])
	m.offset += n
	return n, nil
}

type closeCounter struct{ closed int }

func (c *closeCounter) Close() error { c.closed++; return nil }

func TestSource_Normalizes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bitDepth int
		samples  []int
		want     []float32
	}{
		{"16 bit", 16, []int{0, 16384, -32768}, []float32{0, 0.5, -1}},
		{"24 bit", 24, []int{0, 1 << 22, -(1 << 23)}, []float32{0, 0.5, -1}},
		{"8 bit", 8, []int{64, -128}, []float32{0.5, -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := NewSource(&mockReader{samples: tt.samples}, 48000, 1, tt.bitDepth, nil)
			buf := make([]float32, 8)

			n, err := src.ReadSamples(buf)
			if err != nil {
				t.Fatalf("ReadSamples() error = %v", err)
			}
			if n != len(tt.want) {
				t.Fatalf("ReadSamples() n = %d, want %d", n, len(tt.want))
			}
			for i, w := range tt.want {
				if buf[i] != w {
					t.Errorf("buf[%d] = %v, want %v", i, buf[i], w)
				}
			}

			if n, err := src.ReadSamples(buf); n != 0 || err != io.EOF {
				t.Errorf("second ReadSamples() = (%d, %v), want (0, io.EOF)", n, err)
			}
		})
	}
}

func TestSource_Offset(t *testing.T) {
	t.Parallel()

	src := NewSource(&mockReader{samples: []int{128, 192, 64, 0}}, 48000, 1, 8, nil)
	src.SetOffset(128)

	buf := make([]float32, 4)
	if n, err := src.ReadSamples(buf); n != 4 || err != nil {
		t.Fatalf("ReadSamples() = (%d, %v)", n, err)
	}
	want := []float32{0, 0.5, -0.5, -1}
	for i, w := range want {
		if buf[i] != w {
			t.Errorf("buf[%d] = %v, want %v", i, buf[i], w)
		}
	}
}

func TestSource_EOFVariants(t *testing.T) {
	t.Parallel()

	for _, eofErr := range []bool{false, true} {
		src := NewSource(&mockReader{samples: []int{1, 2, 3}, chunk: 2, eofErr: eofErr}, 48000, 1, 16, nil)
		buf := make([]float32, 4)
		total := 0
		for {
			n, err := src.ReadSamples(buf)
			total += n
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatalf("ReadSamples() error = %v", err)
			}
		}
		if total != 3 {
			t.Errorf("eofErr=%v: read %d samples, want 3", eofErr, total)
		}
	}
}

func TestSource_Errors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	src := NewSource(&mockReader{fail: boom}, 48000, 2, 16, nil)

	_, err := src.ReadSamples(make([]float32, 4))
	if !errors.Is(err, boom) {
		t.Errorf("ReadSamples() error = %v, want wrapped boom", err)
	}
}

func TestSource_CloseOnce(t *testing.T) {
	t.Parallel()

	cc := &closeCounter{}
	src := NewSource(&mockReader{}, 48000, 1, 16, cc)

	if err := src.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := src.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if cc.closed != 1 {
		t.Errorf("closer called %d times, want 1", cc.closed)
	}
}
