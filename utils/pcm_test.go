// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestFloat32ToPCM(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    float32
		bitDepth int
		want     int
	}{
		{"zero 16", 0, 16, 0},
		{"max 16", 1, 16, math.MaxInt16},
		{"min 16", -1, 16, math.MinInt16},
		{"half 16", 0.5, 16, 16384},
		{"clamp over 16", 1.5, 16, math.MaxInt16},
		{"clamp under 16", -1.5, 16, math.MinInt16},
		{"max 24", 1, 24, 1<<23 - 1},
		{"min 24", -1, 24, -(1 << 23)},
		{"quarter 24", 0.25, 24, 1 << 21},
		{"max 8", 1, 8, 127},
		{"unknown depth uses 16", 0.5, 12, 16384},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Float32ToPCM(tt.input, tt.bitDepth); got != tt.want {
				t.Errorf("Float32ToPCM(%v, %d) = %d, want %d", tt.input, tt.bitDepth, got, tt.want)
			}
		})
	}
}

func TestPCMRoundTrip(t *testing.T) {
	t.Parallel()

	for _, depth := range []int{16, 24} {
		step := 1 / FullScale(depth)
		for _, x := range []float32{-0.9, -0.5, -0.1, 0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.9} {
			got := PCMToFloat32(Float32ToPCM(x, depth), depth)
			if math.Abs(float64(got-x)) > step {
				t.Errorf("depth %d: round trip of %v = %v (step %v)", depth, x, got, step)
			}
		}
	}
}

func TestFloat32ToPCM_Monotonic16(t *testing.T) {
	t.Parallel()

	prev := Float32ToPCM(-1, 16)
	for i := -999; i <= 1000; i++ {
		cur := Float32ToPCM(float32(i)/1000, 16)
		if cur < prev {
			t.Fatalf("Float32ToPCM(%v, 16) = %d < previous %d", float32(i)/1000, cur, prev)
		}
		prev = cur
	}
}

func BenchmarkFloat32ToPCM(b *testing.B) {
	samples := make([]float32, 1024)
	for i := range samples {
		samples[i] = float32(math.Sin(float64(i) * 0.01))
	}

	b.ReportAllocs()
	for b.Loop() {
		for _, s := range samples {
			_ = Float32ToPCM(s, 24)
		}
	}
}
