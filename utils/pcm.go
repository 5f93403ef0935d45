// SPDX-License-Identifier: EPL-2.0

// Package utils converts between normalized float samples and integer PCM
// as stored by the go-audio buffers.
package utils

import "math"

// FullScale returns 2^(bitDepth-1), the magnitude mapped to 1.0.
// Unknown depths fall back to 16-bit.
func FullScale(bitDepth int) float64 {
	switch bitDepth {
	case 8, 16, 24, 32:
		return math.Ldexp(1, bitDepth-1)
	default:
		return 32768
	}
}

// PCMToFloat32 normalizes an integer sample of the given bit depth.
func PCMToFloat32(v int, bitDepth int) float32 {
	return float32(float64(v) / FullScale(bitDepth))
}

// Float32ToPCM scales, rounds and clamps x into the integer range of bitDepth.
func Float32ToPCM(x float32, bitDepth int) int {
	scale := FullScale(bitDepth)
	v := math.Round(float64(x) * scale)
	if v > scale-1 {
		return int(scale - 1)
	}
	if v < -scale {
		return int(-scale)
	}
	return int(v)
}
