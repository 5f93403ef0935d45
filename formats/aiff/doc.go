// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF stems for the surround encoder using
// github.com/go-audio/aiff.
//
//	src, err := aiff.Decoder{}.Decode(file)
//
// 8, 16, 24 and 32-bit integer PCM is supported. AIFF-C (compressed) files
// are rejected by the underlying decoder. Samples are big-endian on disk and
// come out as float32 in [-1.0, 1.0], like every other audio.Source.
package aiff
