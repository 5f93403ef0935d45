// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis stems with github.com/jfreymuth/oggvorbis.
//
//	src, err := vorbis.Decoder{}.Decode(file)
//
// Mono 48 kHz files can feed the surround encoder directly; stereo files need
// audio.NewMonoMixer (or input downmixing in the configuration).
package vorbis
