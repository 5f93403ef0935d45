// SPDX-License-Identifier: EPL-2.0

// Package surround moves 5.0 surround audio through an Opus multistream
// transport and renders it to binaural stereo.
//
// The package wires the lower level pieces into three file to file
// pipelines, one per program under cmd/:
//
//	EncodeFiles  five mono stems -> packet file     (cmd/surround-encode)
//	DecodeFile   packet file     -> 5 channel WAV   (cmd/surround-decode)
//	RenderFile   5 channel WAV   -> binaural WAV    (cmd/binaural-render)
//
// # Packet file
//
// The packet file is a bare sequence of records, a 2 byte big-endian length
// followed by one codec packet (see package packet). It carries no header, so
// encoder and decoder both derive the channel mapping with mapping.Plan.
//
// # Channel order
//
// Channels are in Vorbis order everywhere: front left, center, front right,
// rear left, rear right. The encoder takes its stems in that order, the
// decoder writes WAV files in that order and the renderer expects it.
//
// # Input formats
//
// Stems are picked by file extension from a Registry:
//   - WAV (PCM 8/16/24/32-bit) via formats/wav
//   - AIFF via formats/aiff
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//
// Every stem must be 48 kHz. Stems with more than one channel are rejected
// unless downmixing is enabled, in which case they go through
// audio.MonoMixer.
//
// # Errors
//
// ExitCode maps a pipeline error onto the exit status the programs return.
package surround
