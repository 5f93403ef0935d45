// SPDX-License-Identifier: EPL-2.0

// Package hrtf renders 5.0 surround to binaural stereo with head related
// impulse responses.
//
// A filter directory holds ten mono WAV files, one per ear and loudspeaker,
// named after the loudspeaker azimuth:
//
//	FL  L0e330a.wav  R0e330a.wav
//	C   L0e000a.wav  R0e000a.wav
//	FR  L0e030a.wav  R0e030a.wav
//	RL  L0e240a.wav  R0e240a.wav
//	RR  L0e120a.wav  R0e120a.wav
//
// Input channels are expected in that order, which is the order the surround
// decoder writes. Rendering is a direct time domain convolution:
//
//	fs, err := hrtf.LoadFilterSet(ctx, dir)
//	...
//	eng, err := hrtf.NewEngine(src.Channels(), fs)
//	...
//	frames, err := eng.Run(ctx, src, sink)
package hrtf
