// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes integer PCM WAV files on top of
// github.com/go-audio/wav.
//
// WAV is the sample container on both ends of the surround pipeline: the
// encoder reads one mono stem per speaker, the decoder writes a 5-channel
// file, the binaural renderer reads that file plus ten mono HRTF impulse
// responses and writes a stereo file.
//
// # Decoding
//
//	src, err := wav.Open("front-left.wav")
//	if err != nil {
//	    return err
//	}
//	defer src.Close()
//
//	buf := make([]float32, 960*src.Channels())
//	n, err := src.ReadSamples(buf)
//
// Samples are float32 in [-1.0, 1.0]. 8, 16, 24 and 32-bit integer PCM is
// accepted, including WAVE_FORMAT_EXTENSIBLE headers. IEEE float WAV is
// rejected with ErrUnsupportedEncoding.
//
// # Encoding
//
//	w, err := wav.Create("decoded.wav", 48000, 5, 24)
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//	err = w.WriteSamples(interleaved)
//
// Writer implements audio.Sink. Sizes in the RIFF header are patched on
// Close, so the destination must be seekable.
package wav
