// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 stems with github.com/hajimehoshi/go-mp3.
//
// go-mp3 always produces 16-bit stereo, so an MP3 stem fed to the surround
// encoder has to be folded to mono first:
//
//	src, err := mp3.Decoder{}.Decode(file)
//	if err != nil {
//	    return err
//	}
//	mono := audio.NewMonoMixer(src)
//
// The encoder does this itself when input downmixing is enabled in the
// configuration. There is no resampling: the file must already be 48 kHz.
package mp3
