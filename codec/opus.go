// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"fmt"

	"github.com/thesyncim/gopus"

	"github.com/ik5/surround/mapping"
)

// OpusFactory opens Opus multistream sessions through github.com/thesyncim/gopus.
type OpusFactory struct{}

func application(name string) (gopus.Application, error) {
	switch name {
	case "", "audio":
		return gopus.ApplicationAudio, nil
	case "voip":
		return gopus.ApplicationVoIP, nil
	case "lowdelay":
		return gopus.ApplicationLowDelay, nil
	}
	return 0, fmt.Errorf("%q: %w", name, ErrUnknownApplication)
}

func (OpusFactory) NewBlockEncoder(m mapping.Mapping, sampleRate int, opts EncoderOptions) (BlockEncoder, error) {
	app, err := application(opts.Application)
	if err != nil {
		return nil, err
	}

	enc, err := gopus.NewMultistreamEncoder(sampleRate, m.Channels, m.Streams, m.CoupledStreams, m.Table, app)
	if err != nil {
		return nil, &CodecError{Op: "create encoder", Kind: ErrEncodeFailure, Err: err}
	}

	if opts.Bitrate > 0 {
		if err := enc.SetBitrate(opts.Bitrate); err != nil {
			return nil, &CodecError{Op: fmt.Sprintf("set bitrate %d", opts.Bitrate), Kind: ErrEncodeFailure, Err: err}
		}
	}
	if err := enc.SetComplexity(opts.Complexity); err != nil {
		return nil, &CodecError{Op: fmt.Sprintf("set complexity %d", opts.Complexity), Kind: ErrEncodeFailure, Err: err}
	}

	return enc, nil
}

func (OpusFactory) NewBlockDecoder(m mapping.Mapping, sampleRate int) (BlockDecoder, error) {
	dec, err := gopus.NewMultistreamDecoder(sampleRate, m.Channels, m.Streams, m.CoupledStreams, m.Table)
	if err != nil {
		return nil, &CodecError{Op: "create decoder", Kind: ErrDecodeFailure, Err: err}
	}
	return dec, nil
}
