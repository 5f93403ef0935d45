// SPDX-License-Identifier: EPL-2.0

// Package codec runs multichannel audio through a multistream codec session.
//
// The codec library sits behind BlockEncoder and BlockDecoder; OpusFactory
// provides them with github.com/thesyncim/gopus. An Encoder reads one mono
// source per logical channel, interleaves a block of FrameSize frames in
// channel order, encodes it and appends the packet to a packet.Writer. A
// Decoder reverses that into an audio.Sink.
//
// Sessions move Idle -> Encoding (or Decoding) -> Finished or Failed and are
// not reusable. Codec errors come back as *CodecError and match
// ErrEncodeFailure or ErrDecodeFailure as well as the library error.
package codec
