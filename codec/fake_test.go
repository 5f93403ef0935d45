// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/ik5/surround/mapping"
)

var errFakeBuffer = errors.New("fake: buffer too small")

// losslessCodec stores raw float32 bits, so decoded blocks equal the input.
type losslessCodec struct {
	channels int
	// frames overrides the reported decode frame count when > 0.
	frames int
	encErr error
	decErr error
}

func (c *losslessCodec) Encode(pcm []float32, data []byte) (int, error) {
	if c.encErr != nil {
		return 0, c.encErr
	}
	n := 4 * len(pcm)
	if n > len(data) {
		return 0, errFakeBuffer
	}
	for i, v := range pcm {
		binary.LittleEndian.PutUint32(data[4*i:], math.Float32bits(v))
	}
	return n, nil
}

func (c *losslessCodec) Decode(data []byte, pcm []float32) (int, error) {
	if c.decErr != nil {
		return 0, c.decErr
	}
	n := len(data) / 4
	if n > len(pcm) {
		return 0, errFakeBuffer
	}
	for i := range n {
		pcm[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	if c.frames > 0 {
		return c.frames, nil
	}
	return n / c.channels, nil
}

type fakeFactory struct {
	codec     *losslessCodec
	createErr error
	opts      EncoderOptions
}

func newFakeFactory(channels int) *fakeFactory {
	return &fakeFactory{codec: &losslessCodec{channels: channels}}
}

func (f *fakeFactory) NewBlockEncoder(_ mapping.Mapping, _ int, opts EncoderOptions) (BlockEncoder, error) {
	f.opts = opts
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.codec, nil
}

func (f *fakeFactory) NewBlockDecoder(mapping.Mapping, int) (BlockDecoder, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.codec, nil
}
