// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWavFile          = errors.New("not a WAV file")
	ErrUnsupportedEncoding = errors.New("only integer PCM WAV is supported")
	ErrUnsupportedBitDepth = errors.New("unsupported WAV bit depth")
	ErrMissingFormat       = errors.New("WAV file has no fmt chunk")
	ErrMisalignedWrite     = errors.New("sample count is not a multiple of channels")
)
