// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")
	ErrUnknownFormat  = errors.New("unknown audio format")
	ErrChannelCount   = errors.New("unexpected channel count")
	ErrSampleRate     = errors.New("unexpected sample rate")
	ErrBlockShape     = errors.New("block shape mismatch")
)
