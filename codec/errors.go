// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"errors"
	"fmt"
)

var (
	ErrEncodeFailure       = errors.New("encode failure")
	ErrDecodeFailure       = errors.New("decode failure")
	ErrResourceUnavailable = errors.New("resource unavailable")
	ErrSessionUsed         = errors.New("codec session already used")
	ErrUnknownApplication  = errors.New("unknown codec application")
)

// CodecError is a failure reported by the codec library. Kind is
// ErrEncodeFailure or ErrDecodeFailure; Err is the library error.
type CodecError struct {
	Op   string
	Kind error
	Err  error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("codec %s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *CodecError) Unwrap() []error { return []error{e.Kind, e.Err} }
