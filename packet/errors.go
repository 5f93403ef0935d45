// SPDX-License-Identifier: EPL-2.0

package packet

import (
	"errors"
	"fmt"
)

var (
	ErrTruncatedStream = errors.New("truncated packet stream")
	ErrPacketTooLarge  = errors.New("packet too large")
)

// FormatError reports a malformed record and where it starts.
type FormatError struct {
	Offset int64
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("packet at offset %d: %v", e.Offset, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }
