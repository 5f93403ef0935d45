// SPDX-License-Identifier: EPL-2.0

package hrtf

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidChannelCount = errors.New("invalid channel count")
	ErrFilterLoadFailure   = errors.New("filter load failure")
	ErrShortFilter         = errors.New("filter shorter than tap count")
	ErrFilterShape         = errors.New("filter set shape mismatch")
)

// FilterLoadError names the filter file that could not be used.
type FilterLoadError struct {
	Path string
	Err  error
}

func (e *FilterLoadError) Error() string {
	return fmt.Sprintf("load filter %s: %v", e.Path, e.Err)
}

func (e *FilterLoadError) Unwrap() []error { return []error{ErrFilterLoadFailure, e.Err} }
