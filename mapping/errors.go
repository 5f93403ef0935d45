// SPDX-License-Identifier: EPL-2.0

package mapping

import "errors"

var (
	ErrUnsupportedLayout = errors.New("unsupported channel layout")
	ErrInvalidMapping    = errors.New("invalid channel mapping")
)
