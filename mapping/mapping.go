// SPDX-License-Identifier: EPL-2.0

package mapping

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/thesyncim/gopus/multistream"
)

const (
	// FamilyVorbis is the RFC 7845 mapping family for 1 to 8 channels in
	// Vorbis order.
	FamilyVorbis = 1

	// Silent marks a channel that no stream feeds.
	Silent byte = 255
)

// Position names a loudspeaker.
type Position string

const (
	FrontLeft  Position = "FL"
	Center     Position = "C"
	FrontRight Position = "FR"
	RearLeft   Position = "RL"
	RearRight  Position = "RR"
)

// surround50 is the known 5.0 layout: FL+FR and RL+RR are coupled pairs,
// C rides alone on the third stream.
var surround50 = Mapping{
	Channels:       5,
	Streams:        3,
	CoupledStreams: 2,
	Family:         FamilyVorbis,
	Table:          []byte{0, 4, 1, 2, 3},
}

var positions50 = []Position{FrontLeft, Center, FrontRight, RearLeft, RearRight}

// Mapping is an RFC 7845 channel mapping.
type Mapping struct {
	Channels       int
	Streams        int
	CoupledStreams int
	Family         int
	// Table[ch] is the decoded stream channel feeding logical channel ch.
	Table []byte
}

// Plan returns the mapping for a channel count and mapping family.
// The derivation comes from the codec library and is checked against the
// known layout before it is handed out.
func Plan(channels, family int) (Mapping, error) {
	if channels != surround50.Channels || family != surround50.Family {
		return Mapping{}, fmt.Errorf("%d channels, family %d: %w", channels, family, ErrUnsupportedLayout)
	}

	streams, coupled, table, err := multistream.DefaultMapping(channels)
	if err != nil {
		return Mapping{}, fmt.Errorf("%d channels, family %d: %w: %w", channels, family, ErrUnsupportedLayout, err)
	}

	m := Mapping{
		Channels:       channels,
		Streams:        streams,
		CoupledStreams: coupled,
		Family:         family,
		Table:          table,
	}
	if !m.Equal(surround50) {
		return Mapping{}, fmt.Errorf("derived %s, want %s: %w", m, surround50, ErrInvalidMapping)
	}

	return m, m.Validate()
}

// Validate checks the stream counts and that every table entry names an
// existing stream channel or Silent.
func (m Mapping) Validate() error {
	switch {
	case m.Channels <= 0:
		return fmt.Errorf("%d channels: %w", m.Channels, ErrInvalidMapping)
	case m.Streams <= 0 || m.Streams > m.Channels:
		return fmt.Errorf("%d streams for %d channels: %w", m.Streams, m.Channels, ErrInvalidMapping)
	case m.CoupledStreams < 0 || m.CoupledStreams > m.Streams:
		return fmt.Errorf("%d coupled of %d streams: %w", m.CoupledStreams, m.Streams, ErrInvalidMapping)
	case len(m.Table) != m.Channels:
		return fmt.Errorf("table has %d entries for %d channels: %w", len(m.Table), m.Channels, ErrInvalidMapping)
	}

	limit := m.Streams + m.CoupledStreams
	for ch, v := range m.Table {
		if v != Silent && int(v) >= limit {
			return fmt.Errorf("channel %d maps to %d, limit %d: %w", ch, v, limit, ErrInvalidMapping)
		}
	}
	return nil
}

func (m Mapping) Equal(o Mapping) bool {
	return m.Channels == o.Channels &&
		m.Streams == o.Streams &&
		m.CoupledStreams == o.CoupledStreams &&
		m.Family == o.Family &&
		bytes.Equal(m.Table, o.Table)
}

// Positions lists the loudspeaker of every logical channel.
func (m Mapping) Positions() []Position {
	if m.Channels != len(positions50) {
		return nil
	}
	return append([]Position(nil), positions50...)
}

// Route describes where a logical channel travels.
type Route struct {
	Stream  int
	Coupled bool
	// Side is 0 (left) or 1 (right) within a coupled stream.
	Side   int
	Silent bool
}

// StreamOf reports which stream carries logical channel ch.
func (m Mapping) StreamOf(ch int) (Route, error) {
	if ch < 0 || ch >= len(m.Table) {
		return Route{}, fmt.Errorf("channel %d of %d: %w", ch, len(m.Table), ErrInvalidMapping)
	}

	v := int(m.Table[ch])
	switch {
	case m.Table[ch] == Silent:
		return Route{Stream: -1, Silent: true}, nil
	case v < 2*m.CoupledStreams:
		return Route{Stream: v / 2, Coupled: true, Side: v % 2}, nil
	case v < m.Streams+m.CoupledStreams:
		return Route{Stream: v - m.CoupledStreams}, nil
	default:
		return Route{}, fmt.Errorf("channel %d maps to %d: %w", ch, v, ErrInvalidMapping)
	}
}

func (m Mapping) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "family=%d channels=%d streams=%d coupled=%d table=[", m.Family, m.Channels, m.Streams, m.CoupledStreams)
	for i, v := range m.Table {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d", v)
	}
	sb.WriteByte(']')
	return sb.String()
}
