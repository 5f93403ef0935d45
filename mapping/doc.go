// SPDX-License-Identifier: EPL-2.0

// Package mapping derives the channel mapping that ties logical speaker
// channels to the elementary streams of a multistream packet.
//
// Encoder and decoder must agree on the mapping, and the container carries
// no header, so both sides call Plan with the same arguments:
//
//	m, err := mapping.Plan(5, mapping.FamilyVorbis)
//	// m.Streams == 3, m.CoupledStreams == 2, m.Table == {0, 4, 1, 2, 3}
//
// Only 5.0 with mapping family 1 is supported. Channel order is the Vorbis
// order: front left, center, front right, rear left, rear right.
package mapping
