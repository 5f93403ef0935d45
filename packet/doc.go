// SPDX-License-Identifier: EPL-2.0

// Package packet frames variable length codec packets in a byte stream.
//
// Every record is a 2 byte big-endian payload length followed by the payload.
// There is no header, trailer or checksum; the stream ends cleanly when end
// of input falls on a record boundary.
//
//	w := packet.NewWriter(bufio.NewWriter(f))
//	_ = w.WritePacket(p)
//	_ = w.Flush()
//
//	r := packet.NewReader(bufio.NewReader(f))
//	for {
//	    p, err := r.ReadPacket()
//	    if errors.Is(err, io.EOF) {
//	        break
//	    }
//	    ...
//	}
package packet
