// SPDX-License-Identifier: EPL-2.0

package packet

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// MaxPacketSize is the largest payload either side accepts.
	MaxPacketSize = 32768

	headerSize = 2
)

type flusher interface {
	Flush() error
}

// Writer appends framed packets to an io.Writer.
type Writer struct {
	w       io.Writer
	hdr     [headerSize]byte
	packets int64
	bytes   int64
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WritePacket writes the length prefix and p. A zero length packet is valid.
func (w *Writer) WritePacket(p []byte) error {
	if len(p) > MaxPacketSize {
		return &FormatError{
			Offset: w.bytes,
			Err:    fmt.Errorf("%d bytes, limit %d: %w", len(p), MaxPacketSize, ErrPacketTooLarge),
		}
	}

	binary.BigEndian.PutUint16(w.hdr[:], uint16(len(p)))
	if _, err := w.w.Write(w.hdr[:]); err != nil {
		return fmt.Errorf("write packet length: %w", err)
	}
	w.bytes += headerSize

	if len(p) > 0 {
		if _, err := w.w.Write(p); err != nil {
			return fmt.Errorf("write packet payload: %w", err)
		}
		w.bytes += int64(len(p))
	}

	w.packets++
	return nil
}

// Flush flushes the underlying writer when it buffers.
func (w *Writer) Flush() error {
	if f, ok := w.w.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// Packets written so far.
func (w *Writer) Packets() int64 { return w.packets }

// Bytes written so far, length prefixes included.
func (w *Writer) Bytes() int64 { return w.bytes }

// Reader reads framed packets from an io.Reader.
type Reader struct {
	r       io.Reader
	hdr     [headerSize]byte
	buf     []byte
	offset  int64
	packets int64
}

func NewReader(r io.Reader) *Reader {
	return &Reader{
		r:   r,
		buf: make([]byte, MaxPacketSize),
	}
}

// ReadPacket returns the next payload. The slice is only valid until the
// next call. End of input on a record boundary yields io.EOF; anything
// else that ends early is ErrTruncatedStream.
func (r *Reader) ReadPacket() ([]byte, error) {
	start := r.offset

	n, err := io.ReadFull(r.r, r.hdr[:])
	r.offset += int64(n)
	switch {
	case errors.Is(err, io.EOF):
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return nil, &FormatError{Offset: start, Err: fmt.Errorf("length prefix cut after %d byte: %w", n, ErrTruncatedStream)}
	case err != nil:
		return nil, fmt.Errorf("read packet length at offset %d: %w", start, err)
	}

	size := int(binary.BigEndian.Uint16(r.hdr[:]))
	if size > MaxPacketSize {
		return nil, &FormatError{
			Offset: start,
			Err:    fmt.Errorf("claimed %d bytes, limit %d: %w: %w", size, MaxPacketSize, ErrTruncatedStream, ErrPacketTooLarge),
		}
	}

	payload := r.buf[:size]
	n, err = io.ReadFull(r.r, payload)
	r.offset += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, &FormatError{Offset: start, Err: fmt.Errorf("payload cut at %d of %d bytes: %w", n, size, ErrTruncatedStream)}
		}
		return nil, fmt.Errorf("read packet payload at offset %d: %w", start, err)
	}

	r.packets++
	return payload, nil
}

// Offset is the number of bytes consumed so far.
func (r *Reader) Offset() int64 { return r.offset }

// Packets read so far.
func (r *Reader) Packets() int64 { return r.packets }
