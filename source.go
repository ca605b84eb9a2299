// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jcursor

import (
	"context"
	"fmt"
	"io"
)

// A ChunkSource delivers a document as a sequence of byte windows. A window
// always begins at the first unacknowledged byte: bytes the consumer has not
// released with Ack are retained and re-delivered at the front of the next
// window, so no byte is ever re-read after acknowledgement and none is lost
// before it.
//
// Acknowledgement is the flow-control point: a pooled or bounded source may
// withhold further delivery until the consumer catches up.
type ChunkSource interface {
	// Request blocks until at least min unacknowledged bytes are resident,
	// the document is exhausted, or ctx ends. The returned window is owned
	// by the source and is valid only until the next Request or Ack call.
	// The final flag reports that the window extends to the end of the
	// document.
	Request(ctx context.Context, min int) (window []byte, final bool, err error)

	// Ack releases n bytes from the front of the current window. It panics
	// if n exceeds the number of resident bytes.
	Ack(n int)

	// Close releases any resources held by the source.
	Close() error
}

const minReadSize = 512

// A ReaderSource adapts an io.Reader to the ChunkSource interface. The
// unacknowledged tail is retained in an internal buffer that grows as needed,
// so a window can always be extended to hold one complete token.
type ReaderSource struct {
	r     io.Reader
	buf   []byte
	start int // offset in buf of the first unacknowledged byte
	eof   bool
}

// NewReaderSource constructs a ChunkSource that reads from r.
func NewReaderSource(r io.Reader) *ReaderSource { return &ReaderSource{r: r} }

// Request implements part of the ChunkSource interface. Each call issues at
// most one Read per deficit iteration, so chunk boundaries imposed by the
// underlying reader are preserved when they already satisfy min.
func (s *ReaderSource) Request(ctx context.Context, min int) ([]byte, bool, error) {
	for len(s.buf)-s.start < min && !s.eof {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		s.makeSpace(min)
		n, err := s.r.Read(s.buf[len(s.buf):cap(s.buf)])
		s.buf = s.buf[:len(s.buf)+n]
		if err == io.EOF {
			s.eof = true
		} else if err != nil {
			return nil, false, err
		}
	}
	return s.buf[s.start:], s.eof, nil
}

// makeSpace reclaims the acknowledged prefix and ensures room to read toward
// a window of at least min bytes.
func (s *ReaderSource) makeSpace(min int) {
	if s.start > 0 {
		n := copy(s.buf, s.buf[s.start:])
		s.buf, s.start = s.buf[:n], 0
	}
	need := len(s.buf) + max(min, minReadSize)
	if cap(s.buf) < need {
		nb := make([]byte, len(s.buf), 2*cap(s.buf)+need)
		copy(nb, s.buf)
		s.buf = nb
	}
}

// Ack implements part of the ChunkSource interface.
func (s *ReaderSource) Ack(n int) {
	if n < 0 || n > len(s.buf)-s.start {
		panic(fmt.Sprintf("jcursor: ack %d bytes with %d resident", n, len(s.buf)-s.start))
	}
	s.start += n
}

// Close implements part of the ChunkSource interface. If the underlying
// reader is an io.Closer, it is closed.
func (s *ReaderSource) Close() error {
	s.buf, s.start, s.eof = nil, 0, true
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// A BytesSource delivers an in-memory document in fixed-size chunks, serving
// windows directly from the underlying slice without copying. A chunk size
// of zero or less delivers the whole document as a single final window.
type BytesSource struct {
	data  []byte
	chunk int
	start int // first unacknowledged byte
	next  int // end of the delivered region
}

// NewBytesSource constructs a ChunkSource over data delivering chunk bytes
// per read cycle.
func NewBytesSource(data []byte, chunk int) *BytesSource {
	if chunk <= 0 {
		chunk = len(data)
	}
	return &BytesSource{data: data, chunk: chunk}
}

// Request implements part of the ChunkSource interface.
func (s *BytesSource) Request(ctx context.Context, min int) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	for s.next-s.start < min && s.next < len(s.data) {
		s.next += s.chunk
	}
	if s.next > len(s.data) {
		s.next = len(s.data)
	}
	return s.data[s.start:s.next], s.next == len(s.data), nil
}

// Ack implements part of the ChunkSource interface.
func (s *BytesSource) Ack(n int) {
	if n < 0 || n > s.next-s.start {
		panic(fmt.Sprintf("jcursor: ack %d bytes with %d resident", n, s.next-s.start))
	}
	s.start += n
}

// Close implements part of the ChunkSource interface.
func (s *BytesSource) Close() error { s.data = nil; return nil }
