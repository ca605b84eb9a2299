// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jcursor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/goccy/go-json"
)

// A Materializer converts the captured bytes of a complete JSON value into a
// typed result. The data slice is fully buffered and owned by the
// materializer for the duration of the call.
type Materializer func(ctx context.Context, data []byte, v any) error

// SetMaterializer replaces the materializer used by DecodeNext. The default
// unmarshals with github.com/goccy/go-json.
func (c *Cursor) SetMaterializer(m Materializer) { c.mat = m }

func materialize(ctx context.Context, data []byte, v any) error {
	return json.UnmarshalContext(ctx, data, v)
}

// A BufferPool recycles capture sinks across DecodeNext calls. Pooling is an
// allocation optimization only; a nil *BufferPool is valid and allocates a
// fresh buffer per capture.
type BufferPool struct{ p sync.Pool }

// NewBufferPool constructs an empty buffer pool, which the caller may share
// among any number of cursors.
func NewBufferPool() *BufferPool { return new(BufferPool) }

func (b *BufferPool) get() *bytes.Buffer {
	if b != nil {
		if v := b.p.Get(); v != nil {
			buf := v.(*bytes.Buffer)
			buf.Reset()
			return buf
		}
	}
	return new(bytes.Buffer)
}

func (b *BufferPool) put(buf *bytes.Buffer) {
	if b != nil {
		b.p.Put(buf)
	}
}

// SetBufferPool injects a pool of capture sinks for DecodeNext to draw from.
func (c *Cursor) SetBufferPool(p *BufferPool) { c.pool = p }

// A capture accumulates the exact byte range of a composite value while the
// cursor streams past it. The unflushed span [start, off) of the current
// window is appended to the sink whenever the window is about to be
// recycled, and once more when the capture completes, so the sink receives
// every byte of the span exactly once.
type capture struct {
	sink  *bytes.Buffer
	start int // window offset of the first unflushed byte
}

func (g *capture) flush(window []byte, end int) {
	g.sink.Write(window[g.start:end])
	g.start = 0
}

// Capture returns the exact raw bytes of the value at the current token.
//
// For an ObjectStart or ArrayStart token, the cursor is advanced through the
// matching end delimiter and every input byte in between is accumulated,
// byte-identical to the corresponding span of the original document even
// when it crosses window boundaries. For a scalar token the token's own
// bytes are returned directly, with no capture machinery involved. The
// returned slice is owned by the caller.
//
// If ctx ends mid-capture, the accumulated bytes are discarded and the
// context's error is returned and recorded on the cursor, which reports no
// further tokens. A capture is not resumable.
func (c *Cursor) Capture(ctx context.Context) ([]byte, error) {
	var sink bytes.Buffer
	if err := c.captureInto(ctx, &sink); err != nil {
		return nil, err
	}
	return sink.Bytes(), nil
}

// captureInto drives the capture of the value at the current token into
// sink. Capture state never survives the call: on success, error, or
// cancellation alike it is torn down before returning.
func (c *Cursor) captureInto(ctx context.Context, sink *bytes.Buffer) error {
	switch c.tok.Kind {
	case ObjectStart, ArrayStart:
		// fall through to the drive loop below

	case String, Number, True, False, Null:
		// Scalar bypass: the token is the whole value.
		sink.Write(c.tok.raw)
		return nil

	case ObjectEnd, ArrayEnd:
		return &StructError{
			Offset:  c.tok.Span.Pos,
			Message: fmt.Sprintf("capture at %v would unbalance nesting", c.tok.Kind),
		}

	default:
		return &StructError{Offset: c.pos, Message: "no value to capture"}
	}

	// The start token's bytes are still resident at the tail of the current
	// window; no refill can have occurred since it was produced.
	c.grab = &capture{sink: sink, start: c.off - len(c.tok.raw)}
	defer func() { c.grab = nil }()

	for depth := 1; depth > 0; {
		if err := ctx.Err(); err != nil {
			c.fail(err)
			return err
		}
		if !c.Next(ctx) {
			if c.err != nil {
				return c.err
			}
			return &StructError{Offset: c.pos, Message: "input ended inside captured value"}
		}
		switch c.tok.Kind {
		case ObjectStart, ArrayStart:
			depth++
		case ObjectEnd, ArrayEnd:
			if depth--; depth < 0 {
				return &StructError{Offset: c.tok.Span.Pos, Message: "unbalanced close delimiter"}
			}
		}
	}
	c.grab.flush(c.window, c.off)
	return nil
}

// DecodeNext advances to the next value of the document, captures its raw
// bytes, and materializes them into v. Property names and comments between
// the current position and the value are consumed along the way, as are the
// close delimiters of any containers the cursor is leaving. DecodeNext
// returns io.EOF if the document holds no further values.
func (c *Cursor) DecodeNext(ctx context.Context, v any) error {
	for {
		if !c.Next(ctx) {
			if c.err != nil {
				return c.err
			}
			return io.EOF
		}
		if c.tok.Kind.IsValue() {
			break
		}
	}

	sink := c.pool.get()
	defer c.pool.put(sink)
	if err := c.captureInto(ctx, sink); err != nil {
		return err
	}
	mat := c.mat
	if mat == nil {
		mat = materialize
	}
	return mat(ctx, sink.Bytes(), v)
}
