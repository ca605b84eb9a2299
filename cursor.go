// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jcursor

import (
	"context"
	"io"
)

// A Cursor reads the tokens of a JSON document incrementally from a
// ChunkSource, without materializing the whole document. Each call to Next
// advances the cursor to the next token, requesting more bytes from the
// source exactly when the tokenizer cannot make progress and never
// re-parsing bytes it has already consumed.
//
// A Cursor is not safe for concurrent use: at most one Next, Capture, or
// DecodeNext call may be outstanding at a time.
type Cursor struct {
	src ChunkSource
	tkz Tokenizer

	window []byte // borrowed from src; valid until the next Request/Ack
	off    int    // offset in window of the first unconsumed byte
	pos    int64  // cumulative stream offset of window[off]
	carry  Carry  // tokenizer state across windows
	final  bool   // window extends to the end of the document
	done   bool
	err    error

	tok  Token
	snap snapshot // arena for token byte snapshots

	grab *capture // active capture, or nil
	mat  Materializer
	pool *BufferPool
}

// New constructs a Cursor that reads from src. The cursor assumes ownership
// of src; closing the cursor closes the source.
func New(src ChunkSource) *Cursor { return &Cursor{src: src} }

// NewReader constructs a Cursor that reads from r.
func NewReader(r io.Reader) *Cursor { return New(NewReaderSource(r)) }

// NewBytes constructs a Cursor over an in-memory document.
func NewBytes(data []byte) *Cursor { return New(NewBytesSource(data, 0)) }

// AllowComments configures the cursor to report (true) or reject (false)
// comment tokens. Comments are a non-standard extension of the JSON spec.
func (c *Cursor) AllowComments(ok bool) { c.tkz.Comments = ok }

// Next advances c to the next token of the input. It reports true if a token
// is available, or false if the document is exhausted or an error occurred;
// Err distinguishes the two. Once the input is exhausted, every subsequent
// call reports false with kind None.
//
// Producing a token from resident bytes is synchronous; Next blocks only
// when a new window must be requested from the source. Cancellation is
// checked before each such request, never in the middle of a token.
func (c *Cursor) Next(ctx context.Context) bool {
	if c.done || c.err != nil {
		c.tok = Token{}
		return false
	}
	for {
		res, carry, err := c.tkz.Next(c.window[c.off:], c.carry, c.final)
		if err != nil {
			c.fail(rebase(err, c.pos))
			return false
		}
		c.off += res.Consumed
		c.pos += int64(res.Consumed)
		c.carry = carry

		if res.Advanced {
			c.tok = Token{
				Kind: res.Kind,
				Span: Span{Pos: c.pos - int64(len(res.Value)), End: c.pos},
				raw:  c.snap.copyOf(res.Value),
			}
			return true
		}
		if c.final {
			if c.off == len(c.window) && c.carry.atTop() {
				c.done = true
				c.tok = Token{}
				return false
			}
			// Either the document is malformed, or the source cannot deliver
			// a window large enough to hold one complete token.
			c.fail(&StructError{Offset: c.pos, Message: "unexpected end of input"})
			return false
		}
		if !c.refill(ctx) {
			return false
		}
	}
}

// refill acknowledges the consumed prefix of the current window and requests
// a strictly larger one, flushing any active capture first so that no bytes
// of the captured span are lost when the window is recycled. It reports
// false if the request failed, recording the error.
func (c *Cursor) refill(ctx context.Context) bool {
	if err := ctx.Err(); err != nil {
		c.fail(err)
		return false
	}
	if c.grab != nil {
		c.grab.flush(c.window, c.off)
	}
	rest := len(c.window) - c.off
	c.src.Ack(c.off)
	c.window, c.off = nil, 0 // the acknowledged bytes must not be re-acked by Close
	w, final, err := c.src.Request(ctx, rest+1)
	if err != nil {
		c.fail(err) // verbatim: cancellation and upstream I/O are not rewrapped
		return false
	}
	c.window, c.off, c.final = w, 0, final
	return true
}

func (c *Cursor) fail(err error) {
	c.err = err
	c.tok = Token{}
}

// rebase converts the window-relative offset of a tokenizer error into a
// stream offset.
func rebase(err error, base int64) error {
	if se, ok := err.(*StructError); ok {
		se.Offset += base
	}
	return err
}

// Kind returns the kind of the current token, or None if no token is
// available.
func (c *Cursor) Kind() Kind { return c.tok.Kind }

// Token returns the current token. Its raw bytes are a snapshot and remain
// valid as the cursor advances.
func (c *Cursor) Token() Token { return c.tok }

// Value returns a scalar view of the current token.
func (c *Cursor) Value() Value { return c.tok.Value() }

// Err returns the error that terminated iteration: a *StructError for
// malformed input, the context's error if a call was cancelled, an error
// propagated verbatim from the chunk source, or nil if the document was
// consumed completely.
func (c *Cursor) Err() error { return c.err }

// BytesConsumed reports the cumulative number of input bytes the cursor has
// consumed. It is accurate at the moment of any error, for diagnostics.
func (c *Cursor) BytesConsumed() int64 { return c.pos }

// Close acknowledges any remaining consumed bytes and releases the chunk
// source. The cursor is exhausted afterward; Close is idempotent.
func (c *Cursor) Close() error {
	if c.src == nil {
		return nil
	}
	c.src.Ack(c.off)
	c.window, c.off = nil, 0
	err := c.src.Close()
	c.src, c.done = nil, true
	return err
}
