// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jcursor

import "context"

// A Handler receives the structure of a document from Walk. If a method
// reports an error, the walk stops and that error is returned to the caller.
// The tokenizer guarantees that Begin and End events arrive correctly
// paired, or that a *StructError is reported instead.
//
// The Token argument to a handler method is a snapshot; it may be retained
// after the method returns.
type Handler interface {
	// Begin a new object, whose open brace is at tok.
	BeginObject(tok Token) error

	// End the most-recently-opened object, whose close brace is at tok.
	EndObject(tok Token) error

	// Begin a new array, whose open bracket is at tok.
	BeginArray(tok Token) error

	// End the most-recently-opened array, whose close bracket is at tok.
	EndArray(tok Token) error

	// Report the name of the next object member. The text of the name is
	// still quoted; use tok.Value().Text() for the plain string.
	Member(tok Token) error

	// Report a scalar value. The type of the value can be recovered from the
	// token kind, and its contents from the token's Value view.
	Value(tok Token) error

	// EndOfInput reports the end of the input stream, with the total number
	// of bytes consumed.
	EndOfInput(pos int64)
}

// CommentHandler is an optional interface that a Handler may implement to
// observe comment tokens. If the handler implements this method and comments
// are enabled on the cursor, Comment is called for each comment token in the
// input. Otherwise comments are silently discarded.
type CommentHandler interface {
	// Process the line or block comment at tok. Line comments include their
	// leading "//" and trailing newline (if present); block comments include
	// their leading "/*" and trailing "*/".
	Comment(tok Token)
}

// Walk replays the tokens of c as events on h until the document is
// exhausted, the handler reports an error, or ctx ends. It returns the
// cursor's error, the handler's error, or nil at a clean end of input.
func Walk(ctx context.Context, c *Cursor, h Handler) error {
	for c.Next(ctx) {
		tok := c.Token()

		var err error
		switch tok.Kind {
		case ObjectStart:
			err = h.BeginObject(tok)
		case ObjectEnd:
			err = h.EndObject(tok)
		case ArrayStart:
			err = h.BeginArray(tok)
		case ArrayEnd:
			err = h.EndArray(tok)
		case Name:
			err = h.Member(tok)
		case Comment:
			if ch, ok := h.(CommentHandler); ok {
				ch.Comment(tok)
			}
		default:
			err = h.Value(tok)
		}
		if err != nil {
			return err
		}
	}
	if err := c.Err(); err != nil {
		return err
	}
	h.EndOfInput(c.BytesConsumed())
	return nil
}
