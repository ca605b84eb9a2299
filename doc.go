// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Package jcursor implements an incremental JSON tokenizer over chunked
// input.
//
// # Cursors
//
// The Cursor type reads the tokens of a JSON document one at a time from a
// ChunkSource, which delivers the document as a sequence of byte windows.
// The cursor requests more bytes exactly when the tokenizer cannot complete
// a token within the resident window, and acknowledges consumed bytes back
// to the source so that pooled memory can be recycled and upstream flow
// control can take effect. Construct a cursor from a reader, a byte slice,
// or any ChunkSource, and call Next to iterate:
//
//	c := jcursor.NewReader(input)
//	defer c.Close()
//	for c.Next(ctx) {
//	   log.Printf("Next token: %v", c.Kind())
//	}
//	if err := c.Err(); err != nil {
//	   log.Fatalf("Scanning failed: %v", err)
//	}
//
// Next reports false at the end of the input; Err is nil if the document was
// consumed completely. The windows delivered by the source must be allowed
// to grow large enough to hold the single largest token in the document;
// otherwise the cursor reports a *StructError.
//
// # Values
//
// The Value view interprets the raw bytes of the current token as scalar
// types on demand:
//
//	n, err := c.Value().Int64()
//
// Conversions are exact: the entire token text must match the requested
// type. A failed conversion wraps ErrConversion, does not move the cursor,
// and the same token may be retried as a different type.
//
// # Capture
//
// Capture accumulates the exact raw bytes of a complete object or array
// while the cursor streams past it, even when the value spans many windows:
//
//	data, err := c.Capture(ctx) // positioned at "{" or "["
//
// DecodeNext combines capture with materialization into a typed result:
//
//	var v map[string]any
//	err := c.DecodeNext(ctx, &v)
//
// # Walking
//
// The Walk function replays a cursor's tokens as events on a Handler, with
// objects and arrays guaranteed to be correctly balanced:
//
//	err := jcursor.Walk(ctx, c, handler)
package jcursor
