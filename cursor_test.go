// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jcursor_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/chunkio/jcursor"
	"github.com/google/go-cmp/cmp"
	"github.com/tailscale/hujson"
)

const scenarioDoc = `{"a":1,"b":[1,2,3],"c":{"x":1}}`

// scenarioTokens is the complete token transcript of scenarioDoc.
var scenarioTokens = []string{
	`{`, `name "a"`, `number 1`, `name "b"`,
	`[`, `number 1`, `number 2`, `number 3`, `]`,
	`name "c"`, `{`, `name "x"`, `number 1`, `}`,
	`}`,
}

// transcribe renders the remaining tokens of c as readable strings.
func transcribe(t *testing.T, c *jcursor.Cursor) []string {
	t.Helper()
	var out []string
	for c.Next(context.Background()) {
		tok := c.Token()
		switch tok.Kind {
		case jcursor.ObjectStart, jcursor.ObjectEnd, jcursor.ArrayStart, jcursor.ArrayEnd:
			out = append(out, string(tok.Text()))
		default:
			out = append(out, fmt.Sprintf("%v %s", tok.Kind, tok.Text()))
		}
	}
	return out
}

func TestCursorTranscript(t *testing.T) {
	c := jcursor.NewBytes([]byte(scenarioDoc))
	defer c.Close()

	got := transcribe(t, c)
	if err := c.Err(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if diff := cmp.Diff(scenarioTokens, got); diff != "" {
		t.Errorf("Tokens: (-want, +got)\n%s", diff)
	}
	if n := c.BytesConsumed(); n != int64(len(scenarioDoc)) {
		t.Errorf("BytesConsumed: got %d, want %d", n, len(scenarioDoc))
	}
}

// The token sequence must not depend on how the document is divided into
// windows: every chunk size and every two-part split must produce the same
// transcript as a single whole-document window.
func TestChunkingInvariance(t *testing.T) {
	t.Run("ChunkSizes", func(t *testing.T) {
		for size := 1; size <= len(scenarioDoc); size++ {
			c := jcursor.New(jcursor.NewBytesSource([]byte(scenarioDoc), size))
			got := transcribe(t, c)
			if err := c.Err(); err != nil {
				t.Fatalf("Chunk size %d: Next failed: %v", size, err)
			}
			if diff := cmp.Diff(scenarioTokens, got); diff != "" {
				t.Errorf("Chunk size %d: (-want, +got)\n%s", size, diff)
			}
			if n := c.BytesConsumed(); n != int64(len(scenarioDoc)) {
				t.Errorf("Chunk size %d: BytesConsumed: got %d, want %d", size, n, len(scenarioDoc))
			}
			c.Close()
		}
	})

	t.Run("Splits", func(t *testing.T) {
		for i := 1; i < len(scenarioDoc); i++ {
			r := io.MultiReader(
				strings.NewReader(scenarioDoc[:i]),
				strings.NewReader(scenarioDoc[i:]),
			)
			c := jcursor.NewReader(r)
			got := transcribe(t, c)
			if err := c.Err(); err != nil {
				t.Fatalf("Split at %d: Next failed: %v", i, err)
			}
			if diff := cmp.Diff(scenarioTokens, got); diff != "" {
				t.Errorf("Split at %d: (-want, +got)\n%s", i, diff)
			}
			c.Close()
		}
	})
}

func TestTerminalIdempotence(t *testing.T) {
	c := jcursor.NewBytes([]byte(`{"done": true}` + "\n"))
	defer c.Close()

	ctx := context.Background()
	for c.Next(ctx) {
	}
	if err := c.Err(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if n := c.BytesConsumed(); n != 15 {
		t.Errorf("BytesConsumed: got %d, want 15", n)
	}
	for i := 0; i < 5; i++ {
		if c.Next(ctx) {
			t.Errorf("Next after exhaustion: got true, want false")
		}
		if kind := c.Kind(); kind != jcursor.None {
			t.Errorf("Kind after exhaustion: got %v, want %v", kind, jcursor.None)
		}
		if err := c.Err(); err != nil {
			t.Errorf("Err after exhaustion: got %v, want nil", err)
		}
	}
}

func TestTokenSpans(t *testing.T) {
	const input = ` { "ab" : [ 10 ] } `
	want := []jcursor.Span{
		{Pos: 1, End: 2},   // {
		{Pos: 3, End: 7},   // "ab"
		{Pos: 10, End: 11}, // [
		{Pos: 12, End: 14}, // 10
		{Pos: 15, End: 16}, // ]
		{Pos: 17, End: 18}, // }
	}

	c := jcursor.NewBytes([]byte(input))
	defer c.Close()
	var got []jcursor.Span
	for c.Next(context.Background()) {
		got = append(got, c.Token().Span)
	}
	if err := c.Err(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Spans: (-want, +got)\n%s", diff)
	}
	if n := c.BytesConsumed(); n != int64(len(input)) {
		t.Errorf("BytesConsumed: got %d, want %d", n, len(input))
	}
}

// Token snapshots must remain valid after the cursor advances, even when the
// windows they were scanned from have been recycled.
func TestTokenSnapshots(t *testing.T) {
	c := jcursor.New(jcursor.NewBytesSource([]byte(scenarioDoc), 3))
	defer c.Close()

	var toks []jcursor.Token
	for c.Next(context.Background()) {
		toks = append(toks, c.Token())
	}
	if err := c.Err(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	var buf bytes.Buffer
	for _, tok := range toks {
		buf.Write(tok.Text())
	}
	const want = `{"a"1"b"[123]"c"{"x"1}}`
	if got := buf.String(); got != want {
		t.Errorf("Concatenated tokens: got %#q, want %#q", got, want)
	}
}

type brokenReader struct{ err error }

func (r brokenReader) Read([]byte) (int, error) { return 0, r.err }

// Errors from the chunk source surface verbatim, not rewrapped.
func TestUpstreamErrors(t *testing.T) {
	sentinel := errors.New("pipe burst")
	r := io.MultiReader(strings.NewReader(`{"a": `), brokenReader{err: sentinel})

	c := jcursor.NewReader(r)
	defer c.Close()
	for c.Next(context.Background()) {
	}
	if err := c.Err(); !errors.Is(err, sentinel) {
		t.Errorf("Err: got %v, want %v", err, sentinel)
	}
	var serr *jcursor.StructError
	if errors.As(c.Err(), &serr) {
		t.Errorf("Err: upstream error was rewrapped as %v", serr)
	}
}

// Closing a cursor after a failed refill must not re-acknowledge bytes the
// source already released before the failing request.
func TestCloseAfterFailedRefill(t *testing.T) {
	t.Run("Upstream", func(t *testing.T) {
		sentinel := errors.New("short circuit")
		r := io.MultiReader(strings.NewReader(`{"a": `), brokenReader{err: sentinel})
		c := jcursor.NewReader(r)
		for c.Next(context.Background()) {
		}
		if err := c.Err(); !errors.Is(err, sentinel) {
			t.Fatalf("Err: got %v, want %v", err, sentinel)
		}
		if err := c.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		src := &cancelSource{
			ChunkSource: jcursor.NewBytesSource([]byte(`[1, 2, 3, 4]`), 2),
			remaining:   3,
			cancel:      cancel,
		}
		c := jcursor.New(src)
		for c.Next(ctx) {
		}
		if err := c.Err(); !errors.Is(err, context.Canceled) {
			t.Fatalf("Err: got %v, want context.Canceled", err)
		}
		if err := c.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
}

// BytesConsumed stays accurate at the moment of a structural error.
func TestErrorPosition(t *testing.T) {
	const input = `{"a": 1, "b": !}`

	c := jcursor.NewBytes([]byte(input))
	defer c.Close()
	for c.Next(context.Background()) {
	}
	var serr *jcursor.StructError
	if err := c.Err(); !errors.As(err, &serr) {
		t.Fatalf("Err: got %v, want StructError", err)
	}
	if want := int64(strings.IndexByte(input, '!')); serr.Offset != want {
		t.Errorf("Offset: got %d, want %d", serr.Offset, want)
	}
}

// With comments enabled, the value tokens must agree with those of the same
// document standardized by hujson.
func TestCommentsMatchStandardized(t *testing.T) {
	const input = `{
  // leading comment
  "a": 1, /* inline */ "b": [2, 3],
  "c": {"x": true} // trailing
}`
	std, err := hujson.Standardize([]byte(input))
	if err != nil {
		t.Fatalf("Standardize failed: %v", err)
	}

	c := jcursor.NewBytes([]byte(input))
	c.AllowComments(true)
	var got []string
	for c.Next(context.Background()) {
		if c.Kind() == jcursor.Comment {
			continue
		}
		got = append(got, fmt.Sprintf("%v %s", c.Kind(), c.Token().Text()))
	}
	if err := c.Err(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	c.Close()

	sc := jcursor.NewBytes(std)
	var want []string
	for sc.Next(context.Background()) {
		want = append(want, fmt.Sprintf("%v %s", sc.Kind(), sc.Token().Text()))
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("Next (standardized) failed: %v", err)
	}
	sc.Close()

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tokens: (-standardized, +comments)\n%s", diff)
	}
}
