// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jcursor_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/chunkio/jcursor"
	"github.com/google/go-cmp/cmp"
)

func TestWalk(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "."},
		{"   ", "."},

		{"true false null", `
Value true <true>
Value false <false>
Value null <null>
.`},

		{`0 5 -6.32 0.1e-2`, `
Value number <0>
Value number <5>
Value number <-6.32>
Value number <0.1e-2>
.`},

		{`"" "a b c" "a\tb"`, `
Value string <"">
Value string <"a b c">
Value string <"a\tb">
.`},

		{`{}`, "BeginObject\nEndObject\n."},

		{`{"a":15}`, `
BeginObject
Member <"a">
Value number <15>
EndObject
.`},

		{`{"x":null, "y":[true]}`, `
BeginObject
Member <"x">
Value null <null>
Member <"y">
BeginArray
Value true <true>
EndArray
EndObject
.`},

		{`[]`, "BeginArray\nEndArray\n."},
	}

	for _, test := range tests {
		c := jcursor.NewReader(strings.NewReader(test.input))
		th := new(testHandler)
		if err := jcursor.Walk(context.Background(), c, th); err != nil {
			t.Errorf("Walk failed: %v", err)
		}
		c.Close()

		if diff := diffStrings(test.want, th.output()); diff != "" {
			t.Errorf("Input: %#q\nOutput: (-want, +got)\n%s", test.input, diff)
		}
	}
}

func TestWalkErrors(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		// Unbalanced object bits.
		{`{`, `BeginObject`},
		{`}`, ``},
		{`{false:1}`, `BeginObject`},
		{`{"true":}`, `
BeginObject
Member <"true">`},
		{`{"true":1,`, `
BeginObject
Member <"true">
Value number <1>`},

		// Unbalanced array bits.
		{`[`, `BeginArray`},
		{`]`, ``},
		{`[15,`, `
BeginArray
Value number <15>`},
		{`[15,]`, `
BeginArray
Value number <15>`},

		// Invalid values.
		{`1 2.0 forthright`, `
Value number <1>
Value number <2.0>`},
		{`"what did you`, ``},
	}

	for _, test := range tests {
		c := jcursor.NewReader(strings.NewReader(test.input))
		th := new(testHandler)
		err := jcursor.Walk(context.Background(), c, th)
		c.Close()
		if err == nil {
			t.Errorf("Input: %#q: Walk did not report an error", test.input)
			continue
		}
		var serr *jcursor.StructError
		if !errors.As(err, &serr) {
			t.Errorf("Input: %#q: got error %v, want *StructError", test.input, err)
		}

		if diff := diffStrings(test.want, th.output()); diff != "" {
			t.Errorf("Input: %#q\nOutput: (-want, +got)\n%s", test.input, diff)
		}
	}
}

func TestWalkHandlerError(t *testing.T) {
	// A handler error stops the walk and is returned verbatim.
	errStop := errors.New("stop here")
	c := jcursor.NewBytes([]byte(`[1, 2, 3]`))
	defer c.Close()

	th := &testHandler{failValue: errStop}
	if err := jcursor.Walk(context.Background(), c, th); err != errStop {
		t.Errorf("Walk: got error %v, want %v", err, errStop)
	}
	const want = "BeginArray"
	if diff := diffStrings(want, th.output()); diff != "" {
		t.Errorf("Output: (-want, +got)\n%s", diff)
	}
}

func TestWalkComments(t *testing.T) {
	const input = `[1, // one
2] /* done */`
	const want = `
BeginArray
Value number <1>
Comment <// one
>
Value number <2>
EndArray
Comment </* done */>
.`
	c := jcursor.NewBytes([]byte(input))
	c.AllowComments(true)
	defer c.Close()

	th := new(commentHandler)
	if err := jcursor.Walk(context.Background(), c, th); err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if diff := diffStrings(want, th.output()); diff != "" {
		t.Errorf("Output: (-want, +got)\n%s", diff)
	}

	// A handler without the optional interface sees no comments.
	c2 := jcursor.NewBytes([]byte(input))
	c2.AllowComments(true)
	defer c2.Close()
	th2 := new(testHandler)
	if err := jcursor.Walk(context.Background(), c2, th2); err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	const want2 = `
BeginArray
Value number <1>
Value number <2>
EndArray
.`
	if diff := diffStrings(want2, th2.output()); diff != "" {
		t.Errorf("Output: (-want, +got)\n%s", diff)
	}
}

func diffStrings(want, got string) string {
	return cmp.Diff(strings.Split(strings.TrimSpace(want), "\n"),
		strings.Split(strings.TrimSpace(got), "\n"))
}

type testHandler struct {
	buf       bytes.Buffer
	failValue error // if set, Value reports this error
}

func (t *testHandler) pr(msg string, args ...any) {
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprintf(&t.buf, msg, args...)
}

func (t *testHandler) output() string { return t.buf.String() }

func (t *testHandler) BeginObject(jcursor.Token) error { t.pr("BeginObject"); return nil }
func (t *testHandler) EndObject(jcursor.Token) error   { t.pr("EndObject"); return nil }
func (t *testHandler) BeginArray(jcursor.Token) error  { t.pr("BeginArray"); return nil }
func (t *testHandler) EndArray(jcursor.Token) error    { t.pr("EndArray"); return nil }
func (t *testHandler) EndOfInput(int64)                { t.pr(".") }

func (t *testHandler) Member(tok jcursor.Token) error {
	t.pr("Member <%s>", tok.Text())
	return nil
}

func (t *testHandler) Value(tok jcursor.Token) error {
	if t.failValue != nil {
		return t.failValue
	}
	t.pr("Value %s <%s>", tok.Kind, tok.Text())
	return nil
}

// commentHandler additionally implements the optional CommentHandler hook.
type commentHandler struct {
	testHandler
}

func (c *commentHandler) Comment(tok jcursor.Token) {
	c.pr("Comment <%s>", tok.Text())
}
