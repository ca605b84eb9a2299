// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jcursor

import (
	"fmt"

	"go4.org/mem"
)

// A Tokenizer converts a window of document bytes into tokens. It is pure
// per call: all state that must survive across windows travels through a
// Carry value, so a Tokenizer may be shared freely between cursors.
type Tokenizer struct {
	// Comments, if true, recognizes C++ style block comments (/* ... */) and
	// line comments (// ...) and reports them as Comment tokens. Comments
	// are a non-standard extension of the JSON spec.
	Comments bool
}

// phase encodes what the grammar permits at the current position.
type phase byte

const (
	atValue     phase = iota // top level: a value
	atElemFirst              // just after "[": a value or "]"
	atElem                   // after "," in an array: a value
	atNameFirst              // just after "{": a name or "}"
	atName                   // after "," in an object: a name
	atColon                  // after a name: ":"
	atMember                 // after ":": a value
	atSep                    // after a value in a container: "," or the closing delimiter
)

// A Carry records the tokenizer state that survives across window
// boundaries. The zero Carry is the state at the start of a document.
//
// A Carry is a value: Tokenizer.Next returns an updated copy and never
// writes to storage reachable from its argument, so stale copies stay
// coherent and no state is shared between concurrent tokenizations.
type Carry struct {
	bits  []uint64 // container kinds by depth; 1 = object
	depth int
	phase phase
}

// Depth reports the number of unclosed objects and arrays.
func (c Carry) Depth() int { return c.depth }

// atTop reports whether c is at the top level between values, the only state
// in which the document may legally end.
func (c Carry) atTop() bool { return c.depth == 0 && c.phase == atValue }

func (c Carry) inObject() bool {
	if c.depth == 0 {
		return false
	}
	i := c.depth - 1
	return c.bits[i/64]&(1<<(i%64)) != 0
}

func (c Carry) push(isObject bool) Carry {
	i := c.depth
	bits := make([]uint64, i/64+1) // fresh storage; sibling copies are unaffected
	copy(bits, c.bits)
	if isObject {
		bits[i/64] |= 1 << (i % 64)
	} else {
		bits[i/64] &^= 1 << (i % 64)
	}
	c.bits, c.depth = bits, i+1
	return c
}

func (c Carry) pop() Carry {
	c.depth--
	if c.depth == 0 {
		c.phase = atValue
	} else {
		c.phase = atSep
	}
	return c
}

func (c Carry) afterValue() Carry {
	if c.depth > 0 {
		c.phase = atSep
	}
	return c
}

// A Result reports the outcome of a single Tokenizer.Next call.
//
// Consumed counts the bytes of the window that were processed, including
// any whitespace and punctuation preceding the token; it may be positive
// even when Advanced is false. Value aliases the window and is only valid
// while the window remains resident.
type Result struct {
	Advanced bool   // whether a token was produced
	Consumed int    // bytes of window consumed
	Kind     Kind   // the kind of the token produced
	Value    []byte // the raw text of the token, a span into window
}

var (
	litTrue  = mem.S("true")
	litFalse = mem.S("false")
	litNull  = mem.S("null")
)

// Next scans the next token from window, whose first byte continues wherever
// the previous call left off. The final flag marks the last window of the
// document: without it, a token that may extend past the end of the window
// reports Advanced=false so the caller can retry with more bytes resident;
// with it, an incomplete token is a *StructError.
//
// Offsets in errors are relative to the start of window; the caller rebases
// them into stream offsets.
func (t Tokenizer) Next(window []byte, carry Carry, final bool) (Result, Carry, error) {
	pos := 0
	for {
		for pos < len(window) && isSpace(window[pos]) {
			pos++
		}
		if pos == len(window) {
			return Result{Consumed: pos}, carry, nil
		}
		ch := window[pos]

		// Comments may occur anywhere whitespace may.
		if ch == '/' {
			if !t.Comments {
				return Result{}, carry, structErrf(pos, "unexpected %q", ch)
			}
			end, ok, err := scanComment(window, pos, final)
			if err != nil {
				return Result{}, carry, err
			} else if !ok {
				return Result{Consumed: pos}, carry, nil
			}
			return Result{Advanced: true, Consumed: end, Kind: Comment, Value: window[pos:end]}, carry, nil
		}

		switch carry.phase {
		case atColon:
			if ch != ':' {
				return Result{}, carry, structErrf(pos, `got %q, want ":"`, ch)
			}
			pos++
			carry.phase = atMember

		case atSep:
			switch {
			case ch == ',':
				pos++
				if carry.inObject() {
					carry.phase = atName
				} else {
					carry.phase = atElem
				}
			case ch == '}' && carry.inObject():
				carry = carry.pop()
				pos++
				return Result{Advanced: true, Consumed: pos, Kind: ObjectEnd, Value: window[pos-1 : pos]}, carry, nil
			case ch == ']' && !carry.inObject():
				carry = carry.pop()
				pos++
				return Result{Advanced: true, Consumed: pos, Kind: ArrayEnd, Value: window[pos-1 : pos]}, carry, nil
			default:
				return Result{}, carry, structErrf(pos, "unexpected %q", ch)
			}

		case atName, atNameFirst:
			if ch == '}' && carry.phase == atNameFirst {
				carry = carry.pop()
				pos++
				return Result{Advanced: true, Consumed: pos, Kind: ObjectEnd, Value: window[pos-1 : pos]}, carry, nil
			}
			if ch != '"' {
				return Result{}, carry, structErrf(pos, "got %q, want property name", ch)
			}
			end, ok, err := scanString(window, pos, final)
			if err != nil {
				return Result{}, carry, err
			} else if !ok {
				return Result{Consumed: pos}, carry, nil
			}
			carry.phase = atColon
			return Result{Advanced: true, Consumed: end, Kind: Name, Value: window[pos:end]}, carry, nil

		default: // atValue, atElemFirst, atElem, atMember: a value is expected
			if ch == ']' && carry.phase == atElemFirst {
				carry = carry.pop()
				pos++
				return Result{Advanced: true, Consumed: pos, Kind: ArrayEnd, Value: window[pos-1 : pos]}, carry, nil
			}

			var kind Kind
			var end int
			var ok bool
			var err error
			switch {
			case ch == '{':
				carry = carry.push(true)
				carry.phase = atNameFirst
				pos++
				return Result{Advanced: true, Consumed: pos, Kind: ObjectStart, Value: window[pos-1 : pos]}, carry, nil
			case ch == '[':
				carry = carry.push(false)
				carry.phase = atElemFirst
				pos++
				return Result{Advanced: true, Consumed: pos, Kind: ArrayStart, Value: window[pos-1 : pos]}, carry, nil
			case ch == '"':
				kind = String
				end, ok, err = scanString(window, pos, final)
			case isNumStart(ch):
				kind = Number
				end, ok, err = scanNumber(window, pos, final)
			case ch == 't':
				kind = True
				end, ok, err = scanLiteral(window, pos, final, litTrue)
			case ch == 'f':
				kind = False
				end, ok, err = scanLiteral(window, pos, final, litFalse)
			case ch == 'n':
				kind = Null
				end, ok, err = scanLiteral(window, pos, final, litNull)
			default:
				return Result{}, carry, structErrf(pos, "unexpected %q", ch)
			}
			if err != nil {
				return Result{}, carry, err
			} else if !ok {
				return Result{Consumed: pos}, carry, nil
			}
			carry = carry.afterValue()
			return Result{Advanced: true, Consumed: end, Kind: kind, Value: window[pos:end]}, carry, nil
		}
	}
}

// scanString locates the end of the string token opening at window[pos].
// It reports ok=false if the string may extend past the end of the window.
func scanString(window []byte, pos int, final bool) (end int, ok bool, _ error) {
	i := pos + 1
	for i < len(window) {
		switch ch := window[i]; {
		case ch == '"':
			return i + 1, true, nil
		case ch == '\\':
			n, err := checkEscape(window[i+1:], i+1, final)
			if err != nil {
				return 0, false, err
			} else if n < 0 {
				return 0, false, nil // need more bytes
			}
			i += 1 + n
		case ch < ' ':
			return 0, false, structErrf(i, "unescaped control %q", ch)
		default:
			i++
		}
	}
	if final {
		return 0, false, structErrf(pos, "unterminated string")
	}
	return 0, false, nil
}

// checkEscape validates the escape sequence beginning just past a backslash
// and returns its length in bytes. A negative length means the sequence may
// be completed by bytes beyond the window.
func checkEscape(rest []byte, off int, final bool) (int, error) {
	if len(rest) == 0 {
		if final {
			return 0, structErrf(off, "incomplete escape sequence")
		}
		return -1, nil
	}
	switch rest[0] {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		return 1, nil
	case 'u':
		if len(rest) < 5 {
			if final {
				return 0, structErrf(off, "incomplete Unicode escape")
			}
			return -1, nil
		}
		for _, b := range rest[1:5] {
			if !isHexDigit(b) {
				return 0, structErrf(off, "invalid Unicode escape")
			}
		}
		return 5, nil
	default:
		return 0, structErrf(off, "invalid %q after escape", rest[0])
	}
}

// scanNumber locates the end of the number token starting at window[pos].
// A number that runs to the end of a non-final window reports ok=false, since
// further digits may follow in the next window.
func scanNumber(window []byte, pos int, final bool) (end int, ok bool, _ error) {
	i := pos
	if window[i] == '-' {
		i++
	}

	ds := i
	for i < len(window) && isDigit(window[i]) {
		i++
	}
	if i == ds {
		if i == len(window) && !final {
			return 0, false, nil
		}
		return 0, false, structErrf(i, "want digit in number")
	}
	// Extra leading zeroes are disallowed by the JSON grammar: 0.12 is OK,
	// 01.2 is not.
	if window[ds] == '0' && i > ds+1 {
		return 0, false, structErrf(pos, "extra leading zeroes")
	}

	// If a decimal point follows, consume a fractional part.
	if i < len(window) && window[i] == '.' {
		i++
		fs := i
		for i < len(window) && isDigit(window[i]) {
			i++
		}
		if i == fs {
			if i == len(window) && !final {
				return 0, false, nil
			}
			return 0, false, structErrf(i, "no digits after decimal point")
		}
	}

	// If an exponent follows, consume it.
	if i < len(window) && (window[i] == 'e' || window[i] == 'E') {
		i++
		if i < len(window) && (window[i] == '+' || window[i] == '-') {
			i++
		}
		es := i
		for i < len(window) && isDigit(window[i]) {
			i++
		}
		if i == es {
			if i == len(window) && !final {
				return 0, false, nil
			}
			return 0, false, structErrf(i, "missing exponent digits")
		}
	}

	if i == len(window) && !final {
		return 0, false, nil // the number may continue in the next window
	}
	return i, true, nil
}

// scanLiteral matches one of the constants true, false, or null.
func scanLiteral(window []byte, pos int, final bool, want mem.RO) (end int, ok bool, _ error) {
	i := pos
	for i < len(window) && isNameByte(window[i]) {
		i++
	}
	if i == len(window) && !final && i-pos <= litFalse.Len() {
		return 0, false, nil
	}
	if got := mem.B(window[pos:i]); !got.Equal(want) {
		return 0, false, structErrf(pos, "unknown constant %q", got.StringCopy())
	}
	return i, true, nil
}

// scanComment locates the end of the comment opening at window[pos].
func scanComment(window []byte, pos int, final bool) (end int, ok bool, _ error) {
	if pos+1 >= len(window) {
		if final {
			return 0, false, structErrf(pos, "unterminated comment")
		}
		return 0, false, nil
	}
	switch window[pos+1] {
	case '/': // line comment to LF, keeping the newline if present
		for i := pos + 2; i < len(window); i++ {
			if window[i] == '\n' {
				return i + 1, true, nil
			}
		}
		if final {
			return len(window), true, nil
		}
		return 0, false, nil

	case '*': // block comment
		for i := pos + 2; i+1 < len(window); i++ {
			if window[i] == '*' && window[i+1] == '/' {
				return i + 2, true, nil
			}
		}
		if final {
			return 0, false, structErrf(pos, "unterminated block comment")
		}
		return 0, false, nil

	default:
		return 0, false, structErrf(pos+1, "invalid %q in comment", window[pos+1])
	}
}

// A StructError reports a structural defect in the input: malformed JSON, a
// token split across the final window with no more data forthcoming, a
// window too small to hold one complete token, or a close delimiter that
// would unbalance a capture. It is fatal to the cursor that reports it.
type StructError struct {
	Offset  int64 // the stream offset at which the defect was detected
	Message string

	err error
}

// Error satisfies the error interface.
func (e *StructError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Message)
}

// Unwrap supports error wrapping.
func (e *StructError) Unwrap() error { return e.err }

func structErrf(off int, msg string, args ...any) *StructError {
	return &StructError{Offset: int64(off), Message: fmt.Sprintf(msg, args...)}
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\r' || ch == '\n' || ch == '\t'
}

func isNumStart(ch byte) bool { return ch == '-' || isDigit(ch) }
func isDigit(ch byte) bool    { return '0' <= ch && ch <= '9' }
func isNameByte(ch byte) bool { return ch >= 'a' && ch <= 'z' }

func isHexDigit(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
