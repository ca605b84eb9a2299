// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jcursor

// A Kind is the type of a structural token in a JSON document.
type Kind byte

// Constants defining the valid Kind values. Punctuation between tokens
// (commas and colons) is consumed by the tokenizer and never surfaces.
const (
	None        Kind = iota // no token available
	ObjectStart             // object start "{"
	ObjectEnd               // object end "}"
	ArrayStart              // array start "["
	ArrayEnd                // array end "]"
	Name                    // object property name
	String                  // string value
	Number                  // number value
	True                    // constant: true
	False                   // constant: false
	Null                    // constant: null

	Comment // comment (only reported when comments are enabled)
)

var kindStr = [...]string{
	None:        "none",
	ObjectStart: `"{"`,
	ObjectEnd:   `"}"`,
	ArrayStart:  `"["`,
	ArrayEnd:    `"]"`,
	Name:        "name",
	String:      "string",
	Number:      "number",
	True:        "true",
	False:       "false",
	Null:        "null",

	Comment: "comment",
}

func (k Kind) String() string {
	v := int(k)
	if v >= len(kindStr) {
		return kindStr[None]
	}
	return kindStr[v]
}

// IsValue reports whether k begins a value, either a composite (ObjectStart,
// ArrayStart) or a scalar.
func (k Kind) IsValue() bool {
	switch k {
	case ObjectStart, ArrayStart, String, Number, True, False, Null:
		return true
	}
	return false
}

// A Token is a single structural element of the input document. Its raw
// bytes are a private snapshot, decoupled from the window they were scanned
// from, and remain valid as the cursor advances.
type Token struct {
	Kind Kind
	Span Span

	raw []byte
}

// Text returns the raw (undecoded) text of the token. String and Name
// tokens include their surrounding quotation marks.
func (t Token) Text() []byte { return t.raw }

// Value returns a view that interprets the token's raw bytes as scalar
// types.
func (t Token) Value() Value { return Value{kind: t.Kind, text: t.raw} }

// A snapshot is a block arena for token byte copies. Tokens are typically
// small, so their snapshots are batched into shared blocks to reduce the
// per-token allocation cost. Values too big to batch are copied outright.
type snapshot struct {
	blocks [][]byte
}

const (
	snapBlockBytes = 16384
	snapMaxBatch   = snapBlockBytes / 16
	snapMinSlop    = 4
)

func (s *snapshot) copyOf(text []byte) []byte {
	if len(text) >= snapMaxBatch {
		return append([]byte(nil), text...)
	}

	// Look for a block with space enough to hold a copy of text.
	i := 0
	for i < len(s.blocks) {
		b := s.blocks[i]
		if len(b)+len(text) < cap(b) {
			break // there is room in this block
		} else if cap(b)-len(b) < snapMinSlop {
			// This block is nearly full; replace it. The old block stays
			// reachable until the tokens pointing into it are released.
			s.blocks[i] = make([]byte, 0, snapBlockBytes)
			break
		}
		i++
	}
	if i == len(s.blocks) {
		// No block had room; add a fresh one to the arena.
		s.blocks = append(s.blocks, make([]byte, 0, snapBlockBytes))
	}
	p := len(s.blocks[i])
	s.blocks[i] = append(s.blocks[i], text...)
	return s.blocks[i][p : p+len(text)]
}
