// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package escape

import (
	"unicode/utf8"

	"go4.org/mem"
)

var hexDigit = []byte("0123456789abcdef")

// ctlName maps control bytes with a short escape to their escape letter.
var ctlName = [32]byte{'\b': 'b', '\f': 'f', '\n': 'n', '\r': 'r', '\t': 't'}

// Quote escapes the contents of src for inclusion in a JSON string. The
// enclosing quotation marks are not added.
func Quote(src mem.RO) []byte {
	out := make([]byte, 0, src.Len())
	for src.Len() != 0 {
		r, n := mem.DecodeRune(src)
		src = src.SliceFrom(n)

		switch {
		case r < ' ':
			if b := ctlName[r]; b != 0 {
				out = append(out, '\\', b)
			} else {
				out = append(out, '\\', 'u', '0', '0', hexDigit[r>>4], hexDigit[r&15])
			}
		case r == '"' || r == '\\':
			out = append(out, '\\', byte(r))
		case r == '\u2028' || r == '\u2029' || r == utf8.RuneError:
			// Line and paragraph separators break JavaScript parsers, and a
			// replacement rune is kept visible as its escape.
			out = append(out, '\\', 'u')
			for sh := 12; sh >= 0; sh -= 4 {
				out = append(out, hexDigit[(r>>sh)&15])
			}
		default:
			out = utf8.AppendRune(out, r)
		}
	}
	return out
}
