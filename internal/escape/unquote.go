// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Package escape handles quoting and unquoting of JSON string contents.
package escape

import (
	"errors"
	"unicode/utf8"

	"go4.org/mem"
)

// Unquote decodes a byte slice containing the JSON encoding of a string,
// with the enclosing double quotation marks already removed.
//
// Escape sequences are replaced with their unescaped equivalents. Invalid
// escapes are replaced by the Unicode replacement rune. Unquote reports an
// error for an incomplete escape sequence.
func Unquote(src mem.RO) ([]byte, error) {
	out := make([]byte, 0, src.Len())
	for {
		// Everything up to the next escape can be copied verbatim.
		i := mem.IndexByte(src, '\\')
		if i < 0 {
			return mem.Append(out, src), nil
		}
		out = mem.Append(out, src.SliceTo(i))
		src = src.SliceFrom(i + 1)
		if src.Len() == 0 {
			return nil, errors.New("incomplete escape sequence")
		}

		// Decode the rune after the backslash to pick the substitution.
		// Decoding errors insert replacement runes rather than failing.
		r, n := mem.DecodeRune(src)
		if n == 0 {
			n++
		}
		src = src.SliceFrom(n)

		switch r {
		case '"', '\\', '/':
			out = append(out, byte(r))
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'u':
			if src.Len() < 4 {
				return nil, errors.New("incomplete Unicode escape")
			}
			if v, ok := hex4(src.SliceTo(4)); ok {
				out = utf8.AppendRune(out, rune(v))
			} else {
				out = utf8.AppendRune(out, utf8.RuneError)
			}
			src = src.SliceFrom(4)
		default:
			out = utf8.AppendRune(out, utf8.RuneError)
		}
	}
}

func hex4(data mem.RO) (v int, ok bool) {
	for i := 0; i < data.Len(); i++ {
		b := data.At(i)
		v <<= 4
		switch {
		case b >= '0' && b <= '9':
			v += int(b - '0')
		case b >= 'a' && b <= 'f':
			v += int(b-'a') + 10
		case b >= 'A' && b <= 'F':
			v += int(b-'A') + 10
		default:
			return 0, false
		}
	}
	return v, true
}
