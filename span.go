// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jcursor

import "fmt"

// A Span describes a contiguous range of bytes in the input stream. Offsets
// are cumulative from the start of the document, regardless of how the
// document was split into windows.
type Span struct {
	Pos int64 // the start offset, 0-based
	End int64 // the end offset, 0-based (noninclusive)
}

func (s Span) String() string { return fmt.Sprintf("%d..%d", s.Pos, s.End) }
