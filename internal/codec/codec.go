// Package codec implements the Padding & Metadata Codec (spec §4.A): the
// fixed-width ASCII file and section headers, and the padding scheme that
// keeps every block a multiple of ByteDiv bytes.
package codec

import (
	"fmt"
)

// ByteDiv is the block alignment every data block is padded to.
const ByteDiv = 16

// MaxPadBytes is the largest padding length PadLen can return.
const MaxPadBytes = ByteDiv + 1

// PadLen returns the smallest p >= 0 such that (n+p) is a multiple of
// ByteDiv, bumped up by ByteDiv whenever the natural result is 0 or 1 (so
// the padding can always hold a leading and trailing '\n'). The result is
// always in [2, ByteDiv+1].
func PadLen(n int) int {
	if n < 0 {
		panic("codec: negative length")
	}
	p := (ByteDiv - (n % ByteDiv)) % ByteDiv
	if p == 0 || p == 1 {
		p += ByteDiv
	}
	return p
}

// PadBytes renders p bytes of padding: '\n', then p-2 spaces, then '\n'.
// p must be a value PadLen could have returned (>= 2).
func PadBytes(p int) []byte {
	if p < 2 {
		panic(fmt.Sprintf("codec: padding length %d too small", p))
	}
	buf := make([]byte, p)
	buf[0] = '\n'
	for i := 1; i < p-1; i++ {
		buf[i] = ' '
	}
	buf[p-1] = '\n'
	return buf
}

// ValidPadding reports whether buf is a syntactically valid padding block:
// at least two bytes long, starting and ending with '\n'.
func ValidPadding(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == '\n' && buf[len(buf)-1] == '\n'
}
