package multipart

import "bytes"

var (
	crlf     = []byte("\r\n")
	crlfcrlf = []byte("\r\n\r\n")
	lflf     = []byte("\n\n")
	dashes   = []byte("--")
)

// Index returns the lowest index >= from at which needle occurs in haystack, or -1.
//
// An empty needle, an out of range offset, or a needle longer than the remaining haystack all return -1.
func Index(haystack, needle []byte, from int) int {
	if len(needle) == 0 || from < 0 || from > len(haystack) || len(needle) > len(haystack)-from {
		return -1
	}

	i := bytes.Index(haystack[from:], needle)
	if i < 0 {
		return -1
	}
	return from + i
}

// TrimLineBreak removes at most one trailing line terminator, preferring CRLF over a lone CR or LF.
func TrimLineBreak(b []byte) []byte {
	if bytes.HasSuffix(b, crlf) {
		return b[:len(b)-2]
	}
	if n := len(b); n > 0 && (b[n-1] == '\r' || b[n-1] == '\n') {
		return b[:n-1]
	}
	return b
}

// skipLineBreak returns the offset just past a CRLF or LF at pos, or pos itself when neither is there.
func skipLineBreak(b []byte, pos int) int {
	rest := b[pos:]
	switch {
	case bytes.HasPrefix(rest, crlf):
		return pos + 2
	case len(rest) > 0 && rest[0] == '\n':
		return pos + 1
	default:
		return pos
	}
}
