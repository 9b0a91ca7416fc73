package multipart

import (
	"regexp"
	"strings"
)

var (
	boundaryPattern       = regexp.MustCompile(`(?i)(?:^|[;\s])boundary=(?:"([^"]*)"|([^;]*))`)
	quotedFilenamePattern = regexp.MustCompile(`(?i)filename="([^"]*)"`)
	bareFilenamePattern   = regexp.MustCompile(`(?i)filename=([^;]*)`)
)

// SplitPart separates a part into its header block and body.
//
// CRLFCRLF is tried before LFLF. ok is false when the part has neither separator.
func SplitPart(b []byte) (header, body []byte, ok bool) {
	if i := Index(b, crlfcrlf, 0); i >= 0 {
		return b[:i], b[i+len(crlfcrlf):], true
	}
	if i := Index(b, lflf, 0); i >= 0 {
		return b[:i], b[i+len(lflf):], true
	}
	return nil, nil, false
}

// ParseHeaders maps lower-cased header names to trimmed values.
//
// Lines without a colon are ignored and a repeated name keeps its last value.
func ParseHeaders(block []byte) map[string]string {
	headers := make(map[string]string)
	for _, line := range strings.Split(string(block), "\n") {
		line = strings.TrimSuffix(line, "\r")
		name, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		headers[strings.ToLower(strings.TrimSpace(name))] = strings.TrimSpace(value)
	}
	return headers
}

// FilenameFromDisposition extracts the filename parameter of a Content-Disposition value.
//
// The quoted form is returned verbatim. The bare form runs to the next semicolon and has stray quotes
// stripped. An empty string means no filename was declared.
func FilenameFromDisposition(v string) string {
	if m := quotedFilenamePattern.FindStringSubmatch(v); m != nil {
		return m[1]
	}
	if m := bareFilenamePattern.FindStringSubmatch(v); m != nil {
		return strings.Trim(strings.TrimSpace(m[1]), `"'`)
	}
	return ""
}

// BoundaryFromContentType returns the boundary parameter of a Content-Type value, or "" when absent.
// The parameter name must start the value or follow a semicolon or whitespace.
func BoundaryFromContentType(ct string) string {
	m := boundaryPattern.FindStringSubmatchIndex(ct)
	if m == nil {
		return ""
	}
	if m[2] >= 0 {
		return strings.TrimSpace(ct[m[2]:m[3]])
	}
	return strings.TrimSpace(ct[m[4]:m[5]])
}
