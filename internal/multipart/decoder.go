package multipart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	DefaultAudioMIMEType = "audio/mpeg"
	DefaultFilename      = "tts_output.mp3"
)

// Part is one segment of a multipart body, with lower-cased header names.
type Part struct {
	Header map[string]string
	Body   []byte
}

// ContentType returns the lower-cased Content-Type of the part.
func (p Part) ContentType() string {
	return strings.ToLower(p.Header["content-type"])
}

// Blob is a binary payload with its declared MIME type.
type Blob struct {
	Data     []byte
	MIMEType string
}

// Result is the merged outcome of decoding a synthesis response.
type Result struct {
	JSON     any             // JSON part, passed through as decoded by encoding/json
	RawJSON  json.RawMessage // JSON part bytes, for typed decoding without float64 rounding
	Audio    Blob            // audio/mpeg part
	Filename string          // From Content-Disposition, or [DefaultFilename]
}

// Unmarshal decodes the original bytes of the JSON part into v.
func (r *Result) Unmarshal(v any) error {
	if err := json.Unmarshal(r.RawJSON, v); err != nil {
		return fmt.Errorf("failed to decode json part: %w", err)
	}
	return nil
}

// DecodeResponse decodes a body using the boundary declared in its Content-Type header value.
func DecodeResponse(contentType string, body []byte) (*Result, error) {
	return Decode(body, BoundaryFromContentType(contentType))
}

// Decode splits body on boundary (given without its leading dashes) and classifies the parts.
func Decode(body []byte, boundary string) (*Result, error) {
	if boundary == "" {
		return nil, ErrNoBoundary
	}
	return Classify(Scan(body, []byte("--"+boundary)))
}

// Scan walks body from delimiter to delimiter and returns the well-formed parts in order.
//
// The walk ends at the closing delimiter, or when no further delimiter can be found. A part without a
// header/body separator is skipped and the walk resumes at the delimiter that ended it.
func Scan(body, delim []byte) []Part {
	var parts []Part

	cursor := 0
	for {
		at := Index(body, delim, cursor)
		if at < 0 {
			break
		}

		start := at + len(delim)
		if bytes.HasPrefix(body[start:], dashes) {
			break
		}
		start = skipLineBreak(body, start)

		end := Index(body, delim, start)
		if end < 0 {
			break
		}

		if header, content, ok := SplitPart(TrimLineBreak(body[start:end])); ok {
			parts = append(parts, Part{Header: ParseHeaders(header), Body: content})
		}
		cursor = end
	}

	return parts
}

// Classify picks the JSON part and the audio part out of parts.
//
// Parts of any other type are ignored. Returns [ErrParseFailed] unless both were found.
func Classify(parts []Part) (*Result, error) {
	var (
		data     any
		raw      json.RawMessage
		hasJSON  bool
		audio    []byte
		hasAudio bool
		mimeType = DefaultAudioMIMEType
		filename = DefaultFilename
	)

	for _, p := range parts {
		ct := p.ContentType()
		switch {
		case strings.Contains(ct, "application/json"):
			var v any
			if err := json.Unmarshal(p.Body, &v); err != nil {
				return nil, fmt.Errorf("failed to decode json part: %w", err)
			}
			data, raw, hasJSON = v, bytes.Clone(p.Body), true
		case strings.Contains(ct, "audio/mpeg"):
			audio, hasAudio = bytes.Clone(p.Body), true

			mimeType = DefaultAudioMIMEType
			if declared, _, _ := strings.Cut(ct, ";"); strings.TrimSpace(declared) != "" {
				mimeType = strings.TrimSpace(declared)
			}

			filename = DefaultFilename
			if name := FilenameFromDisposition(p.Header["content-disposition"]); name != "" {
				filename = name
			}
		}
	}

	if !hasJSON || !hasAudio {
		return nil, ErrParseFailed
	}

	return &Result{
		JSON:     data,
		RawJSON:  raw,
		Audio:    Blob{Data: audio, MIMEType: mimeType},
		Filename: filename,
	}, nil
}
