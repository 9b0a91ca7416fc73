package audio

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/desertthunder/prepx/internal/shared"
	gomp3 "github.com/hajimehoshi/go-mp3"
)

const (
	MIMETypeMPEG    = "audio/mpeg"
	DefaultFilename = "tts_output.mp3"

	// go-mp3 always decodes to 16-bit stereo.
	bytesPerFrame = 4
	channels      = 2
)

var (
	ErrUnsupportedFormat = fmt.Errorf("unsupported audio format")
	ErrInvalidAudio      = fmt.Errorf("invalid audio data")
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Info describes a decoded MP3 clip.
type Info struct {
	SampleRate int
	Channels   int
	Duration   time.Duration
	Size       int
}

// Probe decodes the MP3 frames in data and reports the clip's sample rate and duration.
func Probe(data []byte) (*Info, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty clip", ErrInvalidAudio)
	}

	dec, err := gomp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAudio, err)
	}

	rate := dec.SampleRate()
	if rate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrInvalidAudio, rate)
	}

	length := dec.Length()
	if length < 0 {
		if length, err = io.Copy(io.Discard, dec); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAudio, err)
		}
	}

	samples := length / bytesPerFrame
	return &Info{
		SampleRate: rate,
		Channels:   channels,
		Duration:   time.Duration(samples) * time.Second / time.Duration(rate),
		Size:       len(data),
	}, nil
}

// CheckFormat returns [ErrUnsupportedFormat] unless mimeType names an MP3 stream.
func CheckFormat(mimeType string) error {
	base, _, _ := strings.Cut(mimeType, ";")
	switch strings.ToLower(strings.TrimSpace(base)) {
	case MIMETypeMPEG, "audio/mp3":
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, mimeType)
	}
}

// SanitizeFilename reduces name to a safe base name, falling back to [DefaultFilename].
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = unsafeName.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return DefaultFilename
	}
	return name
}

// Save writes data to dir under a sanitized filename and returns the full path.
func Save(dir, filename string, data []byte) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, SanitizeFilename(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}
	return path, nil
}

var mimeTypes = map[string]string{
	".mp3":  MIMETypeMPEG,
	".wav":  "audio/wav",
	".webm": "audio/webm",
	".ogg":  "audio/ogg",
	".m4a":  "audio/mp4",
	".mp4":  "audio/mp4",
	".flac": "audio/flac",
}

// MIMEType infers a recording's MIME type from its extension.
func MIMEType(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if mt, ok := mimeTypes[ext]; ok {
		return mt, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// Load reads a recorded answer and reports its MIME type.
func Load(path string) ([]byte, string, error) {
	mimeType, err := MIMEType(path)
	if err != nil {
		return nil, "", err
	}

	data, err := shared.VerifyAndReadFile(path)
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: %s is empty", ErrInvalidAudio, path)
	}
	return data, mimeType, nil
}
