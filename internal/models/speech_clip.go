package models

import (
	"fmt"
	"time"
)

// SpeechClip is synthesized audio saved on disk, keyed by a hash of its text and voice.
type SpeechClip struct {
	id        string
	sequence  int
	textHash  string
	voice     string
	filename  string
	mimeType  string
	path      string
	duration  time.Duration
	createdAt time.Time
}

// NewSpeechClip creates a [SpeechClip] stamped with the current time.
func NewSpeechClip(sequence int, textHash, voice, filename, mimeType, path string, duration time.Duration) *SpeechClip {
	return &SpeechClip{
		sequence:  sequence,
		textHash:  textHash,
		voice:     voice,
		filename:  filename,
		mimeType:  mimeType,
		path:      path,
		duration:  duration,
		createdAt: time.Now().UTC(),
	}
}

func (c *SpeechClip) ID() string               { return c.id }
func (c *SpeechClip) Sequence() int            { return c.sequence }
func (c *SpeechClip) TextHash() string         { return c.textHash }
func (c *SpeechClip) Voice() string            { return c.voice }
func (c *SpeechClip) Filename() string         { return c.filename }
func (c *SpeechClip) MIMEType() string         { return c.mimeType }
func (c *SpeechClip) Path() string             { return c.path }
func (c *SpeechClip) Duration() time.Duration  { return c.duration }
func (c *SpeechClip) CreatedAt() time.Time     { return c.createdAt }
func (c *SpeechClip) SetID(id string)          { c.id = id }
func (c *SpeechClip) SetCreatedAt(t time.Time) { c.createdAt = t }

// Validate checks required fields.
func (c *SpeechClip) Validate() error {
	switch {
	case c.id == "":
		return fmt.Errorf("id is required")
	case c.textHash == "":
		return fmt.Errorf("text hash is required")
	case c.path == "":
		return fmt.Errorf("path is required")
	}
	return nil
}
