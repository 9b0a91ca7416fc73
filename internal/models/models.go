// package models defines the data model for the interview practice client
package models

import (
	"time"
)

// Model is a row in the local store. Rows carry a UUID and a per-table sequence number.
type Model interface {
	ID() string
	Sequence() int
	CreatedAt() time.Time
	Validate() error
}

// Repository is the storage contract shared by attempts and speech clips.
// Rows are written once, so there is no Update.
type Repository[T Model] interface {
	Create(model T) error
	Get(id string) (T, error)
	Delete(id string) error
	List(criteria map[string]any) ([]T, error)
}

var (
	_ Model = (*Attempt)(nil)
	_ Model = (*SpeechClip)(nil)
)
