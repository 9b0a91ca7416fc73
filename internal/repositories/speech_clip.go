package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/prepx/internal/models"
	"github.com/desertthunder/prepx/internal/shared"
)

const clipColumns = `id, sequence, text_hash, voice, filename, mime_type, path, duration_ms, created_at`

// SpeechClipRepository implements models.Repository[*models.SpeechClip] and indexes clips by text hash.
//
// Clips are a cache, so Delete removes the row outright.
type SpeechClipRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.SpeechClip] = (*SpeechClipRepository)(nil)

func NewSpeechClipRepository(db *sql.DB) *SpeechClipRepository {
	return &SpeechClipRepository{db: db}
}

// Create inserts clip, replacing any clip previously cached for the same text hash.
func (r *SpeechClipRepository) Create(clip *models.SpeechClip) error {
	sequence, err := NextSequence(r.db, "speech_clips")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	clip.SetID(shared.GenerateID())
	if err := clip.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	_, err = r.db.Exec(`
		INSERT INTO speech_clips (id, sequence, text_hash, voice, filename, mime_type, path, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(text_hash) DO UPDATE SET
			id = excluded.id,
			sequence = excluded.sequence,
			voice = excluded.voice,
			filename = excluded.filename,
			mime_type = excluded.mime_type,
			path = excluded.path,
			duration_ms = excluded.duration_ms,
			created_at = excluded.created_at`,
		clip.ID(),
		sequence,
		clip.TextHash(),
		clip.Voice(),
		clip.Filename(),
		clip.MIMEType(),
		clip.Path(),
		clip.Duration().Milliseconds(),
		clip.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert speech clip: %w", err)
	}
	return nil
}

func (r *SpeechClipRepository) Get(id string) (*models.SpeechClip, error) {
	return r.getBy("id", id)
}

// GetByTextHash returns the cached clip for a [shared.HashText] digest.
func (r *SpeechClipRepository) GetByTextHash(hash string) (*models.SpeechClip, error) {
	return r.getBy("text_hash", hash)
}

func (r *SpeechClipRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM speech_clips WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete speech clip: %w", err)
	}
	return affectOne(result, "speech clip", id)
}

// List returns cached clips, newest first. Supported criteria: "voice" (string) and "limit" (int).
func (r *SpeechClipRepository) List(criteria map[string]any) ([]*models.SpeechClip, error) {
	query := `SELECT ` + clipColumns + ` FROM speech_clips WHERE 1 = 1`
	args := []any{}

	if voice, ok := criteria["voice"].(string); ok && voice != "" {
		query += " AND voice = ?"
		args = append(args, voice)
	}
	query += " ORDER BY sequence DESC"
	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query speech clips: %w", err)
	}
	defer rows.Close()

	var clips []*models.SpeechClip
	for rows.Next() {
		clip, err := scanClip(rows)
		if err != nil {
			return nil, err
		}
		clips = append(clips, clip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return clips, nil
}

func (r *SpeechClipRepository) getBy(column, value string) (*models.SpeechClip, error) {
	row := r.db.QueryRow(`SELECT `+clipColumns+` FROM speech_clips WHERE `+column+` = ?`, value)

	clip, err := scanClip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: speech clip %s", ErrNotFound, value)
	}
	return clip, err
}

func scanClip(row scanner) (*models.SpeechClip, error) {
	var (
		id, textHash, voice, filename, mimeType, path string
		sequence                                      int
		durationMS                                    int64
		createdAt                                     time.Time
	)

	if err := row.Scan(&id, &sequence, &textHash, &voice, &filename, &mimeType, &path, &durationMS, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan speech clip: %w", err)
	}

	clip := models.NewSpeechClip(sequence, textHash, voice, filename, mimeType, path, time.Duration(durationMS)*time.Millisecond)
	clip.SetID(id)
	clip.SetCreatedAt(createdAt)
	return clip, nil
}
