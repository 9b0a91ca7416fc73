package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/prepx/internal/models"
	"github.com/desertthunder/prepx/internal/shared"
)

const attemptColumns = `id, sequence, question_id, question, answer, feedback_json, created_at, deleted_at`

// AttemptRepository implements models.Repository[*models.Attempt].
type AttemptRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.Attempt] = (*AttemptRepository)(nil)

func NewAttemptRepository(db *sql.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// Create assigns an ID and sequence to attempt and inserts it.
func (r *AttemptRepository) Create(attempt *models.Attempt) error {
	sequence, err := NextSequence(r.db, "attempts")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	attempt.SetID(shared.GenerateID())
	attempt.SetSequence(sequence)

	if err := attempt.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	feedback, err := json.Marshal(attempt.Feedback())
	if err != nil {
		return fmt.Errorf("failed to encode feedback: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO attempts (id, sequence, remote_id, question_id, question, answer, score, feedback_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		attempt.ID(),
		sequence,
		attempt.RemoteID(),
		attempt.QuestionID(),
		attempt.Question(),
		attempt.Answer(),
		attempt.Score(),
		string(feedback),
		attempt.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert attempt: %w", err)
	}
	return nil
}

// Get retrieves a live attempt by ID.
func (r *AttemptRepository) Get(id string) (*models.Attempt, error) {
	row := r.db.QueryRow(`SELECT `+attemptColumns+` FROM attempts WHERE id = ? AND deleted_at IS NULL`, id)

	attempt, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrAttemptNotFound, id)
	}
	return attempt, err
}

// Delete soft-deletes an attempt.
func (r *AttemptRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE attempts SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete attempt: %w", err)
	}
	return affectOne(result, "attempt", id)
}

// List returns live attempts, newest first.
//
// Supported criteria: "question_id" (string), "since" (time.Time) and "limit" (int).
func (r *AttemptRepository) List(criteria map[string]any) ([]*models.Attempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM attempts WHERE deleted_at IS NULL`
	args := []any{}

	if questionID, ok := criteria["question_id"].(string); ok && questionID != "" {
		query += " AND question_id = ?"
		args = append(args, questionID)
	}
	if since, ok := criteria["since"].(time.Time); ok && !since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, since.UTC())
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*models.Attempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return attempts, nil
}

// Record persists a graded answer. It satisfies tasks.AttemptRecorder.
func (r *AttemptRepository) Record(question models.Question, answer string, feedback models.Feedback) (*models.Attempt, error) {
	attempt := models.NewAttempt(0, question, answer, feedback)
	if err := r.Create(attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

func scanAttempt(row scanner) (*models.Attempt, error) {
	var (
		id, questionID, question, answer, feedbackJSON string
		sequence                                       int
		createdAt                                      time.Time
		deletedAt                                      sql.NullTime
	)

	if err := row.Scan(&id, &sequence, &questionID, &question, &answer, &feedbackJSON, &createdAt, &deletedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan attempt: %w", err)
	}

	var feedback models.Feedback
	if err := json.Unmarshal([]byte(feedbackJSON), &feedback); err != nil {
		return nil, fmt.Errorf("failed to decode feedback for attempt %s: %w", id, err)
	}

	attempt := models.NewAttempt(sequence, models.Question{ID: questionID, Title: question}, answer, feedback)
	attempt.SetID(id)
	attempt.SetCreatedAt(createdAt)
	if deletedAt.Valid {
		attempt.SetDeletedAt(&deletedAt.Time)
	}
	return attempt, nil
}
