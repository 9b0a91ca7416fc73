package models

import (
	"fmt"
	"time"
)

// Attempt is a submitted answer and the feedback it received.
type Attempt struct {
	id         string
	sequence   int
	remoteID   string
	questionID string
	question   string
	answer     string
	feedback   Feedback
	createdAt  time.Time
	deletedAt  *time.Time
}

// NewAttempt creates an [Attempt] for the question and answer, stamped with the current time.
func NewAttempt(sequence int, question Question, answer string, feedback Feedback) *Attempt {
	return &Attempt{
		sequence:   sequence,
		remoteID:   feedback.AnswerID,
		questionID: question.ID,
		question:   question.Title,
		answer:     answer,
		feedback:   feedback,
		createdAt:  time.Now().UTC(),
	}
}

func (a *Attempt) ID() string                { return a.id }
func (a *Attempt) Sequence() int             { return a.sequence }
func (a *Attempt) RemoteID() string          { return a.remoteID }
func (a *Attempt) QuestionID() string        { return a.questionID }
func (a *Attempt) Question() string          { return a.question }
func (a *Attempt) Answer() string            { return a.answer }
func (a *Attempt) Feedback() Feedback        { return a.feedback }
func (a *Attempt) Score() float64            { return a.feedback.Score }
func (a *Attempt) CreatedAt() time.Time      { return a.createdAt }
func (a *Attempt) DeletedAt() *time.Time     { return a.deletedAt }
func (a *Attempt) SetID(id string)           { a.id = id }
func (a *Attempt) SetSequence(s int)         { a.sequence = s }
func (a *Attempt) SetCreatedAt(t time.Time)  { a.createdAt = t }
func (a *Attempt) SetDeletedAt(t *time.Time) { a.deletedAt = t }

// Validate checks required fields and the score range.
func (a *Attempt) Validate() error {
	if a.id == "" {
		return fmt.Errorf("id is required")
	}
	if a.questionID == "" {
		return fmt.Errorf("question id is required")
	}
	if a.answer == "" {
		return fmt.Errorf("answer is required")
	}
	if s := a.feedback.Score; s < 0 || s > 10 {
		return fmt.Errorf("score %.1f out of range", s)
	}
	return nil
}

// HistoryItem converts the attempt into the shape used for remote history.
func (a *Attempt) HistoryItem() HistoryItem {
	return HistoryItem{
		AnswerID:      a.remoteID,
		QuestionID:    a.questionID,
		QuestionTitle: a.question,
		Score:         a.feedback.Score,
		CreatedAt:     a.createdAt,
	}
}
