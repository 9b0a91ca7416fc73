package models

import (
	"fmt"
	"strings"
	"time"
)

// QuestionKind separates practice questions from ones reported from real interviews.
type QuestionKind string

const (
	KindPractice QuestionKind = "practice"
	KindReal     QuestionKind = "real"
)

// Question represents an interview question served by the backend.
type Question struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Prompt     string       `json:"prompt"`
	Category   string       `json:"category"`
	Difficulty string       `json:"difficulty"`
	Kind       QuestionKind `json:"kind"`
	Company    string       `json:"company,omitempty"`
	Keywords   []string     `json:"keywords,omitempty"`
}

// SpokenText returns the text read aloud for the question.
func (q Question) SpokenText() string {
	if q.Prompt == "" {
		return q.Title
	}
	return q.Prompt
}

// QuestionFilter narrows a question listing. Zero values are not sent.
type QuestionFilter struct {
	Kind       QuestionKind
	Category   string
	Difficulty string
	Search     string
	Limit      int
}

// AnswerSubmission is the payload sent to request feedback.
type AnswerSubmission struct {
	QuestionID      string `json:"question_id"`
	Text            string `json:"answer_text"`
	TranscriptID    string `json:"transcript_id,omitempty"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
}

// Validate checks that the submission can be sent.
func (a AnswerSubmission) Validate() error {
	if a.QuestionID == "" {
		return fmt.Errorf("question id is required")
	}
	if a.Text == "" {
		return fmt.Errorf("answer text is required")
	}
	return nil
}

// KeywordCoverage lists which expected keywords an answer mentioned.
type KeywordCoverage struct {
	Matched []string `json:"matched"`
	Missing []string `json:"missing"`
}

// Ratio returns the share of expected keywords that were matched, between 0 and 1.
func (k KeywordCoverage) Ratio() float64 {
	total := len(k.Matched) + len(k.Missing)
	if total == 0 {
		return 0
	}
	return float64(len(k.Matched)) / float64(total)
}

// Feedback is the AI evaluation of an answer.
type Feedback struct {
	AnswerID     string          `json:"answer_id"`
	QuestionID   string          `json:"question_id"`
	Score        float64         `json:"score"` // 0 to 10
	Summary      string          `json:"summary"`
	Strengths    []string        `json:"strengths"`
	Improvements []string        `json:"improvements"`
	Keywords     KeywordCoverage `json:"keywords"`
	CreatedAt    time.Time       `json:"created_at"`
}

// HistoryItem is one entry in the user's remote answer history.
type HistoryItem struct {
	AnswerID      string    `json:"answer_id"`
	QuestionID    string    `json:"question_id"`
	QuestionTitle string    `json:"question_title"`
	Score         float64   `json:"score"`
	CreatedAt     time.Time `json:"created_at"`
}

// User is the authenticated account.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// TranscriptStatus is the lifecycle state of a speech-to-text job.
type TranscriptStatus string

const (
	TranscriptPending   TranscriptStatus = "pending"
	TranscriptRunning   TranscriptStatus = "processing"
	TranscriptCompleted TranscriptStatus = "completed"
	TranscriptFailed    TranscriptStatus = "failed"
)

// Normalize lower-cases and trims s so "COMPLETED" compares equal to [TranscriptCompleted].
func (s TranscriptStatus) Normalize() TranscriptStatus {
	return TranscriptStatus(strings.ToLower(strings.TrimSpace(string(s))))
}

// Known reports whether s is one of the four states the backend documents.
func (s TranscriptStatus) Known() bool {
	switch s.Normalize() {
	case TranscriptPending, TranscriptRunning, TranscriptCompleted, TranscriptFailed:
		return true
	}
	return false
}

// Done reports whether the job has reached a terminal state.
func (s TranscriptStatus) Done() bool {
	n := s.Normalize()
	return n == TranscriptCompleted || n == TranscriptFailed
}

// Transcript is a speech-to-text job and, once complete, its text.
type Transcript struct {
	ID     string           `json:"id"`
	Status TranscriptStatus `json:"status"`
	Text   string           `json:"text"`
	Error  string           `json:"error,omitempty"`
}

// SpeechMeta is the JSON part of a synthesis response.
type SpeechMeta struct {
	Message string `json:"message"`
	Data    struct {
		UserID    int    `json:"user_id"`
		SessionID string `json:"session_id"`
	} `json:"data"`
}
