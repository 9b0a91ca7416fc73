// package services defines the Service interface for the interview practice backend
package services

import (
	"context"

	"github.com/desertthunder/prepx/internal/models"
)

// Service defines the operations the CLI and TUI need from the interview backend.
type Service interface {
	// Me returns the authenticated user.
	Me(ctx context.Context) (*models.User, error)

	// ListQuestions returns questions matching the filter.
	ListQuestions(ctx context.Context, filter models.QuestionFilter) ([]models.Question, error)

	// GetQuestion retrieves a single question by ID.
	GetQuestion(ctx context.Context, id string) (*models.Question, error)

	// SubmitAnswer sends an answer and returns the generated feedback.
	SubmitAnswer(ctx context.Context, submission models.AnswerSubmission) (*models.Feedback, error)

	// GetFeedback retrieves the feedback for a previously submitted answer.
	GetFeedback(ctx context.Context, answerID string) (*models.Feedback, error)

	// ListHistory returns the most recent answers, newest first.
	ListHistory(ctx context.Context, limit int) ([]models.HistoryItem, error)

	// Name returns the name of the backend
	Name() string
}

// Synthesizer turns text into speech.
type Synthesizer interface {
	SynthesizeVoice(ctx context.Context, text, voice string) (*Speech, error)
}

// Transcriber turns recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (*models.Transcript, error)
}

var (
	_ Service     = (*InterviewService)(nil)
	_ Synthesizer = (*SpeechService)(nil)
	_ Transcriber = (*SpeechService)(nil)
)
