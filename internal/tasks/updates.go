package tasks

import (
	"fmt"

	"github.com/desertthunder/prepx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchQuestion Phase = iota
	Transcribe
	Submit
	Record
	Synthesize
	SaveClip
	ExportFeedback
)

func (p Phase) String() string {
	switch p {
	case FetchQuestion:
		return "fetch_question"
	case Transcribe:
		return "transcribe"
	case Submit:
		return "submit"
	case Record:
		return "record"
	case Synthesize:
		return "synthesize"
	case SaveClip:
		return "save_clip"
	case ExportFeedback:
		return "export_feedback"
	default:
		return ""
	}
}

func fetchQuestionUpdate(id string) ProgressUpdate {
	return ProgressUpdate{Phase: FetchQuestion, Step: 1, Total: 1, Message: fmt.Sprintf("Fetching question %s...", id)}
}

func transcribeUpdate(size int) ProgressUpdate {
	return ProgressUpdate{Phase: Transcribe, Step: 1, Total: 1, Message: fmt.Sprintf("Transcribing recording (%d bytes)...", size)}
}

func transcribedUpdate(t *models.Transcript) ProgressUpdate {
	return ProgressUpdate{Phase: Transcribe, Step: 1, Total: 1, Message: "Transcription complete", Data: t}
}

func submitUpdate(q models.Question) ProgressUpdate {
	return ProgressUpdate{Phase: Submit, Step: 1, Total: 1, Message: fmt.Sprintf("Submitting answer to %q...", q.Title)}
}

func feedbackUpdate(fb *models.Feedback) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Submit,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Scored %.1f/10", fb.Score),
		Data:    fb,
	}
}

func recordUpdate(a *models.Attempt) ProgressUpdate {
	return ProgressUpdate{Phase: Record, Step: 1, Total: 1, Message: fmt.Sprintf("Saved attempt #%d", a.Sequence()), Data: a}
}

func synthesizeUpdate(text string, cached bool) ProgressUpdate {
	msg := "Synthesizing speech..."
	if cached {
		msg = "Using cached clip"
	}
	return ProgressUpdate{Phase: Synthesize, Step: 1, Total: 1, Message: msg, Data: text}
}

func saveClipUpdate(path string) ProgressUpdate {
	return ProgressUpdate{Phase: SaveClip, Step: 1, Total: 1, Message: fmt.Sprintf("Saved %s", path), Data: path}
}

func exportingUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportFeedback,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, title),
	}
}

func exportCompletedUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportFeedback,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, title),
	}
}

func exportFailedUpdate(step, total int, title string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportFeedback,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, title, err),
	}
}
