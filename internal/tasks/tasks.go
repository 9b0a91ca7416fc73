package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/prepx/internal/audio"
	"github.com/desertthunder/prepx/internal/models"
	"github.com/desertthunder/prepx/internal/services"
	"github.com/desertthunder/prepx/internal/shared"
)

// AttemptRecorder persists graded answers locally.
type AttemptRecorder interface {
	Record(question models.Question, answer string, feedback models.Feedback) (*models.Attempt, error)
}

// ClipCache stores synthesized clips by text hash.
type ClipCache interface {
	GetByTextHash(hash string) (*models.SpeechClip, error)
	Create(clip *models.SpeechClip) error
}

// Speech is the subset of [services.SpeechService] the engine uses.
type Speech interface {
	services.Synthesizer
	services.Transcriber
}

// PracticeRequest describes one answer. Either Text or Audio must be set.
type PracticeRequest struct {
	QuestionID string
	Question   *models.Question // Used as-is when set, skipping the fetch
	Text       string
	Audio      []byte
	MIMEType   string
	Duration   time.Duration
}

// PracticeResult is the outcome of [PracticeEngine.Practice].
type PracticeResult struct {
	Question   models.Question
	Answer     string
	Transcript *models.Transcript
	Feedback   *models.Feedback
	Attempt    *models.Attempt // nil when no recorder is configured or recording failed
}

// SpeakRequest selects what to read aloud. QuestionID wins over Text.
type SpeakRequest struct {
	QuestionID string
	Text       string
	Voice      string
	OutputDir  string // Overrides the engine's output directory
	Refresh    bool   // Ignore any cached clip
}

// SpeakResult is the outcome of [PracticeEngine.Speak].
type SpeakResult struct {
	Text   string
	Clip   *models.SpeechClip
	Info   *audio.Info // nil for cached or non-MP3 clips
	Meta   *models.SpeechMeta
	Cached bool
}

// EngineOpts configures a [PracticeEngine].
type EngineOpts struct {
	Recorder  AttemptRecorder
	Clips     ClipCache
	OutputDir string // Where synthesized clips are written (default: current directory)
	Voice     string // Default synthesis voice
	Logger    *log.Logger
}

// PracticeEngine runs practice sessions against the backend.
type PracticeEngine struct {
	svc       services.Service
	speech    Speech
	recorder  AttemptRecorder
	clips     ClipCache
	outputDir string
	voice     string
	logger    *log.Logger
}

// NewPracticeEngine creates a [PracticeEngine]. speech may be nil when only typed answers are used.
func NewPracticeEngine(svc services.Service, speech Speech, opts EngineOpts) *PracticeEngine {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}

	return &PracticeEngine{
		svc:       svc,
		speech:    speech,
		recorder:  opts.Recorder,
		clips:     opts.Clips,
		outputDir: opts.OutputDir,
		voice:     opts.Voice,
		logger:    opts.Logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *PracticeEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Practice submits an answer and records the resulting feedback.
func (e *PracticeEngine) Practice(ctx context.Context, progress chan<- ProgressUpdate, req PracticeRequest) (*PracticeResult, error) {
	if e.svc == nil {
		return nil, fmt.Errorf("%w: interview service not initialized", shared.ErrServiceUnavailable)
	}
	if req.Text == "" && len(req.Audio) == 0 {
		return nil, fmt.Errorf("%w: an answer needs text or audio", shared.ErrMissingArgument)
	}

	question, err := e.question(ctx, progress, req.QuestionID, req.Question)
	if err != nil {
		return nil, err
	}

	result := &PracticeResult{Question: question, Answer: req.Text}
	submission := models.AnswerSubmission{
		QuestionID:      question.ID,
		Text:            req.Text,
		DurationSeconds: int(req.Duration.Seconds()),
	}

	if len(req.Audio) > 0 {
		if e.speech == nil {
			return nil, fmt.Errorf("%w: speech service not initialized", shared.ErrServiceUnavailable)
		}

		e.sendProgress(progress, transcribeUpdate(len(req.Audio)))
		transcript, err := e.speech.Transcribe(ctx, req.Audio, req.MIMEType)
		if err != nil {
			return nil, err
		}
		if transcript.Text == "" {
			return nil, fmt.Errorf("%w: transcript is empty", shared.ErrTranscriptionFailed)
		}
		e.sendProgress(progress, transcribedUpdate(transcript))

		result.Transcript = transcript
		result.Answer = transcript.Text
		submission.Text = transcript.Text
		submission.TranscriptID = transcript.ID
	}

	e.sendProgress(progress, submitUpdate(question))
	feedback, err := e.svc.SubmitAnswer(ctx, submission)
	if err != nil {
		return nil, err
	}
	result.Feedback = feedback
	e.sendProgress(progress, feedbackUpdate(feedback))

	if e.recorder != nil {
		attempt, err := e.recorder.Record(question, result.Answer, *feedback)
		if err != nil {
			e.logger.Warn("failed to record attempt", "question", question.ID, "error", err)
		} else {
			result.Attempt = attempt
			e.sendProgress(progress, recordUpdate(attempt))
		}
	}

	return result, nil
}

// Speak synthesizes speech for a question or text and saves the clip.
//
// Clips are cached by a hash of the text and voice; a cached clip whose file is gone is synthesized again.
func (e *PracticeEngine) Speak(ctx context.Context, progress chan<- ProgressUpdate, req SpeakRequest) (*SpeakResult, error) {
	if e.speech == nil {
		return nil, fmt.Errorf("%w: speech service not initialized", shared.ErrServiceUnavailable)
	}

	text := req.Text
	if req.QuestionID != "" {
		question, err := e.question(ctx, progress, req.QuestionID, nil)
		if err != nil {
			return nil, err
		}
		text = question.SpokenText()
	}
	if text == "" {
		return nil, fmt.Errorf("%w: nothing to speak", shared.ErrMissingArgument)
	}

	voice := req.Voice
	if voice == "" {
		voice = e.voice
	}
	hash := shared.HashText(text, voice)
	result := &SpeakResult{Text: text}

	if !req.Refresh {
		if clip := e.cachedClip(hash); clip != nil {
			e.sendProgress(progress, synthesizeUpdate(text, true))
			result.Clip, result.Cached = clip, true
			return result, nil
		}
	}

	e.sendProgress(progress, synthesizeUpdate(text, false))
	speech, err := e.speech.SynthesizeVoice(ctx, text, voice)
	if err != nil {
		return nil, err
	}
	result.Meta = &speech.Meta

	var duration time.Duration
	if err := audio.CheckFormat(speech.Audio.MIMEType); err == nil {
		info, err := audio.Probe(speech.Audio.Data)
		if err != nil {
			e.logger.Warn("failed to probe clip", "error", err)
		} else {
			result.Info = info
			duration = info.Duration
		}
	}

	dir := req.OutputDir
	if dir == "" {
		dir = e.outputDir
	}
	path, err := audio.Save(dir, hash[:12]+"-"+speech.Filename, speech.Audio.Data)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, saveClipUpdate(path))

	clip := models.NewSpeechClip(0, hash, voice, speech.Filename, speech.Audio.MIMEType, path, duration)
	if e.clips != nil {
		if err := e.clips.Create(clip); err != nil {
			e.logger.Warn("failed to cache clip", "path", path, "error", err)
		}
	}
	result.Clip = clip

	return result, nil
}

// question returns q when set, otherwise fetches id.
func (e *PracticeEngine) question(ctx context.Context, progress chan<- ProgressUpdate, id string, q *models.Question) (models.Question, error) {
	if q != nil {
		return *q, nil
	}
	if id == "" {
		return models.Question{}, fmt.Errorf("%w: question id is required", shared.ErrMissingArgument)
	}
	if e.svc == nil {
		return models.Question{}, fmt.Errorf("%w: interview service not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, fetchQuestionUpdate(id))
	question, err := e.svc.GetQuestion(ctx, id)
	if err != nil {
		return models.Question{}, err
	}
	return *question, nil
}

// cachedClip returns the cached clip for hash if its file still exists.
func (e *PracticeEngine) cachedClip(hash string) *models.SpeechClip {
	if e.clips == nil {
		return nil
	}

	clip, err := e.clips.GetByTextHash(hash)
	if err != nil {
		return nil
	}
	if _, err := os.Stat(clip.Path()); errors.Is(err, os.ErrNotExist) {
		e.logger.Debug("cached clip missing on disk", "path", clip.Path())
		return nil
	}
	return clip
}
