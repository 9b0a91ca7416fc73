package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/prepx/internal/models"
	"github.com/desertthunder/prepx/internal/multipart"
	"github.com/desertthunder/prepx/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultPollInterval = time.Second
	defaultMaxWait      = 5 * time.Minute
)

// Speech is a decoded synthesis response.
type Speech struct {
	Meta     models.SpeechMeta
	Raw      any // JSON part exactly as transmitted
	Audio    multipart.Blob
	Filename string
}

// SpeechOpts configures a [SpeechService].
type SpeechOpts struct {
	Uploader       *http.Client  // Client for presigned uploads, which must not carry the session token
	PollInterval   time.Duration // Delay between transcription status checks (default: 1s)
	MaxUploadBytes int64         // Upper bound for recordings, 0 for no limit
	MaxWait        time.Duration // Longest wait for a transcription job (default: 5m)
}

// SpeechService talks to the text-to-speech and speech-to-text endpoints.
type SpeechService struct {
	api            *APIService
	uploader       *http.Client
	pollInterval   time.Duration
	maxWait        time.Duration
	maxUploadBytes int64
}

// NewSpeechService creates a [SpeechService] that sends requests through api.
func NewSpeechService(api *APIService, opts SpeechOpts) *SpeechService {
	if opts.Uploader == nil {
		opts.Uploader = http.DefaultClient
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = defaultMaxWait
	}

	return &SpeechService{
		api:            api,
		uploader:       opts.Uploader,
		pollInterval:   opts.PollInterval,
		maxWait:        opts.MaxWait,
		maxUploadBytes: opts.MaxUploadBytes,
	}
}

// SynthesizeVoice requests speech for text and decodes the multipart/mixed response.
//
// Non-2xx responses are reported with the backend's error message before any decoding is attempted.
func (s *SpeechService) SynthesizeVoice(ctx context.Context, text, voice string) (*Speech, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", shared.ErrMissingArgument)
	}

	payload := map[string]string{"text": text}
	if voice != "" {
		payload["voice"] = voice
	}

	resp, err := s.api.PostJSON(ctx, "/tts", payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	decoded, err := multipart.DecodeResponse(resp.Headers.Get("Content-Type"), resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrSynthesisFailed, err)
	}

	speech := &Speech{
		Raw:      decoded.JSON,
		Audio:    decoded.Audio,
		Filename: decoded.Filename,
	}
	if err := decoded.Unmarshal(&speech.Meta); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrSynthesisFailed, err)
	}

	return speech, nil
}

type uploadTarget struct {
	UploadURL string `json:"upload_url"`
	ObjectKey string `json:"object_key"`
}

// Transcribe uploads audio and waits for the backend to transcribe it.
//
// The recording goes to a presigned URL, a job is started for the uploaded object, and the job is polled
// every poll interval until it completes or fails. Polling gives up after the configured maximum wait.
func (s *SpeechService) Transcribe(ctx context.Context, audio []byte, mimeType string) (*models.Transcript, error) {
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: audio is empty", shared.ErrInvalidInput)
	}
	if s.maxUploadBytes > 0 && int64(len(audio)) > s.maxUploadBytes {
		return nil, fmt.Errorf("%w: audio is %d bytes, limit is %d", shared.ErrInvalidInput, len(audio), s.maxUploadBytes)
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	resp, err := s.api.PostJSON(ctx, "/stt/upload-url", map[string]any{
		"content_type": mimeType,
		"size":         len(audio),
		"client_ref":   shared.GenerateID(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	target, err := decodeData[uploadTarget](resp)
	if err != nil {
		return nil, err
	}
	if target.UploadURL == "" || target.ObjectKey == "" {
		return nil, fmt.Errorf("%w: backend returned no upload target", shared.ErrAPIRequest)
	}

	if err := s.upload(ctx, target.UploadURL, audio, mimeType); err != nil {
		return nil, err
	}

	resp, err = s.api.PostJSON(ctx, "/stt/jobs", map[string]string{"object_key": target.ObjectKey})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	job, err := decodeData[models.Transcript](resp)
	if err != nil {
		return nil, err
	}

	return s.poll(ctx, job)
}

// upload PUTs audio to a presigned URL.
func (s *SpeechService) upload(ctx context.Context, target string, audio []byte, mimeType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(audio))
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mimeType)
	req.ContentLength = int64(len(audio))

	resp, err := send(s.uploader, req)
	if err != nil {
		return fmt.Errorf("%w: upload %v", shared.ErrAPIRequest, err)
	}
	if !resp.OK() {
		return fmt.Errorf("%w: upload returned status %d", shared.ErrAPIRequest, resp.StatusCode)
	}
	return nil
}

// poll refreshes job until it reaches a terminal state or maxWait elapses.
//
// Status responses only update the status, text and error; the id from job creation is kept unless
// a response carries a new one. A status outside the documented set fails the job.
func (s *SpeechService) poll(ctx context.Context, job models.Transcript) (*models.Transcript, error) {
	if job.ID == "" {
		return nil, fmt.Errorf("%w: backend returned no job id", shared.ErrAPIRequest)
	}

	if job.Status == "" {
		job.Status = models.TranscriptPending
	}

	ctx, cancel := context.WithTimeout(ctx, s.maxWait)
	defer cancel()

	limiter := rate.NewLimiter(rate.Every(s.pollInterval), 1)
	limiter.Allow()

	for {
		job.Status = job.Status.Normalize()
		if !job.Status.Known() {
			return nil, fmt.Errorf("%w: job %s has unexpected status %q", shared.ErrTranscriptionFailed, job.ID, job.Status)
		}
		if job.Status.Done() {
			break
		}

		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: waiting for transcript %s: %v", shared.ErrTimeout, job.ID, err)
		}

		resp, err := s.api.Get(ctx, "/stt/jobs/"+url.PathEscape(job.ID))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		update, err := decodeData[models.Transcript](resp)
		if err != nil {
			return nil, err
		}

		if update.ID != "" {
			job.ID = update.ID
		}
		job.Status, job.Text, job.Error = update.Status, update.Text, update.Error
	}

	if job.Status == models.TranscriptFailed {
		return nil, fmt.Errorf("%w: %s", shared.ErrTranscriptionFailed, job.Error)
	}
	return &job, nil
}
