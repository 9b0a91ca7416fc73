package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/prepx/internal/models"
	"github.com/desertthunder/prepx/internal/multipart"
	"github.com/desertthunder/prepx/internal/shared"
)

const ttsBoundary = "tts-b9"

func ttsBody(audio string) string {
	return "--" + ttsBoundary + "\r\n" +
		"Content-Type: application/json\r\n\r\n" +
		`{"message":"TTS generated successfully","data":{"user_id":3,"session_id":"s-1"}}` + "\r\n" +
		"--" + ttsBoundary + "\r\n" +
		"Content-Type: audio/mpeg\r\n" +
		"Content-Disposition: attachment; filename=\"question.mp3\"\r\n\r\n" +
		audio + "\r\n" +
		"--" + ttsBoundary + "--\r\n"
}

func TestSynthesizeVoice(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes multipart response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/tts" {
				t.Errorf("expected /tts, got %s", r.URL.Path)
			}
			var payload map[string]string
			json.NewDecoder(r.Body).Decode(&payload)
			if payload["text"] != "Hello" || payload["voice"] != "alloy" {
				t.Errorf("unexpected payload %v", payload)
			}

			w.Header().Set("Content-Type", "multipart/mixed; boundary="+ttsBoundary)
			w.Write([]byte(ttsBody("ID3\x00\xff\xfbAUDIO")))
		}))
		defer server.Close()

		speech, err := NewSpeechService(NewAPIService(server.URL, nil), SpeechOpts{}).SynthesizeVoice(ctx, "Hello", "alloy")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if string(speech.Audio.Data) != "ID3\x00\xff\xfbAUDIO" {
			t.Errorf("audio bytes altered: %q", speech.Audio.Data)
		}
		if speech.Audio.MIMEType != "audio/mpeg" || speech.Filename != "question.mp3" {
			t.Errorf("unexpected audio metadata %s %s", speech.Audio.MIMEType, speech.Filename)
		}
		if speech.Meta.Data.SessionID != "s-1" || speech.Meta.Data.UserID != 3 {
			t.Errorf("unexpected meta %+v", speech.Meta)
		}
		if _, ok := speech.Raw.(map[string]any); !ok {
			t.Errorf("expected raw JSON object, got %T", speech.Raw)
		}
	})

	t.Run("error body is reported before decoding", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":"text too long"}`))
		}))
		defer server.Close()

		_, err := NewSpeechService(NewAPIService(server.URL, nil), SpeechOpts{}).SynthesizeVoice(ctx, "Hello", "")
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Message != "text too long" {
			t.Errorf("expected APIError with backend message, got %v", err)
		}
	})

	t.Run("missing boundary", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "multipart/mixed")
			w.Write([]byte(ttsBody("x")))
		}))
		defer server.Close()

		_, err := NewSpeechService(NewAPIService(server.URL, nil), SpeechOpts{}).SynthesizeVoice(ctx, "Hello", "")
		if !errors.Is(err, multipart.ErrNoBoundary) || !errors.Is(err, shared.ErrSynthesisFailed) {
			t.Errorf("expected ErrNoBoundary wrapped in ErrSynthesisFailed, got %v", err)
		}
	})

	t.Run("missing audio part", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "multipart/mixed; boundary="+ttsBoundary)
			w.Write([]byte("--" + ttsBoundary + "\r\nContent-Type: application/json\r\n\r\n{}\r\n--" + ttsBoundary + "--"))
		}))
		defer server.Close()

		_, err := NewSpeechService(NewAPIService(server.URL, nil), SpeechOpts{}).SynthesizeVoice(ctx, "Hello", "")
		if !errors.Is(err, multipart.ErrParseFailed) {
			t.Errorf("expected ErrParseFailed, got %v", err)
		}
	})

	t.Run("empty text", func(t *testing.T) {
		_, err := NewSpeechService(NewAPIService("", nil), SpeechOpts{}).SynthesizeVoice(ctx, "", "")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

// sttBackend fakes the upload, job and poll endpoints.
type sttBackend struct {
	server   *httptest.Server
	uploaded atomic.Value
	polls    atomic.Int32
	final    string
	running  string // Body returned before the job finishes
}

func newSTTBackend(t *testing.T, final string, pollsUntilDone int32) *sttBackend {
	t.Helper()
	b := &sttBackend{final: final, running: `{"data":{"id":"job-1","status":"processing"}}`}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /stt/upload-url", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["content_type"] != "audio/webm" {
			t.Errorf("unexpected content type %v", req["content_type"])
		}
		if req["client_ref"] == "" {
			t.Error("expected client_ref")
		}
		w.Write([]byte(`{"data":{"upload_url":"` + b.server.URL + `/upload/obj-1","object_key":"obj-1"}}`))
	})
	mux.HandleFunc("PUT /upload/{key}", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("presigned upload must not carry credentials")
		}
		body, _ := io.ReadAll(r.Body)
		b.uploaded.Store(string(body))
	})
	mux.HandleFunc("POST /stt/jobs", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["object_key"] != "obj-1" {
			t.Errorf("unexpected object key %q", req["object_key"])
		}
		w.Write([]byte(`{"data":{"id":"job-1","status":"pending"}}`))
	})
	mux.HandleFunc("GET /stt/jobs/{id}", func(w http.ResponseWriter, r *http.Request) {
		if id := r.PathValue("id"); id != "job-1" {
			t.Errorf("unexpected job id %q", id)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		n := b.polls.Add(1)
		if pollsUntilDone >= 0 && n >= pollsUntilDone {
			w.Write([]byte(b.final))
			return
		}
		w.Write([]byte(b.running))
	})

	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)
	return b
}

func TestTranscribe(t *testing.T) {
	opts := SpeechOpts{PollInterval: 5 * time.Millisecond, MaxUploadBytes: 64}

	t.Run("uploads and polls until complete", func(t *testing.T) {
		backend := newSTTBackend(t, `{"data":{"id":"job-1","status":"completed","text":"I led the migration"}}`, 3)
		svc := NewSpeechService(NewAPIService(backend.server.URL, nil), opts)

		transcript, err := svc.Transcribe(context.Background(), []byte("webm-bytes"), "audio/webm")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if transcript.Text != "I led the migration" || transcript.Status != models.TranscriptCompleted {
			t.Errorf("unexpected transcript %+v", transcript)
		}
		if got := backend.uploaded.Load(); got != "webm-bytes" {
			t.Errorf("expected uploaded bytes, got %v", got)
		}
		if backend.polls.Load() != 3 {
			t.Errorf("expected 3 polls, got %d", backend.polls.Load())
		}
	})

	t.Run("failed job", func(t *testing.T) {
		backend := newSTTBackend(t, `{"data":{"id":"job-1","status":"failed","error":"unintelligible"}}`, 1)
		svc := NewSpeechService(NewAPIService(backend.server.URL, nil), opts)

		_, err := svc.Transcribe(context.Background(), []byte("webm-bytes"), "audio/webm")
		if !errors.Is(err, shared.ErrTranscriptionFailed) || !strings.Contains(err.Error(), "unintelligible") {
			t.Errorf("expected ErrTranscriptionFailed, got %v", err)
		}
	})

	t.Run("status responses without an id keep the job id", func(t *testing.T) {
		backend := newSTTBackend(t, `{"data":{"status":"completed","text":"kept the id"}}`, 3)
		backend.running = `{"data":{"status":"processing"}}`
		svc := NewSpeechService(NewAPIService(backend.server.URL, nil), opts)

		transcript, err := svc.Transcribe(context.Background(), []byte("webm-bytes"), "audio/webm")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if transcript.ID != "job-1" || transcript.Text != "kept the id" {
			t.Errorf("unexpected transcript %+v", transcript)
		}
		if backend.polls.Load() != 3 {
			t.Errorf("expected 3 polls, got %d", backend.polls.Load())
		}
	})

	t.Run("status is compared without case", func(t *testing.T) {
		backend := newSTTBackend(t, `{"data":{"id":"job-1","status":"COMPLETED","text":"done"}}`, 1)
		svc := NewSpeechService(NewAPIService(backend.server.URL, nil), opts)

		transcript, err := svc.Transcribe(context.Background(), []byte("webm-bytes"), "audio/webm")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if transcript.Status != models.TranscriptCompleted {
			t.Errorf("expected normalized status, got %q", transcript.Status)
		}
	})

	t.Run("unknown status fails the job", func(t *testing.T) {
		for _, status := range []string{"error", "cancelled", ""} {
			t.Run(status, func(t *testing.T) {
				backend := newSTTBackend(t, "", -1)
				backend.running = `{"data":{"id":"job-1","status":"` + status + `"}}`
				svc := NewSpeechService(NewAPIService(backend.server.URL, nil), opts)

				_, err := svc.Transcribe(context.Background(), []byte("webm-bytes"), "audio/webm")
				if !errors.Is(err, shared.ErrTranscriptionFailed) {
					t.Errorf("expected ErrTranscriptionFailed, got %v", err)
				}
				if n := backend.polls.Load(); n != 1 {
					t.Errorf("expected polling to stop after 1 request, got %d", n)
				}
			})
		}
	})

	t.Run("gives up after the maximum wait", func(t *testing.T) {
		backend := newSTTBackend(t, "", -1)
		capped := opts
		capped.MaxWait = 40 * time.Millisecond
		svc := NewSpeechService(NewAPIService(backend.server.URL, nil), capped)

		start := time.Now()
		_, err := svc.Transcribe(context.Background(), []byte("webm-bytes"), "audio/webm")
		if err == nil {
			t.Fatal("expected error once the maximum wait passes")
		}
		if !errors.Is(err, shared.ErrTimeout) && !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected timeout or request error, got %v", err)
		}
		if elapsed := time.Since(start); elapsed > 2*time.Second {
			t.Errorf("expected polling to stop near the cap, took %v", elapsed)
		}
	})

	t.Run("context ends while polling", func(t *testing.T) {
		backend := newSTTBackend(t, "", -1)
		svc := NewSpeechService(NewAPIService(backend.server.URL, nil), opts)

		ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
		defer cancel()

		_, err := svc.Transcribe(ctx, []byte("webm-bytes"), "audio/webm")
		if err == nil {
			t.Fatal("expected error when context expires")
		}
		if !errors.Is(err, shared.ErrTimeout) && !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected timeout or request error, got %v", err)
		}
	})

	t.Run("input validation", func(t *testing.T) {
		svc := NewSpeechService(NewAPIService("http://unreachable.invalid", nil), opts)

		if _, err := svc.Transcribe(context.Background(), nil, "audio/webm"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for empty audio, got %v", err)
		}
		if _, err := svc.Transcribe(context.Background(), make([]byte, 65), "audio/webm"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for oversized audio, got %v", err)
		}
	})
}
