// Package services implements the client side of the interview practice backend.
//
// # API Client
//
// [APIService] is the generic HTTP client every other service is built on. It resolves paths against the
// backend base URL, paces requests with an optional [rate.Limiter], buffers bodies, and turns non-2xx
// responses into [APIError] values carrying the backend's message field.
//
// # Sessions
//
// [Session] wraps an [oauth2.Config] and a [TokenStore]. It implements [oauth2.TokenSource], so the
// [http.Client] returned by [Session.Client] attaches bearer tokens and refreshes them transparently.
// Refreshed tokens are written back to the store.
//
// # Interview Service
//
// [InterviewService] implements [Service]: questions, answer submission, feedback and history. The
// backend wraps payloads in a {"message", "data"} envelope which is unwrapped here.
//
// # Speech Service
//
// [SpeechService] covers both directions of audio:
//   - [SpeechService.SynthesizeVoice] posts text to /tts and decodes the multipart/mixed response into
//     JSON metadata plus an MP3 payload with the multipart package
//   - [SpeechService.Transcribe] uploads a recording to a presigned URL, starts a transcription job and
//     polls it until it finishes
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrNotAuthenticated] : no token, or the backend answered 401
//   - [shared.ErrRefreshFailed] : the stored refresh token was rejected
//   - [shared.ErrAPIRequest] : HTTP request failed or returned a non-2xx status
//   - [shared.ErrQuestionNotFound] : the backend answered 404 for a question
//   - [shared.ErrSynthesisFailed] : the synthesis response could not be decoded
//   - [shared.ErrTranscriptionFailed] : the transcription job failed
package services
