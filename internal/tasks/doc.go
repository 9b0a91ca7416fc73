// Package tasks orchestrates practice sessions against the interview backend with progress reporting.
//
// # Core Operations
//
// [PracticeEngine] exposes three operations:
//
//  1. [PracticeEngine.Practice] : answer a question
//     - Loads the question when only its ID is known
//     - Transcribes a recorded answer through the speech-to-text job API
//     - Submits the answer text and returns the feedback
//     - Records the attempt locally through an [AttemptRecorder]
//
//  2. [PracticeEngine.Speak] : read a question or arbitrary text aloud
//     - Looks up a cached clip by text hash through a [ClipCache]
//     - Synthesizes speech and decodes the multipart/mixed response
//     - Probes MP3 clips for duration, saves the audio and caches it
//
//  3. [PracticeEngine.ExportHistory] : write one feedback report per past answer
//     - Fetches feedback with a rate limited worker pool
//     - Writes a manifest summarizing successes and failures
//
// # Progress Reporting
//
// All operations accept an optional channel of [ProgressUpdate] values.
// Sends never block: updates are dropped when the channel is full.
//
// Persistence errors for attempts and clips are logged and do not fail the operation,
// since the backend already holds the authoritative copy.
package tasks
