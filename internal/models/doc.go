// Package models defines domain entities and persistence interfaces for prepx.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): structs mirroring the interview backend's JSON
//   - [Question] : A practice or real interview question with expected keywords
//   - [AnswerSubmission] : A typed or transcribed answer sent for feedback
//   - [Feedback] : AI-generated score, strengths, improvements and keyword coverage
//   - [HistoryItem] : One row of the user's remote answer history
//   - [Transcript] : State of a speech-to-text job
//   - [SpeechMeta] : JSON metadata returned alongside synthesized speech
//
// 2. Persistent Entities: rows in the local SQLite store
//   - [Attempt] : A submitted answer with its feedback, kept for offline review
//   - [SpeechClip] : A synthesized question clip cached on disk
//
// Persistent entities implement [Model]; repositories implement [Repository].
package models
