// Package repositories implements SQLite persistence for local practice data.
//
// Key Implementations:
//   - [AttemptRepository] : answers and the feedback they received, soft deleted
//   - [SpeechClipRepository] : synthesized clips on disk, keyed by text hash
//   - [TokenRepository] : OAuth tokens, satisfies services.TokenStore
//
// Sequence numbers give rows a stable local ordering independent of UUIDs and timestamps.
// [NextSequence] increments the per-table counter kept in a <table>_sequence table.
package repositories
