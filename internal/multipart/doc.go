// Package multipart decodes the multipart/mixed responses returned by the backend's text-to-speech endpoint.
//
// A synthesis response carries two parts in a single body: a JSON document describing the request and an
// audio/mpeg payload. Decoding happens in two stages:
//
//  1. [Scan] walks the body from boundary to boundary and produces immutable [Part] records.
//  2. [Classify] dispatches each part on its Content-Type and assembles a [Result].
//
// [Decode] and [DecodeResponse] compose both stages.
//
// # Tolerance
//
// The decoder never assumes a part count or order. Parts with an unknown Content-Type are ignored,
// parts without a header/body separator are skipped, and a missing closing boundary ends the walk
// instead of failing it. When more than one JSON or audio part is present the last one wins.
//
// # Errors
//
//   - [ErrNoBoundary] : the Content-Type carried no boundary parameter
//   - [ErrParseFailed] : the walk finished without both a JSON part and an audio part
//
// A JSON part that fails to decode is fatal and is returned wrapped.
//
// Everything here operates on a fully buffered body; there is no I/O and no shared state, so concurrent
// calls need no locking.
package multipart
