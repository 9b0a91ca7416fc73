// package audio inspects and stores speech clips.
//
// Synthesized clips arrive as MP3 bytes from the text-to-speech endpoint. [Probe] walks
// the MP3 frames to recover sample rate and duration, and [Save] writes a clip under
// the configured output directory. Recorded answers are loaded with [Load], which
// infers the MIME type from the file extension for the transcription upload.
package audio
