package shared

import "fmt"

// Sentinel errors. Call sites wrap them with %w and a detail message.
var (
	// Configuration
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Login
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrRefreshFailed    = fmt.Errorf("token refresh failed")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// Backend
	ErrAPIRequest          = fmt.Errorf("API request failed")
	ErrServiceUnavailable  = fmt.Errorf("service unavailable")
	ErrQuestionNotFound    = fmt.Errorf("question not found")
	ErrTranscriptionFailed = fmt.Errorf("transcription failed")
	ErrSynthesisFailed     = fmt.Errorf("speech synthesis failed")

	// Local store
	ErrAttemptNotFound = fmt.Errorf("attempt not found")

	// User input
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
