// Package errors provides unified error handling for the speech extraction
// service. It implements structured error types with error codes, HTTP status
// mapping, and retryable detection.
package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Common Error Constructors ---

// DiarizationFailed creates an AppError for a failed speaker-turn detection stage.
func DiarizationFailed(cause error) *AppError {
	return New(ErrCodeDiarizationFailed, "Speaker diarization failed.", http.StatusBadGateway).
		WithCause(cause).WithDetail("stage", "diarization")
}

// TranscriptionFailed creates an AppError for a failed transcription stage.
func TranscriptionFailed(cause error) *AppError {
	return New(ErrCodeTranscriptionFailed, "Audio transcription failed.", http.StatusBadGateway).
		WithCause(cause).WithDetail("stage", "transcription")
}

// EmbeddingFailed creates an AppError for a failed voice-embedding extraction.
func EmbeddingFailed(cause error) *AppError {
	return New(ErrCodeEmbeddingFailed, "Voice embedding extraction failed.", http.StatusBadGateway).
		WithCause(cause).WithDetail("stage", "embedding")
}

// AudioUnreadable creates an AppError for an unreadable audio file.
func AudioUnreadable(path string, cause error) *AppError {
	return New(ErrCodeAudioUnreadable, "The audio file could not be read.", http.StatusBadRequest).
		WithCause(cause).WithDetail("path", path)
}

// NoSpeakersDetected creates an AppError for audio with no detected speaker turns.
func NoSpeakersDetected() *AppError {
	return New(ErrCodeNoSpeakersDetected, "No speakers were detected in the audio.", http.StatusUnprocessableEntity)
}

// DimensionMismatch creates an AppError for comparing vectors of different dimensions.
func DimensionMismatch(a, b int) *AppError {
	return New(ErrCodeDimensionMismatch,
		fmt.Sprintf("Vector dimensions do not match: %d vs %d.", a, b),
		http.StatusInternalServerError)
}

// EmptyInput creates an AppError for merging an empty vector list.
func EmptyInput() *AppError {
	return New(ErrCodeEmptyInput, "Vector list is empty.", http.StatusInternalServerError)
}

// LengthMismatch creates an AppError for mismatched weight and vector counts.
func LengthMismatch(vectors, weights int) *AppError {
	return New(ErrCodeLengthMismatch,
		fmt.Sprintf("Vector and weight counts do not match: %d vs %d.", vectors, weights),
		http.StatusInternalServerError)
}

// DegenerateVector creates an AppError for a zero-norm vector.
func DegenerateVector() *AppError {
	return New(ErrCodeDegenerateVector, "Vector has zero norm and cannot be normalized.", http.StatusInternalServerError)
}

// NotFound creates an AppError for a missing resource.
func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("The %s was not found.", resource), http.StatusNotFound)
}

// InvalidInput creates an AppError for invalid input.
func InvalidInput(message string) *AppError {
	return New(ErrCodeInvalidInput, message, http.StatusBadRequest)
}

// Database creates an AppError for a voiceprint store failure.
func Database(cause error) *AppError {
	return New(ErrCodeDatabaseError, "Voiceprint store operation failed.", http.StatusInternalServerError).
		WithCause(cause)
}

// Internal creates an AppError for an unexpected internal error.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "An internal error occurred.", http.StatusInternalServerError).
		WithCause(cause)
}
