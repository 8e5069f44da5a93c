package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// External model/service errors (retryable)
const (
	// ErrCodeDiarizationFailed indicates the speaker-turn detector failed or is unavailable.
	ErrCodeDiarizationFailed ErrorCode = "DIARIZATION_FAILED"
	// ErrCodeTranscriptionFailed indicates the transcription backend failed or is unavailable.
	ErrCodeTranscriptionFailed ErrorCode = "TRANSCRIPTION_FAILED"
	// ErrCodeEmbeddingFailed indicates a voice-embedding extraction call failed.
	ErrCodeEmbeddingFailed ErrorCode = "EMBEDDING_FAILED"
	// ErrCodeServiceUnavailable indicates a backend sidecar is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Audio/input errors
const (
	// ErrCodeAudioUnreadable indicates the audio file could not be read or decoded.
	ErrCodeAudioUnreadable ErrorCode = "AUDIO_UNREADABLE"
	// ErrCodeNoSpeakersDetected indicates diarization produced no speaker turns.
	ErrCodeNoSpeakersDetected ErrorCode = "NO_SPEAKERS_DETECTED"
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Vector contract violations (programming errors, never retried)
const (
	// ErrCodeDimensionMismatch indicates two compared vectors have different dimensions.
	ErrCodeDimensionMismatch ErrorCode = "DIMENSION_MISMATCH"
	// ErrCodeEmptyInput indicates an empty vector list was passed to merge.
	ErrCodeEmptyInput ErrorCode = "EMPTY_INPUT"
	// ErrCodeLengthMismatch indicates weight and vector counts differ.
	ErrCodeLengthMismatch ErrorCode = "LENGTH_MISMATCH"
	// ErrCodeDegenerateVector indicates a zero-norm vector cannot be normalized.
	ErrCodeDegenerateVector ErrorCode = "DEGENERATE_VECTOR"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeDatabaseError indicates a voiceprint store error.
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeDiarizationFailed:   true,
	ErrCodeTranscriptionFailed: true,
	ErrCodeEmbeddingFailed:     true,
	ErrCodeServiceUnavailable:  true,
	ErrCodeTimeout:             true,
	ErrCodeDatabaseError:       true,
	ErrCodeInternal:            false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
