// Package speech isolates the speech of one enrolled target speaker from a
// multi-speaker recording.
//
// The pipeline runs in five steps per audio file: speaker-turn detection,
// store construction, target-speaker identification (voiceprint comparison
// with a longest-speaker fallback), transcription, and transcript alignment
// by temporal overlap. Each extraction request is a self-contained unit of
// work; only the lazily-built model backends are shared across requests.
package speech
