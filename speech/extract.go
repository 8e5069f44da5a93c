package speech

import (
	"context"
	"strings"
	"time"

	"github.com/kikuchi-mizuki/saiten/diarization"
	"github.com/kikuchi-mizuki/saiten/errors"
	"github.com/kikuchi-mizuki/saiten/logger"
	"github.com/kikuchi-mizuki/saiten/transcription"
)

// Result is the outcome of one extraction run.
type Result struct {
	// Speaker is the speaker label chosen as the target.
	Speaker string `json:"speaker_id"`
	// Method is how the speaker was chosen: voiceprint or longest_speaker.
	Method string `json:"method"`
	// Confidence is the voiceprint similarity, set only for voiceprint matches.
	Confidence *float64 `json:"confidence,omitempty"`
	// Text is the target speaker's combined transcript.
	Text string `json:"text"`
	// Stats is the per-speaker duration breakdown.
	Stats Stats `json:"statistics"`
	// Segments are all speaker segments with aligned transcript texts.
	Segments []Segment `json:"segments"`
}

// Extractor sequences the full pipeline: turn detection, speaker
// identification, transcription, alignment and text extraction.
type Extractor struct {
	diarizer    diarization.Provider
	transcriber transcription.Provider
	identifier  *Identifier
	language    string
	log         *logger.Logger
}

// NewExtractor creates an Extractor over the given backends.
func NewExtractor(diarizer diarization.Provider, transcriber transcription.Provider, identifier *Identifier, language string, log *logger.Logger) *Extractor {
	return &Extractor{
		diarizer:    diarizer,
		transcriber: transcriber,
		identifier:  identifier,
		language:    language,
		log:         log.WithComponent("extract"),
	}
}

// Extract isolates the target speaker's speech from the audio file.
// A nil reference skips voiceprint matching and forces the longest-speaker
// fallback. Turn detection and transcription failures abort the run;
// per-segment embedding failures inside identification do not.
func (e *Extractor) Extract(ctx context.Context, audioPath string, reference []float64) (*Result, error) {
	started := time.Now()

	turns, err := e.diarizer.Diarize(ctx, diarization.Request{
		AudioPath: audioPath,
		Language:  e.language,
	})
	if err != nil {
		return nil, errors.DiarizationFailed(err)
	}

	store := BuildStore(turns.Turns)
	if store.Len() == 0 {
		return nil, errors.NoSpeakersDetected()
	}
	e.log.Info("speaker turns detected", logger.Fields(
		logger.FieldStage, "diarize",
		"segments", store.Len(),
		"speakers", len(store.Speakers()),
	))

	ident, err := e.identifier.Identify(ctx, audioPath, store, reference)
	if err != nil {
		return nil, err
	}

	transcript, err := e.transcriber.Transcribe(ctx, transcription.Request{
		AudioPath: audioPath,
		Language:  e.language,
	})
	if err != nil {
		return nil, errors.TranscriptionFailed(err)
	}
	e.log.Info("transcription complete", logger.Fields(
		logger.FieldStage, "transcribe",
		"fragments", len(transcript.Segments),
	))

	segments := Align(store.Segments(), transcript.Segments).Apply(store.Segments())

	text := joinSpeakerText(segments, ident.Speaker)
	e.log.Info("extraction complete",
		logger.DurationFields("extract", time.Since(started)),
		logger.Fields(
			logger.FieldSpeaker, ident.Speaker,
			"method", ident.Method,
			"text_length", len(text),
		))

	return &Result{
		Speaker:    ident.Speaker,
		Method:     ident.Method,
		Confidence: ident.Confidence,
		Text:       text,
		Stats:      store.Stats(),
		Segments:   segments,
	}, nil
}

// joinSpeakerText joins the texts of the given speaker's segments with
// single spaces in chronological order, skipping segments without text.
func joinSpeakerText(segments []Segment, speaker string) string {
	var texts []string
	for _, s := range segments {
		if s.Speaker == speaker && s.Text != "" {
			texts = append(texts, s.Text)
		}
	}
	return strings.Join(texts, " ")
}
