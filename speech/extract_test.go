package speech

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/kikuchi-mizuki/saiten/diarization"
	"github.com/kikuchi-mizuki/saiten/errors"
	"github.com/kikuchi-mizuki/saiten/logger"
	"github.com/kikuchi-mizuki/saiten/transcription"
)

type fakeDiarizer struct {
	turns []diarization.Turn
	err   error
}

func (f *fakeDiarizer) Name() string                       { return "fake-diarizer" }
func (f *fakeDiarizer) IsAvailable(_ context.Context) bool { return true }
func (f *fakeDiarizer) Diarize(_ context.Context, _ diarization.Request) (*diarization.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &diarization.Response{Turns: f.turns}, nil
}

type fakeTranscriber struct {
	segments []transcription.Segment
	err      error
}

func (f *fakeTranscriber) Name() string                       { return "fake-transcriber" }
func (f *fakeTranscriber) IsAvailable(_ context.Context) bool { return true }
func (f *fakeTranscriber) Transcribe(_ context.Context, _ transcription.Request) (*transcription.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &transcription.Response{Segments: f.segments}, nil
}

func testExtractor(d *fakeDiarizer, tr *fakeTranscriber, emb *fakeEmbedder) *Extractor {
	log := logger.NewDefault("test")
	return NewExtractor(d, tr, NewIdentifier(emb, IdentifyConfig{}, log), "ja", log)
}

func TestExtractEndToEnd(t *testing.T) {
	// SPEAKER_01 matches the reference at 0.82; its segments are fully
	// covered by two fragments
	d := &fakeDiarizer{turns: []diarization.Turn{
		{Speaker: "SPEAKER_00", Start: 9, End: 12},
		{Speaker: "SPEAKER_01", Start: 0, End: 3},
		{Speaker: "SPEAKER_01", Start: 3, End: 9},
	}}
	tr := &fakeTranscriber{segments: []transcription.Segment{
		{Start: 0, End: 3, Text: "Hello"},
		{Start: 3, End: 9, Text: "world"},
	}}
	cos := 2*0.82 - 1
	emb := &fakeEmbedder{vectors: map[float64][]float64{
		0: {cos, sin(cos), 0},
		3: {cos, sin(cos), 0},
		9: {-1, 0, 0},
	}}
	reference := []float64{1, 0, 0}

	result, err := testExtractor(d, tr, emb).Extract(context.Background(), "lecture.wav", reference)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if result.Speaker != "SPEAKER_01" {
		t.Errorf("expected SPEAKER_01, got %q", result.Speaker)
	}
	if result.Method != MethodVoiceprint {
		t.Errorf("expected voiceprint method, got %q", result.Method)
	}
	if result.Confidence == nil || !almost(*result.Confidence, 0.82) {
		t.Errorf("expected confidence 0.82, got %v", result.Confidence)
	}
	if result.Text != "Hello world" {
		t.Errorf("expected extracted text \"Hello world\", got %q", result.Text)
	}
	if result.Stats.TotalSpeakers != 2 {
		t.Errorf("expected stats for 2 speakers, got %+v", result.Stats)
	}
}

func TestExtractFallbackWithoutReference(t *testing.T) {
	d := &fakeDiarizer{turns: []diarization.Turn{
		{Speaker: "A", Start: 0, End: 120},
		{Speaker: "B", Start: 120, End: 165},
	}}
	tr := &fakeTranscriber{segments: []transcription.Segment{
		{Start: 10, End: 20, Text: "lecture content"},
	}}

	result, err := testExtractor(d, tr, &fakeEmbedder{}).Extract(context.Background(), "lecture.wav", nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if result.Speaker != "A" || result.Method != MethodLongestSpeaker {
		t.Errorf("expected longest-speaker A, got %+v", result)
	}
	if result.Confidence != nil {
		t.Error("fallback result must not carry a confidence")
	}
	if result.Text != "lecture content" {
		t.Errorf("expected fragment text, got %q", result.Text)
	}
}

func TestExtractSkipsTextlessSegments(t *testing.T) {
	d := &fakeDiarizer{turns: []diarization.Turn{
		{Speaker: "A", Start: 0, End: 5},
		{Speaker: "A", Start: 5, End: 10},
		{Speaker: "A", Start: 10, End: 15},
	}}
	// the middle segment receives no fragment
	tr := &fakeTranscriber{segments: []transcription.Segment{
		{Start: 0, End: 5, Text: "first"},
		{Start: 10, End: 15, Text: "third"},
	}}

	result, err := testExtractor(d, tr, &fakeEmbedder{}).Extract(context.Background(), "a.wav", nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if result.Text != "first third" {
		t.Errorf("textless segments must be skipped, got %q", result.Text)
	}
}

func TestExtractDiarizationFailureIsFatal(t *testing.T) {
	d := &fakeDiarizer{err: fmt.Errorf("model unavailable")}
	tr := &fakeTranscriber{}

	_, err := testExtractor(d, tr, &fakeEmbedder{}).Extract(context.Background(), "a.wav", nil)
	if !errors.IsCode(err, errors.ErrCodeDiarizationFailed) {
		t.Errorf("expected DIARIZATION_FAILED, got %v", err)
	}
}

func TestExtractTranscriptionFailureIsFatal(t *testing.T) {
	d := &fakeDiarizer{turns: []diarization.Turn{{Speaker: "A", Start: 0, End: 5}}}
	tr := &fakeTranscriber{err: fmt.Errorf("service down")}

	_, err := testExtractor(d, tr, &fakeEmbedder{}).Extract(context.Background(), "a.wav", nil)
	if !errors.IsCode(err, errors.ErrCodeTranscriptionFailed) {
		t.Errorf("expected TRANSCRIPTION_FAILED, got %v", err)
	}
}

func TestExtractEmptyDetectionIsFatal(t *testing.T) {
	d := &fakeDiarizer{}
	tr := &fakeTranscriber{}

	_, err := testExtractor(d, tr, &fakeEmbedder{}).Extract(context.Background(), "a.wav", nil)
	if !errors.IsCode(err, errors.ErrCodeNoSpeakersDetected) {
		t.Errorf("expected NO_SPEAKERS_DETECTED, got %v", err)
	}
}

func sin(cos float64) float64 {
	s := 1 - cos*cos
	if s < 0 {
		s = 0
	}
	return math.Sqrt(s)
}
