package speech

import (
	"context"
	"sync"

	"github.com/kikuchi-mizuki/saiten/config"
	"github.com/kikuchi-mizuki/saiten/diarization"
	"github.com/kikuchi-mizuki/saiten/diarization/pyannote"
	"github.com/kikuchi-mizuki/saiten/embedding"
	"github.com/kikuchi-mizuki/saiten/embedding/ecapa"
	"github.com/kikuchi-mizuki/saiten/errors"
	"github.com/kikuchi-mizuki/saiten/logger"
	"github.com/kikuchi-mizuki/saiten/transcription"
	"github.com/kikuchi-mizuki/saiten/transcription/openai"
	"github.com/kikuchi-mizuki/saiten/transcription/whisper"
	"github.com/kikuchi-mizuki/saiten/voiceprint"
)

// ReferenceLoader supplies the enrolled reference voiceprint. A nil vector
// with a nil error means no enrollment exists.
type ReferenceLoader interface {
	LoadReference(ctx context.Context) ([]float64, error)
}

// Service wires the extraction pipeline from configuration. The model
// backends are built exactly once on first use; concurrent first calls do
// not race to double-initialize. The providers themselves are stateless
// HTTP clients and safe for concurrent requests afterwards.
type Service struct {
	cfg  *config.Config
	refs ReferenceLoader
	log  *logger.Logger

	initOnce  sync.Once
	initErr   error
	extractor *Extractor
	diarizer  diarization.Provider
	embedder  embedding.Provider
}

// NewService creates a Service. refs may be nil, in which case extraction
// always uses the caller-provided reference (or the fallback).
func NewService(cfg *config.Config, refs ReferenceLoader, log *logger.Logger) *Service {
	return &Service{
		cfg:  cfg,
		refs: refs,
		log:  log.WithComponent("speech"),
	}
}

// init builds the providers behind a sync.Once guard.
func (s *Service) init() error {
	s.initOnce.Do(func() {
		diaReg := diarization.NewRegistry()
		diaReg.RegisterFactory(pyannote.ProviderName, pyannote.Factory())
		diarizer, err := diaReg.Create(pyannote.ProviderName, map[string]any{
			"base_url": s.cfg.Diarization.BaseURL,
			"timeout":  s.cfg.Diarization.Timeout,
		})
		if err != nil {
			s.initErr = err
			return
		}

		embReg := embedding.NewRegistry()
		embReg.RegisterFactory(ecapa.ProviderName, ecapa.Factory())
		embedder, err := embReg.Create(ecapa.ProviderName, map[string]any{
			"base_url": s.cfg.Embedding.BaseURL,
			"timeout":  s.cfg.Embedding.Timeout,
		})
		if err != nil {
			s.initErr = err
			return
		}

		trReg := transcription.NewRegistry()
		trReg.RegisterFactory(whisper.ProviderName, whisper.Factory())
		trReg.RegisterFactory(openai.ProviderName, openai.Factory())
		transcriber, err := trReg.Create(s.cfg.Transcription.Backend, map[string]any{
			"url":      s.cfg.Transcription.BaseURL,
			"base_url": s.cfg.Transcription.BaseURL,
			"api_key":  s.cfg.Transcription.APIKey,
			"model":    s.cfg.Transcription.Model,
			"language": s.cfg.Transcription.Language,
			"timeout":  s.cfg.Transcription.Timeout,
		})
		if err != nil {
			s.initErr = err
			return
		}

		identifier := NewIdentifier(embedder, IdentifyConfig{
			Threshold:   s.cfg.Identify.Threshold,
			SampleCap:   s.cfg.Identify.SampleCap,
			Parallelism: s.cfg.Identify.Parallelism,
		}, s.log)

		s.diarizer = diarizer
		s.embedder = embedder
		s.extractor = NewExtractor(diarizer, transcriber, identifier, s.cfg.Transcription.Language, s.log)
		s.log.Info("speech pipeline initialized", logger.Fields(
			"diarizer", diarizer.Name(),
			"transcriber", transcriber.Name(),
			"embedder", embedder.Name(),
		))
	})
	return s.initErr
}

// ComputeVoiceprint extracts a whole-file voice embedding and returns it
// unit-normalized, ready for enrollment.
func (s *Service) ComputeVoiceprint(ctx context.Context, audioPath string) ([]float64, error) {
	if err := s.init(); err != nil {
		return nil, err
	}
	vec, err := s.embedder.Extract(ctx, embedding.Request{AudioPath: audioPath})
	if err != nil {
		return nil, errors.EmbeddingFailed(err)
	}
	return voiceprint.Normalize(vec)
}

// IdentifySpeakers runs turn detection only and returns the segments with
// per-speaker statistics.
func (s *Service) IdentifySpeakers(ctx context.Context, audioPath string) (*Store, error) {
	if err := s.init(); err != nil {
		return nil, err
	}
	resp, err := s.diarizer.Diarize(ctx, diarization.Request{
		AudioPath: audioPath,
		Language:  s.cfg.Transcription.Language,
	})
	if err != nil {
		return nil, errors.DiarizationFailed(err)
	}
	return BuildStore(resp.Turns), nil
}

// ExtractTargetSpeech runs the full extraction pipeline. When the loader is
// configured the enrolled reference is fetched first; absence of an
// enrollment forces the longest-speaker fallback.
func (s *Service) ExtractTargetSpeech(ctx context.Context, audioPath string) (*Result, error) {
	if err := s.init(); err != nil {
		return nil, err
	}

	var reference []float64
	if s.refs != nil {
		ref, err := s.refs.LoadReference(ctx)
		if err != nil {
			return nil, err
		}
		reference = ref
	}

	return s.extractor.Extract(ctx, audioPath, reference)
}
