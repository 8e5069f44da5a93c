package speech

import (
	"context"
	"sync"

	"github.com/kikuchi-mizuki/saiten/embedding"
	"github.com/kikuchi-mizuki/saiten/errors"
	"github.com/kikuchi-mizuki/saiten/logger"
	"github.com/kikuchi-mizuki/saiten/voiceprint"
)

// Identification methods.
const (
	MethodVoiceprint     = "voiceprint"
	MethodLongestSpeaker = "longest_speaker"
)

// Policy defaults. The values are part of the identification contract; the
// fields on IdentifyConfig exist so deployments can tune them.
const (
	DefaultThreshold   = 0.75
	DefaultSampleCap   = 3
	DefaultParallelism = 3
)

// IdentifyConfig holds the identification policy settings.
type IdentifyConfig struct {
	// Threshold is the minimum similarity for a voiceprint match.
	Threshold float64
	// SampleCap is the number of earliest segments sampled per speaker.
	SampleCap int
	// Parallelism bounds concurrent embedding extraction calls.
	Parallelism int
}

// ApplyDefaults fills unset fields with the contract defaults.
func (c *IdentifyConfig) ApplyDefaults() {
	if c.Threshold == 0 {
		c.Threshold = DefaultThreshold
	}
	if c.SampleCap == 0 {
		c.SampleCap = DefaultSampleCap
	}
	if c.Parallelism == 0 {
		c.Parallelism = DefaultParallelism
	}
}

// Identification names the speaker chosen as the target and how the choice
// was made. Confidence is set only for voiceprint matches.
type Identification struct {
	Speaker    string   `json:"speaker_id"`
	Method     string   `json:"method"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Identifier decides which detected speaker is the enrolled target speaker.
type Identifier struct {
	embedder embedding.Provider
	cfg      IdentifyConfig
	log      *logger.Logger
}

// NewIdentifier creates an Identifier using the given embedding backend.
func NewIdentifier(embedder embedding.Provider, cfg IdentifyConfig, log *logger.Logger) *Identifier {
	cfg.ApplyDefaults()
	return &Identifier{
		embedder: embedder,
		cfg:      cfg,
		log:      log.WithComponent("identify"),
	}
}

// embedJob is one per-segment embedding extraction request.
type embedJob struct {
	speaker string
	segment Segment
}

// embedResult is one settled extraction, successful or not.
type embedResult struct {
	speaker string
	vector  []float64
	err     error
}

// Identify runs the identification policy against the store. With a usable
// reference the earliest SampleCap segments of every speaker are embedded,
// merged into one representative voiceprint per speaker and scored against
// the reference; the best speaker wins if its score reaches the threshold.
// Otherwise, and whenever the reference is absent or no speaker yields a
// usable embedding, the longest speaker is chosen. Per-segment extraction
// failures are absorbed; only an empty store is an error.
func (id *Identifier) Identify(ctx context.Context, audioPath string, store *Store, reference []float64) (*Identification, error) {
	if store.Len() == 0 {
		return nil, errors.NoSpeakersDetected()
	}

	if len(reference) > 0 {
		match, err := id.matchVoiceprint(ctx, audioPath, store, reference)
		if err != nil {
			return nil, err
		}
		if match != nil {
			return match, nil
		}
	}

	longest, ok := store.LongestSpeaker()
	if !ok {
		return nil, errors.NoSpeakersDetected()
	}
	id.log.Info("falling back to longest speaker", logger.Fields(logger.FieldSpeaker, longest))
	return &Identification{
		Speaker: longest,
		Method:  MethodLongestSpeaker,
	}, nil
}

// matchVoiceprint scores every candidate speaker against the reference and
// returns a voiceprint identification, or nil when no candidate reaches the
// threshold.
func (id *Identifier) matchVoiceprint(ctx context.Context, audioPath string, store *Store, reference []float64) (*Identification, error) {
	var jobs []embedJob
	for _, speaker := range store.Speakers() {
		segments := store.BySpeaker(speaker)
		if len(segments) > id.cfg.SampleCap {
			segments = segments[:id.cfg.SampleCap]
		}
		for _, seg := range segments {
			jobs = append(jobs, embedJob{speaker: speaker, segment: seg})
		}
	}

	results := id.extractAll(ctx, audioPath, jobs)

	// Group usable embeddings per speaker. Normalization failures count as
	// unusable embeddings, same as extraction failures.
	bySpeaker := make(map[string][][]float64)
	for _, r := range results {
		if r.err != nil {
			id.log.Warn("segment embedding skipped",
				logger.ErrorFields("embed", r.err),
				logger.Fields(logger.FieldSpeaker, r.speaker))
			continue
		}
		normed, err := voiceprint.Normalize(r.vector)
		if err != nil {
			id.log.Warn("segment embedding unusable",
				logger.ErrorFields("normalize", err),
				logger.Fields(logger.FieldSpeaker, r.speaker))
			continue
		}
		bySpeaker[r.speaker] = append(bySpeaker[r.speaker], normed)
	}

	var bestSpeaker string
	bestScore := -1.0
	for _, speaker := range store.Speakers() {
		vectors := bySpeaker[speaker]
		if len(vectors) == 0 {
			continue
		}
		merged, err := voiceprint.Merge(vectors, nil)
		if err != nil {
			id.log.Warn("candidate voiceprint merge failed",
				logger.ErrorFields("merge", err),
				logger.Fields(logger.FieldSpeaker, speaker))
			continue
		}
		score, err := voiceprint.Similarity(reference, merged)
		if err != nil {
			// Dimension mismatch between the enrolled reference and the
			// extractor output is a configuration bug and must surface.
			return nil, err
		}
		id.log.Debug("candidate scored", logger.Fields(logger.FieldSpeaker, speaker, "similarity", score))
		if score > bestScore {
			bestScore = score
			bestSpeaker = speaker
		}
	}

	if bestSpeaker == "" || bestScore < id.cfg.Threshold {
		id.log.Info("voiceprint match inconclusive", logger.Fields("best_similarity", bestScore))
		return nil, nil
	}

	confidence := bestScore
	id.log.Info("voiceprint match", logger.Fields(logger.FieldSpeaker, bestSpeaker, "similarity", bestScore))
	return &Identification{
		Speaker:    bestSpeaker,
		Method:     MethodVoiceprint,
		Confidence: &confidence,
	}, nil
}

// extractAll runs every embedding job with bounded parallelism and returns
// only after all jobs have settled.
func (id *Identifier) extractAll(ctx context.Context, audioPath string, jobs []embedJob) []embedResult {
	in := make(chan embedJob)
	out := make(chan embedResult, len(jobs))

	workers := id.cfg.Parallelism
	if workers > len(jobs) {
		workers = len(jobs)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range in {
				vec, err := id.embedder.Extract(ctx, embedding.Request{
					AudioPath: audioPath,
					Start:     job.segment.Start,
					End:       job.segment.End,
				})
				out <- embedResult{speaker: job.speaker, vector: vec, err: err}
			}
		}()
	}

	for _, job := range jobs {
		in <- job
	}
	close(in)
	wg.Wait()
	close(out)

	results := make([]embedResult, 0, len(jobs))
	for r := range out {
		results = append(results, r)
	}
	return results
}
