package speech

import (
	"math"
	"sort"

	"github.com/kikuchi-mizuki/saiten/diarization"
)

// Segment is one contiguous turn attributed to one detected speaker.
// Speaker labels are stable only within a single audio file.
type Segment struct {
	Speaker string  `json:"speaker_id"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text,omitempty"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 { return s.End - s.Start }

// Store holds the ordered speaker segments of one audio file. All queries
// are pure; segments are never removed.
type Store struct {
	segments []Segment
}

// BuildStore converts raw detector turns, in any order, into a store of
// segments sorted by start time. Equal start times keep detector output
// order.
func BuildStore(turns []diarization.Turn) *Store {
	segments := make([]Segment, len(turns))
	for i, t := range turns {
		segments[i] = Segment{
			Speaker: t.Speaker,
			Start:   t.Start,
			End:     t.End,
		}
	}
	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Start < segments[j].Start
	})
	return &Store{segments: segments}
}

// Len returns the number of segments.
func (st *Store) Len() int { return len(st.segments) }

// Segments returns a copy of all segments in chronological order.
func (st *Store) Segments() []Segment {
	out := make([]Segment, len(st.segments))
	copy(out, st.segments)
	return out
}

// Speakers returns the distinct speaker labels in order of first appearance.
func (st *Store) Speakers() []string {
	seen := make(map[string]bool, len(st.segments))
	var speakers []string
	for _, s := range st.segments {
		if !seen[s.Speaker] {
			seen[s.Speaker] = true
			speakers = append(speakers, s.Speaker)
		}
	}
	return speakers
}

// BySpeaker returns all segments of the given speaker in chronological order.
func (st *Store) BySpeaker(speaker string) []Segment {
	var out []Segment
	for _, s := range st.segments {
		if s.Speaker == speaker {
			out = append(out, s)
		}
	}
	return out
}

// Durations returns total speaking time per speaker.
func (st *Store) Durations() map[string]float64 {
	durations := make(map[string]float64)
	for _, s := range st.segments {
		durations[s.Speaker] += s.Duration()
	}
	return durations
}

// TotalDuration returns the total speaking time across all speakers.
func (st *Store) TotalDuration() float64 {
	var total float64
	for _, s := range st.segments {
		total += s.Duration()
	}
	return total
}

// LongestSpeaker returns the speaker with the greatest total speaking time.
// Equal totals resolve to the speaker appearing first in the audio.
func (st *Store) LongestSpeaker() (string, bool) {
	durations := st.Durations()
	if len(durations) == 0 {
		return "", false
	}
	var longest string
	best := math.Inf(-1)
	for _, speaker := range st.Speakers() {
		if d := durations[speaker]; d > best {
			best = d
			longest = speaker
		}
	}
	return longest, true
}

// SpeakerStat is one speaker's share of the audio.
type SpeakerStat struct {
	Speaker         string  `json:"speaker_id"`
	DurationSeconds float64 `json:"duration_seconds"`
	Percentage      float64 `json:"percentage"`
	SegmentCount    int     `json:"segment_count"`
}

// Stats is the per-speaker duration breakdown for display.
type Stats struct {
	TotalSpeakers        int           `json:"total_speakers"`
	TotalDurationSeconds float64       `json:"total_duration_seconds"`
	Speakers             []SpeakerStat `json:"speakers"`
}

// Stats returns the per-speaker breakdown sorted by descending duration.
// Durations and percentages are rounded to one decimal place.
func (st *Store) Stats() Stats {
	durations := st.Durations()
	total := st.TotalDuration()

	counts := make(map[string]int)
	for _, s := range st.segments {
		counts[s.Speaker]++
	}

	speakers := make([]SpeakerStat, 0, len(durations))
	for speaker, duration := range durations {
		percentage := 0.0
		if total > 0 {
			percentage = duration / total * 100
		}
		speakers = append(speakers, SpeakerStat{
			Speaker:         speaker,
			DurationSeconds: round1(duration),
			Percentage:      round1(percentage),
			SegmentCount:    counts[speaker],
		})
	}
	sort.Slice(speakers, func(i, j int) bool {
		if speakers[i].DurationSeconds != speakers[j].DurationSeconds {
			return speakers[i].DurationSeconds > speakers[j].DurationSeconds
		}
		return speakers[i].Speaker < speakers[j].Speaker
	})

	return Stats{
		TotalSpeakers:        len(durations),
		TotalDurationSeconds: round1(total),
		Speakers:             speakers,
	}
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
