package speech

import (
	"github.com/kikuchi-mizuki/saiten/transcription"
)

// Alignment maps segment index to the transcript text accumulated for that
// segment. Building an explicit result instead of mutating segments keeps
// shared segment slices safe under concurrent alignment.
type Alignment map[int]string

// Align assigns every transcript fragment to the segment with maximal
// temporal overlap. Fragments are processed in input order; a fragment with
// zero overlap against every segment is dropped. Ties on overlap resolve to
// the earliest-scanned segment, and segments are expected in chronological
// order, so the earliest segment wins.
func Align(segments []Segment, fragments []transcription.Segment) Alignment {
	result := make(Alignment)
	for _, f := range fragments {
		bestIdx := -1
		bestOverlap := 0.0
		for i, s := range segments {
			o := overlap(f.Start, f.End, s.Start, s.End)
			if o > bestOverlap {
				bestOverlap = o
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			continue
		}
		if existing, ok := result[bestIdx]; ok {
			result[bestIdx] = existing + " " + f.Text
		} else {
			result[bestIdx] = f.Text
		}
	}
	return result
}

// Apply returns a copy of segments with the aligned texts filled in.
// Segments that already carry text get aligned text appended after a single
// space; alignment is a one-shot pass, so applying the same alignment twice
// doubles the text.
func (a Alignment) Apply(segments []Segment) []Segment {
	out := make([]Segment, len(segments))
	copy(out, segments)
	for idx, text := range a {
		if idx < 0 || idx >= len(out) {
			continue
		}
		if out[idx].Text == "" {
			out[idx].Text = text
		} else {
			out[idx].Text += " " + text
		}
	}
	return out
}

// overlap returns the duration of the intersection of [aStart, aEnd) and
// [bStart, bEnd), zero when disjoint.
func overlap(aStart, aEnd, bStart, bEnd float64) float64 {
	start := aStart
	if bStart > start {
		start = bStart
	}
	end := aEnd
	if bEnd < end {
		end = bEnd
	}
	if end <= start {
		return 0
	}
	return end - start
}
