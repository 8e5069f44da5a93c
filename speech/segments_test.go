package speech

import (
	"testing"

	"github.com/kikuchi-mizuki/saiten/diarization"
)

func TestBuildStoreSortsByStart(t *testing.T) {
	turns := []diarization.Turn{
		{Speaker: "SPEAKER_01", Start: 5, End: 10},
		{Speaker: "SPEAKER_00", Start: 0, End: 5},
		{Speaker: "SPEAKER_00", Start: 12, End: 15},
	}
	store := BuildStore(turns)

	segments := store.Segments()
	if len(segments) != len(turns) {
		t.Fatalf("expected %d segments, got %d", len(turns), len(segments))
	}
	for i := 1; i < len(segments); i++ {
		if segments[i-1].Start > segments[i].Start {
			t.Errorf("segments not sorted by start: %v", segments)
		}
	}

	// output is a permutation of the input
	counts := make(map[diarization.Turn]int)
	for _, turn := range turns {
		counts[turn]++
	}
	for _, s := range segments {
		counts[diarization.Turn{Speaker: s.Speaker, Start: s.Start, End: s.End}]--
	}
	for turn, n := range counts {
		if n != 0 {
			t.Errorf("turn %+v count off by %d", turn, n)
		}
	}
}

func TestBuildStoreStableOnEqualStarts(t *testing.T) {
	turns := []diarization.Turn{
		{Speaker: "B", Start: 1, End: 2},
		{Speaker: "A", Start: 1, End: 3},
	}
	segments := BuildStore(turns).Segments()
	if segments[0].Speaker != "B" || segments[1].Speaker != "A" {
		t.Errorf("equal starts must keep input order, got %v", segments)
	}
}

func TestBySpeaker(t *testing.T) {
	store := BuildStore([]diarization.Turn{
		{Speaker: "A", Start: 6, End: 8},
		{Speaker: "B", Start: 3, End: 6},
		{Speaker: "A", Start: 0, End: 3},
	})

	a := store.BySpeaker("A")
	if len(a) != 2 {
		t.Fatalf("expected 2 segments for A, got %d", len(a))
	}
	if a[0].Start != 0 || a[1].Start != 6 {
		t.Errorf("BySpeaker must be chronological, got %v", a)
	}
	if got := store.BySpeaker("C"); len(got) != 0 {
		t.Errorf("unknown speaker should yield no segments, got %v", got)
	}
}

func TestDurations(t *testing.T) {
	store := BuildStore([]diarization.Turn{
		{Speaker: "A", Start: 0, End: 3},
		{Speaker: "B", Start: 3, End: 9},
		{Speaker: "A", Start: 9, End: 11},
	})

	durations := store.Durations()
	if durations["A"] != 5 {
		t.Errorf("expected A total 5, got %g", durations["A"])
	}
	if durations["B"] != 6 {
		t.Errorf("expected B total 6, got %g", durations["B"])
	}
	if store.TotalDuration() != 11 {
		t.Errorf("expected total 11, got %g", store.TotalDuration())
	}
}

func TestLongestSpeaker(t *testing.T) {
	t.Run("clear winner", func(t *testing.T) {
		store := BuildStore([]diarization.Turn{
			{Speaker: "A", Start: 0, End: 120},
			{Speaker: "B", Start: 120, End: 165},
		})
		longest, ok := store.LongestSpeaker()
		if !ok || longest != "A" {
			t.Errorf("expected A, got %q (%v)", longest, ok)
		}
	})

	t.Run("empty store", func(t *testing.T) {
		if _, ok := BuildStore(nil).LongestSpeaker(); ok {
			t.Error("empty store must yield no longest speaker")
		}
	})

	t.Run("tie resolves to first appearance", func(t *testing.T) {
		store := BuildStore([]diarization.Turn{
			{Speaker: "B", Start: 0, End: 5},
			{Speaker: "A", Start: 5, End: 10},
		})
		longest, _ := store.LongestSpeaker()
		if longest != "B" {
			t.Errorf("expected tie to resolve to B, got %q", longest)
		}
	})
}

func TestSpeakers(t *testing.T) {
	store := BuildStore([]diarization.Turn{
		{Speaker: "B", Start: 0, End: 1},
		{Speaker: "A", Start: 1, End: 2},
		{Speaker: "B", Start: 2, End: 3},
	})
	speakers := store.Speakers()
	if len(speakers) != 2 || speakers[0] != "B" || speakers[1] != "A" {
		t.Errorf("expected [B A] in first-appearance order, got %v", speakers)
	}
}

func TestStats(t *testing.T) {
	store := BuildStore([]diarization.Turn{
		{Speaker: "A", Start: 0, End: 6},
		{Speaker: "B", Start: 6, End: 8},
		{Speaker: "A", Start: 8, End: 10},
	})

	stats := store.Stats()
	if stats.TotalSpeakers != 2 {
		t.Errorf("expected 2 speakers, got %d", stats.TotalSpeakers)
	}
	if stats.TotalDurationSeconds != 10 {
		t.Errorf("expected total 10, got %g", stats.TotalDurationSeconds)
	}
	if stats.Speakers[0].Speaker != "A" {
		t.Errorf("stats must be sorted by descending duration, got %v", stats.Speakers)
	}
	if stats.Speakers[0].Percentage != 80 {
		t.Errorf("expected A at 80%%, got %g", stats.Speakers[0].Percentage)
	}
	if stats.Speakers[0].SegmentCount != 2 {
		t.Errorf("expected A segment count 2, got %d", stats.Speakers[0].SegmentCount)
	}
	if stats.Speakers[1].Percentage != 20 {
		t.Errorf("expected B at 20%%, got %g", stats.Speakers[1].Percentage)
	}
}

func TestStatsEmptyStore(t *testing.T) {
	stats := BuildStore(nil).Stats()
	if stats.TotalSpeakers != 0 || stats.TotalDurationSeconds != 0 || len(stats.Speakers) != 0 {
		t.Errorf("expected zero stats for empty store, got %+v", stats)
	}
}

func TestSegmentsReturnsCopy(t *testing.T) {
	store := BuildStore([]diarization.Turn{{Speaker: "A", Start: 0, End: 1}})
	segments := store.Segments()
	segments[0].Text = "mutated"
	if store.Segments()[0].Text != "" {
		t.Error("Segments must return a copy, not the backing slice")
	}
}
