package app

import (
	"testing"

	"livepoll-service/internal/domain"
)

func TestCalculateResultsCountsSumToTotal(t *testing.T) {
	options := []string{"3", "4", "5"}
	responses := map[string]domain.Response{
		"s1": {ParticipantID: "s1", SelectedOptionIndex: 1},
		"s2": {ParticipantID: "s2", SelectedOptionIndex: 0},
		"s3": {ParticipantID: "s3", SelectedOptionIndex: 1},
	}

	results := CalculateResults(options, responses)
	if len(results) != 3 {
		t.Fatalf("expected 3 option results, got %d", len(results))
	}

	sum := 0
	for _, r := range results {
		sum += r.Count
	}
	if sum != len(responses) {
		t.Fatalf("expected counts to sum to %d, got %d", len(responses), sum)
	}
	if results[1].Count != 2 || results[1].Percentage != 67 {
		t.Fatalf("expected option 1 count=2 pct=67, got %+v", results[1])
	}
	if results[0].Count != 1 || results[0].Percentage != 33 {
		t.Fatalf("expected option 0 count=1 pct=33, got %+v", results[0])
	}
	if results[2].Count != 0 || results[2].Percentage != 0 {
		t.Fatalf("expected option 2 empty, got %+v", results[2])
	}
}

func TestCalculateResultsNoResponses(t *testing.T) {
	results := CalculateResults([]string{"yes", "no"}, nil)
	if len(results) != 2 {
		t.Fatalf("expected 2 option results, got %d", len(results))
	}
	for i, r := range results {
		if r.Count != 0 || r.Percentage != 0 {
			t.Fatalf("expected all-zero result at %d, got %+v", i, r)
		}
	}
}

func TestCalculateResultsIgnoresOutOfRangeSelections(t *testing.T) {
	responses := map[string]domain.Response{
		"s1": {ParticipantID: "s1", SelectedOptionIndex: 5},
		"s2": {ParticipantID: "s2", SelectedOptionIndex: 0},
	}
	results := CalculateResults([]string{"a", "b"}, responses)
	if results[0].Count != 1 {
		t.Fatalf("expected option 0 count=1, got %+v", results[0])
	}
	// Percentage is still computed against the full response total.
	if results[0].Percentage != 50 {
		t.Fatalf("expected option 0 pct=50, got %+v", results[0])
	}
}

func TestProgressTrackerFiresOncePerClimb(t *testing.T) {
	tr := newProgressTracker()

	if tr.observe("q1", 1, 2) {
		t.Fatalf("should not fire below full coverage")
	}
	if !tr.observe("q1", 2, 2) {
		t.Fatalf("should fire on reaching full coverage")
	}
	if tr.observe("q1", 2, 2) {
		t.Fatalf("should not re-fire at the same coverage")
	}

	// A late joiner raises the total: the notice re-arms.
	if tr.observe("q1", 2, 3) {
		t.Fatalf("should not fire after total grows")
	}
	if !tr.observe("q1", 3, 3) {
		t.Fatalf("should fire again for the new total")
	}
}

func TestProgressTrackerIgnoresEmptySession(t *testing.T) {
	tr := newProgressTracker()
	if tr.observe("q1", 0, 0) {
		t.Fatalf("zero students should never count as full coverage")
	}
}
