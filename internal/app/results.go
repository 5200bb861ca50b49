package app

import (
	"math"

	"livepoll-service/internal/domain"
)

// CalculateResults tallies responses per option. Pure: no state, no side
// effects. With zero responses every option reports zero; out-of-range
// selections are ignored rather than counted.
func CalculateResults(options []string, responses map[string]domain.Response) []domain.OptionResult {
	results := make([]domain.OptionResult, len(options))
	for i, opt := range options {
		results[i] = domain.OptionResult{OptionText: opt}
	}

	total := len(responses)
	if total == 0 {
		return results
	}

	for _, r := range responses {
		if r.SelectedOptionIndex >= 0 && r.SelectedOptionIndex < len(results) {
			results[r.SelectedOptionIndex].Count++
		}
	}
	for i := range results {
		results[i].Percentage = int(math.Round(float64(results[i].Count) / float64(total) * 100))
	}
	return results
}
