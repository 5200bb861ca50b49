package app

import "livepoll-service/internal/domain"

// progressTracker derives answered/total per active question and decides
// when the all-answered notice fires. It fires exactly once per climb to
// full coverage and re-arms as soon as coverage drops below full (a late
// joiner raising the total, an eviction removing an answer).
type progressTracker struct {
	notified map[string]bool // question id -> notice already fired at current coverage
}

func newProgressTracker() *progressTracker {
	return &progressTracker{notified: make(map[string]bool)}
}

// observe feeds the tracker a fresh answered/total pair and reports whether
// the all-answered notice should fire now.
func (t *progressTracker) observe(questionID string, answered, total int) bool {
	full := total > 0 && answered == total
	if !full {
		t.notified[questionID] = false
		return false
	}
	if t.notified[questionID] {
		return false
	}
	t.notified[questionID] = true
	return true
}

// forget drops tracking state for an ended question.
func (t *progressTracker) forget(questionID string) {
	delete(t.notified, questionID)
}

func progressOf(answered, total int) domain.Progress {
	return domain.Progress{Answered: answered, Total: total}
}
