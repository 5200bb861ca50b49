package app

import (
	"time"

	"livepoll-service/internal/domain"
)

// pollSet owns the active questions, their live response collections, and
// the archived history. State machine per question: Created -> Active ->
// Ended, no back-transitions; a question id is never in the active set and
// the history at the same time. The coordinator serializes all access.
type pollSet struct {
	active    []domain.Question
	responses map[string]map[string]domain.Response // question id -> participant id -> response
	history   []domain.HistoryEntry

	now   func() time.Time
	newID func() string
}

func newPollSet(now func() time.Time, newID func() string) *pollSet {
	return &pollSet{
		responses: make(map[string]map[string]domain.Response),
		now:       now,
		newID:     newID,
	}
}

// create opens a question, active immediately. The sequence number is
// len(active)+1 at creation time; with concurrent active questions this can
// repeat across a session, which matches the source behavior and is kept.
func (p *pollSet) create(text string, options []string, correctIndex, timerSeconds int) domain.Question {
	now := p.now()
	q := domain.Question{
		ID:                 p.newID(),
		SequenceNumber:     len(p.active) + 1,
		Text:               text,
		Options:            options,
		CorrectOptionIndex: correctIndex,
		TimerSeconds:       timerSeconds,
		CreatedAt:          now,
		DeadlineAt:         now.Add(time.Duration(timerSeconds) * time.Second),
	}
	p.active = append(p.active, q)
	p.responses[q.ID] = make(map[string]domain.Response)
	return q
}

// submit records one response per (question, student). The advisory deadline
// is not checked: submissions are accepted until the question is manually
// ended.
func (p *pollSet) submit(questionID string, student *domain.Participant, optionIndex int) (domain.Response, error) {
	if p.question(questionID) == nil {
		return domain.Response{}, domain.ErrQuestionNotFound
	}
	set := p.responses[questionID]
	if _, dup := set[student.ID]; dup {
		return domain.Response{}, domain.ErrAlreadyAnswered
	}
	resp := domain.Response{
		ParticipantID:       student.ID,
		StudentName:         student.Name,
		SelectedOptionIndex: optionIndex,
		SubmittedAt:         p.now(),
	}
	set[student.ID] = resp
	return resp, nil
}

// end archives a question: final results are frozen into a history entry,
// the question leaves the active set, and its live responses are discarded.
func (p *pollSet) end(questionID string) (domain.HistoryEntry, error) {
	idx := -1
	for i := range p.active {
		if p.active[i].ID == questionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.HistoryEntry{}, domain.ErrQuestionNotFound
	}

	q := p.active[idx]
	set := p.responses[questionID]
	entry := domain.HistoryEntry{
		Question:       q,
		Results:        CalculateResults(q.Options, set),
		TotalResponses: len(set),
		ArchivedAt:     p.now(),
	}
	p.active = append(p.active[:idx], p.active[idx+1:]...)
	delete(p.responses, questionID)
	p.history = append(p.history, entry)
	return entry, nil
}

// deleteHistory permanently removes one archived poll. Missing ids are
// reported but never surfaced to clients.
func (p *pollSet) deleteHistory(id string) error {
	for i := range p.history {
		if p.history[i].Question.ID == id {
			p.history = append(p.history[:i], p.history[i+1:]...)
			return nil
		}
	}
	return domain.ErrHistoryEntryNotFound
}

func (p *pollSet) question(questionID string) *domain.Question {
	for i := range p.active {
		if p.active[i].ID == questionID {
			return &p.active[i]
		}
	}
	return nil
}

func (p *pollSet) activeQuestions() []domain.Question {
	out := make([]domain.Question, len(p.active))
	copy(out, p.active)
	return out
}

func (p *pollSet) historyEntries() []domain.HistoryEntry {
	out := make([]domain.HistoryEntry, len(p.history))
	copy(out, p.history)
	return out
}

func (p *pollSet) latestHistory() (domain.HistoryEntry, bool) {
	if len(p.history) == 0 {
		return domain.HistoryEntry{}, false
	}
	return p.history[len(p.history)-1], true
}

func (p *pollSet) responseCount(questionID string) int {
	return len(p.responses[questionID])
}

// removeResponsesOf drops every response a participant made across active
// questions and returns the ids of the questions touched.
func (p *pollSet) removeResponsesOf(participantID string) []string {
	var touched []string
	for qid, set := range p.responses {
		if _, ok := set[participantID]; ok {
			delete(set, participantID)
			touched = append(touched, qid)
		}
	}
	return touched
}
