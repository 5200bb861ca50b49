package domain

import "time"

// Role distinguishes the two kinds of participants in a session.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// Participant is a registered connection, student or teacher. ID is a stable
// identifier that survives reconnection; ConnID is the transient connection
// handle currently bound to it.
type Participant struct {
	ID     string `json:"id"`
	ConnID string `json:"-"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`

	// PendingEvictionAt is set when the participant disconnected without an
	// explicit leave; the sweep purges them once the grace window elapses.
	PendingEvictionAt *time.Time `json:"-"`
}

// Question is an active or archived poll question. Immutable once created.
// The deadline is advisory: it drives the client countdown, never a
// server-side cutoff.
type Question struct {
	ID                 string    `json:"id"`
	SequenceNumber     int       `json:"sequenceNumber"`
	Text               string    `json:"text"`
	Options            []string  `json:"options"`
	CorrectOptionIndex int       `json:"correctOptionIndex"`
	TimerSeconds       int       `json:"timerSeconds"`
	CreatedAt          time.Time `json:"createdAt"`
	DeadlineAt         time.Time `json:"deadlineAt"`
}

// Response records a single student's answer to a question. At most one per
// (question, student); duplicates are rejected, never overwritten.
type Response struct {
	ParticipantID       string    `json:"studentId"`
	StudentName         string    `json:"studentName"`
	SelectedOptionIndex int       `json:"selectedOptionIndex"`
	SubmittedAt         time.Time `json:"submittedAt"`
}

// OptionResult is the derived tally for one option. Percentages are rounded
// per option and may not sum to 100.
type OptionResult struct {
	OptionText string `json:"option"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// HistoryEntry freezes an ended question with its final results. Append-only,
// individually deletable.
type HistoryEntry struct {
	Question       Question       `json:"question"`
	Results        []OptionResult `json:"results"`
	TotalResponses int            `json:"totalResponses"`
	ArchivedAt     time.Time      `json:"archivedAt"`
}

// ChatMessage is one entry in the session chat log.
type ChatMessage struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	SenderName string    `json:"senderName"`
	SenderRole Role      `json:"senderRole"`
	SentAt     time.Time `json:"sentAt"`
}

// Progress is the answered/total pair for one active question.
type Progress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

// QuestionProgress attaches a question id to its progress, for broadcasts
// that cover every active question.
type QuestionProgress struct {
	QuestionID string   `json:"questionId"`
	Progress   Progress `json:"progress"`
}

// DisconnectCause tells the registry whether a participant left on purpose.
type DisconnectCause int

const (
	// DisconnectOther covers network drops and server-initiated closes; the
	// participant is retained for the grace window.
	DisconnectOther DisconnectCause = iota
	// DisconnectExplicitLeave removes the participant and their responses
	// immediately.
	DisconnectExplicitLeave
)
