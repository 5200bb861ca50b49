package domain

// EventType names an outbound broadcast event.
type EventType string

const (
	EventJoined                 EventType = "joined"
	EventError                  EventType = "error"
	EventStudentJoined          EventType = "student-joined"
	EventStudentDisconnected    EventType = "student-disconnected"
	EventNewQuestion            EventType = "new-question"
	EventActiveQuestionsUpdated EventType = "active-questions-updated"
	EventActiveQuestions        EventType = "active-questions"
	EventAnswerSubmitted        EventType = "answer-submitted"
	EventStudentAnswered        EventType = "student-answered"
	EventRealTimeResults        EventType = "real-time-results"
	EventAllStudentsAnswered    EventType = "all-students-answered"
	EventPollResults            EventType = "poll-results"
	EventPollDeleted            EventType = "poll-deleted"
	EventPollHistory            EventType = "poll-history"
	EventKicked                 EventType = "kicked"
	EventParticipantRemoved     EventType = "participant-removed"
	EventNewMessage             EventType = "new-message"
	EventChatHistory            EventType = "chat-history"
	EventHeartbeatAck           EventType = "heartbeat-ack"
)

// Event is the envelope written to clients.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

// ErrorPayload is delivered only to the originating connection.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JoinedPayload is the state snapshot sent to a freshly registered
// participant. PollHistory is populated for teachers only.
type JoinedPayload struct {
	Participant     Participant    `json:"participant"`
	ActiveQuestions []Question     `json:"activeQuestions"`
	Participants    []Participant  `json:"participants"`
	PollHistory     []HistoryEntry `json:"pollHistory,omitempty"`
}

// StudentJoinedPayload announces a new or rebound student to everyone else.
type StudentJoinedPayload struct {
	Student  Participant        `json:"student"`
	Progress []QuestionProgress `json:"progress"`
}

// StudentDisconnectedPayload announces a departure with refreshed progress.
type StudentDisconnectedPayload struct {
	StudentID   string             `json:"studentId"`
	StudentName string             `json:"studentName"`
	Progress    []QuestionProgress `json:"progress"`
}

// AnswerSubmittedPayload acknowledges a recorded response to its sender.
type AnswerSubmittedPayload struct {
	QuestionID string `json:"questionId"`
}

// StudentAnsweredPayload tells other participants who answered what.
type StudentAnsweredPayload struct {
	QuestionID          string   `json:"questionId"`
	StudentName         string   `json:"studentName"`
	SelectedOptionIndex int      `json:"selectedOptionIndex"`
	Progress            Progress `json:"progress"`
}

// RealTimeResultsPayload carries the live tally for one active question.
type RealTimeResultsPayload struct {
	QuestionID     string         `json:"questionId"`
	Results        []OptionResult `json:"results"`
	TotalResponses int            `json:"totalResponses"`
	TotalStudents  int            `json:"totalStudents"`
}

// AllStudentsAnsweredPayload fires once per climb to full coverage.
type AllStudentsAnsweredPayload struct {
	QuestionID string `json:"questionId"`
	Answered   int    `json:"answered"`
	Total      int    `json:"total"`
}

// PollResultsPayload carries the frozen results of an ended question.
type PollResultsPayload struct {
	Question       Question       `json:"question"`
	Results        []OptionResult `json:"results"`
	TotalResponses int            `json:"totalResponses"`
}

// PollDeletedPayload names the removed history entry.
type PollDeletedPayload struct {
	ID string `json:"id"`
}

// KickedPayload is the last event a kicked participant receives.
type KickedPayload struct {
	Reason string `json:"reason"`
}

// ParticipantRemovedPayload announces a kick to the remaining participants.
type ParticipantRemovedPayload struct {
	ParticipantID string             `json:"participantId"`
	Name          string             `json:"name"`
	Progress      []QuestionProgress `json:"progress"`
}
