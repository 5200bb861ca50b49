package domain

// Command is the closed set of inbound session commands. Every variant
// corresponds to one wire message type; dispatch happens through a single
// typed handler rather than on raw event-name strings.
type Command interface {
	// CommandName is the wire-level message type for this command.
	CommandName() string
	isCommand()
}

// RegisterStudent joins (or rebinds) a student under a display name.
type RegisterStudent struct {
	Name string `json:"name" validate:"required"`
}

// RegisterTeacher joins a teacher connection. Idempotent; several teacher
// connections may coexist.
type RegisterTeacher struct{}

// CreateQuestion opens a new question, active immediately.
type CreateQuestion struct {
	Text               string   `json:"text" validate:"required"`
	Options            []string `json:"options" validate:"required,min=2,max=6,dive,required"`
	CorrectOptionIndex int      `json:"correctOptionIndex" validate:"gte=0"`
	TimerSeconds       int      `json:"timerSeconds" validate:"gt=0"`
}

// SubmitResponse records a student's answer to an active question.
type SubmitResponse struct {
	QuestionID          string `json:"questionId" validate:"required"`
	SelectedOptionIndex int    `json:"selectedOptionIndex" validate:"gte=0"`
}

// EndQuestion archives an active question with its final results. Manual and
// teacher-driven; timers never end a question.
type EndQuestion struct {
	QuestionID string `json:"questionId" validate:"required"`
}

// DeleteHistoryEntry permanently removes one archived poll.
type DeleteHistoryEntry struct {
	ID string `json:"id" validate:"required"`
}

// KickParticipant removes a participant and their responses.
type KickParticipant struct {
	ParticipantID string `json:"participantId" validate:"required"`
}

// SendChatMessage appends to the shared chat log.
type SendChatMessage struct {
	Text string `json:"text" validate:"required"`
}

// RequestChatHistory asks for a full chat replay.
type RequestChatHistory struct{}

// RequestPollHistory asks for all archived polls.
type RequestPollHistory struct{}

// RequestPollResults re-broadcasts the latest archived poll to everyone.
type RequestPollResults struct{}

// CheckActiveQuestions asks for the current active question list.
type CheckActiveQuestions struct{}

// Heartbeat is a liveness ping answered with heartbeat-ack.
type Heartbeat struct{}

func (RegisterStudent) CommandName() string      { return "register-student" }
func (RegisterTeacher) CommandName() string      { return "register-teacher" }
func (CreateQuestion) CommandName() string       { return "create-question" }
func (SubmitResponse) CommandName() string       { return "submit-response" }
func (EndQuestion) CommandName() string          { return "end-question" }
func (DeleteHistoryEntry) CommandName() string   { return "delete-history-entry" }
func (KickParticipant) CommandName() string      { return "kick-participant" }
func (SendChatMessage) CommandName() string      { return "send-chat-message" }
func (RequestChatHistory) CommandName() string   { return "request-chat-history" }
func (RequestPollHistory) CommandName() string   { return "request-poll-history" }
func (RequestPollResults) CommandName() string   { return "request-poll-results" }
func (CheckActiveQuestions) CommandName() string { return "check-active-questions" }
func (Heartbeat) CommandName() string            { return "heartbeat" }

func (RegisterStudent) isCommand()      {}
func (RegisterTeacher) isCommand()      {}
func (CreateQuestion) isCommand()       {}
func (SubmitResponse) isCommand()       {}
func (EndQuestion) isCommand()          {}
func (DeleteHistoryEntry) isCommand()   {}
func (KickParticipant) isCommand()      {}
func (SendChatMessage) isCommand()      {}
func (RequestChatHistory) isCommand()   {}
func (RequestPollHistory) isCommand()   {}
func (RequestPollResults) isCommand()   {}
func (CheckActiveQuestions) isCommand() {}
func (Heartbeat) isCommand()            {}
