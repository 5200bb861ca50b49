package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"livepoll-service/internal/domain"
	"livepoll-service/internal/metrics"
)

// PresenceMarker mirrors pending-eviction marks into an external store.
// Best-effort: failures never affect session state.
type PresenceMarker interface {
	MarkPending(ctx context.Context, name string)
	ClearPending(ctx context.Context, name string)
}

// Coordinator owns the entire session state: registry, active questions,
// responses, history, and chat log. Every mutation funnels through Handle
// under one mutex, and fan-out for a change is issued only after that change
// is committed, so each inbound event runs to completion before the next.
type Coordinator struct {
	mu sync.Mutex

	reg      *registry
	polls    *pollSet
	progress *progressTracker
	chat     *chatLog
	gateway  *Gateway
	presence PresenceMarker

	log zerolog.Logger
	now func() time.Time
}

func NewCoordinator(log zerolog.Logger, presence PresenceMarker) *Coordinator {
	return NewCoordinatorWithClock(log, presence, time.Now)
}

// NewCoordinatorWithClock allows deterministic timestamps in tests.
func NewCoordinatorWithClock(log zerolog.Logger, presence PresenceMarker, now func() time.Time) *Coordinator {
	newID := uuid.NewString
	return &Coordinator{
		reg:      newRegistry(now, newID),
		polls:    newPollSet(now, newID),
		progress: newProgressTracker(),
		chat:     newChatLog(now, newID),
		gateway:  NewGateway(),
		presence: presence,
		log:      log,
		now:      now,
	}
}

// Connect attaches a connection to the broadcast gateway and returns its
// event stream. The caller must invoke cancel (or Disconnect) on teardown.
func (c *Coordinator) Connect(connID string) (<-chan domain.Event, func()) {
	return c.gateway.Attach(connID)
}

// Handle dispatches one inbound command. Commands are a closed set; anything
// outside it cannot reach this switch.
func (c *Coordinator) Handle(connID string, cmd domain.Command) {
	metrics.IncCommand(cmd.CommandName())

	c.mu.Lock()
	defer c.mu.Unlock()

	switch v := cmd.(type) {
	case domain.RegisterStudent:
		c.registerStudent(connID, v.Name)
	case domain.RegisterTeacher:
		c.registerTeacher(connID)
	case domain.CreateQuestion:
		c.createQuestion(connID, v)
	case domain.SubmitResponse:
		c.submitResponse(connID, v)
	case domain.EndQuestion:
		c.endQuestion(v.QuestionID)
	case domain.DeleteHistoryEntry:
		c.deleteHistoryEntry(v.ID)
	case domain.KickParticipant:
		c.kickParticipant(v.ParticipantID)
	case domain.SendChatMessage:
		c.sendChatMessage(connID, v.Text)
	case domain.RequestChatHistory:
		c.gateway.ToConn(connID, domain.Event{Type: domain.EventChatHistory, Payload: c.chat.history()})
	case domain.RequestPollHistory:
		c.gateway.ToConn(connID, domain.Event{Type: domain.EventPollHistory, Payload: c.polls.historyEntries()})
	case domain.RequestPollResults:
		c.requestPollResults()
	case domain.CheckActiveQuestions:
		c.gateway.ToConn(connID, domain.Event{Type: domain.EventActiveQuestions, Payload: c.polls.activeQuestions()})
	case domain.Heartbeat:
		c.gateway.ToConn(connID, domain.Event{Type: domain.EventHeartbeatAck})
	}
}

// EmitError reports a recoverable failure to a single connection. Used by
// the transport for malformed payloads as well.
func (c *Coordinator) EmitError(connID, code, message string) {
	c.gateway.ToConn(connID, domain.Event{
		Type:    domain.EventError,
		Payload: domain.ErrorPayload{Code: code, Message: message},
	})
}

func (c *Coordinator) errorTo(connID string, err error) {
	c.log.Debug().Str("conn", connID).Err(err).Msg("command rejected")
	c.EmitError(connID, domain.ErrorCode(err), err.Error())
}

func (c *Coordinator) registerStudent(connID, name string) {
	prior := c.reg.byConnID(connID)
	p, rebound, err := c.reg.registerStudent(connID, name)
	if err != nil {
		// The connection stays open; the client may retry with another name.
		c.errorTo(connID, err)
		return
	}
	c.cleanUpDisplaced(prior, p)
	if rebound {
		metrics.IncReconnect()
	}
	if c.presence != nil {
		c.presence.ClearPending(context.Background(), name)
	}
	c.log.Info().Str("name", name).Bool("rebound", rebound).Msg("student joined")

	c.gateway.ToConn(connID, domain.Event{Type: domain.EventJoined, Payload: domain.JoinedPayload{
		Participant:     *p,
		ActiveQuestions: c.polls.activeQuestions(),
		Participants:    c.reg.all(),
	}})
	for _, q := range c.polls.active {
		c.gateway.ToConn(connID, c.realTimeResults(q))
	}
	c.gateway.ToOthers(connID, domain.Event{Type: domain.EventStudentJoined, Payload: domain.StudentJoinedPayload{
		Student:  *p,
		Progress: c.allProgress(),
	}})
	c.recheckProgress()
}

func (c *Coordinator) registerTeacher(connID string) {
	prior := c.reg.byConnID(connID)
	p := c.reg.registerTeacher(connID)
	c.cleanUpDisplaced(prior, p)
	c.log.Info().Str("conn", connID).Msg("teacher joined")
	c.gateway.ToConn(connID, domain.Event{Type: domain.EventJoined, Payload: domain.JoinedPayload{
		Participant:     *p,
		ActiveQuestions: c.polls.activeQuestions(),
		Participants:    c.reg.all(),
		PollHistory:     c.polls.historyEntries(),
	}})
}

// cleanUpDisplaced finishes off an identity the registry released because its
// connection re-registered as someone else. Responses go with it, and a
// displaced student departs the roster like any other leave.
func (c *Coordinator) cleanUpDisplaced(prior, current *domain.Participant) {
	if prior == nil || prior.ID == current.ID {
		return
	}
	c.log.Info().Str("name", prior.Name).Msg("identity released by re-registration")
	c.polls.removeResponsesOf(prior.ID)
	if prior.Role != domain.RoleStudent {
		return
	}
	if c.presence != nil {
		c.presence.ClearPending(context.Background(), prior.Name)
	}
	c.broadcastDeparture(prior)
}

func (c *Coordinator) createQuestion(connID string, v domain.CreateQuestion) {
	if len(v.Options) < 2 || len(v.Options) > 6 ||
		v.CorrectOptionIndex < 0 || v.CorrectOptionIndex >= len(v.Options) ||
		v.TimerSeconds <= 0 {
		c.EmitError(connID, "invalid-question", "question must have 2-6 options, a valid correct index, and a positive timer")
		return
	}
	q := c.polls.create(v.Text, v.Options, v.CorrectOptionIndex, v.TimerSeconds)
	metrics.SetActiveQuestions(len(c.polls.active))
	c.log.Info().Str("question", q.ID).Int("seq", q.SequenceNumber).Msg("question created")

	c.gateway.ToAll(domain.Event{Type: domain.EventNewQuestion, Payload: q})
	c.gateway.ToAll(domain.Event{Type: domain.EventActiveQuestionsUpdated, Payload: c.polls.activeQuestions()})
}

func (c *Coordinator) submitResponse(connID string, v domain.SubmitResponse) {
	student := c.reg.byConnID(connID)
	if student == nil || student.Role != domain.RoleStudent {
		c.errorTo(connID, domain.ErrNotRegistered)
		return
	}
	resp, err := c.polls.submit(v.QuestionID, student, v.SelectedOptionIndex)
	if err != nil {
		c.errorTo(connID, err)
		return
	}

	answered := c.polls.responseCount(v.QuestionID)
	total := c.reg.studentCount()

	c.gateway.ToConn(connID, domain.Event{Type: domain.EventAnswerSubmitted, Payload: domain.AnswerSubmittedPayload{
		QuestionID: v.QuestionID,
	}})
	c.gateway.ToOthers(connID, domain.Event{Type: domain.EventStudentAnswered, Payload: domain.StudentAnsweredPayload{
		QuestionID:          v.QuestionID,
		StudentName:         resp.StudentName,
		SelectedOptionIndex: resp.SelectedOptionIndex,
		Progress:            progressOf(answered, total),
	}})
	if q := c.polls.question(v.QuestionID); q != nil {
		c.gateway.ToAll(c.realTimeResults(*q))
	}
	if c.progress.observe(v.QuestionID, answered, total) {
		c.gateway.ToAll(domain.Event{Type: domain.EventAllStudentsAnswered, Payload: domain.AllStudentsAnsweredPayload{
			QuestionID: v.QuestionID,
			Answered:   answered,
			Total:      total,
		}})
	}
}

// endQuestion is manual and teacher-driven; neither timer expiry nor full
// coverage ends a question. Unknown ids are a silent no-op.
func (c *Coordinator) endQuestion(questionID string) {
	entry, err := c.polls.end(questionID)
	if err != nil {
		c.log.Debug().Str("question", questionID).Msg("end requested for unknown question")
		return
	}
	c.progress.forget(questionID)
	metrics.SetActiveQuestions(len(c.polls.active))
	c.log.Info().Str("question", questionID).Int("responses", entry.TotalResponses).Msg("question ended")

	c.gateway.ToAll(domain.Event{Type: domain.EventPollResults, Payload: domain.PollResultsPayload{
		Question:       entry.Question,
		Results:        entry.Results,
		TotalResponses: entry.TotalResponses,
	}})
	c.gateway.ToAll(domain.Event{Type: domain.EventActiveQuestionsUpdated, Payload: c.polls.activeQuestions()})
}

func (c *Coordinator) deleteHistoryEntry(id string) {
	if err := c.polls.deleteHistory(id); err != nil {
		c.log.Debug().Str("entry", id).Msg("delete requested for unknown history entry")
		return
	}
	c.gateway.ToAll(domain.Event{Type: domain.EventPollDeleted, Payload: domain.PollDeletedPayload{ID: id}})
}

func (c *Coordinator) kickParticipant(participantID string) {
	target := c.reg.byID(participantID)
	if target == nil {
		return
	}
	c.log.Info().Str("name", target.Name).Msg("participant kicked")

	c.gateway.ToConn(target.ConnID, domain.Event{Type: domain.EventKicked, Payload: domain.KickedPayload{
		Reason: "You've been removed from the session by the teacher.",
	}})
	c.gateway.Close(target.ConnID)

	c.reg.remove(participantID)
	c.polls.removeResponsesOf(participantID)
	if c.presence != nil {
		c.presence.ClearPending(context.Background(), target.Name)
	}

	c.gateway.ToAll(domain.Event{Type: domain.EventParticipantRemoved, Payload: domain.ParticipantRemovedPayload{
		ParticipantID: participantID,
		Name:          target.Name,
		Progress:      c.allProgress(),
	}})
	c.recheckProgress()
}

func (c *Coordinator) sendChatMessage(connID, text string) {
	sender := c.reg.byConnID(connID)
	if sender == nil {
		c.errorTo(connID, domain.ErrNotRegistered)
		return
	}
	msg := c.chat.append(sender, text)
	c.gateway.ToAll(domain.Event{Type: domain.EventNewMessage, Payload: msg})
}

// requestPollResults re-broadcasts the most recent archived poll to every
// participant. Nothing happens when history is empty.
func (c *Coordinator) requestPollResults() {
	entry, ok := c.polls.latestHistory()
	if !ok {
		return
	}
	c.gateway.ToAll(domain.Event{Type: domain.EventPollResults, Payload: domain.PollResultsPayload{
		Question:       entry.Question,
		Results:        entry.Results,
		TotalResponses: entry.TotalResponses,
	}})
}

// Disconnect handles a closed connection. An explicit leave removes the
// participant and their responses; any other cause retains them with a
// pending-eviction mark so a reconnect can reclaim the identity.
func (c *Coordinator) Disconnect(connID string, cause domain.DisconnectCause) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gateway.Close(connID)

	p, removed := c.reg.unregister(connID, cause)
	if p == nil || p.Role != domain.RoleStudent {
		return
	}

	if !removed {
		c.log.Info().Str("name", p.Name).Msg("student disconnected, retained for grace window")
		if c.presence != nil {
			c.presence.MarkPending(context.Background(), p.Name)
		}
		return
	}

	c.log.Info().Str("name", p.Name).Msg("student left")
	c.polls.removeResponsesOf(p.ID)
	c.broadcastDeparture(p)
}

// SweepEvicted purges participants whose grace window elapsed, along with
// their responses. Runs on a schedule, never per event.
func (c *Coordinator) SweepEvicted(grace time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range c.reg.sweep(grace) {
		c.log.Info().Str("name", p.Name).Msg("student evicted after grace window")
		c.polls.removeResponsesOf(p.ID)
		if c.presence != nil {
			c.presence.ClearPending(context.Background(), p.Name)
		}
		c.broadcastDeparture(p)
	}
}

func (c *Coordinator) broadcastDeparture(p *domain.Participant) {
	c.gateway.ToAll(domain.Event{Type: domain.EventStudentDisconnected, Payload: domain.StudentDisconnectedPayload{
		StudentID:   p.ID,
		StudentName: p.Name,
		Progress:    c.allProgress(),
	}})
	c.recheckProgress()
}

// recheckProgress feeds every active question's coverage to the tracker.
// A departure can complete coverage; a late joiner re-arms the notice.
func (c *Coordinator) recheckProgress() {
	total := c.reg.studentCount()
	for _, q := range c.polls.active {
		answered := c.polls.responseCount(q.ID)
		if c.progress.observe(q.ID, answered, total) {
			c.gateway.ToAll(domain.Event{Type: domain.EventAllStudentsAnswered, Payload: domain.AllStudentsAnsweredPayload{
				QuestionID: q.ID,
				Answered:   answered,
				Total:      total,
			}})
		}
	}
}

func (c *Coordinator) allProgress() []domain.QuestionProgress {
	total := c.reg.studentCount()
	out := make([]domain.QuestionProgress, 0, len(c.polls.active))
	for _, q := range c.polls.active {
		out = append(out, domain.QuestionProgress{
			QuestionID: q.ID,
			Progress:   progressOf(c.polls.responseCount(q.ID), total),
		})
	}
	return out
}

func (c *Coordinator) realTimeResults(q domain.Question) domain.Event {
	return domain.Event{Type: domain.EventRealTimeResults, Payload: domain.RealTimeResultsPayload{
		QuestionID:     q.ID,
		Results:        CalculateResults(q.Options, c.polls.responses[q.ID]),
		TotalResponses: c.polls.responseCount(q.ID),
		TotalStudents:  c.reg.studentCount(),
	}}
}
