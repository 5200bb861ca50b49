package domain

import "errors"

var (
	// ErrNameTaken is returned when a student name is held by a live connection.
	ErrNameTaken = errors.New("name already taken")
	// ErrQuestionNotFound covers questions that were never created or already ended.
	ErrQuestionNotFound = errors.New("question not found or no longer active")
	// ErrAlreadyAnswered is returned on a second submission for the same question.
	ErrAlreadyAnswered = errors.New("already answered this question")
	// ErrNotRegistered is returned when a sender acts before joining.
	ErrNotRegistered = errors.New("not registered in this session")
	// ErrHistoryEntryNotFound is swallowed by handlers; deletes of missing entries are no-ops.
	ErrHistoryEntryNotFound = errors.New("history entry not found")
)

// ErrorCode maps a domain error to the wire-level code sent to the client.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrNameTaken):
		return "name-taken"
	case errors.Is(err, ErrQuestionNotFound):
		return "question-not-found"
	case errors.Is(err, ErrAlreadyAnswered):
		return "already-answered"
	case errors.Is(err, ErrNotRegistered):
		return "not-registered"
	default:
		return "error"
	}
}
