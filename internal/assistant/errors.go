package assistant

import (
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

var (
	// ErrProvider wraps failed calls to the assistant provider.
	ErrProvider = errors.New("assistant provider error")

	// ErrPollTimeout is returned when a run does not settle within the poll budget.
	ErrPollTimeout = errors.New("timed out waiting for run")

	// ErrRunFailed is matched by every *RunFailedError.
	ErrRunFailed = errors.New("run failed")
)

// RunFailedError reports a run that ended in a terminal status other than completed.
type RunFailedError struct {
	RunID   string
	Status  openai.RunStatus
	Code    string
	Message string
}

func (e *RunFailedError) Error() string {
	msg := fmt.Sprintf("run %s ended with status %s", e.RunID, e.Status)
	if e.Code != "" {
		msg += ": " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Unwrap lets errors.Is(err, ErrRunFailed) match.
func (e *RunFailedError) Unwrap() error {
	return ErrRunFailed
}

func newRunFailedError(run openai.Run) *RunFailedError {
	e := &RunFailedError{RunID: run.ID, Status: run.Status}
	if run.LastError != nil {
		e.Code = string(run.LastError.Code)
		e.Message = run.LastError.Message
	}
	return e
}
