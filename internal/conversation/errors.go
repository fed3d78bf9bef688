package conversation

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound = errors.New("conversation: session not found")
	ErrSessionComplete = errors.New("conversation: session already complete")
	ErrTurnInProgress  = errors.New("conversation: a turn is already in progress")
	ErrEmptyMessage    = errors.New("conversation: message text is required")
	ErrSlotsNotOffered = errors.New("conversation: no appointment slots were offered")
	ErrUnknownSlot     = errors.New("conversation: unknown appointment slot")
)

// ExternalModelError wraps a failed or unusable model completion.
type ExternalModelError struct {
	Err error
}

func (e *ExternalModelError) Error() string {
	return fmt.Sprintf("conversation: model call failed: %v", e.Err)
}

func (e *ExternalModelError) Unwrap() error { return e.Err }

// ParseError reports a DATA_SUMMARY block that was found but could not be
// turned into a lead.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("conversation: invalid data summary: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("conversation: invalid data summary: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }
