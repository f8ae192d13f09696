package workflow

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrItemNotFound indicates the article repository has no item for the id.
	ErrItemNotFound = errors.New("workflow: item not found")
	// ErrStateNotFound indicates the store holds no workflow state for the item yet.
	ErrStateNotFound = errors.New("workflow: state not found")
	// ErrNotImplemented signals the backend has not deployed the requested
	// endpoint; it must stay distinguishable from every other failure.
	ErrNotImplemented = errors.New("workflow: endpoint not implemented")
	// ErrUnavailable indicates workflow mutations have been disabled after a
	// not-implemented response; callers should surface a persistent notice
	// instead of retrying.
	ErrUnavailable = errors.New("workflow: actions unavailable")
	// ErrTransitionDenied indicates the legality gate rejected the move.
	ErrTransitionDenied = errors.New("workflow: transition denied")
	// ErrItemLocked indicates the item is locked and the actor lacks founder capability.
	ErrItemLocked = errors.New("workflow: item locked")
	// ErrFounderOnly indicates the action requires founder capability.
	ErrFounderOnly = errors.New("workflow: founder capability required")
	// ErrEmptyComment rejects whitespace-only comment submissions before dispatch.
	ErrEmptyComment = errors.New("workflow: comment text required")
	// ErrActionPending indicates a mutating call for the same item and action
	// kind is already in flight; the duplicate invocation is a no-op.
	ErrActionPending = errors.New("workflow: action already in flight")
	// ErrRefreshPending indicates a board refresh is already in flight.
	ErrRefreshPending = errors.New("workflow: board refresh already in flight")
	// ErrSelectionSuperseded indicates a fetch completed for an item that is no
	// longer selected; the response is discarded.
	ErrSelectionSuperseded = errors.New("workflow: selection superseded")
	// ErrChannelInvalid rejects publish requests for unknown channels.
	ErrChannelInvalid = errors.New("workflow: publish channel invalid")
	// ErrChannelNotAllowed rejects publish requests for channels the deployment
	// has not enabled.
	ErrChannelNotAllowed = errors.New("workflow: publish channel not enabled")
	// ErrStageInvalid rejects references to stages outside the fixed set.
	ErrStageInvalid = errors.New("workflow: stage outside pipeline")
)

// TransitionDeniedError carries the gate's rejection reason for an attempted move.
type TransitionDeniedError struct {
	ItemID uuid.UUID
	Reason string
}

func (e *TransitionDeniedError) Error() string {
	if e == nil || e.Reason == "" {
		return ErrTransitionDenied.Error()
	}
	return fmt.Sprintf("%s: %s", ErrTransitionDenied.Error(), e.Reason)
}

func (e *TransitionDeniedError) Unwrap() error {
	return ErrTransitionDenied
}
