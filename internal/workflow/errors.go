package workflow

import (
	"fmt"

	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/lifecycle"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/repository"
)

// ErrNotFound is returned when the addressed order or return request does
// not exist. Alias of the repository sentinel so callers can errors.Is
// against either.
var ErrNotFound = repository.ErrObjectNotFound

// InvalidTransitionError reports a transition the rule table forbids,
// carrying the targets that would have been accepted.
type InvalidTransitionError struct {
	From      lifecycle.State
	To        lifecycle.State
	Reason    string
	LegalNext []lifecycle.State
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s: %s", e.From, e.To, e.Reason)
}

// UnauthorizedError reports an actor not permitted to perform the operation.
type UnauthorizedError struct {
	Actor   string
	OwnerID string
	Reason  string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("actor %q not authorized for %s: %s", e.Actor, e.OwnerID, e.Reason)
}

// NotEligibleError reports a return request refused by the eligibility gate.
type NotEligibleError struct {
	OrderID string
	Reason  string
}

func (e *NotEligibleError) Error() string {
	return fmt.Sprintf("order %s not eligible for return: %s", e.OrderID, e.Reason)
}

// CollaboratorFailureError wraps a shipping/notification/storage failure
// that aborted the operation. The operation was rolled back.
type CollaboratorFailureError struct {
	Op  string
	Err error
}

func (e *CollaboratorFailureError) Error() string {
	return fmt.Sprintf("collaborator failure during %s: %v", e.Op, e.Err)
}

func (e *CollaboratorFailureError) Unwrap() error {
	return e.Err
}

// ConsistencyViolationError reports a denormalized state that disagrees with
// the owner's latest timeline entry. Surfaced by Repair, which also fixes it.
type ConsistencyViolationError struct {
	OrderID       string
	StateField    string
	TimelineState string
}

func (e *ConsistencyViolationError) Error() string {
	return fmt.Sprintf("order %s: state field %q disagrees with timeline %q",
		e.OrderID, e.StateField, e.TimelineState)
}
