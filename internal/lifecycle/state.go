package lifecycle

// State is the order's position in its business-process graph. The values
// past StateCancelled are only entered through the return sub-workflow and
// mirror the owning return request's status on the order itself.
type State string

const (
	StatePending              State = "pending"
	StateConfirmed            State = "confirmed"
	StateShipping             State = "shipping"
	StateAwaitingConfirmation State = "awaiting_confirmation"
	StateDelivered            State = "delivered"
	StateConfirmedByCustomer  State = "confirmed_by_customer"
	StateCancelled            State = "cancelled"

	StateRefundRequested State = "refund_requested"
	StateReturnApproved  State = "return_approved"
	StateReturning       State = "returning"
	StateReturnReceived  State = "return_received"
	StateRefunded        State = "refunded"
	StateRefundRejected  State = "refund_rejected"
	StateReturnFailed    State = "return_failed"
)

func (s State) String() string {
	return string(s)
}

// IsTerminal reports whether no outgoing transition exists for s.
func (s State) IsTerminal() bool {
	switch s {
	case StateConfirmedByCustomer, StateCancelled, StateRefunded, StateRefundRejected, StateReturnFailed:
		return true
	}
	return false
}

// AllStates lists every order state, used by the startup table check.
func AllStates() []State {
	return []State{
		StatePending,
		StateConfirmed,
		StateShipping,
		StateAwaitingConfirmation,
		StateDelivered,
		StateConfirmedByCustomer,
		StateCancelled,
		StateRefundRequested,
		StateReturnApproved,
		StateReturning,
		StateReturnReceived,
		StateRefunded,
		StateRefundRejected,
		StateReturnFailed,
	}
}

// ReturnState is the status of a return request. It is a separate graph from
// State: the two are correlated (every return move drags the owning order
// into a matching marker state) but deliberately not the same type.
type ReturnState string

const (
	ReturnRefundRequested ReturnState = "refund_requested"
	ReturnApproved        ReturnState = "return_approved"
	ReturnReturning       ReturnState = "returning"
	ReturnReceived        ReturnState = "return_received"
	ReturnRefunded        ReturnState = "refunded"
	ReturnRefundRejected  ReturnState = "refund_rejected"
	ReturnFailed          ReturnState = "return_failed"
)

func (s ReturnState) String() string {
	return string(s)
}

func (s ReturnState) IsTerminal() bool {
	switch s {
	case ReturnRefunded, ReturnRefundRejected, ReturnFailed:
		return true
	}
	return false
}

func AllReturnStates() []ReturnState {
	return []ReturnState{
		ReturnRefundRequested,
		ReturnApproved,
		ReturnReturning,
		ReturnReceived,
		ReturnRefunded,
		ReturnRefundRejected,
		ReturnFailed,
	}
}

// ConfirmationState is the tiny per-delivery confirmation machine. A row is
// created when the order reaches delivered and is mutated exactly once,
// either by the owning customer or by the sweeper on deadline.
type ConfirmationState string

const (
	ConfirmationPending   ConfirmationState = "pending"
	ConfirmationConfirmed ConfirmationState = "confirmed"
	ConfirmationRejected  ConfirmationState = "rejected"
)

// OrderStateForReturn maps a return status to the marker state the owning
// order must carry while the return is in that status. A rejected return
// hands the order back to delivered instead of parking it.
func OrderStateForReturn(s ReturnState) State {
	switch s {
	case ReturnRefundRequested:
		return StateRefundRequested
	case ReturnApproved:
		return StateReturnApproved
	case ReturnReturning:
		return StateReturning
	case ReturnReceived:
		return StateReturnReceived
	case ReturnRefunded:
		return StateRefunded
	case ReturnRefundRejected:
		return StateDelivered
	case ReturnFailed:
		return StateReturnFailed
	}
	return ""
}
