package lifecycle

// Role is the viewer the option list is built for.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
)

// Option is one offered transition, ready for rendering.
type Option struct {
	State                State  `json:"state"`
	Label                string `json:"label"`
	RequiresConfirmation bool   `json:"requires_confirmation"`
}

var stateLabels = map[State]string{
	StatePending:              "Pending",
	StateConfirmed:            "Confirm order",
	StateShipping:             "Hand to carrier",
	StateAwaitingConfirmation: "Mark as arriving",
	StateDelivered:            "Mark as delivered",
	StateConfirmedByCustomer:  "Confirm receipt",
	StateCancelled:            "Cancel order",
	StateRefundRequested:      "Request refund",
	StateReturnApproved:       "Approve return",
	StateReturning:            "Return in transit",
	StateReturnReceived:       "Received at warehouse",
	StateRefunded:             "Complete refund",
	StateRefundRejected:       "Reject refund",
	StateReturnFailed:         "Return failed",
}

// States customers never get offered as targets: operational plumbing the
// storefront has no business exposing.
var internalTargets = map[State]bool{
	StateAwaitingConfirmation: true,
	StateReturnApproved:       true,
	StateReturning:            true,
	StateReturnReceived:       true,
	StateRefunded:             true,
	StateRefundRejected:       true,
	StateReturnFailed:         true,
}

// Targets the UI should double-check before submitting.
var confirmTargets = map[State]bool{
	StateCancelled:           true,
	StateConfirmedByCustomer: true,
	StateRefunded:            true,
}

// Projector derives the transitions to offer for a current state and viewer
// role. Read-only view over the validator's rule table.
type Projector struct {
	validator *Validator
}

func NewProjector(validator *Validator) *Projector {
	return &Projector{validator: validator}
}

// Options returns the offered transitions for current as seen by role.
// Terminal states yield an empty (non-nil) list.
func (p *Projector) Options(current State, role Role) []Option {
	options := make([]Option, 0)
	for _, target := range p.validator.LegalNext(current) {
		if role == RoleCustomer && internalTargets[target] {
			continue
		}
		label, ok := stateLabels[target]
		if !ok {
			label = target.String()
		}
		options = append(options, Option{
			State:                target,
			Label:                label,
			RequiresConfirmation: confirmTargets[target],
		})
	}
	return options
}

// CustomerMayTarget reports whether a customer may request the given target
// state directly. Mirrors the filter Options applies when building the
// customer-facing list.
func CustomerMayTarget(target State) bool {
	return !internalTargets[target]
}

// Label returns the display label for a state.
func Label(s State) string {
	if label, ok := stateLabels[s]; ok {
		return label
	}
	return s.String()
}
