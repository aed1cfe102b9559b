package lifecycle

import (
	"fmt"
	"sort"
)

// Rules is an immutable map from a state to the set of states it may legally
// move to. Built once at startup, read-only afterwards, so no locking.
type Rules struct {
	next map[State][]State
}

// Config carries the deployment-specific knobs of the order graph.
type Config struct {
	// AllowCancelWhileShipping keeps cancellation open after the carrier has
	// picked the parcel up. Some payment setups forbid it.
	AllowCancelWhileShipping bool
}

// OrderRules builds the order-side transition table.
func OrderRules(cfg Config) *Rules {
	shippingNext := []State{StateAwaitingConfirmation}
	if cfg.AllowCancelWhileShipping {
		shippingNext = append(shippingNext, StateCancelled)
	}

	return &Rules{next: map[State][]State{
		StatePending:              {StateConfirmed, StateCancelled},
		StateConfirmed:            {StateShipping, StateCancelled},
		StateShipping:             shippingNext,
		StateAwaitingConfirmation: {StateDelivered, StateCancelled},
		StateDelivered:            {StateConfirmedByCustomer, StateRefundRequested},
		// A rejected return reverts the order to delivered, hence the
		// delivered edge alongside the two review outcomes.
		StateRefundRequested:     {StateReturnApproved, StateRefundRejected, StateDelivered},
		StateReturnApproved:      {StateReturning},
		StateReturning:           {StateReturnReceived, StateReturnFailed},
		StateReturnReceived:      {StateRefunded},
		StateConfirmedByCustomer: {},
		StateCancelled:           {},
		StateRefunded:            {},
		StateRefundRejected:      {},
		StateReturnFailed:        {},
	}}
}

// ReturnRules builds the return-request transition table.
func ReturnRules() *Rules {
	return &Rules{next: map[State][]State{
		State(ReturnRefundRequested): {State(ReturnApproved), State(ReturnRefundRejected)},
		State(ReturnApproved):        {State(ReturnReturning)},
		State(ReturnReturning):       {State(ReturnReceived), State(ReturnFailed)},
		State(ReturnReceived):        {State(ReturnRefunded)},
		State(ReturnRefunded):        {},
		State(ReturnRefundRejected):  {},
		State(ReturnFailed):          {},
	}}
}

// Next returns the legal targets for a state, sorted for stable output.
func (r *Rules) Next(from State) []State {
	targets, ok := r.next[from]
	if !ok {
		return nil
	}
	out := make([]State, len(targets))
	copy(out, targets)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Allows reports whether from may move to to. A same-state request is
// allowed as an idempotent no-op.
func (r *Rules) Allows(from, to State) bool {
	if from == to {
		_, known := r.next[from]
		return known
	}
	for _, t := range r.next[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Verify checks table shape against the given closed set of states. Run at
// boot: a failure is a configuration error, not a runtime condition.
func (r *Rules) Verify(all []State, isTerminal func(State) bool) error {
	known := make(map[State]bool, len(all))
	for _, s := range all {
		known[s] = true
		if _, ok := r.next[s]; !ok {
			return fmt.Errorf("transition table: state %q has no entry", s)
		}
	}
	for from, targets := range r.next {
		if !known[from] {
			return fmt.Errorf("transition table: unknown key state %q", from)
		}
		if isTerminal(from) && len(targets) > 0 {
			return fmt.Errorf("transition table: terminal state %q has outgoing transitions", from)
		}
		if !isTerminal(from) && len(targets) == 0 {
			return fmt.Errorf("transition table: non-terminal state %q is a dead end", from)
		}
		for _, to := range targets {
			if !known[to] {
				return fmt.Errorf("transition table: state %q references unknown target %q", from, to)
			}
			if to == from {
				return fmt.Errorf("transition table: state %q lists itself as a target", from)
			}
		}
	}
	return nil
}

// VerifyOrderRules is the boot self-check for the order table.
func VerifyOrderRules(r *Rules) error {
	return r.Verify(AllStates(), func(s State) bool { return s.IsTerminal() })
}

// VerifyReturnRules is the boot self-check for the return table.
func VerifyReturnRules(r *Rules) error {
	all := make([]State, 0, len(AllReturnStates()))
	for _, s := range AllReturnStates() {
		all = append(all, State(s))
	}
	return r.Verify(all, func(s State) bool { return ReturnState(s).IsTerminal() })
}
