package lifecycle

import "fmt"

// Decision is the outcome of validating a proposed transition. When the
// transition is rejected, Reason says why and LegalNext lists the targets
// that would have been accepted.
type Decision struct {
	Allowed   bool
	NoOp      bool
	Reason    string
	LegalNext []State
}

// Validator answers accept/reject for proposed transitions against one rule
// table. Pure: never touches storage.
type Validator struct {
	rules *Rules
}

func NewValidator(rules *Rules) *Validator {
	return &Validator{rules: rules}
}

// Validate checks current -> proposed. Requesting the current state again is
// accepted as an idempotent no-op; anything out of a terminal state is
// rejected regardless of target.
func (v *Validator) Validate(current, proposed State) Decision {
	legal := v.rules.Next(current)

	if current == proposed {
		if _, known := v.rules.next[current]; !known {
			return Decision{Reason: fmt.Sprintf("unknown state %q", current)}
		}
		return Decision{Allowed: true, NoOp: true, LegalNext: legal}
	}

	if _, known := v.rules.next[current]; !known {
		return Decision{Reason: fmt.Sprintf("unknown state %q", current)}
	}

	if len(legal) == 0 {
		return Decision{
			Reason:    fmt.Sprintf("state %q is terminal", current),
			LegalNext: legal,
		}
	}

	if !v.rules.Allows(current, proposed) {
		return Decision{
			Reason:    fmt.Sprintf("transition %q -> %q is not allowed", current, proposed),
			LegalNext: legal,
		}
	}

	return Decision{Allowed: true, LegalNext: legal}
}

// LegalNext exposes the raw table row, used by the options projector.
func (v *Validator) LegalNext(current State) []State {
	return v.rules.Next(current)
}
