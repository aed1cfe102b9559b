package workflow

import "time"

// Clock is the injected time source. Everything that reasons about
// deadlines or windows goes through it so tests can drive time by hand.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func NewClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}
