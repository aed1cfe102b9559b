package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/lifecycle"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/repository"
)

// EligibilityEvaluator decides whether a delivered order may still enter the
// return workflow: the order is delivered, no return exists yet, and the
// return window anchored at the delivery timestamp has not passed.
type EligibilityEvaluator struct {
	returns ReturnRepository
	clock   Clock
	window  time.Duration
}

func NewEligibilityEvaluator(returns ReturnRepository, clock Clock, window time.Duration) *EligibilityEvaluator {
	return &EligibilityEvaluator{
		returns: returns,
		clock:   clock,
		window:  window,
	}
}

// Evaluate returns eligibility plus the human-readable reason when the order
// is not eligible.
func (e *EligibilityEvaluator) Evaluate(ctx context.Context, order *repository.Order) (bool, string, error) {
	if lifecycle.State(order.CurrentState) != lifecycle.StateDelivered {
		return false, fmt.Sprintf("order is %s, not %s", order.CurrentState, lifecycle.StateDelivered), nil
	}
	if order.DeliveredAt == nil {
		return false, "order has no delivery timestamp", nil
	}

	_, err := e.returns.GetByOrderID(ctx, order.ID)
	if err == nil {
		return false, "a return request already exists for this order", nil
	}
	if !errors.Is(err, repository.ErrObjectNotFound) {
		return false, "", err
	}

	deadline := order.DeliveredAt.Add(e.window)
	if e.clock.Now().After(deadline) {
		return false, fmt.Sprintf("return window closed at %s", deadline.Format(time.RFC3339)), nil
	}
	return true, "", nil
}

// IsEligible is the boolean view of Evaluate.
func (e *EligibilityEvaluator) IsEligible(ctx context.Context, order *repository.Order) (bool, error) {
	ok, _, err := e.Evaluate(ctx, order)
	return ok, err
}

// Reason explains why the order is not eligible; empty when it is.
func (e *EligibilityEvaluator) Reason(ctx context.Context, order *repository.Order) (string, error) {
	_, reason, err := e.Evaluate(ctx, order)
	return reason, err
}

// RemainingWindow is the time left to open a return. Monotonically
// non-increasing as real time advances, clamped at zero, and zero whenever
// the order is not eligible at all.
func (e *EligibilityEvaluator) RemainingWindow(ctx context.Context, order *repository.Order) (time.Duration, error) {
	ok, _, err := e.Evaluate(ctx, order)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}

	remaining := order.DeliveredAt.Add(e.window).Sub(e.clock.Now())
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}
