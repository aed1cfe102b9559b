package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/lifecycle"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/metrics"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/repository"
)

const (
	eventTransition      = "order.transition"
	eventDeliveryConfirm = "order.delivery_confirmation"
)

// TransitionResult reports an accepted transition. Applied is false for the
// idempotent same-state case, where nothing was written.
type TransitionResult struct {
	OrderID  string
	OldState lifecycle.State
	NewState lifecycle.State
	Applied  bool
}

// LifecycleManager is the only writer of order state. Every mutation locks
// the order row, validates against the rule table, writes the new state and
// its timeline entry in one transaction, and emits an audit record — also
// for rejected attempts, which mutate nothing.
type LifecycleManager struct {
	db        db.DB
	orders    OrderRepository
	timeline  TimelineRepository
	confirms  ConfirmationRepository
	validator *lifecycle.Validator
	audit     AuditSink
	cache     StateCache
	clock     Clock
	logger    *zap.Logger
}

func NewLifecycleManager(
	database db.DB,
	orders OrderRepository,
	timeline TimelineRepository,
	confirms ConfirmationRepository,
	validator *lifecycle.Validator,
	audit AuditSink,
	cache StateCache,
	clock Clock,
	logger *zap.Logger,
) *LifecycleManager {
	return &LifecycleManager{
		db:        database,
		orders:    orders,
		timeline:  timeline,
		confirms:  confirms,
		validator: validator,
		audit:     audit,
		cache:     cache,
		clock:     clock,
		logger:    logger,
	}
}

// CreateOrder registers a new order in the pending state together with its
// first timeline entry.
func (m *LifecycleManager) CreateOrder(ctx context.Context, orderID, customerID, actor string) error {
	now := m.clock.Now()
	order := &repository.Order{
		ID:           orderID,
		CustomerID:   customerID,
		CurrentState: lifecycle.StatePending.String(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	tx, err := m.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	if err := m.orders.CreateTx(ctx, tx, order); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	entry := &repository.TimelineEntry{
		OwnerID:   orderID,
		State:     order.CurrentState,
		Actor:     actor,
		Notes:     "order created",
		ChangedAt: now,
	}
	if err := m.timeline.CreateTx(ctx, tx, entry); err != nil {
		return fmt.Errorf("failed to append timeline entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit order creation: %w", err)
	}

	m.cache.Set(orderID, order.CurrentState, now)
	metrics.OrdersCreatedTotal.Inc()

	m.audit.Record(ctx, eventTransition, orderID, repository.AuditEventPayload{
		Timestamp: now,
		EventType: eventTransition,
		OwnerID:   orderID,
		OwnerKind: "order",
		Actor:     actor,
		NewState:  order.CurrentState,
		Applied:   true,
	})
	return nil
}

// RequestTransition moves the order to next on behalf of actor. Validation
// failures are reported as typed results and audited; nothing is written for
// them.
func (m *LifecycleManager) RequestTransition(ctx context.Context, orderID string, next lifecycle.State, actor, notes string) (*TransitionResult, error) {
	tx, err := m.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	order, err := m.orders.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	current := lifecycle.State(order.CurrentState)
	decision := m.validator.Validate(current, next)
	if !decision.Allowed {
		m.auditRejection(ctx, orderID, actor, current, next, decision.Reason)
		metrics.TransitionsRejectedTotal.WithLabelValues(current.String(), next.String()).Inc()
		return nil, &InvalidTransitionError{
			From:      current,
			To:        next,
			Reason:    decision.Reason,
			LegalNext: decision.LegalNext,
		}
	}

	if decision.NoOp {
		return &TransitionResult{OrderID: orderID, OldState: current, NewState: current}, nil
	}

	now := m.clock.Now()
	if err := m.applyTx(ctx, tx, order, next, actor, notes, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transition: %w", err)
	}

	m.afterApply(ctx, orderID, actor, current, next, notes, now)
	return &TransitionResult{OrderID: orderID, OldState: current, NewState: next, Applied: true}, nil
}

// applyTx writes the state change, its timeline entry, and the delivery
// confirmation row when the order enters delivered. Caller owns the
// transaction.
func (m *LifecycleManager) applyTx(ctx context.Context, tx db.Tx, order *repository.Order, next lifecycle.State, actor, notes string, now time.Time) error {
	order.CurrentState = next.String()
	order.UpdatedAt = now
	if next == lifecycle.StateDelivered && order.DeliveredAt == nil {
		deliveredAt := now
		order.DeliveredAt = &deliveredAt
	}

	if err := m.orders.UpdateTx(ctx, tx, order); err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}

	entry := &repository.TimelineEntry{
		OwnerID:   order.ID,
		State:     next.String(),
		Actor:     actor,
		Notes:     notes,
		ChangedAt: now,
	}
	if err := m.timeline.CreateTx(ctx, tx, entry); err != nil {
		return fmt.Errorf("failed to append timeline entry: %w", err)
	}

	if next == lifecycle.StateDelivered {
		if _, err := m.confirms.GetByOrderIDTx(ctx, tx, order.ID); errors.Is(err, repository.ErrObjectNotFound) {
			c := &repository.DeliveryConfirmation{
				OrderID:   order.ID,
				Status:    string(lifecycle.ConfirmationPending),
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := m.confirms.CreateTx(ctx, tx, c); err != nil {
				return fmt.Errorf("failed to create delivery confirmation: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("failed to check delivery confirmation: %w", err)
		}
	}
	return nil
}

func (m *LifecycleManager) afterApply(ctx context.Context, orderID, actor string, old, next lifecycle.State, notes string, now time.Time) {
	if next.IsTerminal() {
		m.cache.Delete(orderID)
	} else {
		m.cache.Set(orderID, next.String(), now)
	}
	metrics.TransitionsAppliedTotal.WithLabelValues(old.String(), next.String()).Inc()

	m.audit.Record(ctx, eventTransition, orderID, repository.AuditEventPayload{
		Timestamp: now,
		EventType: eventTransition,
		OwnerID:   orderID,
		OwnerKind: "order",
		Actor:     actor,
		OldState:  old.String(),
		NewState:  next.String(),
		Applied:   true,
		Notes:     notes,
	})

	m.logger.Info("order transition applied",
		zap.String("order_id", orderID),
		zap.String("from", old.String()),
		zap.String("to", next.String()),
		zap.String("actor", actor),
	)
}

func (m *LifecycleManager) auditRejection(ctx context.Context, orderID, actor string, current, next lifecycle.State, reason string) {
	m.audit.Record(ctx, eventTransition, orderID, repository.AuditEventPayload{
		Timestamp: m.clock.Now(),
		EventType: eventTransition,
		OwnerID:   orderID,
		OwnerKind: "order",
		Actor:     actor,
		OldState:  current.String(),
		NewState:  next.String(),
		Applied:   false,
		Reason:    reason,
	})
}

// CurrentState reads the order's denormalized state.
func (m *LifecycleManager) CurrentState(ctx context.Context, orderID string) (lifecycle.State, error) {
	order, err := m.orders.GetByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	return lifecycle.State(order.CurrentState), nil
}

// Timeline returns the full per-order event log, oldest first.
func (m *LifecycleManager) Timeline(ctx context.Context, orderID string) ([]*repository.TimelineEntry, error) {
	if _, err := m.orders.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	return m.timeline.GetByOwnerID(ctx, orderID)
}

// ConfirmDeliveryByCustomer is the delivered -> confirmed_by_customer move,
// restricted to the order's owner. The ownership check runs before the rule
// table is consulted; failing it is audited and mutates nothing.
func (m *LifecycleManager) ConfirmDeliveryByCustomer(ctx context.Context, orderID, customerID, notes string) (*TransitionResult, error) {
	order, err := m.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		m.auditRejection(ctx, orderID, customerID,
			lifecycle.State(order.CurrentState), lifecycle.StateConfirmedByCustomer,
			"actor is not the order owner")
		return nil, &UnauthorizedError{
			Actor:   customerID,
			OwnerID: orderID,
			Reason:  "only the order owner may confirm delivery",
		}
	}
	return m.confirmDelivery(ctx, orderID, customerID, notes)
}

// AutoConfirmDelivery is the sweeper's variant: same pinned transition,
// stamped SYSTEM, no ownership check.
func (m *LifecycleManager) AutoConfirmDelivery(ctx context.Context, orderID string) (*TransitionResult, error) {
	return m.confirmDelivery(ctx, orderID, ActorSystem, "delivery auto-confirmed after deadline")
}

func (m *LifecycleManager) confirmDelivery(ctx context.Context, orderID, actor, notes string) (*TransitionResult, error) {
	tx, err := m.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	order, err := m.orders.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	current := lifecycle.State(order.CurrentState)
	decision := m.validator.Validate(current, lifecycle.StateConfirmedByCustomer)
	if !decision.Allowed {
		m.auditRejection(ctx, orderID, actor, current, lifecycle.StateConfirmedByCustomer, decision.Reason)
		metrics.TransitionsRejectedTotal.WithLabelValues(current.String(), lifecycle.StateConfirmedByCustomer.String()).Inc()
		return nil, &InvalidTransitionError{
			From:      current,
			To:        lifecycle.StateConfirmedByCustomer,
			Reason:    decision.Reason,
			LegalNext: decision.LegalNext,
		}
	}
	if decision.NoOp {
		return &TransitionResult{OrderID: orderID, OldState: current, NewState: current}, nil
	}

	confirmation, err := m.confirms.GetByOrderIDTx(ctx, tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load delivery confirmation: %w", err)
	}
	if confirmation.Status != string(lifecycle.ConfirmationPending) {
		reason := fmt.Sprintf("delivery confirmation already %s", confirmation.Status)
		m.auditRejection(ctx, orderID, actor, current, lifecycle.StateConfirmedByCustomer, reason)
		return nil, &InvalidTransitionError{
			From:   current,
			To:     lifecycle.StateConfirmedByCustomer,
			Reason: reason,
		}
	}

	now := m.clock.Now()
	confirmation.Status = string(lifecycle.ConfirmationConfirmed)
	confirmation.ConfirmedBy = actor
	confirmation.UpdatedAt = now
	if err := m.confirms.UpdateTx(ctx, tx, confirmation); err != nil {
		return nil, fmt.Errorf("failed to update delivery confirmation: %w", err)
	}

	if err := m.applyTx(ctx, tx, order, lifecycle.StateConfirmedByCustomer, actor, notes, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit delivery confirmation: %w", err)
	}

	m.afterApply(ctx, orderID, actor, current, lifecycle.StateConfirmedByCustomer, notes, now)

	m.audit.Record(ctx, eventDeliveryConfirm, orderID, repository.AuditEventPayload{
		Timestamp: now,
		EventType: eventDeliveryConfirm,
		OwnerID:   orderID,
		OwnerKind: "order",
		Actor:     actor,
		NewState:  string(lifecycle.ConfirmationConfirmed),
		Applied:   true,
	})
	return &TransitionResult{OrderID: orderID, OldState: current, NewState: lifecycle.StateConfirmedByCustomer, Applied: true}, nil
}
