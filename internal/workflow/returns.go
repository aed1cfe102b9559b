package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/lifecycle"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/metrics"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/repository"
)

const eventReturnTransition = "return.transition"

// ReturnResult reports one applied return-workflow move and the order state
// it dragged the owning order into.
type ReturnResult struct {
	ReturnID   string
	OrderID    string
	OldStatus  lifecycle.ReturnState
	NewStatus  lifecycle.ReturnState
	OrderState lifecycle.State
}

// ReturnWorkflowManager is the only writer of return-request status. Every
// move updates the request and the owning order in one transaction, appends
// a timeline entry per owner, and — for approvals, rejections, and refunds —
// requires the customer notification to go out before the commit. A failed
// notification rolls the whole operation back: "the customer was not told"
// is treated the same as "it did not happen".
type ReturnWorkflowManager struct {
	db          db.DB
	orders      OrderRepository
	returns     ReturnRepository
	timeline    TimelineRepository
	confirms    ConfirmationRepository
	validator   *lifecycle.Validator
	eligibility *EligibilityEvaluator
	shipping    ShippingCollaborator
	notifier    NotificationCollaborator
	audit       AuditSink
	cache       StateCache
	clock       Clock
	logger      *zap.Logger

	collaboratorTimeout time.Duration
}

func NewReturnWorkflowManager(
	database db.DB,
	orders OrderRepository,
	returns ReturnRepository,
	timeline TimelineRepository,
	confirms ConfirmationRepository,
	eligibility *EligibilityEvaluator,
	shipping ShippingCollaborator,
	notifier NotificationCollaborator,
	audit AuditSink,
	cache StateCache,
	clock Clock,
	logger *zap.Logger,
	collaboratorTimeout time.Duration,
) *ReturnWorkflowManager {
	return &ReturnWorkflowManager{
		db:                  database,
		orders:              orders,
		returns:             returns,
		timeline:            timeline,
		confirms:            confirms,
		validator:           lifecycle.NewValidator(lifecycle.ReturnRules()),
		eligibility:         eligibility,
		shipping:            shipping,
		notifier:            notifier,
		audit:               audit,
		cache:               cache,
		clock:               clock,
		logger:              logger,
		collaboratorTimeout: collaboratorTimeout,
	}
}

// CreateRequest opens a return for a delivered order. The eligibility gate
// runs before any write; an ineligible order fails typed and mutates
// nothing.
func (m *ReturnWorkflowManager) CreateRequest(ctx context.Context, orderID, customerID, reason string) (*repository.ReturnRequest, error) {
	order, err := m.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, &UnauthorizedError{
			Actor:   customerID,
			OwnerID: orderID,
			Reason:  "only the order owner may request a return",
		}
	}

	eligible, why, err := m.eligibility.Evaluate(ctx, order)
	if err != nil {
		return nil, err
	}
	if !eligible {
		m.auditReturnRejection(ctx, orderID, customerID, "", why)
		return nil, &NotEligibleError{OrderID: orderID, Reason: why}
	}

	tx, err := m.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	order, err = m.orders.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	current := lifecycle.State(order.CurrentState)
	if current != lifecycle.StateDelivered {
		reason := fmt.Sprintf("order is %s, returns start from %s", current, lifecycle.StateDelivered)
		m.auditReturnRejection(ctx, orderID, customerID, "", reason)
		return nil, &NotEligibleError{OrderID: orderID, Reason: reason}
	}

	now := m.clock.Now()
	ret := &repository.ReturnRequest{
		ID:         uuid.New(),
		OrderID:    orderID,
		CustomerID: customerID,
		Status:     string(lifecycle.ReturnRefundRequested),
		Reason:     reason,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := m.returns.CreateTx(ctx, tx, ret); err != nil {
		return nil, err
	}

	if err := m.updateOrderTx(ctx, tx, order, lifecycle.StateRefundRequested, customerID, reason, now); err != nil {
		return nil, err
	}

	if err := m.timeline.CreateTx(ctx, tx, &repository.TimelineEntry{
		OwnerID:   ret.ID.String(),
		State:     ret.Status,
		Actor:     customerID,
		Notes:     reason,
		ChangedAt: now,
	}); err != nil {
		return nil, fmt.Errorf("failed to append return timeline entry: %w", err)
	}

	// The customer asked for money back, so the pending delivery
	// confirmation is settled as rejected.
	if confirmation, err := m.confirms.GetByOrderIDTx(ctx, tx, orderID); err == nil &&
		confirmation.Status == string(lifecycle.ConfirmationPending) {
		confirmation.Status = string(lifecycle.ConfirmationRejected)
		confirmation.ConfirmedBy = customerID
		confirmation.UpdatedAt = now
		if err := m.confirms.UpdateTx(ctx, tx, confirmation); err != nil {
			return nil, fmt.Errorf("failed to update delivery confirmation: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit return creation: %w", err)
	}

	m.cache.Set(orderID, order.CurrentState, now)
	metrics.ReturnsCreatedTotal.Inc()
	m.auditReturn(ctx, ret.ID.String(), customerID, "", lifecycle.ReturnRefundRequested, reason, now)

	m.logger.Info("return request created",
		zap.String("return_id", ret.ID.String()),
		zap.String("order_id", orderID),
	)
	return ret, nil
}

// Approve moves the return to return_approved, books a carrier pickup when
// the shipping collaborator is reachable, and notifies the customer inside
// the transaction boundary.
func (m *ReturnWorkflowManager) Approve(ctx context.Context, returnID, actor string) (*ReturnResult, error) {
	return m.transition(ctx, returnID, actor, lifecycle.ReturnApproved, "", func(ctx context.Context, tx db.Tx, ret *repository.ReturnRequest) error {
		shipCtx, cancel := context.WithTimeout(ctx, m.collaboratorTimeout)
		defer cancel()

		if !m.shipping.IsAvailable(shipCtx) {
			// Carrier down: approval proceeds, warehouse handles the
			// pickup manually.
			m.logger.Warn("shipping collaborator unavailable, manual processing", zap.String("return_id", returnID))
			ret.Reason = ret.Reason + " [manual carrier processing]"
			return nil
		}

		code, fee, err := m.shipping.CreateReturnShipment(shipCtx, returnID)
		if err != nil {
			return &CollaboratorFailureError{Op: "shipping.CreateReturnShipment", Err: err}
		}
		ret.CarrierOrderCode = &code
		ret.CarrierFee = &fee
		return nil
	}, func(ctx context.Context) bool {
		return m.notifier.NotifyApproval(ctx, returnID)
	})
}

// Reject closes the review with refund_rejected and hands the order back to
// delivered.
func (m *ReturnWorkflowManager) Reject(ctx context.Context, returnID, actor, reason string) (*ReturnResult, error) {
	return m.transition(ctx, returnID, actor, lifecycle.ReturnRefundRejected, reason, nil, func(ctx context.Context) bool {
		return m.notifier.NotifyRejection(ctx, returnID)
	})
}

// ConfirmShipmentDispatched records that the customer handed the parcel to
// the carrier.
func (m *ReturnWorkflowManager) ConfirmShipmentDispatched(ctx context.Context, returnID, actor string) (*ReturnResult, error) {
	return m.transition(ctx, returnID, actor, lifecycle.ReturnReturning, "", nil, nil)
}

// ConfirmReceiptAtWarehouse records arrival of the returned parcel.
func (m *ReturnWorkflowManager) ConfirmReceiptAtWarehouse(ctx context.Context, returnID, actor string) (*ReturnResult, error) {
	return m.transition(ctx, returnID, actor, lifecycle.ReturnReceived, "", nil, nil)
}

// CompleteRefund finishes the workflow; the customer must be told before the
// state sticks.
func (m *ReturnWorkflowManager) CompleteRefund(ctx context.Context, returnID, actor string) (*ReturnResult, error) {
	return m.transition(ctx, returnID, actor, lifecycle.ReturnRefunded, "", nil, func(ctx context.Context) bool {
		return m.notifier.NotifyCompletion(ctx, returnID)
	})
}

// MarkFailed closes a return whose parcel never made it back. Any booked
// carrier order is cancelled best-effort.
func (m *ReturnWorkflowManager) MarkFailed(ctx context.Context, returnID, actor, reason string) (*ReturnResult, error) {
	return m.transition(ctx, returnID, actor, lifecycle.ReturnFailed, reason, func(ctx context.Context, tx db.Tx, ret *repository.ReturnRequest) error {
		if ret.CarrierOrderCode == nil {
			return nil
		}
		shipCtx, cancel := context.WithTimeout(ctx, m.collaboratorTimeout)
		defer cancel()
		if !m.shipping.CancelShipment(shipCtx, *ret.CarrierOrderCode) {
			m.logger.Warn("carrier shipment cancel failed",
				zap.String("return_id", returnID),
				zap.String("carrier_order_code", *ret.CarrierOrderCode))
		}
		return nil
	}, nil)
}

// GetByID fetches one return request.
func (m *ReturnWorkflowManager) GetByID(ctx context.Context, returnID string) (*repository.ReturnRequest, error) {
	return m.returns.GetByID(ctx, returnID)
}

// List pages through return requests, newest first.
func (m *ReturnWorkflowManager) List(ctx context.Context, page, limit int) ([]*repository.ReturnRequest, error) {
	return m.returns.GetPaginated(ctx, page, limit)
}

// transition is the shared guarded move: lock return, validate, lock order,
// apply both updates and both timeline entries, run the side-effect hook,
// require the notification, commit.
func (m *ReturnWorkflowManager) transition(
	ctx context.Context,
	returnID, actor string,
	next lifecycle.ReturnState,
	notes string,
	sideEffect func(ctx context.Context, tx db.Tx, ret *repository.ReturnRequest) error,
	notify func(ctx context.Context) bool,
) (*ReturnResult, error) {
	tx, err := m.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	ret, err := m.returns.GetByIDTx(ctx, tx, returnID)
	if err != nil {
		return nil, err
	}

	current := lifecycle.ReturnState(ret.Status)
	decision := m.validator.Validate(lifecycle.State(current), lifecycle.State(next))
	if !decision.Allowed {
		m.auditReturnRejection(ctx, ret.OrderID, actor, returnID, decision.Reason)
		metrics.TransitionsRejectedTotal.WithLabelValues(string(current), string(next)).Inc()
		legal := make([]lifecycle.State, len(decision.LegalNext))
		copy(legal, decision.LegalNext)
		return nil, &InvalidTransitionError{
			From:      lifecycle.State(current),
			To:        lifecycle.State(next),
			Reason:    decision.Reason,
			LegalNext: legal,
		}
	}
	if decision.NoOp {
		return &ReturnResult{
			ReturnID:   returnID,
			OrderID:    ret.OrderID,
			OldStatus:  current,
			NewStatus:  current,
			OrderState: lifecycle.OrderStateForReturn(current),
		}, nil
	}

	order, err := m.orders.GetByIDTx(ctx, tx, ret.OrderID)
	if err != nil {
		return nil, err
	}

	now := m.clock.Now()

	if sideEffect != nil {
		if err := sideEffect(ctx, tx, ret); err != nil {
			return nil, err
		}
	}

	ret.Status = string(next)
	if notes != "" {
		ret.Reason = notes
	}
	ret.UpdatedAt = now
	if err := m.returns.UpdateTx(ctx, tx, ret); err != nil {
		return nil, fmt.Errorf("failed to update return request: %w", err)
	}

	if err := m.timeline.CreateTx(ctx, tx, &repository.TimelineEntry{
		OwnerID:   returnID,
		State:     string(next),
		Actor:     actor,
		Notes:     notes,
		ChangedAt: now,
	}); err != nil {
		return nil, fmt.Errorf("failed to append return timeline entry: %w", err)
	}

	orderNext := lifecycle.OrderStateForReturn(next)
	if err := m.updateOrderTx(ctx, tx, order, orderNext, actor, notes, now); err != nil {
		return nil, err
	}

	if notify != nil {
		notifyCtx, cancel := context.WithTimeout(ctx, m.collaboratorTimeout)
		ok := notify(notifyCtx)
		cancel()
		if !ok {
			metrics.NotificationFailuresTotal.Inc()
			return nil, &CollaboratorFailureError{
				Op:  "notification",
				Err: fmt.Errorf("customer notification for return %s failed", returnID),
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit return transition: %w", err)
	}

	if orderNext.IsTerminal() {
		m.cache.Delete(order.ID)
	} else {
		m.cache.Set(order.ID, orderNext.String(), now)
	}
	metrics.TransitionsAppliedTotal.WithLabelValues(string(current), string(next)).Inc()
	m.auditReturn(ctx, returnID, actor, current, next, notes, now)

	m.logger.Info("return transition applied",
		zap.String("return_id", returnID),
		zap.String("order_id", order.ID),
		zap.String("from", string(current)),
		zap.String("to", string(next)),
		zap.String("actor", actor),
	)
	return &ReturnResult{
		ReturnID:   returnID,
		OrderID:    ret.OrderID,
		OldStatus:  current,
		NewStatus:  next,
		OrderState: orderNext,
	}, nil
}

// updateOrderTx writes the correlated order-side move plus its own timeline
// entry in the caller's transaction.
func (m *ReturnWorkflowManager) updateOrderTx(ctx context.Context, tx db.Tx, order *repository.Order, next lifecycle.State, actor, notes string, now time.Time) error {
	order.CurrentState = next.String()
	order.UpdatedAt = now
	if err := m.orders.UpdateTx(ctx, tx, order); err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if err := m.timeline.CreateTx(ctx, tx, &repository.TimelineEntry{
		OwnerID:   order.ID,
		State:     next.String(),
		Actor:     actor,
		Notes:     notes,
		ChangedAt: now,
	}); err != nil {
		return fmt.Errorf("failed to append order timeline entry: %w", err)
	}
	return nil
}

func (m *ReturnWorkflowManager) auditReturn(ctx context.Context, returnID, actor string, old, next lifecycle.ReturnState, notes string, now time.Time) {
	m.audit.Record(ctx, eventReturnTransition, returnID, repository.AuditEventPayload{
		Timestamp: now,
		EventType: eventReturnTransition,
		OwnerID:   returnID,
		OwnerKind: "return",
		Actor:     actor,
		OldState:  string(old),
		NewState:  string(next),
		Applied:   true,
		Notes:     notes,
	})
}

func (m *ReturnWorkflowManager) auditReturnRejection(ctx context.Context, orderID, actor, returnID, reason string) {
	ownerID := returnID
	ownerKind := "return"
	if ownerID == "" {
		ownerID = orderID
		ownerKind = "order"
	}
	m.audit.Record(ctx, eventReturnTransition, ownerID, repository.AuditEventPayload{
		Timestamp: m.clock.Now(),
		EventType: eventReturnTransition,
		OwnerID:   ownerID,
		OwnerKind: ownerKind,
		Actor:     actor,
		Applied:   false,
		Reason:    reason,
	})
}
