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

// ConsistencyReport is Repair's outcome.
type ConsistencyReport struct {
	OrderID       string
	StateField    lifecycle.State
	TimelineState lifecycle.State
	Consistent    bool
	Repaired      bool
	Synthesized   bool
}

// ConflictResolver arbitrates between a client-observed state and the
// persisted timeline. The timeline is ground truth: a client claim older
// than the newest timeline entry is discarded; a newer one is replayed
// through the lifecycle manager and stays subject to normal validation.
type ConflictResolver struct {
	db       db.DB
	orders   OrderRepository
	timeline TimelineRepository
	manager  *LifecycleManager
	clock    Clock
	logger   *zap.Logger
}

func NewConflictResolver(
	database db.DB,
	orders OrderRepository,
	timeline TimelineRepository,
	manager *LifecycleManager,
	clock Clock,
	logger *zap.Logger,
) *ConflictResolver {
	return &ConflictResolver{
		db:       database,
		orders:   orders,
		timeline: timeline,
		manager:  manager,
		clock:    clock,
		logger:   logger,
	}
}

// Resolve decides which of the two competing "current state" claims is
// authoritative and returns it. Resolving twice with the same stale input
// yields the same answer both times.
func (r *ConflictResolver) Resolve(ctx context.Context, orderID string, clientState lifecycle.State, clientTimestamp time.Time, actor string) (lifecycle.State, error) {
	latest, err := r.timeline.GetLatest(ctx, orderID)
	if err != nil && !errors.Is(err, repository.ErrObjectNotFound) {
		return "", err
	}

	if latest != nil && latest.ChangedAt.After(clientTimestamp) {
		// Database wins: the client was looking at a stale snapshot.
		metrics.ConflictsResolvedTotal.WithLabelValues("database").Inc()
		r.logger.Info("conflict resolved in favor of database",
			zap.String("order_id", orderID),
			zap.String("client_state", clientState.String()),
			zap.String("db_state", latest.State),
		)
		return lifecycle.State(latest.State), nil
	}

	// Client claim is at least as fresh as the timeline: replay it as a
	// normal transition request.
	result, err := r.manager.RequestTransition(ctx, orderID, clientState, actor, "submitted via conflict resolution")
	if err != nil {
		var invalid *InvalidTransitionError
		if errors.As(err, &invalid) {
			// The claim lost on validation; the persisted state stands.
			metrics.ConflictsResolvedTotal.WithLabelValues("rejected").Inc()
			return invalid.From, nil
		}
		return "", err
	}

	metrics.ConflictsResolvedTotal.WithLabelValues("client").Inc()
	return result.NewState, nil
}

// Repair restores the invariant that the order's denormalized state equals
// its newest timeline entry. The timeline always wins; entries are never
// invented or deleted, except that an order with no timeline at all gets
// exactly one SYSTEM entry reflecting its current denormalized state.
func (r *ConflictResolver) Repair(ctx context.Context, orderID string) (*ConsistencyReport, error) {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	order, err := r.orders.GetByIDTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	stateField := lifecycle.State(order.CurrentState)

	latest, err := r.timeline.GetLatestTx(ctx, tx, orderID)
	if errors.Is(err, repository.ErrObjectNotFound) {
		entry := &repository.TimelineEntry{
			OwnerID:   orderID,
			State:     order.CurrentState,
			Actor:     ActorSystem,
			Notes:     "timeline backfilled from order state during repair",
			ChangedAt: r.clock.Now(),
		}
		if err := r.timeline.CreateTx(ctx, tx, entry); err != nil {
			return nil, fmt.Errorf("failed to backfill timeline entry: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to commit repair: %w", err)
		}
		metrics.RepairsTotal.WithLabelValues("synthesized").Inc()
		r.logger.Warn("repair synthesized missing timeline entry", zap.String("order_id", orderID))
		return &ConsistencyReport{
			OrderID:       orderID,
			StateField:    stateField,
			TimelineState: stateField,
			Repaired:      true,
			Synthesized:   true,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	timelineState := lifecycle.State(latest.State)
	if timelineState == stateField {
		return &ConsistencyReport{
			OrderID:       orderID,
			StateField:    stateField,
			TimelineState: timelineState,
			Consistent:    true,
		}, nil
	}

	order.CurrentState = latest.State
	order.UpdatedAt = r.clock.Now()
	if err := r.orders.UpdateTx(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to rewrite order state: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit repair: %w", err)
	}

	metrics.RepairsTotal.WithLabelValues("rewritten").Inc()
	r.logger.Warn("repair rewrote denormalized order state from timeline",
		zap.String("order_id", orderID),
		zap.String("was", stateField.String()),
		zap.String("now", timelineState.String()),
	)
	return &ConsistencyReport{
		OrderID:       orderID,
		StateField:    stateField,
		TimelineState: timelineState,
		Repaired:      true,
	}, nil
}

// Check reports the violation without fixing it, for the health surface.
func (r *ConflictResolver) Check(ctx context.Context, orderID string) error {
	order, err := r.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	latest, err := r.timeline.GetLatest(ctx, orderID)
	if errors.Is(err, repository.ErrObjectNotFound) {
		return &ConsistencyViolationError{OrderID: orderID, StateField: order.CurrentState, TimelineState: ""}
	}
	if err != nil {
		return err
	}
	if latest.State != order.CurrentState {
		return &ConsistencyViolationError{
			OrderID:       orderID,
			StateField:    order.CurrentState,
			TimelineState: latest.State,
		}
	}
	return nil
}
