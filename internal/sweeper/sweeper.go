package sweeper

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/lifecycle"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/metrics"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/repository"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/workflow"
)

// Manager is the slice of the lifecycle manager the sweeper drives. Every
// forced transition goes through the same validation and audit path as a
// human-triggered one, so a sweep can never produce an illegal move.
type Manager interface {
	RequestTransition(ctx context.Context, orderID string, next lifecycle.State, actor, notes string) (*workflow.TransitionResult, error)
	AutoConfirmDelivery(ctx context.Context, orderID string) (*workflow.TransitionResult, error)
}

type OrderSource interface {
	GetByState(ctx context.Context, state string) ([]*repository.Order, error)
}

type TimelineSource interface {
	GetLatest(ctx context.Context, ownerID string) (*repository.TimelineEntry, error)
}

type ConfirmationSource interface {
	GetStalePending(ctx context.Context, cutoff time.Time) ([]*repository.DeliveryConfirmation, error)
}

type Config struct {
	Interval     time.Duration
	MaxAge       time.Duration
	OrderTimeout time.Duration
}

// Sweeper periodically forces timed-out orders through their default
// transition: orders parked in awaiting_confirmation past the deadline are
// marked delivered, and deliveries whose confirmation was never answered
// are confirmed on the customer's behalf. A sweep is a best-effort batch:
// per-order failures are logged and the rest of the batch continues.
type Sweeper struct {
	manager  Manager
	orders   OrderSource
	timeline TimelineSource
	confirms ConfirmationSource
	clock    workflow.Clock
	config   Config
	logger   *zap.Logger

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopCh   chan struct{}
}

func New(
	manager Manager,
	orders OrderSource,
	timeline TimelineSource,
	confirms ConfirmationSource,
	clock workflow.Clock,
	config Config,
	logger *zap.Logger,
) *Sweeper {
	return &Sweeper{
		manager:  manager,
		orders:   orders,
		timeline: timeline,
		confirms: confirms,
		clock:    clock,
		config:   config,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Run blocks, sweeping once per interval until the context is cancelled or
// Shutdown is called. Ticks never overlap: a sweep finishes before the next
// one is considered.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("sweeper started", zap.Duration("interval", s.config.Interval))
	s.wg.Add(1)
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep(ctx)
		case <-s.stopCh:
			s.logger.Info("sweeper received shutdown signal, stopping")
			return
		case <-ctx.Done():
			s.logger.Info("sweeper context cancelled, stopping")
			return
		}
	}
}

func (s *Sweeper) Shutdown() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
	})
}

// Sweep executes one pass. Exported so tests and an admin endpoint can
// trigger it directly.
func (s *Sweeper) Sweep(ctx context.Context) {
	s.sweepAwaitingConfirmation(ctx)
	s.sweepPendingConfirmations(ctx)
	metrics.SweepsTotal.Inc()
}

func (s *Sweeper) sweepAwaitingConfirmation(ctx context.Context) {
	orders, err := s.orders.GetByState(ctx, lifecycle.StateAwaitingConfirmation.String())
	if err != nil {
		s.logger.Error("sweep: failed to list awaiting orders", zap.Error(err))
		return
	}

	for _, order := range orders {
		if ctx.Err() != nil {
			return
		}

		latest, err := s.timeline.GetLatest(ctx, order.ID)
		if err != nil {
			s.logger.Error("sweep: failed to read timeline", zap.String("order_id", order.ID), zap.Error(err))
			metrics.SweepErrorsTotal.Inc()
			continue
		}
		if s.clock.Now().Sub(latest.ChangedAt) < s.config.MaxAge {
			continue
		}

		orderCtx, cancel := context.WithTimeout(ctx, s.config.OrderTimeout)
		_, err = s.manager.RequestTransition(orderCtx, order.ID, lifecycle.StateDelivered,
			workflow.ActorSystem, "delivery deadline passed, auto-confirmed")
		cancel()
		if err != nil {
			// Likely lost a race with a concurrent actor; the next pass
			// will pick the order up again if it still qualifies.
			s.logger.Warn("sweep: transition failed",
				zap.String("order_id", order.ID), zap.Error(err))
			metrics.SweepErrorsTotal.Inc()
			continue
		}
		metrics.SweepTransitionsTotal.Inc()
	}
}

func (s *Sweeper) sweepPendingConfirmations(ctx context.Context) {
	cutoff := s.clock.Now().Add(-s.config.MaxAge)
	confirmations, err := s.confirms.GetStalePending(ctx, cutoff)
	if err != nil {
		s.logger.Error("sweep: failed to list stale confirmations", zap.Error(err))
		return
	}

	for _, c := range confirmations {
		if ctx.Err() != nil {
			return
		}

		orderCtx, cancel := context.WithTimeout(ctx, s.config.OrderTimeout)
		_, err := s.manager.AutoConfirmDelivery(orderCtx, c.OrderID)
		cancel()
		if err != nil {
			var invalid *workflow.InvalidTransitionError
			if errors.As(err, &invalid) {
				// The order moved on (e.g. into the return workflow)
				// between listing and locking. Nothing to do.
				continue
			}
			s.logger.Warn("sweep: auto-confirm failed",
				zap.String("order_id", c.OrderID), zap.Error(err))
			metrics.SweepErrorsTotal.Inc()
			continue
		}
		metrics.SweepTransitionsTotal.Inc()
	}
}
