package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/lifecycle"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/repository"
)

var testStart = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	store    *fakeStore
	orders   *fakeOrders
	timeline *fakeTimeline
	returns  *fakeReturns
	confirms *fakeConfirms
	clock    *fakeClock
	sink     *recordingSink
	cache    *fakeCache
	shipping *fakeShipping
	notifier *fakeNotifier

	manager  *LifecycleManager
	returnWf *ReturnWorkflowManager
	resolver *ConflictResolver
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		store:    newFakeStore(),
		clock:    newFakeClock(testStart),
		sink:     &recordingSink{},
		cache:    newFakeCache(),
		shipping: &fakeShipping{code: "carrier-42", fee: 350, cancelOK: true},
		notifier: &fakeNotifier{},
	}
	env.orders = &fakeOrders{s: env.store}
	env.timeline = &fakeTimeline{s: env.store}
	env.returns = &fakeReturns{s: env.store}
	env.confirms = &fakeConfirms{s: env.store}

	validator := lifecycle.NewValidator(lifecycle.OrderRules(lifecycle.Config{}))
	logger := zap.NewNop()

	env.manager = NewLifecycleManager(env.store, env.orders, env.timeline, env.confirms,
		validator, env.sink, env.cache, env.clock, logger)

	eligibility := NewEligibilityEvaluator(env.returns, env.clock, 48*time.Hour)
	env.returnWf = NewReturnWorkflowManager(env.store, env.orders, env.returns, env.timeline,
		env.confirms, eligibility, env.shipping, env.notifier, env.sink, env.cache,
		env.clock, logger, time.Second)

	env.resolver = NewConflictResolver(env.store, env.orders, env.timeline, env.manager,
		env.clock, logger)

	return env
}

// seedOrder plants a committed order plus a matching timeline entry.
func (env *testEnv) seedOrder(t *testing.T, id, customerID string, state lifecycle.State, deliveredAt *time.Time) {
	t.Helper()
	env.store.mu.Lock()
	defer env.store.mu.Unlock()

	env.store.orders[id] = &repository.Order{
		ID:           id,
		CustomerID:   customerID,
		CurrentState: state.String(),
		DeliveredAt:  deliveredAt,
		CreatedAt:    testStart.Add(-time.Hour),
		UpdatedAt:    testStart.Add(-time.Hour),
	}
	env.store.nextID++
	env.store.timeline = append(env.store.timeline, &repository.TimelineEntry{
		ID:        env.store.nextID,
		OwnerID:   id,
		State:     state.String(),
		Actor:     ActorSystem,
		ChangedAt: testStart.Add(-time.Hour),
	})
}

func (env *testEnv) seedPendingConfirmation(t *testing.T, orderID string) {
	t.Helper()
	env.store.mu.Lock()
	defer env.store.mu.Unlock()
	env.store.confirms[orderID] = &repository.DeliveryConfirmation{
		OrderID:   orderID,
		Status:    string(lifecycle.ConfirmationPending),
		CreatedAt: testStart.Add(-time.Hour),
		UpdatedAt: testStart.Add(-time.Hour),
	}
}

func (env *testEnv) orderState(t *testing.T, orderID string) lifecycle.State {
	t.Helper()
	order, err := env.orders.GetByID(context.Background(), orderID)
	require.NoError(t, err)
	return lifecycle.State(order.CurrentState)
}

func (env *testEnv) latestTimelineState(t *testing.T, ownerID string) string {
	t.Helper()
	latest, err := env.timeline.GetLatest(context.Background(), ownerID)
	require.NoError(t, err)
	return latest.State
}

func TestCreateOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.manager.CreateOrder(ctx, "order1", "user123", "manager1"))

	assert.Equal(t, lifecycle.StatePending, env.orderState(t, "order1"))
	assert.Equal(t, lifecycle.StatePending.String(), env.latestTimelineState(t, "order1"))

	cached, ok := env.cache.get("order1")
	require.True(t, ok)
	assert.Equal(t, lifecycle.StatePending.String(), cached)
}

func TestRequestTransition(t *testing.T) {
	ctx := context.Background()

	t.Run("applied transition writes state and timeline together", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedOrder(t, "order1", "user123", lifecycle.StatePending, nil)

		res, err := env.manager.RequestTransition(ctx, "order1", lifecycle.StateConfirmed, "manager1", "payment ok")
		require.NoError(t, err)
		assert.True(t, res.Applied)
		assert.Equal(t, lifecycle.StatePending, res.OldState)
		assert.Equal(t, lifecycle.StateConfirmed, res.NewState)

		assert.Equal(t, lifecycle.StateConfirmed, env.orderState(t, "order1"))
		assert.Equal(t, lifecycle.StateConfirmed.String(), env.latestTimelineState(t, "order1"))

		last := env.sink.last()
		assert.True(t, last.Applied)
		assert.Equal(t, "manager1", last.Actor)
	})

	t.Run("rejected transition is audited and mutates nothing", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedOrder(t, "order1", "user123", lifecycle.StatePending, nil)
		entriesBefore, _ := env.timeline.GetByOwnerID(ctx, "order1")

		_, err := env.manager.RequestTransition(ctx, "order1", lifecycle.StateShipping, "manager1", "")

		var invalid *InvalidTransitionError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, lifecycle.StatePending, invalid.From)
		assert.Contains(t, invalid.LegalNext, lifecycle.StateConfirmed)
		assert.Contains(t, invalid.LegalNext, lifecycle.StateCancelled)

		assert.Equal(t, lifecycle.StatePending, env.orderState(t, "order1"))
		entriesAfter, _ := env.timeline.GetByOwnerID(ctx, "order1")
		assert.Len(t, entriesAfter, len(entriesBefore))

		last := env.sink.last()
		assert.False(t, last.Applied)
		assert.NotEmpty(t, last.Reason)
	})

	t.Run("same state is an accepted no-op", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedOrder(t, "order1", "user123", lifecycle.StateConfirmed, nil)
		entriesBefore, _ := env.timeline.GetByOwnerID(ctx, "order1")

		res, err := env.manager.RequestTransition(ctx, "order1", lifecycle.StateConfirmed, "manager1", "")
		require.NoError(t, err)
		assert.False(t, res.Applied)
		assert.Equal(t, res.OldState, res.NewState)

		entriesAfter, _ := env.timeline.GetByOwnerID(ctx, "order1")
		assert.Len(t, entriesAfter, len(entriesBefore))
	})

	t.Run("terminal state accepts nothing", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedOrder(t, "order1", "user123", lifecycle.StateCancelled, nil)

		_, err := env.manager.RequestTransition(ctx, "order1", lifecycle.StateConfirmed, "manager1", "")

		var invalid *InvalidTransitionError
		require.ErrorAs(t, err, &invalid)
		assert.Empty(t, invalid.LegalNext)
	})

	t.Run("entering delivered stamps the timestamp and opens a confirmation", func(t *testing.T) {
		env := newTestEnv(t)
		env.seedOrder(t, "order1", "user123", lifecycle.StateAwaitingConfirmation, nil)

		_, err := env.manager.RequestTransition(ctx, "order1", lifecycle.StateDelivered, ActorSystem, "")
		require.NoError(t, err)

		order, err := env.orders.GetByID(ctx, "order1")
		require.NoError(t, err)
		require.NotNil(t, order.DeliveredAt)
		assert.Equal(t, env.clock.Now(), *order.DeliveredAt)

		confirmation, err := env.confirms.GetByOrderID(ctx, "order1")
		require.NoError(t, err)
		assert.Equal(t, string(lifecycle.ConfirmationPending), confirmation.Status)
	})

	t.Run("unknown order", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.manager.RequestTransition(ctx, "ghost", lifecycle.StateConfirmed, "manager1", "")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

// The invariant the whole engine hangs on: after every applied transition
// the denormalized state equals the newest timeline entry.
func TestStateTimelineInvariantOverFullPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.manager.CreateOrder(ctx, "order1", "user123", "manager1"))

	path := []lifecycle.State{
		lifecycle.StateConfirmed,
		lifecycle.StateShipping,
		lifecycle.StateAwaitingConfirmation,
		lifecycle.StateDelivered,
	}
	for _, next := range path {
		env.clock.Advance(time.Minute)
		_, err := env.manager.RequestTransition(ctx, "order1", next, "manager1", "")
		require.NoError(t, err)

		assert.Equal(t, next, env.orderState(t, "order1"))
		assert.Equal(t, next.String(), env.latestTimelineState(t, "order1"))
	}

	entries, err := env.timeline.GetByOwnerID(ctx, "order1")
	require.NoError(t, err)
	assert.Len(t, entries, len(path)+1)
}

func TestConfirmDeliveryByCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("owner confirms receipt", func(t *testing.T) {
		env := newTestEnv(t)
		deliveredAt := testStart.Add(-time.Hour)
		env.seedOrder(t, "order1", "user123", lifecycle.StateDelivered, &deliveredAt)
		env.seedPendingConfirmation(t, "order1")

		res, err := env.manager.ConfirmDeliveryByCustomer(ctx, "order1", "user123", "all good")
		require.NoError(t, err)
		assert.True(t, res.Applied)
		assert.Equal(t, lifecycle.StateConfirmedByCustomer, res.NewState)

		confirmation, err := env.confirms.GetByOrderID(ctx, "order1")
		require.NoError(t, err)
		assert.Equal(t, string(lifecycle.ConfirmationConfirmed), confirmation.Status)
		assert.Equal(t, "user123", confirmation.ConfirmedBy)

		// Terminal state drops out of the hot cache.
		_, ok := env.cache.get("order1")
		assert.False(t, ok)
	})

	t.Run("foreign customer is refused before validation", func(t *testing.T) {
		env := newTestEnv(t)
		deliveredAt := testStart.Add(-time.Hour)
		env.seedOrder(t, "order1", "user123", lifecycle.StateDelivered, &deliveredAt)
		env.seedPendingConfirmation(t, "order1")

		_, err := env.manager.ConfirmDeliveryByCustomer(ctx, "order1", "intruder", "")

		var unauthorized *UnauthorizedError
		require.ErrorAs(t, err, &unauthorized)
		assert.Equal(t, "intruder", unauthorized.Actor)

		assert.Equal(t, lifecycle.StateDelivered, env.orderState(t, "order1"))
		last := env.sink.last()
		assert.False(t, last.Applied)
	})

	t.Run("settled confirmation cannot be confirmed again", func(t *testing.T) {
		env := newTestEnv(t)
		deliveredAt := testStart.Add(-time.Hour)
		env.seedOrder(t, "order1", "user123", lifecycle.StateDelivered, &deliveredAt)
		env.store.mu.Lock()
		env.store.confirms["order1"] = &repository.DeliveryConfirmation{
			OrderID: "order1",
			Status:  string(lifecycle.ConfirmationRejected),
		}
		env.store.mu.Unlock()

		_, err := env.manager.ConfirmDeliveryByCustomer(ctx, "order1", "user123", "")

		var invalid *InvalidTransitionError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, lifecycle.StateDelivered, env.orderState(t, "order1"))
	})

	t.Run("auto-confirm stamps the system actor", func(t *testing.T) {
		env := newTestEnv(t)
		deliveredAt := testStart.Add(-25 * time.Hour)
		env.seedOrder(t, "order1", "user123", lifecycle.StateDelivered, &deliveredAt)
		env.seedPendingConfirmation(t, "order1")

		res, err := env.manager.AutoConfirmDelivery(ctx, "order1")
		require.NoError(t, err)
		assert.True(t, res.Applied)

		latest, err := env.timeline.GetLatest(ctx, "order1")
		require.NoError(t, err)
		assert.Equal(t, ActorSystem, latest.Actor)
	})
}

func TestTimeline(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.manager.Timeline(ctx, "ghost")
	assert.True(t, errors.Is(err, ErrNotFound))

	env.seedOrder(t, "order1", "user123", lifecycle.StatePending, nil)
	entries, err := env.manager.Timeline(ctx, "order1")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
