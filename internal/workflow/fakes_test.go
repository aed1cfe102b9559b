package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/repository"
)

// fakeStore is an in-memory stand-in for the database with real commit and
// rollback semantics: tx writes are staged as closures and only hit the maps
// on Commit, so a rolled-back operation leaves no trace. Reads always see
// committed state.
type fakeStore struct {
	mu       sync.Mutex
	orders   map[string]*repository.Order
	returns  map[string]*repository.ReturnRequest
	timeline []*repository.TimelineEntry
	confirms map[string]*repository.DeliveryConfirmation
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders:   make(map[string]*repository.Order),
		returns:  make(map[string]*repository.ReturnRequest),
		confirms: make(map[string]*repository.DeliveryConfirmation),
	}
}

func (s *fakeStore) BeginTx(ctx context.Context) (db.Tx, error) {
	return &fakeTx{store: s}, nil
}

func (s *fakeStore) Get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	panic("raw sql not supported by fakeStore")
}

func (s *fakeStore) Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	panic("raw sql not supported by fakeStore")
}

func (s *fakeStore) Exec(ctx context.Context, query string, args ...interface{}) (pgconn.CommandTag, error) {
	panic("raw sql not supported by fakeStore")
}

func (s *fakeStore) ExecQueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row {
	panic("raw sql not supported by fakeStore")
}

type fakeTx struct {
	store  *fakeStore
	staged []func()
	done   bool
}

func (t *fakeTx) stage(fn func()) {
	t.staged = append(t.staged, fn)
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for _, fn := range t.staged {
		fn()
	}
	t.staged = nil
	t.done = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.staged = nil
	return nil
}

func (t *fakeTx) Exec(ctx context.Context, query string, args ...interface{}) (pgconn.CommandTag, error) {
	panic("raw sql not supported by fakeTx")
}

func (t *fakeTx) Get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	panic("raw sql not supported by fakeTx")
}

func (t *fakeTx) Select(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	panic("raw sql not supported by fakeTx")
}

func asFakeTx(tx db.Tx) *fakeTx { return tx.(*fakeTx) }

type fakeOrders struct{ s *fakeStore }

func (r *fakeOrders) Create(ctx context.Context, order *repository.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o := *order
	r.s.orders[o.ID] = &o
	return nil
}

func (r *fakeOrders) CreateTx(ctx context.Context, tx db.Tx, order *repository.Order) error {
	o := *order
	asFakeTx(tx).stage(func() { r.s.orders[o.ID] = &o })
	return nil
}

func (r *fakeOrders) GetByID(ctx context.Context, id string) (*repository.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	order, ok := r.s.orders[id]
	if !ok {
		return nil, repository.ErrObjectNotFound
	}
	o := *order
	return &o, nil
}

func (r *fakeOrders) GetByIDTx(ctx context.Context, tx db.Tx, id string) (*repository.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeOrders) UpdateTx(ctx context.Context, tx db.Tx, order *repository.Order) error {
	o := *order
	asFakeTx(tx).stage(func() { r.s.orders[o.ID] = &o })
	return nil
}

func (r *fakeOrders) GetByState(ctx context.Context, state string) ([]*repository.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*repository.Order
	for _, order := range r.s.orders {
		if order.CurrentState == state {
			o := *order
			out = append(out, &o)
		}
	}
	return out, nil
}

type fakeTimeline struct{ s *fakeStore }

func (r *fakeTimeline) CreateTx(ctx context.Context, tx db.Tx, entry *repository.TimelineEntry) error {
	e := *entry
	asFakeTx(tx).stage(func() {
		r.s.nextID++
		e.ID = r.s.nextID
		r.s.timeline = append(r.s.timeline, &e)
	})
	return nil
}

func (r *fakeTimeline) GetByOwnerID(ctx context.Context, ownerID string) ([]*repository.TimelineEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*repository.TimelineEntry
	for _, entry := range r.s.timeline {
		if entry.OwnerID == ownerID {
			e := *entry
			out = append(out, &e)
		}
	}
	return out, nil
}

func (r *fakeTimeline) GetLatest(ctx context.Context, ownerID string) (*repository.TimelineEntry, error) {
	entries, err := r.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, repository.ErrObjectNotFound
	}
	latest := entries[0]
	for _, entry := range entries[1:] {
		if entry.ChangedAt.After(latest.ChangedAt) ||
			(entry.ChangedAt.Equal(latest.ChangedAt) && entry.ID > latest.ID) {
			latest = entry
		}
	}
	return latest, nil
}

func (r *fakeTimeline) GetLatestTx(ctx context.Context, tx db.Tx, ownerID string) (*repository.TimelineEntry, error) {
	return r.GetLatest(ctx, ownerID)
}

type fakeReturns struct{ s *fakeStore }

func (r *fakeReturns) CreateTx(ctx context.Context, tx db.Tx, ret *repository.ReturnRequest) error {
	r.s.mu.Lock()
	for _, existing := range r.s.returns {
		if existing.OrderID == ret.OrderID {
			r.s.mu.Unlock()
			return repository.ErrDuplicateReturn
		}
	}
	r.s.mu.Unlock()

	rr := *ret
	asFakeTx(tx).stage(func() { r.s.returns[rr.ID.String()] = &rr })
	return nil
}

func (r *fakeReturns) GetByID(ctx context.Context, id string) (*repository.ReturnRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ret, ok := r.s.returns[id]
	if !ok {
		return nil, repository.ErrObjectNotFound
	}
	rr := *ret
	return &rr, nil
}

func (r *fakeReturns) GetByIDTx(ctx context.Context, tx db.Tx, id string) (*repository.ReturnRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeReturns) GetByOrderID(ctx context.Context, orderID string) (*repository.ReturnRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, ret := range r.s.returns {
		if ret.OrderID == orderID {
			rr := *ret
			return &rr, nil
		}
	}
	return nil, repository.ErrObjectNotFound
}

func (r *fakeReturns) UpdateTx(ctx context.Context, tx db.Tx, ret *repository.ReturnRequest) error {
	rr := *ret
	asFakeTx(tx).stage(func() { r.s.returns[rr.ID.String()] = &rr })
	return nil
}

func (r *fakeReturns) GetPaginated(ctx context.Context, page, limit int) ([]*repository.ReturnRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*repository.ReturnRequest
	for _, ret := range r.s.returns {
		rr := *ret
		out = append(out, &rr)
	}
	return out, nil
}

type fakeConfirms struct{ s *fakeStore }

func (r *fakeConfirms) CreateTx(ctx context.Context, tx db.Tx, c *repository.DeliveryConfirmation) error {
	cc := *c
	asFakeTx(tx).stage(func() { r.s.confirms[cc.OrderID] = &cc })
	return nil
}

func (r *fakeConfirms) GetByOrderID(ctx context.Context, orderID string) (*repository.DeliveryConfirmation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.confirms[orderID]
	if !ok {
		return nil, repository.ErrObjectNotFound
	}
	cc := *c
	return &cc, nil
}

func (r *fakeConfirms) GetByOrderIDTx(ctx context.Context, tx db.Tx, orderID string) (*repository.DeliveryConfirmation, error) {
	return r.GetByOrderID(ctx, orderID)
}

func (r *fakeConfirms) UpdateTx(ctx context.Context, tx db.Tx, c *repository.DeliveryConfirmation) error {
	cc := *c
	asFakeTx(tx).stage(func() { r.s.confirms[cc.OrderID] = &cc })
	return nil
}

// fakeClock is a hand-driven time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingSink keeps every audit event for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []repository.AuditEventPayload
}

func (s *recordingSink) Record(ctx context.Context, eventType, ownerID string, payload repository.AuditEventPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, payload)
}

func (s *recordingSink) all() []repository.AuditEventPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]repository.AuditEventPayload, len(s.events))
	copy(out, s.events)
	return out
}

func (s *recordingSink) last() repository.AuditEventPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[len(s.events)-1]
}

type fakeCache struct {
	mu     sync.Mutex
	states map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{states: make(map[string]string)}
}

func (c *fakeCache) Set(orderID, state string, updatedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[orderID] = state
}

func (c *fakeCache) Delete(orderID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.states, orderID)
}

func (c *fakeCache) get(orderID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.states[orderID]
	return state, ok
}

type fakeShipping struct {
	down      bool
	createErr error
	code      string
	fee       int
	cancelOK  bool

	mu        sync.Mutex
	cancelled []string
}

func (s *fakeShipping) CreateReturnShipment(ctx context.Context, returnID string) (string, int, error) {
	if s.createErr != nil {
		return "", 0, s.createErr
	}
	return s.code, s.fee, nil
}

func (s *fakeShipping) CancelShipment(ctx context.Context, carrierOrderCode string) bool {
	s.mu.Lock()
	s.cancelled = append(s.cancelled, carrierOrderCode)
	s.mu.Unlock()
	return s.cancelOK
}

func (s *fakeShipping) IsAvailable(ctx context.Context) bool {
	return !s.down
}

type fakeNotifier struct {
	failApproval   bool
	failRejection  bool
	failCompletion bool

	mu          sync.Mutex
	approvals   int
	rejections  int
	completions int
}

func (n *fakeNotifier) NotifyApproval(ctx context.Context, returnID string) bool {
	n.mu.Lock()
	n.approvals++
	n.mu.Unlock()
	return !n.failApproval
}

func (n *fakeNotifier) NotifyRejection(ctx context.Context, returnID string) bool {
	n.mu.Lock()
	n.rejections++
	n.mu.Unlock()
	return !n.failRejection
}

func (n *fakeNotifier) NotifyCompletion(ctx context.Context, returnID string) bool {
	n.mu.Lock()
	n.completions++
	n.mu.Unlock()
	return !n.failCompletion
}
