package workflow

import (
	"context"
	"time"

	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/repository"
)

// Actor identity the sweeper and repair paths stamp on timeline entries.
const ActorSystem = "SYSTEM"

type OrderRepository interface {
	Create(ctx context.Context, order *repository.Order) error
	CreateTx(ctx context.Context, tx db.Tx, order *repository.Order) error
	GetByID(ctx context.Context, id string) (*repository.Order, error)
	GetByIDTx(ctx context.Context, tx db.Tx, id string) (*repository.Order, error)
	UpdateTx(ctx context.Context, tx db.Tx, order *repository.Order) error
	GetByState(ctx context.Context, state string) ([]*repository.Order, error)
}

type TimelineRepository interface {
	CreateTx(ctx context.Context, tx db.Tx, entry *repository.TimelineEntry) error
	GetByOwnerID(ctx context.Context, ownerID string) ([]*repository.TimelineEntry, error)
	GetLatest(ctx context.Context, ownerID string) (*repository.TimelineEntry, error)
	GetLatestTx(ctx context.Context, tx db.Tx, ownerID string) (*repository.TimelineEntry, error)
}

type ReturnRepository interface {
	CreateTx(ctx context.Context, tx db.Tx, ret *repository.ReturnRequest) error
	GetByID(ctx context.Context, id string) (*repository.ReturnRequest, error)
	GetByIDTx(ctx context.Context, tx db.Tx, id string) (*repository.ReturnRequest, error)
	GetByOrderID(ctx context.Context, orderID string) (*repository.ReturnRequest, error)
	UpdateTx(ctx context.Context, tx db.Tx, ret *repository.ReturnRequest) error
	GetPaginated(ctx context.Context, page, limit int) ([]*repository.ReturnRequest, error)
}

type ConfirmationRepository interface {
	CreateTx(ctx context.Context, tx db.Tx, c *repository.DeliveryConfirmation) error
	GetByOrderID(ctx context.Context, orderID string) (*repository.DeliveryConfirmation, error)
	GetByOrderIDTx(ctx context.Context, tx db.Tx, orderID string) (*repository.DeliveryConfirmation, error)
	UpdateTx(ctx context.Context, tx db.Tx, c *repository.DeliveryConfirmation) error
}

// ShippingCollaborator is the carrier contract the return workflow needs.
// IsAvailable()==false is not an error: the approval proceeds with manual
// processing semantics.
type ShippingCollaborator interface {
	CreateReturnShipment(ctx context.Context, returnID string) (carrierOrderCode string, fee int, err error)
	CancelShipment(ctx context.Context, carrierOrderCode string) bool
	IsAvailable(ctx context.Context) bool
}

// NotificationCollaborator informs the customer of return outcomes. A false
// result is a hard failure for the calling transition: the whole operation
// rolls back rather than leave the customer uninformed.
type NotificationCollaborator interface {
	NotifyApproval(ctx context.Context, returnID string) bool
	NotifyRejection(ctx context.Context, returnID string) bool
	NotifyCompletion(ctx context.Context, returnID string) bool
}

// AuditSink receives structured lifecycle events, fire-and-forget: a sink
// failure is logged locally and never aborts the business operation.
type AuditSink interface {
	Record(ctx context.Context, eventType, ownerID string, payload repository.AuditEventPayload)
}

// StateCache is the read-side cache of active order states, invalidated by
// the managers on every applied transition.
type StateCache interface {
	Set(orderID, state string, updatedAt time.Time)
	Delete(orderID string)
}
