package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrObjectNotFound = errors.New("not found")

// ErrDuplicateReturn maps the unique-return-per-order constraint.
var ErrDuplicateReturn = errors.New("return request already exists for order")

type Order struct {
	ID           string     `db:"id"`
	CustomerID   string     `db:"customer_id"`
	CurrentState string     `db:"current_state"`
	DeliveredAt  *time.Time `db:"delivered_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

type ReturnRequest struct {
	ID               uuid.UUID `db:"id"`
	OrderID          string    `db:"order_id"`
	CustomerID       string    `db:"customer_id"`
	Status           string    `db:"status"`
	Reason           string    `db:"reason"`
	CarrierOrderCode *string   `db:"carrier_order_code"`
	CarrierFee       *int      `db:"carrier_fee"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// TimelineEntry is one immutable audit-quality record of a state change.
// Entries for the same owner are totally ordered by ChangedAt; the newest
// entry's state must equal the owner's denormalized current state.
type TimelineEntry struct {
	ID        int64     `db:"id"`
	OwnerID   string    `db:"owner_id"`
	State     string    `db:"state"`
	Actor     string    `db:"actor"`
	Notes     string    `db:"notes"`
	ChangedAt time.Time `db:"changed_at"`
}

type DeliveryConfirmation struct {
	OrderID     string    `db:"order_id"`
	Status      string    `db:"status"`
	ConfirmedBy string    `db:"confirmed_by"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
