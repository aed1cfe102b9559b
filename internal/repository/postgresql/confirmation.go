package postgresql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"

	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/repository"
)

type ConfirmationRepo struct {
	db db.DB
}

func NewConfirmationRepo(db db.DB) *ConfirmationRepo {
	return &ConfirmationRepo{db: db}
}

func (r *ConfirmationRepo) CreateTx(ctx context.Context, tx db.Tx, c *repository.DeliveryConfirmation) error {
	_, err := tx.Exec(ctx, `
        INSERT INTO delivery_confirmations (
            order_id, status, confirmed_by, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5)
    `, c.OrderID, c.Status, c.ConfirmedBy, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *ConfirmationRepo) GetByOrderID(ctx context.Context, orderID string) (*repository.DeliveryConfirmation, error) {
	var c repository.DeliveryConfirmation
	err := r.db.Get(ctx, &c, "SELECT * FROM delivery_confirmations WHERE order_id = $1", orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *ConfirmationRepo) GetByOrderIDTx(ctx context.Context, tx db.Tx, orderID string) (*repository.DeliveryConfirmation, error) {
	var c repository.DeliveryConfirmation
	err := tx.Get(ctx, &c, "SELECT * FROM delivery_confirmations WHERE order_id = $1 FOR UPDATE", orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *ConfirmationRepo) UpdateTx(ctx context.Context, tx db.Tx, c *repository.DeliveryConfirmation) error {
	_, err := tx.Exec(ctx, `
        UPDATE delivery_confirmations
        SET
            status = $1,
            confirmed_by = $2,
            updated_at = $3
        WHERE order_id = $4
    `, c.Status, c.ConfirmedBy, c.UpdatedAt, c.OrderID)
	return err
}

// GetStalePending lists pending confirmations older than the cutoff, the
// second sweep phase's input.
func (r *ConfirmationRepo) GetStalePending(ctx context.Context, cutoff time.Time) ([]*repository.DeliveryConfirmation, error) {
	var confirmations []*repository.DeliveryConfirmation
	err := r.db.Select(ctx, &confirmations, `
        SELECT * FROM delivery_confirmations
        WHERE status = 'pending' AND created_at <= $1
        ORDER BY created_at ASC
    `, cutoff)
	return confirmations, err
}
