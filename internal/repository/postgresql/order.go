package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"

	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/repository"
)

type OrderRepo struct {
	db db.DB
}

func NewOrderRepo(db db.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

func (r *OrderRepo) Create(ctx context.Context, order *repository.Order) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO orders (
            id, customer_id, current_state, delivered_at, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6)
    `, order.ID, order.CustomerID, order.CurrentState, order.DeliveredAt, order.CreatedAt, order.UpdatedAt)
	return err
}

func (r *OrderRepo) CreateTx(ctx context.Context, tx db.Tx, order *repository.Order) error {
	_, err := tx.Exec(ctx, `
        INSERT INTO orders (
            id, customer_id, current_state, delivered_at, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6)
    `, order.ID, order.CustomerID, order.CurrentState, order.DeliveredAt, order.CreatedAt, order.UpdatedAt)
	return err
}

func (r *OrderRepo) GetByID(ctx context.Context, id string) (*repository.Order, error) {
	var order repository.Order
	err := r.db.Get(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &order, nil
}

// GetByIDTx locks the order row for the rest of the transaction. Concurrent
// transition requests for the same id serialize here.
func (r *OrderRepo) GetByIDTx(ctx context.Context, tx db.Tx, id string) (*repository.Order, error) {
	var order repository.Order
	err := tx.Get(ctx, &order, "SELECT * FROM orders WHERE id = $1 FOR UPDATE", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepo) UpdateTx(ctx context.Context, tx db.Tx, order *repository.Order) error {
	_, err := tx.Exec(ctx, `
        UPDATE orders
        SET
            current_state = $1,
            delivered_at = $2,
            updated_at = $3
        WHERE id = $4
    `, order.CurrentState, order.DeliveredAt, order.UpdatedAt, order.ID)
	return err
}

func (r *OrderRepo) GetByCustomerID(ctx context.Context, customerID string, limit int) ([]*repository.Order, error) {
	query := "SELECT * FROM orders WHERE customer_id = $1 ORDER BY created_at DESC"
	args := []interface{}{customerID}

	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	var orders []*repository.Order
	err := r.db.Select(ctx, &orders, query, args...)
	return orders, err
}

// GetByState lists orders currently parked in the given state, oldest first.
// The sweeper feeds on this.
func (r *OrderRepo) GetByState(ctx context.Context, state string) ([]*repository.Order, error) {
	var orders []*repository.Order
	err := r.db.Select(ctx, &orders, `
        SELECT * FROM orders
        WHERE current_state = $1
        ORDER BY updated_at ASC
    `, state)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders in state %s: %w", state, err)
	}
	return orders, nil
}
