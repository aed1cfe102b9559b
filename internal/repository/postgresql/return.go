package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/repository"
)

const uniqueViolationCode = "23505"

type ReturnRepo struct {
	db db.DB
}

func NewReturnRepo(db db.DB) *ReturnRepo {
	return &ReturnRepo{db: db}
}

func (r *ReturnRepo) CreateTx(ctx context.Context, tx db.Tx, ret *repository.ReturnRequest) error {
	_, err := tx.Exec(ctx, `
        INSERT INTO return_requests (
            id, order_id, customer_id, status, reason, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, ret.ID, ret.OrderID, ret.CustomerID, ret.Status, ret.Reason, ret.CreatedAt, ret.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return repository.ErrDuplicateReturn
		}
		return err
	}
	return nil
}

func (r *ReturnRepo) GetByID(ctx context.Context, id string) (*repository.ReturnRequest, error) {
	var ret repository.ReturnRequest
	err := r.db.Get(ctx, &ret, "SELECT * FROM return_requests WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &ret, nil
}

func (r *ReturnRepo) GetByIDTx(ctx context.Context, tx db.Tx, id string) (*repository.ReturnRequest, error) {
	var ret repository.ReturnRequest
	err := tx.Get(ctx, &ret, "SELECT * FROM return_requests WHERE id = $1 FOR UPDATE", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &ret, nil
}

func (r *ReturnRepo) GetByOrderID(ctx context.Context, orderID string) (*repository.ReturnRequest, error) {
	var ret repository.ReturnRequest
	err := r.db.Get(ctx, &ret, "SELECT * FROM return_requests WHERE order_id = $1", orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &ret, nil
}

func (r *ReturnRepo) UpdateTx(ctx context.Context, tx db.Tx, ret *repository.ReturnRequest) error {
	_, err := tx.Exec(ctx, `
        UPDATE return_requests
        SET
            status = $1,
            reason = $2,
            carrier_order_code = $3,
            carrier_fee = $4,
            updated_at = $5
        WHERE id = $6
    `, ret.Status, ret.Reason, ret.CarrierOrderCode, ret.CarrierFee, ret.UpdatedAt, ret.ID)
	return err
}

func (r *ReturnRepo) GetPaginated(ctx context.Context, page, limit int) ([]*repository.ReturnRequest, error) {
	offset := (page - 1) * limit

	var returns []*repository.ReturnRequest
	err := r.db.Select(ctx, &returns, `
        SELECT * FROM return_requests
        ORDER BY created_at DESC
        LIMIT $1 OFFSET $2
    `, limit, offset)
	return returns, err
}
