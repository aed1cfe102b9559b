package postgresql_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	mock_database "gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/db/mocks"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/repository"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/repository/postgresql"
)

func TestReturnRepo_CreateTx(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		mockTx := mock_database.NewMockTx(ctrl)
		repo := postgresql.NewReturnRepo(mockDB)

		ret := &repository.ReturnRequest{
			ID:         uuid.New(),
			OrderID:    "order-123",
			CustomerID: "user-456",
			Status:     "refund_requested",
			Reason:     "damaged box",
			CreatedAt:  repoNow,
			UpdatedAt:  repoNow,
		}

		mockTx.EXPECT().Exec(
			gomock.Any(),
			gomock.Any(),
			gomock.Eq(ret.ID),
			gomock.Eq(ret.OrderID),
			gomock.Eq(ret.CustomerID),
			gomock.Eq(ret.Status),
			gomock.Eq(ret.Reason),
			gomock.Eq(ret.CreatedAt),
			gomock.Eq(ret.UpdatedAt),
		).Return(nil, nil)

		err := repo.CreateTx(ctx, mockTx, ret)
		assert.NoError(t, err)
	})

	t.Run("unique violation maps to duplicate return", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		mockTx := mock_database.NewMockTx(ctrl)
		repo := postgresql.NewReturnRepo(mockDB)

		mockTx.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, &pgconn.PgError{Code: "23505"})

		err := repo.CreateTx(ctx, mockTx, &repository.ReturnRequest{ID: uuid.New(), OrderID: "order-123"})
		assert.ErrorIs(t, err, repository.ErrDuplicateReturn)
	})

	t.Run("other database errors pass through", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		mockTx := mock_database.NewMockTx(ctrl)
		repo := postgresql.NewReturnRepo(mockDB)

		expectedErr := errors.New("connection reset")
		mockTx.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, expectedErr)

		err := repo.CreateTx(ctx, mockTx, &repository.ReturnRequest{ID: uuid.New(), OrderID: "order-123"})
		assert.Equal(t, expectedErr, err)
	})
}

func TestReturnRepo_GetByOrderID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewReturnRepo(mockDB)

		ret := &repository.ReturnRequest{
			ID:      uuid.New(),
			OrderID: "order-123",
			Status:  "refund_requested",
		}

		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq("order-123")).
			DoAndReturn(func(_ context.Context, dest *repository.ReturnRequest, _ string, _ string) error {
				*dest = *ret
				return nil
			})

		got, err := repo.GetByOrderID(ctx, "order-123")
		assert.NoError(t, err)
		assert.Equal(t, ret, got)
	})

	t.Run("no return for order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewReturnRepo(mockDB)

		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(pgx.ErrNoRows)

		got, err := repo.GetByOrderID(ctx, "order-123")
		assert.ErrorIs(t, err, repository.ErrObjectNotFound)
		assert.Nil(t, got)
	})
}

func TestReturnRepo_UpdateTx(t *testing.T) {
	ctx := context.Background()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := mock_database.NewMockDB(ctrl)
	mockTx := mock_database.NewMockTx(ctrl)
	repo := postgresql.NewReturnRepo(mockDB)

	code := "carrier-42"
	fee := 350
	ret := &repository.ReturnRequest{
		ID:               uuid.New(),
		OrderID:          "order-123",
		Status:           "return_approved",
		Reason:           "damaged box",
		CarrierOrderCode: &code,
		CarrierFee:       &fee,
		UpdatedAt:        repoNow,
	}

	mockTx.EXPECT().Exec(
		gomock.Any(),
		gomock.Any(),
		gomock.Eq(ret.Status),
		gomock.Eq(ret.Reason),
		gomock.Eq(ret.CarrierOrderCode),
		gomock.Eq(ret.CarrierFee),
		gomock.Eq(ret.UpdatedAt),
		gomock.Eq(ret.ID),
	).Return(nil, nil)

	err := repo.UpdateTx(ctx, mockTx, ret)
	assert.NoError(t, err)
}

func TestReturnRepo_GetPaginated(t *testing.T) {
	ctx := context.Background()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := mock_database.NewMockDB(ctrl)
	repo := postgresql.NewReturnRepo(mockDB)

	returns := []*repository.ReturnRequest{
		{ID: uuid.New(), OrderID: "order-123"},
		{ID: uuid.New(), OrderID: "order-124"},
	}

	// Page 3 with limit 5 starts at offset 10.
	mockDB.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq(5), gomock.Eq(10)).
		DoAndReturn(func(_ context.Context, dest *[]*repository.ReturnRequest, _ string, _ ...interface{}) error {
			*dest = returns
			return nil
		})

	got, err := repo.GetPaginated(ctx, 3, 5)
	assert.NoError(t, err)
	assert.Equal(t, returns, got)
}
