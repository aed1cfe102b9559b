package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	mock_database "gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/db/mocks"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/repository"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/repository/postgresql"
)

var repoNow = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func TestOrderRepo_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		testOrder := &repository.Order{
			ID:           "order-123",
			CustomerID:   "user-456",
			CurrentState: "pending",
			CreatedAt:    repoNow,
			UpdatedAt:    repoNow,
		}

		mockDB.EXPECT().Exec(
			gomock.Any(),
			gomock.Any(),
			gomock.Eq(testOrder.ID),
			gomock.Eq(testOrder.CustomerID),
			gomock.Eq(testOrder.CurrentState),
			gomock.Eq(testOrder.DeliveredAt),
			gomock.Eq(testOrder.CreatedAt),
			gomock.Eq(testOrder.UpdatedAt),
		).Return(nil, nil)

		err := repo.Create(ctx, testOrder)
		assert.NoError(t, err)
	})

	t.Run("database error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		expectedErr := errors.New("database error")
		mockDB.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, expectedErr)

		err := repo.Create(ctx, &repository.Order{ID: "order-123"})
		assert.Equal(t, expectedErr, err)
	})
}

func TestOrderRepo_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("order found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		testOrder := &repository.Order{
			ID:           "order-123",
			CustomerID:   "user-456",
			CurrentState: "delivered",
			CreatedAt:    repoNow,
			UpdatedAt:    repoNow,
		}

		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq(testOrder.ID)).
			DoAndReturn(func(_ context.Context, dest *repository.Order, _ string, _ string) error {
				*dest = *testOrder
				return nil
			})

		order, err := repo.GetByID(ctx, testOrder.ID)
		assert.NoError(t, err)
		assert.Equal(t, testOrder, order)
	})

	t.Run("order not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(pgx.ErrNoRows)

		order, err := repo.GetByID(ctx, "non-existent-id")
		assert.ErrorIs(t, err, repository.ErrObjectNotFound)
		assert.Nil(t, order)
	})

	t.Run("database error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		expectedErr := errors.New("database error")
		mockDB.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(expectedErr)

		order, err := repo.GetByID(ctx, "order-123")
		assert.Equal(t, expectedErr, err)
		assert.Nil(t, order)
	})
}

func TestOrderRepo_GetByIDTx(t *testing.T) {
	ctx := context.Background()

	t.Run("locks the row in the transaction", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		mockTx := mock_database.NewMockTx(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		testOrder := &repository.Order{ID: "order-123", CurrentState: "shipping"}

		mockTx.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq("order-123")).
			DoAndReturn(func(_ context.Context, dest *repository.Order, query string, _ string) error {
				assert.Contains(t, query, "FOR UPDATE")
				*dest = *testOrder
				return nil
			})

		order, err := repo.GetByIDTx(ctx, mockTx, "order-123")
		assert.NoError(t, err)
		assert.Equal(t, testOrder, order)
	})

	t.Run("order not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		mockTx := mock_database.NewMockTx(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		mockTx.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(pgx.ErrNoRows)

		order, err := repo.GetByIDTx(ctx, mockTx, "ghost")
		assert.ErrorIs(t, err, repository.ErrObjectNotFound)
		assert.Nil(t, order)
	})
}

func TestOrderRepo_UpdateTx(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		mockTx := mock_database.NewMockTx(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		deliveredAt := repoNow
		testOrder := &repository.Order{
			ID:           "order-123",
			CustomerID:   "user-456",
			CurrentState: "delivered",
			DeliveredAt:  &deliveredAt,
			UpdatedAt:    repoNow,
		}

		mockTx.EXPECT().Exec(
			gomock.Any(),
			gomock.Any(),
			gomock.Eq(testOrder.CurrentState),
			gomock.Eq(testOrder.DeliveredAt),
			gomock.Eq(testOrder.UpdatedAt),
			gomock.Eq(testOrder.ID),
		).Return(nil, nil)

		err := repo.UpdateTx(ctx, mockTx, testOrder)
		assert.NoError(t, err)
	})

	t.Run("database error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		mockTx := mock_database.NewMockTx(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		expectedErr := errors.New("database error")
		mockTx.EXPECT().Exec(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, expectedErr)

		err := repo.UpdateTx(ctx, mockTx, &repository.Order{ID: "order-123"})
		assert.Equal(t, expectedErr, err)
	})
}

func TestOrderRepo_GetByState(t *testing.T) {
	ctx := context.Background()

	t.Run("lists parked orders", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		testOrders := []*repository.Order{
			{ID: "order-123", CurrentState: "awaiting_confirmation"},
			{ID: "order-124", CurrentState: "awaiting_confirmation"},
		}

		mockDB.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq("awaiting_confirmation")).
			DoAndReturn(func(_ context.Context, dest *[]*repository.Order, _ string, _ string) error {
				*dest = testOrders
				return nil
			})

		orders, err := repo.GetByState(ctx, "awaiting_confirmation")
		assert.NoError(t, err)
		assert.Equal(t, testOrders, orders)
	})

	t.Run("database error is wrapped", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		expectedErr := errors.New("database error")
		mockDB.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(expectedErr)

		orders, err := repo.GetByState(ctx, "awaiting_confirmation")
		assert.ErrorIs(t, err, expectedErr)
		assert.Nil(t, orders)
	})
}

func TestOrderRepo_GetByCustomerID(t *testing.T) {
	ctx := context.Background()

	t.Run("applies limit when positive", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		testOrders := []*repository.Order{{ID: "order-123", CustomerID: "user123"}}

		mockDB.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq("user123"), gomock.Eq(5)).
			DoAndReturn(func(_ context.Context, dest *[]*repository.Order, query string, _ ...interface{}) error {
				assert.Contains(t, query, "LIMIT $2")
				assert.Contains(t, query, "ORDER BY created_at DESC")
				*dest = testOrders
				return nil
			})

		orders, err := repo.GetByCustomerID(ctx, "user123", 5)
		assert.NoError(t, err)
		assert.Equal(t, testOrders, orders)
	})

	t.Run("no limit clause when zero", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewOrderRepo(mockDB)

		mockDB.EXPECT().Select(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq("user123")).
			DoAndReturn(func(_ context.Context, _ *[]*repository.Order, query string, _ ...interface{}) error {
				assert.NotContains(t, query, "LIMIT")
				return nil
			})

		_, err := repo.GetByCustomerID(ctx, "user123", 0)
		assert.NoError(t, err)
	})
}
