//go:generate mockgen -source ./server.go -destination=./mocks/server.go -package=mock_server
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/lifecycle"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/repository"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/workflow"
)

// LifecycleService is the order-side surface the handlers call.
type LifecycleService interface {
	CreateOrder(ctx context.Context, orderID, customerID, actor string) error
	RequestTransition(ctx context.Context, orderID string, next lifecycle.State, actor, notes string) (*workflow.TransitionResult, error)
	ConfirmDeliveryByCustomer(ctx context.Context, orderID, customerID, notes string) (*workflow.TransitionResult, error)
	CurrentState(ctx context.Context, orderID string) (lifecycle.State, error)
	Timeline(ctx context.Context, orderID string) ([]*repository.TimelineEntry, error)
}

// ReturnService is the return-side surface the handlers call.
type ReturnService interface {
	CreateRequest(ctx context.Context, orderID, customerID, reason string) (*repository.ReturnRequest, error)
	Approve(ctx context.Context, returnID, actor string) (*workflow.ReturnResult, error)
	Reject(ctx context.Context, returnID, actor, reason string) (*workflow.ReturnResult, error)
	ConfirmShipmentDispatched(ctx context.Context, returnID, actor string) (*workflow.ReturnResult, error)
	ConfirmReceiptAtWarehouse(ctx context.Context, returnID, actor string) (*workflow.ReturnResult, error)
	CompleteRefund(ctx context.Context, returnID, actor string) (*workflow.ReturnResult, error)
	MarkFailed(ctx context.Context, returnID, actor, reason string) (*workflow.ReturnResult, error)
	GetByID(ctx context.Context, returnID string) (*repository.ReturnRequest, error)
	List(ctx context.Context, page, limit int) ([]*repository.ReturnRequest, error)
}

// ConflictService resolves offline divergence and repairs denormalized state.
type ConflictService interface {
	Resolve(ctx context.Context, orderID string, clientState lifecycle.State, clientTimestamp time.Time, actor string) (lifecycle.State, error)
	Repair(ctx context.Context, orderID string) (*workflow.ConsistencyReport, error)
}

type OrderReader interface {
	GetByID(ctx context.Context, id string) (*repository.Order, error)
	GetByCustomerID(ctx context.Context, customerID string, limit int) ([]*repository.Order, error)
}

type UserRepo interface {
	ValidateUser(ctx context.Context, username, password string) (string, error)
}

type Server struct {
	lifecycles LifecycleService
	returns    ReturnService
	conflicts  ConflictService
	orders     OrderReader
	userRepo   UserRepo
	projector  *lifecycle.Projector
	logger     *zap.Logger

	server       *http.Server
	AuditManager *AuditManager
}

func New(
	lifecycles LifecycleService,
	returns ReturnService,
	conflicts ConflictService,
	orders OrderReader,
	userRepo UserRepo,
	projector *lifecycle.Projector,
	logger *zap.Logger,
) *Server {
	return &Server{
		lifecycles:   lifecycles,
		returns:      returns,
		conflicts:    conflicts,
		orders:       orders,
		userRepo:     userRepo,
		projector:    projector,
		logger:       logger,
		AuditManager: NewAuditManager(2, 5, 500*time.Millisecond),
	}
}

// Run blocks serving HTTP until the listener fails or Shutdown is called.
func (s *Server) Run(ctx context.Context, port string) error {
	s.server = &http.Server{
		Addr:         ":" + port,
		Handler:      s.setupRoutes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	s.AuditManager.Start(ctx)

	s.logger.Info("http server starting", zap.String("port", port))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	s.AuditManager.Shutdown(ctx)
	return nil
}

func (s *Server) setupRoutes() http.Handler {
	router := mux.NewRouter()

	// Scrape endpoint stays outside auth.
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/").Subrouter()
	api.Use(s.auditLogMiddleware, s.basicAuthMiddleware)

	api.HandleFunc("/orders", s.requireStaff(s.handleCreateOrder)).Methods(http.MethodPost)
	api.HandleFunc("/orders", s.handleListCustomerOrders).Methods(http.MethodGet).Queries("customer_id", "{customer_id}")
	api.HandleFunc("/orders/{id}", s.handleGetOrder).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}/transition", s.handleTransition).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/confirm-delivery", s.handleConfirmDelivery).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/history", s.handleOrderHistory).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}/options", s.handleOrderOptions).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}/resolve", s.handleResolve).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/repair", s.requireStaff(s.handleRepair)).Methods(http.MethodPost)

	api.HandleFunc("/returns", s.handleCreateReturn).Methods(http.MethodPost)
	api.HandleFunc("/returns", s.requireStaff(s.handleListReturns)).Methods(http.MethodGet)
	api.HandleFunc("/returns/{id}", s.handleGetReturn).Methods(http.MethodGet)
	api.HandleFunc("/returns/{id}/approve", s.requireStaff(s.handleApproveReturn)).Methods(http.MethodPost)
	api.HandleFunc("/returns/{id}/reject", s.requireStaff(s.handleRejectReturn)).Methods(http.MethodPost)
	api.HandleFunc("/returns/{id}/dispatch", s.handleDispatchReturn).Methods(http.MethodPost)
	api.HandleFunc("/returns/{id}/receive", s.requireStaff(s.handleReceiveReturn)).Methods(http.MethodPost)
	api.HandleFunc("/returns/{id}/refund", s.requireStaff(s.handleRefundReturn)).Methods(http.MethodPost)
	api.HandleFunc("/returns/{id}/fail", s.requireStaff(s.handleFailReturn)).Methods(http.MethodPost)

	return router
}
