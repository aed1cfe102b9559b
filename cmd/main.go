package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/audit"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/cache"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/collaborator"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/config"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/kafka"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/lifecycle"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/logger"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/repository/postgresql"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/server"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/sweeper"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/workflow"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()

	log := logger.New()
	defer func() { _ = log.Sync() }()

	orderRules := lifecycle.OrderRules(lifecycle.Config{
		AllowCancelWhileShipping: cfg.AllowCancelWhileShipping,
	})
	if err := lifecycle.VerifyOrderRules(orderRules); err != nil {
		log.Fatal("order rule table failed verification", zap.Error(err))
	}
	if err := lifecycle.VerifyReturnRules(lifecycle.ReturnRules()); err != nil {
		log.Fatal("return rule table failed verification", zap.Error(err))
	}

	database, err := db.NewDb(ctx, cfg.DSN())
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}
	defer database.GetPool().Close()

	orderRepo := postgresql.NewOrderRepo(database)
	timelineRepo := postgresql.NewTimelineRepo(database)
	returnRepo := postgresql.NewReturnRepo(database)
	confirmRepo := postgresql.NewConfirmationRepo(database)
	userRepo := postgresql.NewUserRepo(database)
	outboxRepo := postgresql.NewOutboxTaskRepo()

	stateCache := cache.NewStateCache()
	warmStates := []string{
		lifecycle.StateShipping.String(),
		lifecycle.StateAwaitingConfirmation.String(),
		lifecycle.StateDelivered.String(),
		lifecycle.StateRefundRequested.String(),
	}
	if err := stateCache.Warm(ctx, orderRepo, warmStates...); err != nil {
		log.Warn("state cache warm-up failed, starting cold", zap.Error(err))
	}

	auditSink := audit.NewOutboxSink(database, outboxRepo, cfg.AuditTopic, log)
	clock := workflow.NewClock()

	validator := lifecycle.NewValidator(orderRules)
	projector := lifecycle.NewProjector(validator)

	manager := workflow.NewLifecycleManager(
		database, orderRepo, timelineRepo, confirmRepo,
		validator, auditSink, stateCache, clock, log,
	)
	eligibility := workflow.NewEligibilityEvaluator(returnRepo, clock, cfg.ReturnWindow)
	returnWf := workflow.NewReturnWorkflowManager(
		database, orderRepo, returnRepo, timelineRepo, confirmRepo,
		eligibility, collaborator.NewConsoleShipping(), collaborator.NewConsoleNotifier(),
		auditSink, stateCache, clock, log, cfg.CollaboratorTimeout,
	)
	resolver := workflow.NewConflictResolver(database, orderRepo, timelineRepo, manager, clock, log)

	swp := sweeper.New(manager, orderRepo, timelineRepo, confirmRepo, clock, sweeper.Config{
		Interval:     cfg.SweepInterval,
		MaxAge:       cfg.AutoConfirmAfter,
		OrderTimeout: cfg.SweepOrderTimeout,
	}, log)

	producer := kafka.NewWriterProducer(cfg.KafkaBrokers)
	publisher := kafka.NewPublisher(database, outboxRepo, producer, kafka.PublisherConfig{
		PollInterval: 2 * time.Second,
		BatchSize:    50,
		MaxAttempts:  5,
	})

	srv := server.New(manager, returnWf, resolver, orderRepo, userRepo, projector, log)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Run(gctx, cfg.HTTPPort)
	})
	g.Go(func() error {
		swp.Run(gctx)
		return nil
	})
	g.Go(func() error {
		publisher.Run(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		swp.Shutdown()
		publisher.Shutdown()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("service exited with error", zap.Error(err))
	}
	log.Info("service stopped")
}
