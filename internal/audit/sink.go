package audit

import (
	"context"
	"encoding/json"
	"log"

	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/repository"
)

type OutboxTaskRepository interface {
	CreateTx(ctx context.Context, tx db.Tx, task *repository.OutboxTask) error
}

// OutboxSink persists audit events as outbox tasks in their own short
// transaction; the kafka publisher drains them asynchronously. Record is
// fire-and-forget: a sink failure is logged and swallowed so it can never
// abort the business operation that triggered it.
type OutboxSink struct {
	db     db.DB
	outbox OutboxTaskRepository
	topic  string
	logger *zap.Logger
}

func NewOutboxSink(database db.DB, outbox OutboxTaskRepository, topic string, logger *zap.Logger) *OutboxSink {
	return &OutboxSink{
		db:     database,
		outbox: outbox,
		topic:  topic,
		logger: logger,
	}
}

func (s *OutboxSink) Record(ctx context.Context, eventType, ownerID string, payload repository.AuditEventPayload) {
	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("audit: failed to marshal payload",
			zap.String("event_type", eventType), zap.String("owner_id", ownerID), zap.Error(err))
		return
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		s.emergencyLog(eventType, ownerID, body, err)
		return
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	task := &repository.OutboxTask{
		Payload: body,
		Topic:   s.topic,
	}
	if err := s.outbox.CreateTx(ctx, tx, task); err != nil {
		s.emergencyLog(eventType, ownerID, body, err)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		s.emergencyLog(eventType, ownerID, body, err)
	}
}

// emergencyLog dumps the event to the local log when the outbox is
// unreachable, so the record is at least not lost silently.
func (s *OutboxSink) emergencyLog(eventType, ownerID string, body []byte, cause error) {
	s.logger.Error("audit: failed to persist event, dumping locally",
		zap.String("event_type", eventType), zap.String("owner_id", ownerID), zap.Error(cause))
	log.Printf("=== EMERGENCY AUDIT LOG ===\n%s\n=== END LOG ===", body)
}

// NopSink discards events; used in tests and tooling.
type NopSink struct{}

func (NopSink) Record(context.Context, string, string, repository.AuditEventPayload) {}
