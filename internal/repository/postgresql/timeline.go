package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"

	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/repository"
)

// TimelineRepo persists the append-only per-owner event log. No update or
// delete methods on purpose: entries are immutable once written.
type TimelineRepo struct {
	db db.DB
}

func NewTimelineRepo(db db.DB) *TimelineRepo {
	return &TimelineRepo{db: db}
}

func (r *TimelineRepo) CreateTx(ctx context.Context, tx db.Tx, entry *repository.TimelineEntry) error {
	_, err := tx.Exec(ctx, `
        INSERT INTO order_timeline (
            owner_id, state, actor, notes, changed_at
        ) VALUES ($1, $2, $3, $4, $5)
    `, entry.OwnerID, entry.State, entry.Actor, entry.Notes, entry.ChangedAt)
	return err
}

func (r *TimelineRepo) GetByOwnerID(ctx context.Context, ownerID string) ([]*repository.TimelineEntry, error) {
	var entries []*repository.TimelineEntry
	err := r.db.Select(ctx, &entries, `
        SELECT * FROM order_timeline
        WHERE owner_id = $1
        ORDER BY changed_at ASC, id ASC
    `, ownerID)
	return entries, err
}

func (r *TimelineRepo) GetLatest(ctx context.Context, ownerID string) (*repository.TimelineEntry, error) {
	var entry repository.TimelineEntry
	err := r.db.Get(ctx, &entry, `
        SELECT * FROM order_timeline
        WHERE owner_id = $1
        ORDER BY changed_at DESC, id DESC
        LIMIT 1
    `, ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *TimelineRepo) GetLatestTx(ctx context.Context, tx db.Tx, ownerID string) (*repository.TimelineEntry, error) {
	var entry repository.TimelineEntry
	err := tx.Get(ctx, &entry, `
        SELECT * FROM order_timeline
        WHERE owner_id = $1
        ORDER BY changed_at DESC, id DESC
        LIMIT 1
    `, ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &entry, nil
}
