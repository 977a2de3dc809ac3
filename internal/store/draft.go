package store

import (
	"changemakers/pkg/types"
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const draftTableName = "initiative_drafts"

type DraftRepository struct {
	pool *pgxpool.Pool
}

func NewDraftRepository(pool *pgxpool.Pool) *DraftRepository {
	return &DraftRepository{pool: pool}
}

func (r *DraftRepository) Draft(ctx context.Context, sessionKey string) (*types.SavedDraft, error) {
	query, args, err := psql().
		Select("session_key", "snapshot", "saved_at").
		From(draftTableName).
		Where(sq.Eq{"session_key": sessionKey}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate draft query: %w", err)
	}

	var draft types.SavedDraft
	err = pgxscan.Get(ctx, r.pool, &draft, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrDraftNotFound
		}
		return nil, fmt.Errorf("failed to fetch draft: %w", err)
	}

	return &draft, nil
}

// SaveDraft stores the snapshot as jsonb, replacing any earlier one.
func (r *DraftRepository) SaveDraft(ctx context.Context, draft *types.SavedDraft) error {
	draft.SavedAt = time.Now()

	query, args, err := psql().
		Insert(draftTableName).
		Columns("session_key", "snapshot", "saved_at").
		Values(draft.SessionKey, draft.Snapshot, draft.SavedAt).
		Suffix("ON CONFLICT (session_key) DO UPDATE SET snapshot = EXCLUDED.snapshot, saved_at = EXCLUDED.saved_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate save draft query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return translate(err, "failed to save draft")
}

func (r *DraftRepository) DeleteDraft(ctx context.Context, sessionKey string) error {
	query, args, err := psql().
		Delete(draftTableName).
		Where(sq.Eq{"session_key": sessionKey}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete draft query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return translate(err, "failed to delete draft")
}
