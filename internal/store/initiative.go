package store

import (
	"changemakers/internal/utils"
	"changemakers/pkg/types"
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const initiativeTableName = "initiatives"

var initiativeColumns = utils.StructTagValues(types.Initiative{})

type InitiativeRepository struct {
	pool *pgxpool.Pool
}

func NewInitiativeRepository(pool *pgxpool.Pool) *InitiativeRepository {
	return &InitiativeRepository{pool: pool}
}

func (r *InitiativeRepository) Initiative(ctx context.Context, initiativeID string) (*types.Initiative, error) {
	query, args, err := psql().
		Select(initiativeColumns...).
		From(initiativeTableName).
		Where(sq.Eq{"id": initiativeID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate initiative query: %w", err)
	}

	var initiative = new(types.Initiative)
	err = pgxscan.Get(ctx, r.pool, initiative, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrInitiativeNotFound
		}
		return nil, fmt.Errorf("failed to fetch initiative: %w", err)
	}

	return initiative, nil
}

func (r *InitiativeRepository) InitiativesByStatus(ctx context.Context, statuses []types.InitiativeStatus, limit uint64) ([]*types.Initiative, error) {
	builder := psql().
		Select(initiativeColumns...).
		From(initiativeTableName).
		Where(sq.Eq{"status": statuses}).
		OrderBy("created_at DESC")
	if limit > 0 {
		builder = builder.Limit(limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate initiatives by status query: %w", err)
	}

	var initiatives = make([]*types.Initiative, 0)
	err = pgxscan.Select(ctx, r.pool, &initiatives, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch initiatives by status: %w", err)
	}

	return initiatives, nil
}

func (r *InitiativeRepository) InitiativesByChangemaker(ctx context.Context, changemakerID string) ([]*types.Initiative, error) {
	query, args, err := psql().
		Select(initiativeColumns...).
		From(initiativeTableName).
		Where(sq.Eq{"changemaker_id": changemakerID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate initiatives by changemaker query: %w", err)
	}

	var initiatives = make([]*types.Initiative, 0)
	err = pgxscan.Select(ctx, r.pool, &initiatives, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch initiatives by changemaker: %w", err)
	}

	return initiatives, nil
}

func (r *InitiativeRepository) CreateInitiative(ctx context.Context, initiative *types.Initiative) error {
	now := time.Now()
	initiative.ID = utils.NanoID()
	initiative.CreatedAt = now
	initiative.UpdatedAt = now

	query, args, err := psql().
		Insert(initiativeTableName).
		SetMap(utils.StructToMap(initiative)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert initiative query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return translate(err, "failed to create initiative")
}

// UpdateInitiative overwrites every scalar column. There is no row lock, so
// concurrent editors race and the last write wins.
func (r *InitiativeRepository) UpdateInitiative(ctx context.Context, initiative *types.Initiative) error {
	initiative.UpdatedAt = time.Now()

	values := utils.StructToMap(initiative)
	delete(values, "id")
	delete(values, "created_at")

	query, args, err := psql().
		Update(initiativeTableName).
		SetMap(values).
		Where(sq.Eq{"id": initiative.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update initiative query for initiative %s: %w", initiative.ID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return translate(err, "failed to update initiative")
	}

	if tag.RowsAffected() == 0 {
		return types.ErrInitiativeNotFound
	}

	return nil
}

func (r *InitiativeRepository) UpdatePreferences(ctx context.Context, initiativeID string, prefs types.OpportunityPreferences) error {
	query, args, err := psql().
		Update(initiativeTableName).
		Set("accept_proposals", prefs.AcceptProposals).
		Set("accept_content_creators", prefs.AcceptContentCreators).
		Set("accept_ambassadors", prefs.AcceptAmbassadors).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": initiativeID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update preferences query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return translate(err, "failed to update opportunity preferences")
	}

	if tag.RowsAffected() == 0 {
		return types.ErrInitiativeNotFound
	}

	return nil
}

func (r *InitiativeRepository) DeleteInitiative(ctx context.Context, initiativeID string) (int64, error) {
	query, args, err := psql().
		Delete(initiativeTableName).
		Where(sq.Eq{"id": initiativeID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate delete initiative query for initiative %s: %w", initiativeID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, translate(err, "failed to delete initiative")
	}

	return tag.RowsAffected(), nil
}
