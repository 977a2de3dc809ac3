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

const milestoneTableName = "milestones"

var milestoneColumns = utils.StructTagValues(types.Milestone{})

type MilestoneRepository struct {
	pool *pgxpool.Pool
}

func NewMilestoneRepository(pool *pgxpool.Pool) *MilestoneRepository {
	return &MilestoneRepository{pool: pool}
}

func (r *MilestoneRepository) MilestonesByInitiative(ctx context.Context, initiativeID string) ([]*types.Milestone, error) {
	query, args, err := psql().
		Select(milestoneColumns...).
		From(milestoneTableName).
		Where(sq.Eq{"initiative_id": initiativeID}).
		OrderBy("position ASC", "created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate milestones query: %w", err)
	}

	var milestones = make([]*types.Milestone, 0)
	err = pgxscan.Select(ctx, r.pool, &milestones, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch milestones: %w", err)
	}

	return milestones, nil
}

// CreateMilestones inserts the whole set in a single statement.
func (r *MilestoneRepository) CreateMilestones(ctx context.Context, milestones []*types.Milestone) error {
	if len(milestones) == 0 {
		return nil
	}

	query, args, err := insertMilestonesQuery(milestones, time.Now()).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert milestones query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return translate(err, "failed to insert milestones")
}

// insertMilestonesQuery numbers the milestones in slice order.
func insertMilestonesQuery(milestones []*types.Milestone, now time.Time) sq.InsertBuilder {
	builder := psql().
		Insert(milestoneTableName).
		Columns(milestoneColumns...)

	for i, milestone := range milestones {
		if milestone.ID == "" {
			milestone.ID = utils.NanoID()
		}
		milestone.Position = i
		milestone.CreatedAt = now
		builder = builder.Values(columnValues(milestoneColumns, milestone)...)
	}

	return builder
}

func (r *MilestoneRepository) DeleteMilestonesByInitiative(ctx context.Context, initiativeID string) (int64, error) {
	query, args, err := psql().
		Delete(milestoneTableName).
		Where(sq.Eq{"initiative_id": initiativeID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate delete milestones query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, translate(err, "failed to delete milestones")
	}

	return tag.RowsAffected(), nil
}
