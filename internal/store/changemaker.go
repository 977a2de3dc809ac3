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

const (
	changemakerTableName      = "changemakers"
	organizationTableName     = "organizations"
	governmentEntityTableName = "government_entities"
	politicalFigureTableName  = "political_figures"
)

var changemakerColumns = utils.StructTagValues(types.Changemaker{})

type ChangemakerRepository struct {
	pool *pgxpool.Pool
}

func NewChangemakerRepository(pool *pgxpool.Pool) *ChangemakerRepository {
	return &ChangemakerRepository{pool: pool}
}

func (r *ChangemakerRepository) ChangemakerByAccount(ctx context.Context, accountID string) (*types.Changemaker, error) {
	query, args, err := psql().
		Select(changemakerColumns...).
		From(changemakerTableName).
		Where(sq.Eq{"account_id": accountID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate changemaker query: %w", err)
	}

	var changemaker types.Changemaker
	err = pgxscan.Get(ctx, r.pool, &changemaker, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrChangemakerNotFound
		}
		return nil, fmt.Errorf("failed to fetch changemaker: %w", err)
	}

	return &changemaker, nil
}

// CreateChangemaker relies on the unique index on account_id; a concurrent
// creator surfaces as types.ErrDuplicate.
func (r *ChangemakerRepository) CreateChangemaker(ctx context.Context, changemaker *types.Changemaker) error {
	now := time.Now()
	if changemaker.ID == "" {
		changemaker.ID = utils.NanoID()
	}
	changemaker.CreatedAt = now
	changemaker.UpdatedAt = now

	query, args, err := psql().
		Insert(changemakerTableName).
		SetMap(utils.StructToMap(changemaker)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create changemaker query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return translate(err, "failed to create changemaker")
}

// Profile gathers the per-account facts the identity fallback chain reads.
// Missing rows simply leave the corresponding name empty.
func (r *ChangemakerRepository) Profile(ctx context.Context, accountID string) (*types.Profile, error) {
	profile := &types.Profile{AccountID: accountID}

	lookups := []struct {
		table  string
		column string
		dest   *string
	}{
		{organizationTableName, "name", &profile.OrganizationName},
		{governmentEntityTableName, "name", &profile.GovernmentEntityName},
		{politicalFigureTableName, "full_name", &profile.PoliticalFigureName},
		{changemakerTableName, "display_name", &profile.ChangemakerName},
	}

	for _, lookup := range lookups {
		query, args, err := psql().
			Select(lookup.column).
			From(lookup.table).
			Where(sq.Eq{"account_id": accountID}).
			Limit(1).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("failed to generate %s profile query: %w", lookup.table, err)
		}

		var name *string
		err = pgxscan.Get(ctx, r.pool, &name, query, args...)
		if err != nil {
			if pgxscan.NotFound(err) {
				continue
			}
			return nil, fmt.Errorf("failed to fetch %s for profile: %w", lookup.table, err)
		}

		*lookup.dest = utils.PtrString(name)
	}

	return profile, nil
}
