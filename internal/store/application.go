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

type applicationTable struct {
	name       string
	nameColumn string
}

var applicationTables = map[types.ApplicationKind]applicationTable{
	types.ApplicationKindJob:            {name: "job_applications", nameColumn: "full_name"},
	types.ApplicationKindAmbassador:     {name: "ambassador_applications", nameColumn: "full_name"},
	types.ApplicationKindProposal:       {name: "proposals", nameColumn: "name"},
	types.ApplicationKindContentCreator: {name: "content_creator_applications", nameColumn: "full_name"},
	types.ApplicationKindVolunteer:      {name: "volunteer_applications", nameColumn: "full_name"},
}

func tableFor(kind types.ApplicationKind) (applicationTable, error) {
	table, ok := applicationTables[kind]
	if !ok {
		return applicationTable{}, fmt.Errorf("unknown application kind %q", kind)
	}
	return table, nil
}

func recordColumns(table applicationTable) []string {
	return []string{
		"id",
		"initiative_id",
		table.nameColumn + " AS name",
		"email",
		"status",
		"reviewed_by",
		"reviewed_at",
		"created_at",
		"updated_at",
	}
}

type ApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

// CreateApplication inserts one application row. row must be one of the
// application structs in pkg/types with its ID already assigned.
func (r *ApplicationRepository) CreateApplication(ctx context.Context, kind types.ApplicationKind, row any) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	query, args, err := psql().
		Insert(table.name).
		SetMap(utils.StructToMap(row)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert %s application query: %w", kind, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return translate(err, fmt.Sprintf("failed to insert %s application", kind))
}

func (r *ApplicationRepository) Application(ctx context.Context, kind types.ApplicationKind, applicationID string) (*types.ApplicationRecord, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query, args, err := psql().
		Select(recordColumns(table)...).
		From(table.name).
		Where(sq.Eq{"id": applicationID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s application query: %w", kind, err)
	}

	var record types.ApplicationRecord
	err = pgxscan.Get(ctx, r.pool, &record, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to fetch %s application: %w", kind, err)
	}
	record.Kind = kind

	return &record, nil
}

func (r *ApplicationRepository) ApplicationsByInitiative(ctx context.Context, kind types.ApplicationKind, initiativeID string) ([]*types.ApplicationRecord, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query, args, err := psql().
		Select(recordColumns(table)...).
		From(table.name).
		Where(sq.Eq{"initiative_id": initiativeID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s applications query: %w", kind, err)
	}

	var records = make([]*types.ApplicationRecord, 0)
	err = pgxscan.Select(ctx, r.pool, &records, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s applications: %w", kind, err)
	}

	for _, record := range records {
		record.Kind = kind
	}

	return records, nil
}

// UpdateApplicationStatus moves an application from one status to another.
// The current status is part of the predicate so two reviewers acting on the
// same application cannot both win; the loser gets types.ErrInvalidTransition.
func (r *ApplicationRepository) UpdateApplicationStatus(ctx context.Context, kind types.ApplicationKind, applicationID string, from, to types.ApplicationStatus, reviewerID string, at time.Time) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	query, args, err := psql().
		Update(table.name).
		Set("status", to).
		Set("reviewed_by", reviewerID).
		Set("reviewed_at", at).
		Set("updated_at", at).
		Where(sq.Eq{"id": applicationID, "status": from}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update %s application status query: %w", kind, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return translate(err, fmt.Sprintf("failed to update %s application status", kind))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: application %s is no longer %s", types.ErrInvalidTransition, applicationID, from)
	}

	return nil
}

func (r *ApplicationRepository) DeleteApplicationsByInitiative(ctx context.Context, kind types.ApplicationKind, initiativeID string) (int64, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}

	query, args, err := psql().
		Delete(table.name).
		Where(sq.Eq{"initiative_id": initiativeID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate delete %s applications query: %w", kind, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, translate(err, fmt.Sprintf("failed to delete %s applications", kind))
	}

	return tag.RowsAffected(), nil
}

// TombstoneApplicationsByInitiative keeps the rows for audit but marks the
// initiative they point at as removed.
func (r *ApplicationRepository) TombstoneApplicationsByInitiative(ctx context.Context, kind types.ApplicationKind, initiativeID string, at time.Time) (int64, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}

	query, args, err := psql().
		Update(table.name).
		Set("initiative_removed_at", at).
		Set("updated_at", at).
		Where(sq.Eq{"initiative_id": initiativeID, "initiative_removed_at": nil}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate tombstone %s applications query: %w", kind, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, translate(err, fmt.Sprintf("failed to tombstone %s applications", kind))
	}

	return tag.RowsAffected(), nil
}
