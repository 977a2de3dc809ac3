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

const jobTableName = "jobs"

var jobColumns = utils.StructTagValues(types.Job{})

type JobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

func (r *JobRepository) Job(ctx context.Context, jobID string) (*types.Job, error) {
	query, args, err := psql().
		Select(jobColumns...).
		From(jobTableName).
		Where(sq.Eq{"id": jobID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate job query: %w", err)
	}

	var job types.Job
	err = pgxscan.Get(ctx, r.pool, &job, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to fetch job: %w", err)
	}

	return &job, nil
}

func (r *JobRepository) ActiveJobsByInitiative(ctx context.Context, initiativeID string) ([]*types.Job, error) {
	query, args, err := psql().
		Select(jobColumns...).
		From(jobTableName).
		Where(sq.Eq{"initiative_id": initiativeID, "is_active": true}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate jobs query: %w", err)
	}

	var jobs = make([]*types.Job, 0)
	err = pgxscan.Select(ctx, r.pool, &jobs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch jobs: %w", err)
	}

	return jobs, nil
}

func (r *JobRepository) CreateJobs(ctx context.Context, jobs []*types.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	query, args, err := insertJobsQuery(jobs, time.Now()).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert jobs query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return translate(err, "failed to insert jobs")
}

// insertJobsQuery assigns missing IDs and the creation time to every job.
func insertJobsQuery(jobs []*types.Job, now time.Time) sq.InsertBuilder {
	builder := psql().
		Insert(jobTableName).
		Columns(jobColumns...)

	for _, job := range jobs {
		if job.ID == "" {
			job.ID = utils.NanoID()
		}
		job.CreatedAt = now
		builder = builder.Values(columnValues(jobColumns, job)...)
	}

	return builder
}

func (r *JobRepository) SetJobActive(ctx context.Context, initiativeID, jobID string, active bool) error {
	query, args, err := psql().
		Update(jobTableName).
		Set("is_active", active).
		Where(sq.Eq{"id": jobID, "initiative_id": initiativeID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update job query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return translate(err, "failed to update job")
	}

	if tag.RowsAffected() == 0 {
		return types.ErrJobNotFound
	}

	return nil
}

func (r *JobRepository) DeleteJobsByInitiative(ctx context.Context, initiativeID string) (int64, error) {
	query, args, err := psql().
		Delete(jobTableName).
		Where(sq.Eq{"initiative_id": initiativeID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate delete jobs query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, translate(err, "failed to delete jobs")
	}

	return tag.RowsAffected(), nil
}
