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

const blogPostTableName = "blog_posts"

var blogPostColumns = utils.StructTagValues(types.BlogPost{})

type BlogRepository struct {
	pool *pgxpool.Pool
}

func NewBlogRepository(pool *pgxpool.Pool) *BlogRepository {
	return &BlogRepository{pool: pool}
}

// PostsByInitiative lists the posts linked to an initiative, newest first.
func (r *BlogRepository) PostsByInitiative(ctx context.Context, initiativeID string) ([]*types.BlogPost, error) {
	query, args, err := psql().
		Select(blogPostColumns...).
		From(blogPostTableName).
		Where(sq.Eq{"initiative_id": initiativeID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate blog posts query: %w", err)
	}

	var posts = make([]*types.BlogPost, 0)
	err = pgxscan.Select(ctx, r.pool, &posts, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch blog posts: %w", err)
	}

	return posts, nil
}

// UnlinkInitiative clears the initiative reference on every post that points
// at it. The posts themselves are kept.
func (r *BlogRepository) UnlinkInitiative(ctx context.Context, initiativeID string) (int64, error) {
	query, args, err := psql().
		Update(blogPostTableName).
		Set("initiative_id", nil).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"initiative_id": initiativeID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate unlink blog posts query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, translate(err, "failed to unlink blog posts")
	}

	return tag.RowsAffected(), nil
}
