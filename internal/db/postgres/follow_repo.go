package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"Yatube/internal/core/follows"
)

type postgresFollowRepo struct {
	db *sql.DB
}

// NewFollowRepository creates a new PostgreSQL follow repository
func NewFollowRepository(db *sql.DB) follows.Repository {
	return &postgresFollowRepo{db: db}
}

// Create inserts the edge. The unique (user_id, author_id) constraint makes repeats a no-op.
func (r *postgresFollowRepo) Create(ctx context.Context, userID, authorID int64) (bool, error) {
	query := `
		INSERT INTO follows (user_id, author_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, author_id) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query, userID, authorID)
	if err != nil {
		if strings.Contains(err.Error(), "follows_no_self_follow") {
			return false, fmt.Errorf("user %d cannot follow themselves", userID)
		}
		return false, fmt.Errorf("failed to create follow: %w", err)
	}
	return rowsChanged(result)
}

// Delete removes the edge if it exists
func (r *postgresFollowRepo) Delete(ctx context.Context, userID, authorID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM follows WHERE user_id = $1 AND author_id = $2`, userID, authorID)
	if err != nil {
		return false, fmt.Errorf("failed to delete follow: %w", err)
	}
	return rowsChanged(result)
}

func (r *postgresFollowRepo) Exists(ctx context.Context, userID, authorID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM follows WHERE user_id = $1 AND author_id = $2)`
	if err := r.db.QueryRowContext(ctx, query, userID, authorID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return exists, nil
}

// ListAuthorIDs returns every author userID follows
func (r *postgresFollowRepo) ListAuthorIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT author_id FROM follows WHERE user_id = $1 ORDER BY author_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list follows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan follow: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating follows: %w", err)
	}
	return ids, nil
}

func (r *postgresFollowRepo) CountFollowers(ctx context.Context, authorID int64) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM follows WHERE author_id = $1`, authorID)
}

func (r *postgresFollowRepo) CountFollowing(ctx context.Context, userID int64) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM follows WHERE user_id = $1`, userID)
}

func (r *postgresFollowRepo) count(ctx context.Context, query string, id int64) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count follows: %w", err)
	}
	return n, nil
}

func rowsChanged(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}
