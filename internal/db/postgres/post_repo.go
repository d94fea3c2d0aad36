package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"Yatube/internal/core/posts"
)

type postgresPostRepo struct {
	db *sql.DB
}

// NewPostRepository creates a new PostgreSQL post repository
func NewPostRepository(db *sql.DB) posts.Repository {
	return &postgresPostRepo{db: db}
}

// postViewSelect hydrates author and group in one query.
// Feeds order by created_at DESC, id DESC; see idx_posts_* in 003_create_posts.sql.
const postViewSelect = `
	SELECT
		p.id, p.text, p.image, p.created_at,
		u.id, u.username, u.first_name, u.last_name,
		g.id, g.slug, g.title
	FROM posts p
	INNER JOIN users u ON u.id = p.author_id
	LEFT JOIN post_groups g ON g.id = p.group_id`

// Create inserts a new post and fills in ID and CreatedAt
func (r *postgresPostRepo) Create(ctx context.Context, post *posts.Post) error {
	query := `
		INSERT INTO posts (text, image, author_id, group_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, post.Text, post.Image, post.AuthorID, nullID(post.GroupID)).
		Scan(&post.ID, &post.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "violates foreign key constraint") {
			if strings.Contains(err.Error(), "fk_author") {
				return fmt.Errorf("author %d not found", post.AuthorID)
			}
			if strings.Contains(err.Error(), "fk_group") {
				return fmt.Errorf("group %d not found", *post.GroupID)
			}
		}
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

// GetByID retrieves the stored form of a post
func (r *postgresPostRepo) GetByID(ctx context.Context, id int64) (*posts.Post, error) {
	query := `SELECT id, text, image, author_id, group_id, created_at FROM posts WHERE id = $1`

	var post posts.Post
	var groupID sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&post.ID, &post.Text, &post.Image, &post.AuthorID, &groupID, &post.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, posts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	post.GroupID = idPtr(groupID)
	return &post, nil
}

// GetView retrieves a post with its author and group
func (r *postgresPostRepo) GetView(ctx context.Context, id int64) (*posts.PostView, error) {
	row := r.db.QueryRowContext(ctx, postViewSelect+` WHERE p.id = $1`, id)
	view, err := scanPostView(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, posts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return view, nil
}

// Update writes the editable fields
func (r *postgresPostRepo) Update(ctx context.Context, post *posts.Post) error {
	query := `UPDATE posts SET text = $2, image = $3, group_id = $4 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, post.ID, post.Text, post.Image, nullID(post.GroupID))
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	changed, err := rowsChanged(result)
	if err != nil {
		return err
	}
	if !changed {
		return posts.ErrNotFound
	}
	return nil
}

func (r *postgresPostRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	changed, err := rowsChanged(result)
	if err != nil {
		return err
	}
	if !changed {
		return posts.ErrNotFound
	}
	return nil
}

// Find returns one window of posts matching q, newest first
func (r *postgresPostRepo) Find(ctx context.Context, q posts.Query, limit, offset int) ([]*posts.PostView, error) {
	if q.MatchesNothing() {
		return []*posts.PostView{}, nil
	}

	where, args := buildPostFilter(q)
	query := postViewSelect + where + fmt.Sprintf(`
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := []*posts.PostView{}
	for rows.Next() {
		view, err := scanPostView(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		result = append(result, view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}
	return result, nil
}

// Count returns the number of posts matching q
func (r *postgresPostRepo) Count(ctx context.Context, q posts.Query) (int, error) {
	if q.MatchesNothing() {
		return 0, nil
	}

	where, args := buildPostFilter(q)
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts p`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return n, nil
}

// buildPostFilter translates a query into a WHERE clause with positional args
func buildPostFilter(q posts.Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if q.GroupID != nil {
		args = append(args, *q.GroupID)
		conditions = append(conditions, fmt.Sprintf("p.group_id = $%d", len(args)))
	}
	if q.AuthorID != nil {
		args = append(args, *q.AuthorID)
		conditions = append(conditions, fmt.Sprintf("p.author_id = $%d", len(args)))
	}
	if q.AuthorIDs != nil {
		args = append(args, pq.Array(q.AuthorIDs))
		conditions = append(conditions, fmt.Sprintf("p.author_id = ANY($%d)", len(args)))
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPostView(row rowScanner) (*posts.PostView, error) {
	view := &posts.PostView{Author: &posts.AuthorView{}}
	var groupID sql.NullInt64
	var groupSlug, groupTitle sql.NullString

	err := row.Scan(
		&view.ID, &view.Text, &view.Image, &view.CreatedAt,
		&view.Author.ID, &view.Author.Username, &view.Author.FirstName, &view.Author.LastName,
		&groupID, &groupSlug, &groupTitle,
	)
	if err != nil {
		return nil, err
	}

	if groupID.Valid {
		view.Group = &posts.GroupRef{ID: groupID.Int64, Slug: groupSlug.String, Title: groupTitle.String}
	}
	return view, nil
}

func nullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func idPtr(id sql.NullInt64) *int64 {
	if !id.Valid {
		return nil
	}
	v := id.Int64
	return &v
}
