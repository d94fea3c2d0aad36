package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"Yatube/internal/core/groups"
)

type postgresGroupRepo struct {
	db *sql.DB
}

// NewGroupRepository creates a new PostgreSQL group repository
func NewGroupRepository(db *sql.DB) groups.Repository {
	return &postgresGroupRepo{db: db}
}

// Create inserts a group and fills in its ID
func (r *postgresGroupRepo) Create(ctx context.Context, group *groups.Group) error {
	query := `
		INSERT INTO post_groups (title, slug, description)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query, group.Title, group.Slug, group.Description).Scan(&group.ID)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") && strings.Contains(err.Error(), "post_groups_slug_key") {
			return groups.ErrSlugTaken
		}
		return fmt.Errorf("failed to create group: %w", err)
	}
	return nil
}

func (r *postgresGroupRepo) GetByID(ctx context.Context, id int64) (*groups.Group, error) {
	query := `SELECT id, title, slug, description FROM post_groups WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *postgresGroupRepo) GetBySlug(ctx context.Context, slug string) (*groups.Group, error) {
	query := `SELECT id, title, slug, description FROM post_groups WHERE slug = $1`
	return r.getOne(ctx, query, slug)
}

// List returns every group ordered by title
func (r *postgresGroupRepo) List(ctx context.Context) ([]*groups.Group, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, title, slug, description FROM post_groups ORDER BY title, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var list []*groups.Group
	for rows.Next() {
		g := &groups.Group{}
		if err := rows.Scan(&g.ID, &g.Title, &g.Slug, &g.Description); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		list = append(list, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}
	return list, nil
}

func (r *postgresGroupRepo) getOne(ctx context.Context, query string, arg interface{}) (*groups.Group, error) {
	g := &groups.Group{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&g.ID, &g.Title, &g.Slug, &g.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, groups.ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return g, nil
}
