package groups

import "context"

// Repository defines group data access
type Repository interface {
	// Create inserts the group and sets its ID.
	// Returns ErrSlugTaken when the slug already exists.
	Create(ctx context.Context, group *Group) error
	GetByID(ctx context.Context, id int64) (*Group, error)
	GetBySlug(ctx context.Context, slug string) (*Group, error)
	// List returns every group ordered by title
	List(ctx context.Context) ([]*Group, error)
}

// Service defines group business logic
type Service interface {
	CreateGroup(ctx context.Context, req CreateGroupRequest) (*Group, error)
	GetBySlug(ctx context.Context, slug string) (*Group, error)
	ListGroups(ctx context.Context) ([]*Group, error)
}
