package posts

import (
	"context"
	"io"

	"Yatube/internal/core/access"
	"Yatube/internal/core/groups"
)

// Service defines the business logic interface for posts
type Service interface {
	// CreatePost writes a new post authored by the viewer
	CreatePost(ctx context.Context, viewer access.Viewer, req CreatePostRequest) (*PostView, error)

	// EditPost updates text, group and image. Only the author may edit.
	EditPost(ctx context.Context, viewer access.Viewer, id int64, req EditPostRequest) (*PostView, error)

	// DeletePost removes the post and its image. Only the author may delete.
	DeletePost(ctx context.Context, viewer access.Viewer, id int64) error

	// GetPost returns a single hydrated post
	GetPost(ctx context.Context, id int64) (*PostView, error)

	// GetPostForEdit returns the post if the viewer is allowed to edit it
	GetPostForEdit(ctx context.Context, viewer access.Viewer, id int64) (*PostView, error)

	// CountByAuthor returns how many posts the author has written
	CountByAuthor(ctx context.Context, authorID int64) (int, error)
}

// Repository defines the data access interface for posts
type Repository interface {
	// Create inserts the post and fills in ID and CreatedAt
	Create(ctx context.Context, post *Post) error

	GetByID(ctx context.Context, id int64) (*Post, error)
	GetView(ctx context.Context, id int64) (*PostView, error)

	// Update writes Text, GroupID and Image. AuthorID and CreatedAt are never changed.
	Update(ctx context.Context, post *Post) error

	Delete(ctx context.Context, id int64) error

	// Find returns posts matching q, newest first (see CompareNewestFirst)
	Find(ctx context.Context, q Query, limit, offset int) ([]*PostView, error)

	// Count returns how many posts match q
	Count(ctx context.Context, q Query) (int, error)
}

// ImageStore persists uploaded images
type ImageStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Remove(ctx context.Context, stored string) error
}

// GroupLookup resolves group slugs submitted in post forms
type GroupLookup interface {
	GetBySlug(ctx context.Context, slug string) (*groups.Group, error)
}
