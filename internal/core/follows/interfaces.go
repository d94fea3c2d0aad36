package follows

import (
	"context"

	"Yatube/internal/core/access"
)

// Repository defines follow edge persistence.
// Uniqueness of (user, author) is enforced by the store, not by callers.
type Repository interface {
	// Create inserts the edge if absent. Returns true when a new edge was written.
	Create(ctx context.Context, userID, authorID int64) (bool, error)

	// Delete removes the edge if present. Returns true when an edge was removed.
	Delete(ctx context.Context, userID, authorID int64) (bool, error)

	Exists(ctx context.Context, userID, authorID int64) (bool, error)

	// ListAuthorIDs returns the authors userID follows
	ListAuthorIDs(ctx context.Context, userID int64) ([]int64, error)

	CountFollowers(ctx context.Context, authorID int64) (int, error)
	CountFollowing(ctx context.Context, userID int64) (int, error)
}

// Service defines follow graph operations
type Service interface {
	// Follow subscribes the viewer to the author. Following twice is a no-op.
	Follow(ctx context.Context, viewer access.Viewer, authorUsername string) error

	// Unfollow removes the subscription. Unfollowing a non-followed author is a no-op.
	Unfollow(ctx context.Context, viewer access.Viewer, authorUsername string) error

	IsFollowing(ctx context.Context, userID, authorID int64) (bool, error)

	// FollowingOf returns the IDs of every author userID follows
	FollowingOf(ctx context.Context, userID int64) ([]int64, error)

	GetStats(ctx context.Context, userID int64) (*Stats, error)
}
