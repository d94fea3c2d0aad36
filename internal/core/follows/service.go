package follows

import (
	"context"
	"fmt"
	"log/slog"

	"Yatube/internal/core/access"
	"Yatube/internal/core/users"
)

// UserLookup resolves author usernames
type UserLookup interface {
	GetUserByUsername(ctx context.Context, username string) (*users.User, error)
}

type followService struct {
	repo  Repository
	users UserLookup
}

// NewFollowService creates a new follow service
func NewFollowService(repo Repository, userLookup UserLookup) Service {
	return &followService{
		repo:  repo,
		users: userLookup,
	}
}

// Follow subscribes the viewer to authorUsername
func (s *followService) Follow(ctx context.Context, viewer access.Viewer, authorUsername string) error {
	author, err := s.resolve(ctx, viewer, authorUsername)
	if err != nil {
		return err
	}
	if author.ID == viewer.UserID {
		return NewValidationError("author", "you cannot follow yourself")
	}

	created, err := s.repo.Create(ctx, viewer.UserID, author.ID)
	if err != nil {
		return fmt.Errorf("failed to follow: %w", err)
	}
	if created {
		slog.Info("follow created", "user_id", viewer.UserID, "author_id", author.ID)
	}
	return nil
}

// Unfollow removes the viewer's subscription to authorUsername
func (s *followService) Unfollow(ctx context.Context, viewer access.Viewer, authorUsername string) error {
	author, err := s.resolve(ctx, viewer, authorUsername)
	if err != nil {
		return err
	}

	removed, err := s.repo.Delete(ctx, viewer.UserID, author.ID)
	if err != nil {
		return fmt.Errorf("failed to unfollow: %w", err)
	}
	if removed {
		slog.Info("follow removed", "user_id", viewer.UserID, "author_id", author.ID)
	}
	return nil
}

// IsFollowing reports whether userID follows authorID
func (s *followService) IsFollowing(ctx context.Context, userID, authorID int64) (bool, error) {
	if userID <= 0 || authorID <= 0 || userID == authorID {
		return false, nil
	}
	return s.repo.Exists(ctx, userID, authorID)
}

// FollowingOf returns the author IDs userID follows
func (s *followService) FollowingOf(ctx context.Context, userID int64) ([]int64, error) {
	if userID <= 0 {
		return []int64{}, nil
	}
	ids, err := s.repo.ListAuthorIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list followed authors: %w", err)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

// GetStats returns follower and following counts for userID
func (s *followService) GetStats(ctx context.Context, userID int64) (*Stats, error) {
	followers, err := s.repo.CountFollowers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count followers: %w", err)
	}
	following, err := s.repo.CountFollowing(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count following: %w", err)
	}
	return &Stats{Followers: followers, Following: following}, nil
}

func (s *followService) resolve(ctx context.Context, viewer access.Viewer, authorUsername string) (*users.User, error) {
	if !viewer.IsAuthenticated() {
		return nil, ErrUnauthorized
	}

	author, err := s.users.GetUserByUsername(ctx, authorUsername)
	if err != nil {
		if users.IsNotFound(err) {
			return nil, ErrAuthorNotFound
		}
		return nil, fmt.Errorf("failed to resolve author: %w", err)
	}
	return author, nil
}
