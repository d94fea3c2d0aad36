package feeds

import (
	"context"

	"Yatube/internal/core/access"
	"Yatube/internal/core/groups"
	"Yatube/internal/core/posts"
	"Yatube/internal/core/users"
)

// View selects which posts a feed shows
type View string

const (
	// ViewGlobal lists every post
	ViewGlobal View = "global"
	// ViewGroup lists posts in the group named by Selector (a slug)
	ViewGroup View = "group"
	// ViewProfile lists posts written by the user named by Selector (a username)
	ViewProfile View = "profile"
	// ViewFollow lists posts by every author the viewer follows
	ViewFollow View = "follow"
)

// DefaultPageSize is the number of posts per page
const DefaultPageSize = 10

// Service defines the feed resolver
type Service interface {
	ListPosts(ctx context.Context, req ListPostsRequest) (*FeedResponse, error)
}

// ListPostsRequest identifies one page of one feed
type ListPostsRequest struct {
	View     View
	Selector string
	Viewer   access.Viewer
	Page     int
	PageSize int
}

// FeedResponse is a page of posts plus the entity the feed is about
type FeedResponse struct {
	Page *Page
	// Group is set for ViewGroup
	Group *groups.Group
	// Author is set for ViewProfile
	Author *users.User
}

// GroupLookup resolves group slugs
type GroupLookup interface {
	GetBySlug(ctx context.Context, slug string) (*groups.Group, error)
}

// UserLookup resolves usernames
type UserLookup interface {
	GetUserByUsername(ctx context.Context, username string) (*users.User, error)
}

// FollowGraph lists the authors a user follows
type FollowGraph interface {
	FollowingOf(ctx context.Context, userID int64) ([]int64, error)
}

// PostFinder runs post queries
type PostFinder interface {
	Find(ctx context.Context, q posts.Query, limit, offset int) ([]*posts.PostView, error)
	Count(ctx context.Context, q posts.Query) (int, error)
}
