package feeds

import (
	"context"
	"fmt"

	"Yatube/internal/core/groups"
	"Yatube/internal/core/posts"
	"Yatube/internal/core/users"
)

type feedService struct {
	posts    PostFinder
	groups   GroupLookup
	users    UserLookup
	follows  FollowGraph
	pageSize int
}

// NewFeedService creates a new feed resolver.
// pageSize <= 0 uses DefaultPageSize.
func NewFeedService(postFinder PostFinder, groupLookup GroupLookup, userLookup UserLookup, followGraph FollowGraph, pageSize int) Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &feedService{
		posts:    postFinder,
		groups:   groupLookup,
		users:    userLookup,
		follows:  followGraph,
		pageSize: pageSize,
	}
}

// ListPosts resolves one page of a feed
func (s *feedService) ListPosts(ctx context.Context, req ListPostsRequest) (*FeedResponse, error) {
	// 1. Validate request and apply defaults
	if err := s.validateRequest(&req); err != nil {
		return nil, err
	}

	// 2. Turn the view into a post predicate
	resp := &FeedResponse{}
	query, err := s.buildQuery(ctx, req, resp)
	if err != nil {
		return nil, err
	}

	// 3. Count, then fetch only if the page has anything on it
	page, err := s.fetchPage(ctx, query, req.Page, req.PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s feed: %w", req.View, err)
	}
	resp.Page = page

	return resp, nil
}

func (s *feedService) buildQuery(ctx context.Context, req ListPostsRequest, resp *FeedResponse) (posts.Query, error) {
	switch req.View {
	case ViewGlobal:
		return posts.AllPosts(), nil

	case ViewGroup:
		group, err := s.groups.GetBySlug(ctx, req.Selector)
		if err != nil {
			if groups.IsNotFound(err) {
				return posts.Query{}, ErrGroupNotFound
			}
			return posts.Query{}, fmt.Errorf("failed to resolve group: %w", err)
		}
		resp.Group = group
		return posts.InGroup(group.ID), nil

	case ViewProfile:
		author, err := s.users.GetUserByUsername(ctx, req.Selector)
		if err != nil {
			if users.IsNotFound(err) {
				return posts.Query{}, ErrAuthorNotFound
			}
			return posts.Query{}, fmt.Errorf("failed to resolve author: %w", err)
		}
		resp.Author = author
		return posts.ByAuthor(author.ID), nil

	case ViewFollow:
		if !req.Viewer.IsAuthenticated() {
			return posts.Query{}, ErrUnauthorized
		}
		authorIDs, err := s.follows.FollowingOf(ctx, req.Viewer.UserID)
		if err != nil {
			return posts.Query{}, fmt.Errorf("failed to load followed authors: %w", err)
		}
		return posts.ByAnyAuthor(authorIDs), nil
	}

	return posts.Query{}, NewValidationError("view", fmt.Sprintf("unknown view %q", req.View))
}

func (s *feedService) fetchPage(ctx context.Context, query posts.Query, number, pageSize int) (*Page, error) {
	if query.MatchesNothing() {
		return newPage(0, number, pageSize), nil
	}

	total, err := s.posts.Count(ctx, query)
	if err != nil {
		return nil, err
	}

	page := newPage(total, number, pageSize)
	if !page.InRange() {
		return page, nil
	}

	found, err := s.posts.Find(ctx, query, pageSize, page.offset())
	if err != nil {
		return nil, err
	}
	if found != nil {
		page.Posts = found
	}
	return page, nil
}

// validateRequest validates the feed request parameters
func (s *feedService) validateRequest(req *ListPostsRequest) error {
	switch req.View {
	case ViewGlobal, ViewFollow:
	case ViewGroup:
		if req.Selector == "" {
			return NewValidationError("slug", "group slug is required")
		}
	case ViewProfile:
		if req.Selector == "" {
			return NewValidationError("username", "username is required")
		}
	default:
		return NewValidationError("view", fmt.Sprintf("unknown view %q", req.View))
	}

	if req.Page == 0 {
		req.Page = 1
	}
	if req.Page < 0 {
		return NewValidationError("page", "page must be a positive integer")
	}

	if req.PageSize <= 0 {
		req.PageSize = s.pageSize
	}
	return nil
}
