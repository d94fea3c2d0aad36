package groups

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rivo/uniseg"
)

const (
	maxTitleLength = 200
	maxSlugLength  = 50
)

var slugRegex = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

type groupService struct {
	repo Repository
}

// NewGroupService creates a new group service
func NewGroupService(repo Repository) Service {
	return &groupService{repo: repo}
}

// CreateGroup validates and stores a new group
func (s *groupService) CreateGroup(ctx context.Context, req CreateGroupRequest) (*Group, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Slug = strings.TrimSpace(req.Slug)
	req.Description = strings.TrimSpace(req.Description)

	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	group := &Group{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, group); err != nil {
		if errors.Is(err, ErrSlugTaken) {
			return nil, NewValidationError("slug", "a group with this slug already exists")
		}
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	return group, nil
}

// GetBySlug returns the group with the given slug
func (s *groupService) GetBySlug(ctx context.Context, slug string) (*Group, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" || !slugRegex.MatchString(slug) {
		return nil, ErrGroupNotFound
	}
	return s.repo.GetBySlug(ctx, slug)
}

// ListGroups returns all groups, used to populate the post form
func (s *groupService) ListGroups(ctx context.Context) ([]*Group, error) {
	groups, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

func (s *groupService) validateCreateRequest(req CreateGroupRequest) error {
	if req.Title == "" {
		return NewValidationError("title", "title is required")
	}
	// Length is measured in grapheme clusters
	if uniseg.GraphemeClusterCount(req.Title) > maxTitleLength {
		return NewValidationError("title", fmt.Sprintf("title must be at most %d characters", maxTitleLength))
	}
	if req.Slug == "" {
		return NewValidationError("slug", "slug is required")
	}
	if len(req.Slug) > maxSlugLength {
		return NewValidationError("slug", fmt.Sprintf("slug must be at most %d characters", maxSlugLength))
	}
	if !slugRegex.MatchString(req.Slug) {
		return NewValidationError("slug", "slug may contain only latin letters, digits, hyphens and underscores")
	}
	return nil
}
