package posts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"Yatube/internal/core/access"
	"Yatube/internal/core/groups"
	"Yatube/internal/core/media"
)

type postService struct {
	repo   Repository
	groups GroupLookup
	images ImageStore
}

// NewPostService creates a new post service
func NewPostService(repo Repository, groupLookup GroupLookup, images ImageStore) Service {
	return &postService{
		repo:   repo,
		groups: groupLookup,
		images: images,
	}
}

// CreatePost validates the form, stores the image and inserts the post
func (s *postService) CreatePost(ctx context.Context, viewer access.Viewer, req CreatePostRequest) (*PostView, error) {
	if !access.CanCreate(viewer) {
		return nil, ErrUnauthorized
	}

	text, err := validateText(req.Text)
	if err != nil {
		return nil, err
	}

	groupID, err := s.resolveGroup(ctx, req.GroupSlug)
	if err != nil {
		return nil, err
	}

	post := &Post{
		Text:     text,
		AuthorID: viewer.UserID,
		GroupID:  groupID,
	}

	if req.Image != nil {
		stored, err := s.saveImage(ctx, req.Image)
		if err != nil {
			return nil, err
		}
		post.Image = stored
	}

	if err := s.repo.Create(ctx, post); err != nil {
		s.discardImage(ctx, post.Image)
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	slog.Info("post created", "post_id", post.ID, "author_id", post.AuthorID)
	return s.repo.GetView(ctx, post.ID)
}

// EditPost applies the author's changes
func (s *postService) EditPost(ctx context.Context, viewer access.Viewer, id int64, req EditPostRequest) (*PostView, error) {
	post, err := s.loadForWrite(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	text, err := validateText(req.Text)
	if err != nil {
		return nil, err
	}

	groupID, err := s.resolveGroup(ctx, req.GroupSlug)
	if err != nil {
		return nil, err
	}

	oldImage := post.Image
	post.Text = text
	post.GroupID = groupID

	switch {
	case req.Image != nil:
		stored, err := s.saveImage(ctx, req.Image)
		if err != nil {
			return nil, err
		}
		post.Image = stored
	case req.ClearImage:
		post.Image = ""
	}

	if err := s.repo.Update(ctx, post); err != nil {
		if post.Image != oldImage {
			s.discardImage(ctx, post.Image)
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	if post.Image != oldImage {
		s.discardImage(ctx, oldImage)
	}

	slog.Info("post edited", "post_id", post.ID, "author_id", post.AuthorID)
	return s.repo.GetView(ctx, post.ID)
}

// DeletePost removes a post written by the viewer
func (s *postService) DeletePost(ctx context.Context, viewer access.Viewer, id int64) error {
	post, err := s.loadForWrite(ctx, viewer, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, post.ID); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	s.discardImage(ctx, post.Image)

	slog.Info("post deleted", "post_id", post.ID, "author_id", post.AuthorID)
	return nil
}

// GetPost returns a single hydrated post
func (s *postService) GetPost(ctx context.Context, id int64) (*PostView, error) {
	if id <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.GetView(ctx, id)
}

// GetPostForEdit returns the post when the viewer is its author
func (s *postService) GetPostForEdit(ctx context.Context, viewer access.Viewer, id int64) (*PostView, error) {
	if !viewer.IsAuthenticated() {
		return nil, ErrUnauthorized
	}
	view, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanEdit(viewer, view) {
		return nil, ErrPermissionDenied
	}
	return view, nil
}

// CountByAuthor returns how many posts the author has written
func (s *postService) CountByAuthor(ctx context.Context, authorID int64) (int, error) {
	return s.repo.Count(ctx, ByAuthor(authorID))
}

func (s *postService) loadForWrite(ctx context.Context, viewer access.Viewer, id int64) (*Post, error) {
	if !viewer.IsAuthenticated() {
		return nil, ErrUnauthorized
	}
	if id <= 0 {
		return nil, ErrNotFound
	}

	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanEdit(viewer, post) {
		slog.Warn("rejected post write by non-author",
			"post_id", post.ID, "author_id", post.AuthorID, "viewer_id", viewer.UserID)
		return nil, ErrPermissionDenied
	}
	return post, nil
}

func (s *postService) resolveGroup(ctx context.Context, slug string) (*int64, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil
	}

	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		if groups.IsNotFound(err) {
			return nil, NewValidationError("group", "select a valid group")
		}
		return nil, fmt.Errorf("failed to resolve group: %w", err)
	}
	return &group.ID, nil
}

func (s *postService) saveImage(ctx context.Context, upload *ImageUpload) (string, error) {
	stored, err := s.images.Save(ctx, upload.Filename, upload.Content)
	if err != nil {
		if media.IsInvalidUpload(err) {
			return "", NewValidationError("image", err.Error())
		}
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return stored, nil
}

func (s *postService) discardImage(ctx context.Context, stored string) {
	if stored == "" {
		return
	}
	if err := s.images.Remove(ctx, stored); err != nil {
		slog.Warn("failed to remove post image", "path", stored, "error", err)
	}
}

func validateText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", NewValidationError("text", "post text must not be empty")
	}
	return text, nil
}
