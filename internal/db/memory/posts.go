package memory

import (
	"context"
	"fmt"
	"slices"

	"Yatube/internal/core/posts"
	"Yatube/internal/core/users"
)

type postRepo struct{ s *Store }

func (r *postRepo) Create(ctx context.Context, post *posts.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[post.AuthorID]; !ok {
		return fmt.Errorf("author %d: %w", post.AuthorID, users.ErrUserNotFound)
	}
	if post.GroupID != nil {
		if _, ok := r.s.groups[*post.GroupID]; !ok {
			return fmt.Errorf("group %d does not exist", *post.GroupID)
		}
	}

	post.ID = r.s.nextID()
	post.CreatedAt = r.s.now()
	r.s.posts[post.ID] = copyPost(post)
	return nil
}

func (r *postRepo) GetByID(ctx context.Context, id int64) (*posts.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, posts.ErrNotFound
	}
	return copyPost(p), nil
}

func (r *postRepo) GetView(ctx context.Context, id int64) (*posts.PostView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, posts.ErrNotFound
	}
	return r.hydrate(p), nil
}

func (r *postRepo) Update(ctx context.Context, post *posts.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.posts[post.ID]
	if !ok {
		return posts.ErrNotFound
	}
	if post.GroupID != nil {
		if _, ok := r.s.groups[*post.GroupID]; !ok {
			return fmt.Errorf("group %d does not exist", *post.GroupID)
		}
	}

	stored.Text = post.Text
	stored.Image = post.Image
	stored.GroupID = copyID(post.GroupID)
	return nil
}

func (r *postRepo) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[id]; !ok {
		return posts.ErrNotFound
	}
	delete(r.s.posts, id)
	return nil
}

func (r *postRepo) Find(ctx context.Context, q posts.Query, limit, offset int) ([]*posts.PostView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := r.match(q)
	slices.SortFunc(matched, posts.CompareNewestFirst)

	if offset >= len(matched) {
		return []*posts.PostView{}, nil
	}
	end := len(matched)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return matched[offset:end], nil
}

func (r *postRepo) Count(ctx context.Context, q posts.Query) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return len(r.match(q)), nil
}

// match evaluates q over all posts; callers hold the read lock
func (r *postRepo) match(q posts.Query) []*posts.PostView {
	if q.MatchesNothing() {
		return nil
	}
	var matched []*posts.PostView
	for _, p := range r.s.posts {
		view := r.hydrate(p)
		if q.Matches(view) {
			matched = append(matched, view)
		}
	}
	return matched
}

// hydrate joins author and group; callers hold the read lock
func (r *postRepo) hydrate(p *posts.Post) *posts.PostView {
	view := &posts.PostView{
		ID:        p.ID,
		Text:      p.Text,
		Image:     p.Image,
		CreatedAt: p.CreatedAt,
		Author:    &posts.AuthorView{ID: p.AuthorID},
	}
	if u, ok := r.s.users[p.AuthorID]; ok {
		view.Author.Username = u.Username
		view.Author.FirstName = u.FirstName
		view.Author.LastName = u.LastName
	}
	if p.GroupID != nil {
		if g, ok := r.s.groups[*p.GroupID]; ok {
			view.Group = &posts.GroupRef{ID: g.ID, Slug: g.Slug, Title: g.Title}
		}
	}
	return view
}

func copyPost(p *posts.Post) *posts.Post {
	out := *p
	out.GroupID = copyID(p.GroupID)
	return &out
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
