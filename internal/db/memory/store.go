// Package memory implements every repository in process.
// It backs local development without Postgres and the service-level tests.
package memory

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"Yatube/internal/core/follows"
	"Yatube/internal/core/groups"
	"Yatube/internal/core/posts"
	"Yatube/internal/core/users"
)

// ErrSelfFollow mirrors the follows table check constraint
var ErrSelfFollow = errors.New("follow edge must connect two different users")

type followKey struct {
	userID   int64
	authorID int64
}

// Store holds all entities behind one lock
type Store struct {
	now       func() time.Time
	users     map[int64]*users.User
	usernames map[string]int64
	groups    map[int64]*groups.Group
	slugs     map[string]int64
	posts     map[int64]*posts.Post
	follows   map[followKey]*follows.Follow
	lastID    int64
	mu        sync.RWMutex
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		now:       time.Now,
		users:     make(map[int64]*users.User),
		usernames: make(map[string]int64),
		groups:    make(map[int64]*groups.Group),
		slugs:     make(map[string]int64),
		posts:     make(map[int64]*posts.Post),
		follows:   make(map[followKey]*follows.Follow),
	}
}

// SetClock replaces the time source used for created_at values
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Users returns the user repository
func (s *Store) Users() users.UserRepository { return &userRepo{s} }

// Groups returns the group repository
func (s *Store) Groups() groups.Repository { return &groupRepo{s} }

// Posts returns the post repository
func (s *Store) Posts() posts.Repository { return &postRepo{s} }

// Follows returns the follow repository
func (s *Store) Follows() follows.Repository { return &followRepo{s} }

// nextID hands out IDs from one sequence; callers hold the write lock
func (s *Store) nextID() int64 {
	s.lastID++
	return s.lastID
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, user *users.User) (*users.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.usernames[user.Username]; taken {
		return nil, users.ErrUsernameTaken
	}
	stored := *user
	stored.ID = r.s.nextID()
	stored.CreatedAt = r.s.now()
	r.s.users[stored.ID] = &stored
	r.s.usernames[stored.Username] = stored.ID

	out := stored
	return &out, nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.usernames[username]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	out := *r.s.users[id]
	return &out, nil
}

type groupRepo struct{ s *Store }

func (r *groupRepo) Create(ctx context.Context, group *groups.Group) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.slugs[group.Slug]; taken {
		return groups.ErrSlugTaken
	}
	group.ID = r.s.nextID()
	stored := *group
	r.s.groups[group.ID] = &stored
	r.s.slugs[group.Slug] = group.ID
	return nil
}

func (r *groupRepo) GetByID(ctx context.Context, id int64) (*groups.Group, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	g, ok := r.s.groups[id]
	if !ok {
		return nil, groups.ErrGroupNotFound
	}
	out := *g
	return &out, nil
}

func (r *groupRepo) GetBySlug(ctx context.Context, slug string) (*groups.Group, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.slugs[slug]
	if !ok {
		return nil, groups.ErrGroupNotFound
	}
	out := *r.s.groups[id]
	return &out, nil
}

func (r *groupRepo) List(ctx context.Context) ([]*groups.Group, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := make([]*groups.Group, 0, len(r.s.groups))
	for _, g := range r.s.groups {
		out := *g
		list = append(list, &out)
	}
	slices.SortFunc(list, func(a, b *groups.Group) int {
		if a.Title < b.Title {
			return -1
		}
		if a.Title > b.Title {
			return 1
		}
		return 0
	})
	return list, nil
}
