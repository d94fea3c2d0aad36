package memory

import (
	"context"
	"fmt"
	"slices"

	"Yatube/internal/core/follows"
	"Yatube/internal/core/users"
)

type followRepo struct{ s *Store }

func (r *followRepo) Create(ctx context.Context, userID, authorID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if userID == authorID {
		return false, ErrSelfFollow
	}
	for _, id := range []int64{userID, authorID} {
		if _, ok := r.s.users[id]; !ok {
			return false, fmt.Errorf("user %d: %w", id, users.ErrUserNotFound)
		}
	}

	key := followKey{userID: userID, authorID: authorID}
	if _, exists := r.s.follows[key]; exists {
		return false, nil
	}
	r.s.follows[key] = &follows.Follow{
		ID:        r.s.nextID(),
		UserID:    userID,
		AuthorID:  authorID,
		CreatedAt: r.s.now(),
	}
	return true, nil
}

func (r *followRepo) Delete(ctx context.Context, userID, authorID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := followKey{userID: userID, authorID: authorID}
	if _, exists := r.s.follows[key]; !exists {
		return false, nil
	}
	delete(r.s.follows, key)
	return true, nil
}

func (r *followRepo) Exists(ctx context.Context, userID, authorID int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, exists := r.s.follows[followKey{userID: userID, authorID: authorID}]
	return exists, nil
}

func (r *followRepo) ListAuthorIDs(ctx context.Context, userID int64) ([]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := []int64{}
	for key := range r.s.follows {
		if key.userID == userID {
			ids = append(ids, key.authorID)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (r *followRepo) CountFollowers(ctx context.Context, authorID int64) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for key := range r.s.follows {
		if key.authorID == authorID {
			n++
		}
	}
	return n, nil
}

func (r *followRepo) CountFollowing(ctx context.Context, userID int64) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for key := range r.s.follows {
		if key.userID == userID {
			n++
		}
	}
	return n, nil
}
