package follows

import (
	"context"
	"errors"
	"testing"

	"Yatube/internal/core/access"
	"Yatube/internal/core/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository is a mock implementation of Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, userID, authorID int64) (bool, error) {
	args := m.Called(ctx, userID, authorID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, userID, authorID int64) (bool, error) {
	args := m.Called(ctx, userID, authorID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) Exists(ctx context.Context, userID, authorID int64) (bool, error) {
	args := m.Called(ctx, userID, authorID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) ListAuthorIDs(ctx context.Context, userID int64) ([]int64, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockRepository) CountFollowers(ctx context.Context, authorID int64) (int, error) {
	args := m.Called(ctx, authorID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) CountFollowing(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

// userDirectory resolves a fixed set of users by username
type userDirectory map[string]int64

func (d userDirectory) GetUserByUsername(ctx context.Context, username string) (*users.User, error) {
	id, ok := d[username]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	return &users.User{ID: id, Username: username}, nil
}

var directory = userDirectory{"user": 1, "author": 2}

func TestFollow_CreatesEdge(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Create", mock.Anything, int64(1), int64(2)).Return(true, nil)

	svc := NewFollowService(repo, directory)
	require.NoError(t, svc.Follow(context.Background(), access.Identified(1, "user"), "author"))
	repo.AssertExpectations(t)
}

func TestFollow_ExistingEdgeIsNoop(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Create", mock.Anything, int64(1), int64(2)).Return(false, nil).Twice()

	svc := NewFollowService(repo, directory)
	viewer := access.Identified(1, "user")
	require.NoError(t, svc.Follow(context.Background(), viewer, "author"))
	require.NoError(t, svc.Follow(context.Background(), viewer, "author"))
	repo.AssertExpectations(t)
}

func TestFollow_Self(t *testing.T) {
	repo := new(MockRepository)
	svc := NewFollowService(repo, directory)

	err := svc.Follow(context.Background(), access.Identified(2, "author"), "author")
	assert.ErrorIs(t, err, ErrInvalidOperation)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "author", valErr.Field)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestFollow_Anonymous(t *testing.T) {
	repo := new(MockRepository)
	svc := NewFollowService(repo, directory)

	assert.ErrorIs(t, svc.Follow(context.Background(), access.Anonymous(), "author"), ErrUnauthorized)
	assert.ErrorIs(t, svc.Unfollow(context.Background(), access.Anonymous(), "author"), ErrUnauthorized)
}

func TestFollow_UnknownAuthor(t *testing.T) {
	repo := new(MockRepository)
	svc := NewFollowService(repo, directory)

	err := svc.Follow(context.Background(), access.Identified(1, "user"), "ghost")
	assert.True(t, IsNotFound(err))
}

func TestFollow_RepositoryError(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Create", mock.Anything, int64(1), int64(2)).Return(false, errors.New("connection refused"))

	svc := NewFollowService(repo, directory)
	err := svc.Follow(context.Background(), access.Identified(1, "user"), "author")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to follow")
}

func TestUnfollow_MissingEdgeIsNoop(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Delete", mock.Anything, int64(1), int64(2)).Return(false, nil)

	svc := NewFollowService(repo, directory)
	require.NoError(t, svc.Unfollow(context.Background(), access.Identified(1, "user"), "author"))
	repo.AssertExpectations(t)
}

func TestIsFollowing(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Exists", mock.Anything, int64(1), int64(2)).Return(true, nil)

	svc := NewFollowService(repo, directory)
	ctx := context.Background()

	following, err := svc.IsFollowing(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, following)

	// Anonymous and self never hit the store
	following, err = svc.IsFollowing(ctx, 0, 2)
	require.NoError(t, err)
	assert.False(t, following)

	following, err = svc.IsFollowing(ctx, 2, 2)
	require.NoError(t, err)
	assert.False(t, following)
	repo.AssertNumberOfCalls(t, "Exists", 1)
}

func TestFollowingOf(t *testing.T) {
	repo := new(MockRepository)
	repo.On("ListAuthorIDs", mock.Anything, int64(1)).Return([]int64{2, 3}, nil)
	repo.On("ListAuthorIDs", mock.Anything, int64(4)).Return(nil, nil)

	svc := NewFollowService(repo, directory)

	ids, err := svc.FollowingOf(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, ids)

	ids, err = svc.FollowingOf(context.Background(), 4)
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
}

func TestGetStats(t *testing.T) {
	repo := new(MockRepository)
	repo.On("CountFollowers", mock.Anything, int64(2)).Return(5, nil)
	repo.On("CountFollowing", mock.Anything, int64(2)).Return(1, nil)

	stats, err := NewFollowService(repo, directory).GetStats(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, &Stats{Followers: 5, Following: 1}, stats)
}
