package service

import (
	"context"
	"testing"
	"time"

	"posterr/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository is a testify mock for repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*models.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestGetProfile(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	users := new(MockUserRepository)
	users.On("GetByID", mock.Anything, author).
		Return(&models.User{ID: author, Name: "user1", Username: "user1", CreatedAt: created}, nil)

	posts := noopPostRepo()
	posts.countByUserFn = func(_ context.Context, id uuid.UUID, since, until *time.Time) (int64, error) {
		assert.Equal(t, author, id)
		assert.Nil(t, since, "profile totals are lifetime")
		assert.Nil(t, until)
		return 9, nil
	}

	view, err := NewUserService(users, posts).GetProfile(context.Background(), author)
	require.NoError(t, err)
	assert.Equal(t, UserView{ID: author, Name: "user1", Username: "user1", CreatedAt: created, TotalPosts: 9}, *view)
	users.AssertExpectations(t)
}

func TestGetProfile_NotFound(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetByID", mock.Anything, other).Return(nil, models.NewUserNotFoundError(other))

	_, err := NewUserService(users, noopPostRepo()).GetProfile(context.Background(), other)
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestListProfiles(t *testing.T) {
	users := new(MockUserRepository)
	users.On("List", mock.Anything).Return([]models.User{
		{ID: author, Username: "user1"},
		{ID: other, Username: "user2"},
	}, nil)

	posts := noopPostRepo()
	posts.countByUsersFn = func(_ context.Context, _ []uuid.UUID) (map[uuid.UUID]int64, error) {
		return map[uuid.UUID]int64{author: 3}, nil
	}

	views, err := NewUserService(users, posts).ListProfiles(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, int64(3), views[0].TotalPosts)
	assert.Equal(t, int64(0), views[1].TotalPosts)
	assert.Equal(t, "user2", views[1].Username)
}
