package service

import (
	"context"

	"posterr/internal/repository"

	"github.com/google/uuid"
)

type UserService struct {
	userRepo repository.UserRepository
	postRepo repository.PostRepository
}

func NewUserService(userRepo repository.UserRepository, postRepo repository.PostRepository) *UserService {
	return &UserService{userRepo: userRepo, postRepo: postRepo}
}

// GetProfile returns the user with its lifetime post count.
func (s *UserService) GetProfile(ctx context.Context, id uuid.UUID) (*UserView, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	total, err := s.postRepo.CountByUser(ctx, id, nil, nil)
	if err != nil {
		return nil, err
	}
	view := newUserView(*user, total)
	return &view, nil
}

// ListProfiles returns every user with its lifetime post count.
func (s *UserService) ListProfiles(ctx context.Context) ([]UserView, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.postRepo.CountByUsers(ctx, nil)
	if err != nil {
		return nil, err
	}
	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, newUserView(u, counts[u.ID]))
	}
	return views, nil
}
