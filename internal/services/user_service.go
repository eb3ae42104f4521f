package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/minisocial/backend/internal/models"
	"github.com/anonto42/minisocial/backend/internal/repositories"
)

// UserService serves the user directory.
type UserService struct {
	users repositories.UserRepository
}

func NewUserService(users repositories.UserRepository) *UserService {
	return &UserService{users: users}
}

// GetProfile returns the public view of the user with the given id.
func (s *UserService) GetProfile(ctx context.Context, id string) (*models.PublicUser, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	pub := user.ToPublic()
	return &pub, nil
}

// ProfileUpdate holds the optional fields of a profile update. Empty strings
// keep the stored value.
type ProfileUpdate struct {
	Name         string
	Bio          string
	ProfileImage string
}

// UpdateProfile applies a partial update to the caller's own profile.
func (s *UserService) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*models.PublicUser, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}

	if upd.Name != "" {
		user.Name = upd.Name
	}
	if upd.Bio != "" {
		user.Bio = upd.Bio
	}
	if upd.ProfileImage != "" {
		user.ProfileImage = upd.ProfileImage
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user %s: %w", id, err)
	}
	pub := user.ToPublic()
	return &pub, nil
}

// ListUsers returns every user ordered by name.
func (s *UserService) ListUsers(ctx context.Context) ([]models.PublicUser, error) {
	users, err := s.users.GetUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return models.PublicUsers(users), nil
}
