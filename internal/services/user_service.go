package services

import (
	"context"
	"errors"

	"depot/internal/models"
	"depot/internal/repositories"

	"github.com/google/uuid"
)

type UserService interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	ChangeRole(ctx context.Context, id uuid.UUID, role string) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// Create stores the profile row for an identity-provider account. The ID
// must match the provider's subject so tokens map onto a profile.
func (s *userService) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		return errors.New("user id is required")
	}
	if user.Email == "" {
		return errors.New("email is required")
	}
	if user.Role == "" {
		user.Role = models.RoleOperator
	}
	if !models.ValidRole(user.Role) {
		return errors.New("unknown role")
	}

	existing, err := s.userRepo.GetByEmail(ctx, user.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.New("user with this email already exists")
	}

	user.Active = true
	return s.userRepo.Create(ctx, user)
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *userService) Update(ctx context.Context, user *models.User) error {
	if user.Email == "" {
		return errors.New("email is required")
	}
	return s.userRepo.Update(ctx, user)
}

func (s *userService) ChangeRole(ctx context.Context, id uuid.UUID, role string) error {
	if !models.ValidRole(role) {
		return errors.New("unknown role")
	}
	return s.userRepo.UpdateRole(ctx, id, role)
}

func (s *userService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.userRepo.Deactivate(ctx, id)
}

func (s *userService) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}
