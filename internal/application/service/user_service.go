package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/garyjia/ai-travel-planner/internal/application/port"
	"github.com/garyjia/ai-travel-planner/internal/domain/entity"
	"github.com/garyjia/ai-travel-planner/pkg/utils"
)

// UserService tracks users seen in verified tokens
type UserService interface {
	Ensure(ctx context.Context, id, email string) error
}

type userServiceImpl struct {
	repo   port.UserRepository
	logger Logger
}

// NewUserService creates a new UserService
func NewUserService(repo port.UserRepository, logger Logger) UserService {
	return &userServiceImpl{
		repo:   repo,
		logger: logger,
	}
}

// Ensure upserts the user so trips and expenses can reference it
func (s *userServiceImpl) Ensure(ctx context.Context, id, email string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("user id is required: %w", entity.ErrForbidden)
	}
	email = strings.TrimSpace(email)
	if email != "" && !utils.IsValidEmail(email) {
		s.logger.Warn("Ignoring malformed token email", "user_id", id)
		email = ""
	}
	if err := s.repo.Upsert(ctx, &entity.User{ID: id, Email: email}); err != nil {
		s.logger.Error("Failed to upsert user", "error", err, "user_id", id)
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}
