package services

import (
	"context"

	"github.com/abrezinsky/prizewheel/internal/logger"
	"github.com/abrezinsky/prizewheel/internal/models"
	"github.com/abrezinsky/prizewheel/internal/repository"
)

// UserRepository is the slice of the store the user service reads
type UserRepository interface {
	repository.UserRepository
	repository.GiftRepository
}

// UserService handles the mini-app's identity and status lookups
type UserService struct {
	log         logger.Logger
	repo        UserRepository
	maxAttempts int
}

// NewUserService creates a new UserService
func NewUserService(log logger.Logger, repo UserRepository, maxAttempts int) *UserService {
	return &UserService{log: log, repo: repo, maxAttempts: maxAttempts}
}

// MaxAttempts returns the per-user attempt allowance
func (s *UserService) MaxAttempts() int {
	return s.maxAttempts
}

// Announce registers the user if it is new. Calling it again is harmless.
func (s *UserService) Announce(ctx context.Context, userID int64) (bool, error) {
	if err := validateUserID(userID); err != nil {
		return false, err
	}
	created, err := s.repo.EnsureUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if created {
		s.log.Info("New user registered", "user_id", userID)
	}
	return created, nil
}

// GetStatus returns the authoritative attempts and gifts, creating the user on first sight
func (s *UserService) GetStatus(ctx context.Context, userID int64) (*models.UserStatus, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if _, err := s.repo.EnsureUser(ctx, userID); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &models.UserStatus{
		AttemptsLeft: attemptsLeft(s.maxAttempts, user.AttemptsUsed),
		Gifts:        user.Gifts,
	}, nil
}
