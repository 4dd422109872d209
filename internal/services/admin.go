package services

import (
	"context"
	"time"

	"github.com/abrezinsky/prizewheel/internal/logger"
	"github.com/abrezinsky/prizewheel/internal/models"
	"github.com/abrezinsky/prizewheel/internal/repository"
)

// AdminService handles manual corrections made from the admin pages
type AdminService struct {
	log         logger.Logger
	repo        repository.FullRepository
	maxAttempts int
	broadcaster Broadcaster
	now         func() time.Time
}

// NewAdminService creates a new AdminService
func NewAdminService(log logger.Logger, repo repository.FullRepository, maxAttempts int) *AdminService {
	return &AdminService{log: log, repo: repo, maxAttempts: maxAttempts, now: time.Now}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *AdminService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// ListUsers returns every user with attempts_left filled in
func (s *AdminService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].AttemptsLeft = attemptsLeft(s.maxAttempts, users[i].AttemptsUsed)
	}
	return users, nil
}

// ResetAttempts gives the user their full allowance back
func (s *AdminService) ResetAttempts(ctx context.Context, userID int64) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	if err := s.repo.SetAttemptsUsed(ctx, userID, 0); err != nil {
		if err == repository.ErrNotFound {
			return ErrUserNotFound
		}
		return err
	}

	s.log.Info("Attempts reset", "user_id", userID)
	s.broadcastStatus(ctx, userID)
	return nil
}

// AddAttempt returns one used attempt to the user and reports the new used count
func (s *AdminService) AddAttempt(ctx context.Context, userID int64) (int, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if user.AttemptsUsed <= 0 {
		return 0, ErrMaxAttempts
	}

	used := user.AttemptsUsed - 1
	if err := s.repo.SetAttemptsUsed(ctx, userID, used); err != nil {
		return 0, err
	}

	s.log.Info("Attempt added", "user_id", userID, "attempts_used", used)
	s.broadcastStatus(ctx, userID)
	return used, nil
}

// AddPrize grants a gift without a spin, dated today
func (s *AdminService) AddPrize(ctx context.Context, userID int64, prize models.Prize) (*models.Gift, error) {
	if prize.Name == "" || prize.StarPrice < 0 {
		return nil, ErrInvalidPrize
	}
	if _, err := s.getUser(ctx, userID); err != nil {
		return nil, err
	}

	gift := models.Gift{
		Name:      prize.Name,
		StarPrice: prize.StarPrice,
		Img:       prize.Img,
		Date:      s.now().Format(GiftDateLayout),
	}
	if err := s.repo.AddGift(ctx, userID, gift); err != nil {
		return nil, err
	}

	s.log.Info("Prize added", "user_id", userID, "prize", gift.Name)
	s.broadcastStatus(ctx, userID)
	return &gift, nil
}

// RemoveGift deletes the gift at index (0-based, in won order)
func (s *AdminService) RemoveGift(ctx context.Context, userID int64, index int) (*models.Gift, error) {
	if index < 0 {
		return nil, ErrInvalidGiftIndex
	}
	if _, err := s.getUser(ctx, userID); err != nil {
		return nil, err
	}

	gift, err := s.repo.DeleteGift(ctx, userID, index)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrGiftIndexOutOfRange
		}
		return nil, err
	}

	s.log.Info("Gift removed", "user_id", userID, "index", index, "prize", gift.Name)
	s.broadcastStatus(ctx, userID)
	return gift, nil
}

// Stats returns activity totals
func (s *AdminService) Stats(ctx context.Context) (*models.Stats, error) {
	return s.repo.GetStats(ctx)
}

func (s *AdminService) getUser(ctx context.Context, userID int64) (*models.User, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AdminService) broadcastStatus(ctx context.Context, userID int64) {
	if s.broadcaster == nil {
		return
	}
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		s.log.Warn("Failed to load user for broadcast", "user_id", userID, "error", err)
		return
	}
	s.broadcaster.BroadcastUserStatus(userID, models.UserStatus{
		AttemptsLeft: attemptsLeft(s.maxAttempts, user.AttemptsUsed),
		Gifts:        user.Gifts,
	})
}
