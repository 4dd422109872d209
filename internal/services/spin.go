package services

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/abrezinsky/prizewheel/internal/catalog"
	"github.com/abrezinsky/prizewheel/internal/logger"
	"github.com/abrezinsky/prizewheel/internal/models"
	"github.com/abrezinsky/prizewheel/internal/repository"
)

// GiftDateLayout is the dd.mm.yyyy stamp stored on every won gift
const GiftDateLayout = "02.01.2006"

// SpinService decides spin outcomes and records them
type SpinService struct {
	log         logger.Logger
	repo        repository.FullRepository
	catalog     *catalog.Catalog
	maxAttempts int
	broadcaster Broadcaster
	pick        func(n int) int  // for testing: defaults to rand.IntN
	now         func() time.Time // for testing: defaults to time.Now
	newID       func() string    // for testing: defaults to uuid.NewString
}

// NewSpinService creates a new SpinService
func NewSpinService(log logger.Logger, repo repository.FullRepository, cat *catalog.Catalog, maxAttempts int) *SpinService {
	return &SpinService{
		log:         log,
		repo:        repo,
		catalog:     cat,
		maxAttempts: maxAttempts,
		pick:        rand.IntN,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *SpinService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetPicker sets a custom prize picker (for testing)
func (s *SpinService) SetPicker(pick func(n int) int) {
	s.pick = pick
}

// SetClock sets a custom clock (for testing)
func (s *SpinService) SetClock(now func() time.Time) {
	s.now = now
}

// Prizes returns the catalog clients build their strip from
func (s *SpinService) Prizes() []models.Prize {
	return s.catalog.Prizes()
}

// Spin consumes one attempt and returns the prize the wheel must land on.
// The outcome and the attempt are committed together or not at all.
func (s *SpinService) Spin(ctx context.Context, userID int64) (*models.SpinResult, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	open, err := s.spinsOpen(ctx)
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, ErrSpinsClosed
	}

	now := s.now()
	rec := models.SpinRecord{
		ID:        s.newID(),
		UserID:    userID,
		Prize:     s.catalog.At(s.pick(s.catalog.Len())),
		CreatedAt: now,
	}

	used, err := s.repo.RecordSpin(ctx, rec, now.Format(GiftDateLayout), s.maxAttempts)
	if err != nil {
		if err == repository.ErrAttemptsExhausted {
			s.log.Info("Spin refused, no attempts left", "user_id", userID)
			return nil, ErrNoAttemptsLeft
		}
		return nil, err
	}

	left := attemptsLeft(s.maxAttempts, used)
	s.log.Info("Spin recorded",
		"user_id", userID,
		"spin_id", rec.ID,
		"prize", rec.Prize.Name,
		"star_price", rec.Prize.StarPrice,
		"attempts_left", left)

	s.broadcastStatus(ctx, userID, left)

	return &models.SpinResult{
		WonPrize:     rec.Prize,
		AttemptsLeft: left,
		SpinID:       rec.ID,
	}, nil
}

// History returns a user's most recent spins
func (s *SpinService) History(ctx context.Context, userID int64, limit int) ([]models.SpinRecord, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListSpins(ctx, userID, limit)
}

func (s *SpinService) spinsOpen(ctx context.Context) (bool, error) {
	value, err := s.repo.GetSetting(ctx, "spins_open")
	if err != nil {
		if err == repository.ErrNotFound {
			return true, nil
		}
		return false, err
	}
	return value != "false", nil
}

// broadcastStatus pushes the fresh snapshot to admin pages; a failed gift read only skips the push
func (s *SpinService) broadcastStatus(ctx context.Context, userID int64, left int) {
	if s.broadcaster == nil {
		return
	}
	gifts, err := s.repo.ListGifts(ctx, userID)
	if err != nil {
		s.log.Warn("Failed to load gifts for broadcast", "user_id", userID, "error", err)
		return
	}
	s.broadcaster.BroadcastUserStatus(userID, models.UserStatus{AttemptsLeft: left, Gifts: gifts})
}
