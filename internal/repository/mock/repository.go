package mock

import (
	"context"

	"github.com/abrezinsky/prizewheel/internal/models"
	"github.com/abrezinsky/prizewheel/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.RecordSpinError = errors.New("database error")
//	svc := services.NewSpinService(log, mockRepo, cat, 2)
//	_, err := svc.Spin(ctx, 42)
//	// err will now contain the injected error
type Repository struct {
	repository.FullRepository

	// ===== User Errors =====
	EnsureUserError      error
	GetUserError         error
	ListUsersError       error
	SetAttemptsUsedError error

	// ===== Gift Errors =====
	ListGiftsError  error
	AddGiftError    error
	DeleteGiftError error

	// ===== Spin Errors =====
	RecordSpinError error
	ListSpinsError  error

	// ===== Settings Errors =====
	GetSettingError error
	SetSettingError error
	GetStatsError   error
	ClearTableError error
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== User Methods =====

func (m *Repository) EnsureUser(ctx context.Context, userID int64) (bool, error) {
	if m.EnsureUserError != nil {
		return false, m.EnsureUserError
	}
	return m.FullRepository.EnsureUser(ctx, userID)
}

func (m *Repository) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	if m.GetUserError != nil {
		return nil, m.GetUserError
	}
	return m.FullRepository.GetUser(ctx, userID)
}

func (m *Repository) ListUsers(ctx context.Context) ([]models.User, error) {
	if m.ListUsersError != nil {
		return nil, m.ListUsersError
	}
	return m.FullRepository.ListUsers(ctx)
}

func (m *Repository) SetAttemptsUsed(ctx context.Context, userID int64, used int) error {
	if m.SetAttemptsUsedError != nil {
		return m.SetAttemptsUsedError
	}
	return m.FullRepository.SetAttemptsUsed(ctx, userID, used)
}

// ===== Gift Methods =====

func (m *Repository) ListGifts(ctx context.Context, userID int64) ([]models.Gift, error) {
	if m.ListGiftsError != nil {
		return nil, m.ListGiftsError
	}
	return m.FullRepository.ListGifts(ctx, userID)
}

func (m *Repository) AddGift(ctx context.Context, userID int64, gift models.Gift) error {
	if m.AddGiftError != nil {
		return m.AddGiftError
	}
	return m.FullRepository.AddGift(ctx, userID, gift)
}

func (m *Repository) DeleteGift(ctx context.Context, userID int64, index int) (*models.Gift, error) {
	if m.DeleteGiftError != nil {
		return nil, m.DeleteGiftError
	}
	return m.FullRepository.DeleteGift(ctx, userID, index)
}

// ===== Spin Methods =====

func (m *Repository) RecordSpin(ctx context.Context, rec models.SpinRecord, wonDate string, maxAttempts int) (int, error) {
	if m.RecordSpinError != nil {
		return 0, m.RecordSpinError
	}
	return m.FullRepository.RecordSpin(ctx, rec, wonDate, maxAttempts)
}

func (m *Repository) ListSpins(ctx context.Context, userID int64, limit int) ([]models.SpinRecord, error) {
	if m.ListSpinsError != nil {
		return nil, m.ListSpinsError
	}
	return m.FullRepository.ListSpins(ctx, userID, limit)
}

// ===== Settings Methods =====

func (m *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	if m.GetSettingError != nil {
		return "", m.GetSettingError
	}
	return m.FullRepository.GetSetting(ctx, key)
}

func (m *Repository) SetSetting(ctx context.Context, key, value string) error {
	if m.SetSettingError != nil {
		return m.SetSettingError
	}
	return m.FullRepository.SetSetting(ctx, key, value)
}

func (m *Repository) GetStats(ctx context.Context) (*models.Stats, error) {
	if m.GetStatsError != nil {
		return nil, m.GetStatsError
	}
	return m.FullRepository.GetStats(ctx)
}

func (m *Repository) ClearTable(ctx context.Context, table string) error {
	if m.ClearTableError != nil {
		return m.ClearTableError
	}
	return m.FullRepository.ClearTable(ctx, table)
}

// Ensure Repository implements FullRepository
var _ repository.FullRepository = (*Repository)(nil)
