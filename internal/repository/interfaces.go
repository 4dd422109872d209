package repository

import (
	"context"

	"github.com/abrezinsky/prizewheel/internal/models"
)

// UserRepository defines user data operations
type UserRepository interface {
	EnsureUser(ctx context.Context, userID int64) (created bool, err error)
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	SetAttemptsUsed(ctx context.Context, userID int64, used int) error
}

// GiftRepository defines gift inventory operations
type GiftRepository interface {
	ListGifts(ctx context.Context, userID int64) ([]models.Gift, error)
	AddGift(ctx context.Context, userID int64, gift models.Gift) error
	DeleteGift(ctx context.Context, userID int64, index int) (*models.Gift, error)
}

// SpinRepository defines spin audit operations
type SpinRepository interface {
	RecordSpin(ctx context.Context, rec models.SpinRecord, wonDate string, maxAttempts int) (attemptsUsed int, err error)
	ListSpins(ctx context.Context, userID int64, limit int) ([]models.SpinRecord, error)
}

// SettingsRepository defines settings data operations
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	GetStats(ctx context.Context) (*models.Stats, error)
	ClearTable(ctx context.Context, table string) error
}

// FullRepository combines all repository interfaces
// Use this when a service needs access to multiple domains
type FullRepository interface {
	UserRepository
	GiftRepository
	SpinRepository
	SettingsRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
