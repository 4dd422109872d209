package services

import (
	"context"

	"github.com/abrezinsky/prizewheel/internal/models"
)

// UserServicer defines the interface for player-facing user operations
type UserServicer interface {
	Announce(ctx context.Context, userID int64) (bool, error)
	GetStatus(ctx context.Context, userID int64) (*models.UserStatus, error)
	MaxAttempts() int
}

// SpinServicer defines the interface for spin operations
type SpinServicer interface {
	Spin(ctx context.Context, userID int64) (*models.SpinResult, error)
	Prizes() []models.Prize
	History(ctx context.Context, userID int64, limit int) ([]models.SpinRecord, error)
	SetBroadcaster(b Broadcaster)
}

// AdminServicer defines the interface for admin user management
type AdminServicer interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	ResetAttempts(ctx context.Context, userID int64) error
	AddAttempt(ctx context.Context, userID int64) (int, error)
	AddPrize(ctx context.Context, userID int64, prize models.Prize) (*models.Gift, error)
	RemoveGift(ctx context.Context, userID int64, index int) (*models.Gift, error)
	Stats(ctx context.Context) (*models.Stats, error)
	SetBroadcaster(b Broadcaster)
}

// SettingsServicer defines the interface for settings operations
type SettingsServicer interface {
	IsSpinsOpen(ctx context.Context) (bool, error)
	SetSpinsOpen(ctx context.Context, open bool) error
	OpenSpins(ctx context.Context) error
	CloseSpins(ctx context.Context) error
	GetAppURL(ctx context.Context) (string, error)
	SetAppURL(ctx context.Context, url string) error
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	AllSettings(ctx context.Context) (map[string]interface{}, error)
	UpdateSettings(ctx context.Context, settings Settings) error
	GenerateAppQR(ctx context.Context) ([]byte, error)
	ResetTables(ctx context.Context, tables []string) (*ResetTablesResult, error)
	SetBroadcaster(b Broadcaster)
}

// Broadcaster defines the interface for broadcasting messages to clients
type Broadcaster interface {
	BroadcastUserStatus(userID int64, status models.UserStatus)
	BroadcastSpinsStatus(open bool)
}

// Ensure concrete types implement interfaces
var (
	_ UserServicer     = (*UserService)(nil)
	_ SpinServicer     = (*SpinService)(nil)
	_ AdminServicer    = (*AdminService)(nil)
	_ SettingsServicer = (*SettingsService)(nil)
)
