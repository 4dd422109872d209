package services

import (
	"context"

	"github.com/skip2/go-qrcode"

	"github.com/abrezinsky/prizewheel/internal/logger"
	"github.com/abrezinsky/prizewheel/internal/repository"
)

// SettingsService handles settings-related business logic
type SettingsService struct {
	log         logger.Logger
	repo        repository.SettingsRepository
	broadcaster Broadcaster
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(log logger.Logger, repo repository.SettingsRepository) *SettingsService {
	return &SettingsService{log: log, repo: repo}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *SettingsService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// IsSpinsOpen checks if the wheel currently accepts spins
func (s *SettingsService) IsSpinsOpen(ctx context.Context) (bool, error) {
	value, err := s.repo.GetSetting(ctx, "spins_open")
	if err != nil {
		if err == repository.ErrNotFound {
			return true, nil // Default to open if setting doesn't exist
		}
		return false, err
	}
	return value != "false", nil
}

// SetSpinsOpen sets the spins open status
func (s *SettingsService) SetSpinsOpen(ctx context.Context, open bool) error {
	value := "false"
	if open {
		value = "true"
	}
	return s.repo.SetSetting(ctx, "spins_open", value)
}

// OpenSpins opens the wheel and broadcasts the status change
func (s *SettingsService) OpenSpins(ctx context.Context) error {
	if err := s.SetSpinsOpen(ctx, true); err != nil {
		return err
	}
	s.broadcast(true)
	return nil
}

// CloseSpins closes the wheel and broadcasts the status change
func (s *SettingsService) CloseSpins(ctx context.Context) error {
	if err := s.SetSpinsOpen(ctx, false); err != nil {
		return err
	}
	s.broadcast(false)
	return nil
}

// GetAppURL returns the public URL of the mini-app page
func (s *SettingsService) GetAppURL(ctx context.Context) (string, error) {
	value, err := s.repo.GetSetting(ctx, "app_url")
	if err != nil {
		if err == repository.ErrNotFound {
			return "", nil // No default - setting not yet configured
		}
		return "", err
	}
	return value, nil
}

// SetAppURL saves the public URL of the mini-app page
func (s *SettingsService) SetAppURL(ctx context.Context, url string) error {
	return s.repo.SetSetting(ctx, "app_url", url)
}

// GetSetting retrieves an arbitrary setting
func (s *SettingsService) GetSetting(ctx context.Context, key string) (string, error) {
	return s.repo.GetSetting(ctx, key)
}

// SetSetting saves an arbitrary setting
func (s *SettingsService) SetSetting(ctx context.Context, key, value string) error {
	return s.repo.SetSetting(ctx, key, value)
}

// AllSettings returns commonly used settings as a map
func (s *SettingsService) AllSettings(ctx context.Context) (map[string]interface{}, error) {
	settings := make(map[string]interface{})

	spinsOpen, _ := s.IsSpinsOpen(ctx)
	settings["spins_open"] = spinsOpen

	appURL, _ := s.GetAppURL(ctx)
	settings["app_url"] = appURL

	return settings, nil
}

// Settings represents application settings for update operations
type Settings struct {
	AppURL    string
	SpinsOpen *bool
}

// UpdateSettings updates multiple settings at once
func (s *SettingsService) UpdateSettings(ctx context.Context, settings Settings) error {
	if settings.AppURL != "" {
		if err := s.SetAppURL(ctx, settings.AppURL); err != nil {
			return err
		}
	}
	if settings.SpinsOpen != nil {
		if *settings.SpinsOpen {
			return s.OpenSpins(ctx)
		}
		return s.CloseSpins(ctx)
	}
	return nil
}

// GenerateAppQR renders the mini-app URL as a PNG QR code
func (s *SettingsService) GenerateAppQR(ctx context.Context) ([]byte, error) {
	appURL, err := s.GetAppURL(ctx)
	if err != nil {
		return nil, err
	}
	if appURL == "" {
		return nil, ErrAppURLNotSet
	}
	return qrcode.Encode(appURL, qrcode.Medium, 256)
}

// ResetTablesResult contains the result of a database reset
type ResetTablesResult struct {
	Tables  []string
	Message string
}

// ValidTables defines which tables can be reset
var ValidTables = map[string]bool{
	"spins": true, "gifts": true, "users": true, "settings": true,
}

// ResetTables validates and resets the specified database tables
func (s *SettingsService) ResetTables(ctx context.Context, tables []string) (*ResetTablesResult, error) {
	if len(tables) == 0 {
		return nil, ErrNoTablesSpecified
	}

	var tablesToReset []string
	for _, table := range tables {
		if !ValidTables[table] {
			return nil, &InvalidTableError{Table: table}
		}
		tablesToReset = append(tablesToReset, table)
	}

	// Clearing users also clears their spin audit log
	if containsTable(tablesToReset, "users") && !containsTable(tablesToReset, "spins") {
		tablesToReset = append([]string{"spins"}, tablesToReset...)
	}

	for _, table := range tablesToReset {
		if err := s.repo.ClearTable(ctx, table); err != nil {
			return nil, err
		}
	}

	s.log.Info("Tables reset", "tables", tablesToReset)
	return &ResetTablesResult{
		Tables:  tablesToReset,
		Message: "Successfully deleted data from tables",
	}, nil
}

func containsTable(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// broadcast sends the spins open status to all connected clients
func (s *SettingsService) broadcast(open bool) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastSpinsStatus(open)
	}
}
