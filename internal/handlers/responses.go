package handlers

import "github.com/abrezinsky/prizewheel/internal/models"

// AnnounceResponse is the response for POST /api/user
type AnnounceResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HealthResponse is the response for GET /health
type HealthResponse struct {
	Status string `json:"status"`
}

// ActionResponse is the response for admin mutations
type ActionResponse struct {
	Success  bool         `json:"success"`
	Message  string       `json:"message"`
	Attempts *int         `json:"attempts,omitempty"`
	Gift     *models.Gift `json:"gift,omitempty"`
}

// SpinsStatusResponse is the response for opening or closing the wheel
type SpinsStatusResponse struct {
	Open bool `json:"open"`
}

// SettingsResponse is the response for settings
type SettingsResponse struct {
	AppURL      string `json:"app_url"`
	SpinsOpen   bool   `json:"spins_open"`
	MaxAttempts int    `json:"max_attempts"`
}

// ResetResponse is the response for a database reset
type ResetResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Tables  []string `json:"tables"`
}
