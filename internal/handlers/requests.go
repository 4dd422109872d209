package handlers

import (
	"strconv"
	"strings"

	"github.com/abrezinsky/prizewheel/internal/models"
)

// UserIDField accepts user_id as a JSON number or a numeric string, the way
// the mini-app and admin page send it. Validation happens in parseUserID.
type UserIDField string

// UnmarshalJSON keeps the raw text so the handler can report a precise error
func (f *UserIDField) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = ""
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
	}
	*f = UserIDField(s)
	return nil
}

// UserRequest identifies the player for announce, spin and most admin actions
type UserRequest struct {
	UserID UserIDField `json:"user_id"`
}

// AddPrizeRequest represents a request to grant a prize manually
type AddPrizeRequest struct {
	UserID UserIDField   `json:"user_id"`
	Prize  *models.Prize `json:"prize"`
}

// RemoveGiftRequest represents a request to delete one gift by position
type RemoveGiftRequest struct {
	UserID    UserIDField `json:"user_id"`
	GiftIndex *int        `json:"gift_index"`
}

// SpinsStatusRequest represents a request to open or close the wheel
type SpinsStatusRequest struct {
	Open bool `json:"open"`
}

// SettingsUpdateRequest represents a request to update settings
type SettingsUpdateRequest struct {
	AppURL    string `json:"app_url"`
	SpinsOpen *bool  `json:"spins_open"`
}

// DatabaseResetRequest represents a request to reset database tables
type DatabaseResetRequest struct {
	Tables []string `json:"tables"`
}
