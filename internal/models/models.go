package models

import "time"

// Prize is a single catalog entry. StarPrice == 0 marks the empty slot.
type Prize struct {
	Name      string `json:"name" yaml:"name"`
	StarPrice int    `json:"starPrice" yaml:"starPrice"`
	Img       string `json:"img,omitempty" yaml:"img,omitempty"`
}

// IsWin reports whether the prize is a real gift rather than the empty slot
func (p Prize) IsWin() bool {
	return p.StarPrice > 0
}

// Gift is a prize owned by a user, stamped with the date it was acquired
type Gift struct {
	Name      string `json:"name"`
	StarPrice int    `json:"starPrice"`
	Img       string `json:"img,omitempty"`
	Date      string `json:"date"`
}

// User is the server-held record for one player
type User struct {
	UserID       int64     `json:"user_id"`
	AttemptsUsed int       `json:"attempts"`
	AttemptsLeft int       `json:"attempts_left"`
	Gifts        []Gift    `json:"gifts"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserStatus is the authoritative snapshot returned to the mini-app
type UserStatus struct {
	AttemptsLeft int    `json:"attempts_left"`
	Gifts        []Gift `json:"gifts"`
}

// SpinResult is the outcome of one spin as declared by the server
type SpinResult struct {
	WonPrize     Prize  `json:"won_prize"`
	AttemptsLeft int    `json:"attempts_left"`
	SpinID       string `json:"spin_id,omitempty"`
}

// SpinRecord is one audited spin
type SpinRecord struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Prize     Prize     `json:"prize"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats summarizes activity for the admin dashboard
type Stats struct {
	Users      int `json:"users"`
	Spins      int `json:"spins"`
	Gifts      int `json:"gifts"`
	StarsSpent int `json:"stars_awarded"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
