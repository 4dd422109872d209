package services

import "fmt"

// Service errors
var (
	ErrInvalidUserID       = &ServiceError{Message: "user_id must be a positive integer"}
	ErrUserNotFound        = &ServiceError{Message: "User not found"}
	ErrNoAttemptsLeft      = &ServiceError{Message: "No attempts left"}
	ErrMaxAttempts         = &ServiceError{Message: "User already has maximum attempts"}
	ErrInvalidGiftIndex    = &ServiceError{Message: "gift_index must be non-negative"}
	ErrGiftIndexOutOfRange = &ServiceError{Message: "Gift index out of range"}
	ErrInvalidPrize        = &ServiceError{Message: "Invalid prize format"}
	ErrSpinsClosed         = &ServiceError{Message: "spins are currently closed"}
	ErrAppURLNotSet        = &ServiceError{Message: "app URL is not configured"}
	ErrNoTablesSpecified   = &ServiceError{Message: "no tables specified"}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// InvalidTableError represents an invalid table name error
type InvalidTableError struct {
	Table string
}

func (e *InvalidTableError) Error() string {
	return fmt.Sprintf("invalid table name: %s", e.Table)
}

func validateUserID(userID int64) error {
	if userID <= 0 {
		return ErrInvalidUserID
	}
	return nil
}

// attemptsLeft never goes below zero, even if max_attempts was lowered after spins were used
func attemptsLeft(maxAttempts, used int) int {
	if left := maxAttempts - used; left > 0 {
		return left
	}
	return 0
}
