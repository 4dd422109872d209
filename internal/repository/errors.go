package repository

import "errors"

// ErrNotFound is returned when a requested record is not found in the repository.
// This abstracts away the underlying storage implementation (SQL, NoSQL, etc.)
// from the service layer.
var ErrNotFound = errors.New("record not found")

// ErrAttemptsExhausted is returned by RecordSpin when the user has no attempts
// left. Nothing is written in that case.
var ErrAttemptsExhausted = errors.New("attempts exhausted")

// ErrInvalidTable is returned by ClearTable for a table outside the whitelist
var ErrInvalidTable = errors.New("invalid table name")
