package spinner

import (
	"errors"
	"fmt"

	"github.com/abrezinsky/prizewheel/internal/catalog"
	"github.com/abrezinsky/prizewheel/internal/strip"
)

// Trigger rejections. None of them touch the session or the network.
var (
	ErrNoAttempts   = errors.New("no attempts left")
	ErrSpinInFlight = errors.New("a spin is already in progress")
	ErrDisabled     = errors.New("spinning is disabled for this session")
	ErrNotStarted   = errors.New("session has not been started")
)

// IdentityError means the host supplied no usable user identifier. It is fatal
// to the session: the machine stays Disabled until it is recreated.
type IdentityError struct {
	UserID int64
}

func (e *IdentityError) Error() string {
	return fmt.Sprintf("invalid user id %d: the wheel must be opened with a positive user id", e.UserID)
}

// GeometryError means the tile measurement could not be used. The spin is
// aborted before the authority is contacted.
type GeometryError struct {
	Geometry strip.Geometry
	Err      error
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("cannot lay out strip (tile %v, viewport %v): %v",
		e.Geometry.TileWidth, e.Geometry.ViewportWidth, e.Err)
}

func (e *GeometryError) Unwrap() error { return e.Err }

// TransportError wraps a failed call to the outcome authority
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UnknownPrizeError means the authority declared a prize the local catalog
// does not contain
type UnknownPrizeError struct {
	Name string
}

func (e *UnknownPrizeError) Error() string {
	return fmt.Sprintf("server returned unknown prize %q", e.Name)
}

func (e *UnknownPrizeError) Unwrap() error { return catalog.ErrUnknownPrize }
