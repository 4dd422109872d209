// Package strip computes the finite tile sequence and pixel translation that make a
// spin animation stop exactly on a server-declared prize.
//
// For a catalog of n prizes and a winning index w the strip is
//
//	totalSteps = rounds*n + w
//	tiles      = catalog repeated cyclically, truncated to totalSteps + visible + 2
//	offset     = (totalSteps - floor(visible/2)) * tileWidth
//
// so tiles[totalSteps] is the winning prize and it sits in the viewport's center slot
// once the strip has been translated left by offset.
package strip

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/abrezinsky/prizewheel/internal/catalog"
	"github.com/abrezinsky/prizewheel/internal/models"
)

const (
	// DefaultRounds is the number of full loops a spin makes before landing
	DefaultRounds = 5
	// IdleRounds is used for the strip shown before the first spin
	IdleRounds = 3
	// EdgePadding is the number of extra tiles past the visible tail
	EdgePadding = 2
	// SpinDuration is the length of the landing transition
	SpinDuration = 5 * time.Second
	// MaxVisibleTiles bounds viewport / tile so the strip length stays allocatable
	MaxVisibleTiles = 1 << 16
)

var (
	ErrInvalidGeometry = errors.New("invalid geometry")
	ErrInvalidRounds   = errors.New("rounds must be at least 1")
	ErrInvalidIndex    = errors.New("winning index out of range")
	ErrInvalidVisible  = errors.New("visible tile count must not be negative")
)

// Geometry is one measurement of the rendered layout, in pixels (or columns)
type Geometry struct {
	TileWidth     float64 // one tile including horizontal margins
	ViewportWidth float64
}

// Measurer reports the current rendered geometry. Implementations must measure the
// live layout on every call; callers never cache the result across spins.
type Measurer interface {
	Measure() (Geometry, error)
}

// MeasurerFunc adapts a function to Measurer
type MeasurerFunc func() (Geometry, error)

func (f MeasurerFunc) Measure() (Geometry, error) { return f() }

// Validate rejects tile widths that are zero, negative or non-finite, and tiles so
// narrow that more than MaxVisibleTiles fit. A viewport narrower than one tile is
// accepted: the center slot degenerates to the left edge.
func (g Geometry) Validate() error {
	if g.TileWidth <= 0 || math.IsNaN(g.TileWidth) || math.IsInf(g.TileWidth, 0) {
		return fmt.Errorf("%w: tile width %v", ErrInvalidGeometry, g.TileWidth)
	}
	if g.ViewportWidth < 0 || math.IsNaN(g.ViewportWidth) || math.IsInf(g.ViewportWidth, 0) {
		return fmt.Errorf("%w: viewport width %v", ErrInvalidGeometry, g.ViewportWidth)
	}
	if visible := g.ViewportWidth / g.TileWidth; visible > MaxVisibleTiles {
		return fmt.Errorf("%w: %v tiles of width %v fit the viewport", ErrInvalidGeometry, visible, g.TileWidth)
	}
	return nil
}

// VisibleTileCount is floor(viewport / tile)
func (g Geometry) VisibleTileCount() int {
	return int(math.Floor(g.ViewportWidth / g.TileWidth))
}

// CenterIndex is the viewport slot the winning tile lands in
func CenterIndex(visibleTileCount int) int {
	return visibleTileCount / 2
}

// TotalSteps is the strip index of the winning tile
func TotalSteps(catalogLen, winningIndex, rounds int) int {
	return rounds*catalogLen + winningIndex
}

// Build materializes the tile sequence for one spin. It is pure: identical inputs
// always produce an identical sequence and step count.
func Build(c *catalog.Catalog, winningIndex, rounds, visibleTileCount int) ([]models.Prize, int, error) {
	if rounds < 1 {
		return nil, 0, ErrInvalidRounds
	}
	if winningIndex < 0 || winningIndex >= c.Len() {
		return nil, 0, fmt.Errorf("%w: %d (catalog has %d)", ErrInvalidIndex, winningIndex, c.Len())
	}
	if visibleTileCount < 0 {
		return nil, 0, ErrInvalidVisible
	}

	totalSteps := TotalSteps(c.Len(), winningIndex, rounds)
	length := totalSteps + visibleTileCount + EdgePadding

	tiles := make([]models.Prize, length)
	for i := range tiles {
		tiles[i] = c.At(i)
	}
	return tiles, totalSteps, nil
}

// Offset is the leftward translation that centers tiles[totalSteps]
func Offset(totalSteps, centerIndex int, tileWidth float64) float64 {
	return float64(totalSteps-centerIndex) * tileWidth
}

// Layout is everything the presentation layer needs for one spin. It is built when the
// outcome is known and discarded once the transition completes.
type Layout struct {
	TileWidth        float64
	VisibleTileCount int
	CenterIndex      int
	TotalSteps       int
	Tiles            []models.Prize
	Offset           float64
}

// NewLayout validates geometry and builds the strip and offset for winningIndex
func NewLayout(c *catalog.Catalog, winningIndex, rounds int, g Geometry) (*Layout, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	visible := g.VisibleTileCount()
	tiles, totalSteps, err := Build(c, winningIndex, rounds, visible)
	if err != nil {
		return nil, err
	}
	center := CenterIndex(visible)

	return &Layout{
		TileWidth:        g.TileWidth,
		VisibleTileCount: visible,
		CenterIndex:      center,
		TotalSteps:       totalSteps,
		Tiles:            tiles,
		Offset:           Offset(totalSteps, center, g.TileWidth),
	}, nil
}

// IdleLayout is the strip shown before any spin, resting at translation zero
func IdleLayout(c *catalog.Catalog, g Geometry) (*Layout, error) {
	l, err := NewLayout(c, 0, IdleRounds, g)
	if err != nil {
		return nil, err
	}
	l.Offset = 0
	return l, nil
}

// Landing returns the tile the animation stops on
func (l *Layout) Landing() models.Prize {
	return l.Tiles[l.TotalSteps]
}

// Transition returns the eased transform for this layout
func (l *Layout) Transition() Transition {
	return Transition{Offset: l.Offset, Duration: SpinDuration, Easing: SpinEasing}
}
