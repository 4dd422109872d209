package strip_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abrezinsky/prizewheel/internal/catalog"
	"github.com/abrezinsky/prizewheel/internal/models"
	"github.com/abrezinsky/prizewheel/internal/strip"
)

func scenarioCatalog() *catalog.Catalog {
	return catalog.MustNew([]models.Prize{
		{Name: "Empty", StarPrice: 0},
		{Name: "A", StarPrice: 10},
		{Name: "B", StarPrice: 20},
	})
}

func catalogOf(n int) *catalog.Catalog {
	prizes := make([]models.Prize, n)
	for i := range prizes {
		prizes[i] = models.Prize{Name: string(rune('a' + i)), StarPrice: i}
	}
	return catalog.MustNew(prizes)
}

func TestBuild_ScenarioA(t *testing.T) {
	c := scenarioCatalog()

	idx, err := c.Lookup("B")
	require.NoError(t, err)
	require.Equal(t, 2, idx)

	tiles, totalSteps, err := strip.Build(c, idx, 5, 3)
	require.NoError(t, err)
	assert.Equal(t, 17, totalSteps)
	assert.Len(t, tiles, 22)
	assert.Equal(t, "B", tiles[17].Name)
}

func TestBuild_LandsOnWinner(t *testing.T) {
	for n := 1; n <= 7; n++ {
		c := catalogOf(n)
		for idx := 0; idx < n; idx++ {
			for rounds := 1; rounds <= 6; rounds++ {
				for visible := 0; visible <= 9; visible++ {
					tiles, totalSteps, err := strip.Build(c, idx, rounds, visible)
					require.NoError(t, err)
					require.Equal(t, c.At(idx), tiles[totalSteps],
						"n=%d idx=%d rounds=%d visible=%d", n, idx, rounds, visible)
					require.Len(t, tiles, totalSteps+visible+strip.EdgePadding)
				}
			}
		}
	}
}

func TestBuild_IsCyclic(t *testing.T) {
	c := scenarioCatalog()
	tiles, _, err := strip.Build(c, 1, 3, 4)
	require.NoError(t, err)

	for i, tile := range tiles {
		assert.Equal(t, c.At(i%c.Len()), tile, "tile %d", i)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	c := catalog.Default()

	first, steps1, err := strip.Build(c, 4, 5, 7)
	require.NoError(t, err)
	second, steps2, err := strip.Build(c, 4, 5, 7)
	require.NoError(t, err)

	assert.Equal(t, steps1, steps2)
	assert.Equal(t, first, second)

	// Mutating a result must not leak into later builds
	first[0].Name = "mutated"
	third, _, err := strip.Build(c, 4, 5, 7)
	require.NoError(t, err)
	assert.Equal(t, second, third)
}

func TestBuild_InvalidInputs(t *testing.T) {
	c := scenarioCatalog()

	_, _, err := strip.Build(c, 0, 0, 3)
	assert.ErrorIs(t, err, strip.ErrInvalidRounds)

	_, _, err = strip.Build(c, 3, 5, 3)
	assert.ErrorIs(t, err, strip.ErrInvalidIndex)

	_, _, err = strip.Build(c, -1, 5, 3)
	assert.ErrorIs(t, err, strip.ErrInvalidIndex)

	_, _, err = strip.Build(c, 0, 5, -1)
	assert.ErrorIs(t, err, strip.ErrInvalidVisible)
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 1440.0, strip.Offset(17, 1, 90))
	assert.Equal(t, 0.0, strip.Offset(0, 0, 90))
	assert.Equal(t, 17*90.5, strip.Offset(17, 0, 90.5))
}

func TestGeometry_Validate(t *testing.T) {
	tests := []struct {
		name string
		g    strip.Geometry
		ok   bool
	}{
		{"normal", strip.Geometry{TileWidth: 90, ViewportWidth: 320}, true},
		{"narrow viewport", strip.Geometry{TileWidth: 90, ViewportWidth: 40}, true},
		{"zero viewport", strip.Geometry{TileWidth: 90, ViewportWidth: 0}, true},
		{"zero tile", strip.Geometry{TileWidth: 0, ViewportWidth: 320}, false},
		{"negative tile", strip.Geometry{TileWidth: -3, ViewportWidth: 320}, false},
		{"NaN tile", strip.Geometry{TileWidth: math.NaN(), ViewportWidth: 320}, false},
		{"Inf tile", strip.Geometry{TileWidth: math.Inf(1), ViewportWidth: 320}, false},
		{"negative viewport", strip.Geometry{TileWidth: 90, ViewportWidth: -1}, false},
		{"Inf viewport", strip.Geometry{TileWidth: 90, ViewportWidth: math.Inf(1)}, false},
		{"at max visible", strip.Geometry{TileWidth: 1, ViewportWidth: strip.MaxVisibleTiles}, true},
		{"too many visible", strip.Geometry{TileWidth: 1, ViewportWidth: strip.MaxVisibleTiles + 1}, false},
		{"tiny tile", strip.Geometry{TileWidth: 1e-300, ViewportWidth: 1000}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.g.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, strip.ErrInvalidGeometry), "got %v", err)
			}
		})
	}
}

func TestNewLayout(t *testing.T) {
	c := scenarioCatalog()
	// 290 / 90 floors to 3 visible tiles, center slot 1
	l, err := strip.NewLayout(c, 2, 5, strip.Geometry{TileWidth: 90, ViewportWidth: 290})
	require.NoError(t, err)

	assert.Equal(t, 3, l.VisibleTileCount)
	assert.Equal(t, 1, l.CenterIndex)
	assert.Equal(t, 17, l.TotalSteps)
	assert.Len(t, l.Tiles, 22)
	assert.Equal(t, 16*90.0, l.Offset)
	assert.Equal(t, "B", l.Landing().Name)

	tr := l.Transition()
	assert.Equal(t, l.Offset, tr.Offset)
	assert.Equal(t, 5*time.Second, tr.Duration)
}

func TestNewLayout_DegenerateViewport(t *testing.T) {
	c := scenarioCatalog()
	l, err := strip.NewLayout(c, 1, 3, strip.Geometry{TileWidth: 90, ViewportWidth: 50})
	require.NoError(t, err)

	assert.Equal(t, 0, l.VisibleTileCount)
	assert.Equal(t, 0, l.CenterIndex)
	assert.Equal(t, float64(l.TotalSteps)*90, l.Offset)
	assert.Len(t, l.Tiles, l.TotalSteps+strip.EdgePadding)
	assert.Equal(t, "A", l.Landing().Name)
}

func TestNewLayout_BadGeometry(t *testing.T) {
	_, err := strip.NewLayout(scenarioCatalog(), 0, 5, strip.Geometry{TileWidth: 0, ViewportWidth: 300})
	assert.ErrorIs(t, err, strip.ErrInvalidGeometry)
}

func TestIdleLayout(t *testing.T) {
	c := scenarioCatalog()
	l, err := strip.IdleLayout(c, strip.Geometry{TileWidth: 10, ViewportWidth: 50})
	require.NoError(t, err)

	assert.Equal(t, 9, l.TotalSteps)
	assert.Len(t, l.Tiles, 9+5+2)
	assert.Zero(t, l.Offset)
}

func TestMeasurerFunc(t *testing.T) {
	var m strip.Measurer = strip.MeasurerFunc(func() (strip.Geometry, error) {
		return strip.Geometry{TileWidth: 12, ViewportWidth: 80}, nil
	})
	g, err := m.Measure()
	require.NoError(t, err)
	assert.Equal(t, 6, g.VisibleTileCount())
}
