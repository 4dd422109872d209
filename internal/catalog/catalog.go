// Package catalog holds the fixed, ordered, cyclic list of prizes a wheel can land on.
package catalog

import (
	stderrors "errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/abrezinsky/prizewheel/internal/errors"
	"github.com/abrezinsky/prizewheel/internal/models"
)

// ErrUnknownPrize is returned by Lookup when a name is not in the catalog
var ErrUnknownPrize = stderrors.New("unknown prize")

// EmptyName is the display name of the built-in no-win slot
const EmptyName = "Empty"

// Catalog is immutable once built. Index arithmetic wraps modulo Len.
type Catalog struct {
	prizes []models.Prize
	index  map[string]int
}

// file is the on-disk YAML layout
type file struct {
	Prizes []models.Prize `yaml:"prizes"`
}

// New validates prizes and builds a catalog from a copy of them
func New(prizes []models.Prize) (*Catalog, error) {
	if len(prizes) == 0 {
		return nil, errors.Validation("catalog must contain at least one prize")
	}

	c := &Catalog{
		prizes: make([]models.Prize, len(prizes)),
		index:  make(map[string]int, len(prizes)),
	}
	for i, p := range prizes {
		if p.Name == "" {
			return nil, errors.Validationf("prize %d has no name", i)
		}
		if p.StarPrice < 0 {
			return nil, errors.Validationf("prize %q has negative starPrice %d", p.Name, p.StarPrice)
		}
		if _, dup := c.index[p.Name]; dup {
			return nil, errors.Validationf("duplicate prize name %q", p.Name)
		}
		c.prizes[i] = p
		c.index[p.Name] = i
	}
	return c, nil
}

// MustNew is New that panics, for package-level defaults and tests
func MustNew(prizes []models.Prize) *Catalog {
	c, err := New(prizes)
	if err != nil {
		panic(err)
	}
	return c
}

// Parse reads a YAML catalog document
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation, "invalid catalog yaml")
	}
	return New(f.Prizes)
}

// Load reads a YAML catalog file. An empty path yields the default catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Marshal renders the catalog back to YAML
func (c *Catalog) Marshal() ([]byte, error) {
	return yaml.Marshal(file{Prizes: c.Prizes()})
}

// Default returns the built-in catalog
func Default() *Catalog {
	return MustNew([]models.Prize{
		{Name: EmptyName, StarPrice: 0},
		{Name: "Teddy Bear", StarPrice: 15, Img: "/static/img/bear.png"},
		{Name: "Heart", StarPrice: 15, Img: "/static/img/heart.png"},
		{Name: "Gift Box", StarPrice: 25, Img: "/static/img/gift.png"},
		{Name: "Rose", StarPrice: 25, Img: "/static/img/rose.png"},
		{Name: "Cake", StarPrice: 50, Img: "/static/img/cake.png"},
		{Name: "Bouquet", StarPrice: 50, Img: "/static/img/bouquet.png"},
		{Name: "Rocket", StarPrice: 50, Img: "/static/img/rocket.png"},
		{Name: "Trophy", StarPrice: 100, Img: "/static/img/trophy.png"},
		{Name: "Diamond", StarPrice: 100, Img: "/static/img/diamond.png"},
	})
}

// Len returns the number of prizes
func (c *Catalog) Len() int {
	return len(c.prizes)
}

// At returns the prize at i, wrapping in both directions
func (c *Catalog) At(i int) models.Prize {
	n := len(c.prizes)
	return c.prizes[((i%n)+n)%n]
}

// Prizes returns a copy of the ordered prize list
func (c *Catalog) Prizes() []models.Prize {
	out := make([]models.Prize, len(c.prizes))
	copy(out, c.prizes)
	return out
}

// Lookup finds a prize index by exact name match
func (c *Catalog) Lookup(name string) (int, error) {
	i, ok := c.index[name]
	if !ok {
		return -1, fmt.Errorf("%w: %q", ErrUnknownPrize, name)
	}
	return i, nil
}
