package testutil

import (
	"testing"

	"github.com/abrezinsky/prizewheel/internal/catalog"
	"github.com/abrezinsky/prizewheel/internal/models"
	"github.com/abrezinsky/prizewheel/internal/repository"
)

// NewTestRepository creates a new in-memory repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})

	return repo
}

// TestCatalog returns a three-prize catalog with one empty slot
func TestCatalog() *catalog.Catalog {
	return catalog.MustNew([]models.Prize{
		{Name: "Empty", StarPrice: 0},
		{Name: "Rose", StarPrice: 25, Img: "/static/img/rose.png"},
		{Name: "Trophy", StarPrice: 100, Img: "/static/img/trophy.png"},
	})
}
