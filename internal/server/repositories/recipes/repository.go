package recipes

import (
	"context"

	"github.com/dmitrijs2005/recipeshare/internal/server/models"
)

// Repository persists recipe parent records. Every read ignores soft-deleted
// rows.
type Repository interface {
	Create(ctx context.Context, recipe *models.Recipe) (string, error)
	Update(ctx context.Context, recipe *models.Recipe) error
	GetOwnership(ctx context.Context, id string) (*models.RecipeOwnership, error)
	Get(ctx context.Context, id string) (*models.RecipeSummary, error)
	List(ctx context.Context, filter models.RecipeFilter) ([]models.RecipeSummary, error)
	SoftDelete(ctx context.Context, id string) error
}
