package recipeparts

import (
	"context"

	"github.com/dmitrijs2005/recipeshare/internal/server/models"
)

// Repository stores the dependent record sets of a recipe. Inserts take the
// whole set at once; DeleteAll clears every set so the caller can replace
// them.
type Repository interface {
	InsertIngredients(ctx context.Context, recipeID string, items []models.Ingredient) error
	InsertSteps(ctx context.Context, recipeID string, items []models.Step) error
	InsertNutrition(ctx context.Context, recipeID string, items []models.NutritionFact) error
	InsertTags(ctx context.Context, recipeID string, tagIDs []int64) error
	DeleteAll(ctx context.Context, recipeID string) error

	Ingredients(ctx context.Context, recipeID string) ([]models.Ingredient, error)
	Steps(ctx context.Context, recipeID string) ([]models.Step, error)
	Nutrition(ctx context.Context, recipeID string) ([]models.NutritionFact, error)
	Tags(ctx context.Context, recipeID string) ([]models.Tag, error)
}
