package ratings

import (
	"context"

	"github.com/dmitrijs2005/recipeshare/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, rating models.Rating) error
	Summary(ctx context.Context, recipeID, viewerID string) (models.RatingSummary, error)
}
