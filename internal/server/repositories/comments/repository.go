package comments

import (
	"context"

	"github.com/dmitrijs2005/recipeshare/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, comment *models.Comment) (*models.CommentView, error)
	ListByRecipe(ctx context.Context, recipeID string) ([]models.CommentView, error)
	GetAccess(ctx context.Context, id string) (*models.CommentAccess, error)
	SoftDelete(ctx context.Context, id string) error
	Photos(ctx context.Context, limit, offset int) ([]models.Photo, error)
}
