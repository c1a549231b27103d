package tags

import (
	"context"

	"github.com/dmitrijs2005/recipeshare/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]models.Tag, error)
}
