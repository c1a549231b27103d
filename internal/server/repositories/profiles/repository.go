package profiles

import (
	"context"

	"github.com/dmitrijs2005/recipeshare/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, profile *models.Profile) (string, error)
	GetByID(ctx context.Context, id string) (*models.Profile, error)
}
