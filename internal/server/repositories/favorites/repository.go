package favorites

import "context"

// Repository records which profiles favorited which recipes. Listing the
// favorites goes through the recipes repository so the soft-delete filter
// applies.
type Repository interface {
	Add(ctx context.Context, recipeID, profileID string) error
	Remove(ctx context.Context, recipeID, profileID string) error
	Exists(ctx context.Context, recipeID, profileID string) (bool, error)
}
