package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/recipeshare/internal/common"
	"github.com/dmitrijs2005/recipeshare/internal/logging"
	"github.com/dmitrijs2005/recipeshare/internal/server/models"
	"github.com/dmitrijs2005/recipeshare/internal/server/repositories/repomanager"
)

type FavoriteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewFavoriteService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *FavoriteService {
	return &FavoriteService{db: db, repomanager: m, logger: logger.With("module", "favorites")}
}

// Add marks a live recipe as a favorite of the caller. Adding twice is not an
// error.
func (s *FavoriteService) Add(ctx context.Context, caller Caller, recipeID string) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	if err := validateID(recipeID); err != nil {
		return err
	}
	if _, err := s.repomanager.Recipes(s.db).GetOwnership(ctx, recipeID); err != nil {
		return loadError(err, common.MsgRecipeNotFound)
	}
	if err := s.repomanager.Favorites(s.db).Add(ctx, recipeID, caller.ProfileID); err != nil {
		s.logger.Error(ctx, "add favorite failed", "recipe_id", recipeID, "error", err)
		if isNotFound(err) {
			return common.NewError(common.ErrorNotFound, common.MsgRecipeNotFound)
		}
		return asError(err, common.ErrorPersistence, common.MsgSaveFavorite)
	}
	return nil
}

// Remove is idempotent.
func (s *FavoriteService) Remove(ctx context.Context, caller Caller, recipeID string) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	if err := validateID(recipeID); err != nil {
		return err
	}
	if err := s.repomanager.Favorites(s.db).Remove(ctx, recipeID, caller.ProfileID); err != nil {
		s.logger.Error(ctx, "remove favorite failed", "recipe_id", recipeID, "error", err)
		return asError(err, common.ErrorPersistence, common.MsgSaveFavorite)
	}
	return nil
}

// List returns the caller's live favorite recipes, most recently added first.
func (s *FavoriteService) List(ctx context.Context, caller Caller, page Page) ([]models.RecipeSummary, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	limit, offset, err := page.limitOffset()
	if err != nil {
		return nil, err
	}
	list, err := s.repomanager.Recipes(s.db).List(ctx, models.RecipeFilter{
		FavoritedBy: caller.ProfileID,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return nil, asError(err, common.ErrorInternal, common.MsgLoadData)
	}
	return list, nil
}
