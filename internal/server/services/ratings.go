package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/recipeshare/internal/common"
	"github.com/dmitrijs2005/recipeshare/internal/logging"
	"github.com/dmitrijs2005/recipeshare/internal/server/models"
	"github.com/dmitrijs2005/recipeshare/internal/server/repositories/repomanager"
)

const (
	MinStars = 1
	MaxStars = 5
)

type RatingService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewRatingService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *RatingService {
	return &RatingService{db: db, repomanager: m, logger: logger.With("module", "ratings")}
}

// Rate sets the caller's rating of a recipe, replacing an earlier one, and
// returns the updated summary.
func (s *RatingService) Rate(ctx context.Context, caller Caller, recipeID string, stars int) (models.RatingSummary, error) {
	if err := requireCaller(caller); err != nil {
		return models.RatingSummary{}, err
	}
	if err := validateID(recipeID); err != nil {
		return models.RatingSummary{}, err
	}
	if stars < MinStars || stars > MaxStars {
		return models.RatingSummary{}, common.NewError(common.ErrorValidation, common.MsgInvalidStars)
	}
	if _, err := s.repomanager.Recipes(s.db).GetOwnership(ctx, recipeID); err != nil {
		return models.RatingSummary{}, loadError(err, common.MsgRecipeNotFound)
	}

	err := s.repomanager.Ratings(s.db).Upsert(ctx, models.Rating{RecipeID: recipeID, ProfileID: caller.ProfileID, Stars: stars})
	if err != nil {
		s.logger.Error(ctx, "save rating failed", "recipe_id", recipeID, "error", err)
		if isNotFound(err) {
			return models.RatingSummary{}, common.NewError(common.ErrorNotFound, common.MsgRecipeNotFound)
		}
		return models.RatingSummary{}, asError(err, common.ErrorPersistence, common.MsgSaveRating)
	}
	return s.Summary(ctx, recipeID, caller.ProfileID)
}

// Summary returns the average and count of a recipe's ratings. viewer may be
// empty.
func (s *RatingService) Summary(ctx context.Context, recipeID, viewer string) (models.RatingSummary, error) {
	if err := validateID(recipeID); err != nil {
		return models.RatingSummary{}, err
	}
	rs, err := s.repomanager.Ratings(s.db).Summary(ctx, recipeID, viewer)
	if err != nil {
		return models.RatingSummary{}, asError(err, common.ErrorInternal, common.MsgLoadData)
	}
	return rs, nil
}
