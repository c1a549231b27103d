package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/recipeshare/internal/common"
	"github.com/dmitrijs2005/recipeshare/internal/dbx"
	"github.com/dmitrijs2005/recipeshare/internal/logging"
	"github.com/dmitrijs2005/recipeshare/internal/server/attachments"
	"github.com/dmitrijs2005/recipeshare/internal/server/models"
	"github.com/dmitrijs2005/recipeshare/internal/server/repositories/repomanager"
	"golang.org/x/sync/errgroup"
)

// RecipeService implements recipe writes on top of the attachment protocol
// and the read paths of the recipe pages.
type RecipeService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	protocol    *attachments.Protocol
	logger      logging.Logger
}

func NewRecipeService(db *sql.DB, m repomanager.RepositoryManager, p *attachments.Protocol, logger logging.Logger) *RecipeService {
	return &RecipeService{db: db, repomanager: m, protocol: p, logger: logger.With("module", "recipes")}
}

// ListQuery filters the recipe list. OwnerID, when set, must be a profile id.
type ListQuery struct {
	Search  string
	TagID   int64
	OwnerID string
	Page    Page
}

// Create stores a new recipe with its dependent sets. file is optional; when
// it is nil, in.ImageURL is stored as given.
func (s *RecipeService) Create(ctx context.Context, caller Caller, in RecipeInput, file *attachments.Upload) (string, error) {
	if err := requireCaller(caller); err != nil {
		return "", err
	}
	recipe, parts, err := in.parse()
	if err != nil {
		return "", err
	}
	recipe.OwnerID = caller.ProfileID

	_, err = s.protocol.Run(ctx, attachments.Request{
		File:        file,
		ExistingURL: in.imageURL(),
		Persist: func(ctx context.Context, tx dbx.DBTX, url *string) error {
			recipe.ImageURL = url
			id, err := s.repomanager.Recipes(tx).Create(ctx, &recipe)
			if err != nil {
				return common.NewError(common.ErrorPersistence, common.MsgCreateRecipe, storeMessage(err))
			}
			recipe.ID = id
			return s.insertParts(ctx, tx, id, parts)
		},
	})
	if err != nil {
		s.logger.Error(ctx, "create recipe failed", "owner_id", caller.ProfileID, "error", err)
		return "", asError(err, common.ErrorPersistence, common.MsgCreateRecipe)
	}

	s.logger.Info(ctx, "recipe created", "recipe_id", recipe.ID, "owner_id", caller.ProfileID)
	return recipe.ID, nil
}

// Update replaces a recipe and all of its dependent sets. Ownership is checked
// before the payload is validated. The stored image becomes the new upload,
// the previous image when keepImage is set, or nothing.
func (s *RecipeService) Update(ctx context.Context, caller Caller, recipeID string, in RecipeInput, file *attachments.Upload, keepImage bool) (string, error) {
	current, err := s.authorize(ctx, caller, recipeID)
	if err != nil {
		return "", err
	}

	recipe, parts, err := in.parse()
	if err != nil {
		return "", err
	}
	recipe.ID = recipeID
	recipe.OwnerID = caller.ProfileID

	var existing *string
	if keepImage {
		existing = current.ImageURL
	}

	_, err = s.protocol.Run(ctx, attachments.Request{
		File:        file,
		ExistingURL: existing,
		Persist: func(ctx context.Context, tx dbx.DBTX, url *string) error {
			recipe.ImageURL = url
			if err := s.repomanager.Recipes(tx).Update(ctx, &recipe); err != nil {
				return loadOrPersist(err, common.MsgUpdateRecipe)
			}
			if err := s.repomanager.RecipeParts(tx).DeleteAll(ctx, recipeID); err != nil {
				return common.NewError(common.ErrorPersistence, common.MsgUpdateRecipe, storeMessage(err))
			}
			return s.insertParts(ctx, tx, recipeID, parts)
		},
		AfterCommit: func(ctx context.Context, res attachments.Result) {
			if res.UploadedPath != "" && current.ImageURL != nil {
				s.protocol.RemoveBestEffort(ctx, *current.ImageURL)
			}
		},
	})
	if err != nil {
		s.logger.Error(ctx, "update recipe failed", "recipe_id", recipeID, "error", err)
		return "", asError(err, common.ErrorPersistence, common.MsgUpdateRecipe)
	}

	s.logger.Info(ctx, "recipe updated", "recipe_id", recipeID)
	return recipeID, nil
}

// Authorize reports whether caller may modify the recipe. Handlers call it
// before reading an attached file so that a non-owner is refused with 403
// whatever the payload holds.
func (s *RecipeService) Authorize(ctx context.Context, caller Caller, recipeID string) error {
	_, err := s.authorize(ctx, caller, recipeID)
	return err
}

func (s *RecipeService) authorize(ctx context.Context, caller Caller, recipeID string) (*models.RecipeOwnership, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if recipeID == "" {
		return nil, common.NewError(common.ErrorValidation, common.MsgMissingRecipeID)
	}
	if err := validateID(recipeID); err != nil {
		return nil, err
	}

	current, err := s.repomanager.Recipes(s.db).GetOwnership(ctx, recipeID)
	if err != nil {
		return nil, loadError(err, common.MsgRecipeNotFound)
	}
	if current.OwnerID != caller.ProfileID {
		return nil, common.NewError(common.ErrorForbidden, common.MsgNotRecipeOwner)
	}
	return current, nil
}

func (s *RecipeService) insertParts(ctx context.Context, tx dbx.DBTX, recipeID string, parts models.RecipeParts) error {
	repo := s.repomanager.RecipeParts(tx)
	if err := repo.InsertIngredients(ctx, recipeID, parts.Ingredients); err != nil {
		return common.NewError(common.ErrorPersistence, common.MsgSaveIngredients, storeMessage(err))
	}
	if err := repo.InsertSteps(ctx, recipeID, parts.Steps); err != nil {
		return common.NewError(common.ErrorPersistence, common.MsgSaveSteps, storeMessage(err))
	}
	if err := repo.InsertNutrition(ctx, recipeID, parts.Nutrition); err != nil {
		return common.NewError(common.ErrorPersistence, common.MsgSaveNutrition, storeMessage(err))
	}
	if err := repo.InsertTags(ctx, recipeID, parts.TagIDs); err != nil {
		return common.NewError(common.ErrorPersistence, common.MsgSaveTags, storeMessage(err))
	}
	return nil
}

// Get returns the recipe with every dependent set. viewer may be empty; when
// set, the viewer's favorite flag and own rating are filled in.
func (s *RecipeService) Get(ctx context.Context, recipeID, viewer string) (*models.RecipeDetail, error) {
	if err := validateID(recipeID); err != nil {
		return nil, err
	}

	summary, err := s.repomanager.Recipes(s.db).Get(ctx, recipeID)
	if err != nil {
		return nil, loadError(err, common.MsgRecipeNotFound)
	}
	detail := &models.RecipeDetail{RecipeSummary: *summary}

	parts := s.repomanager.RecipeParts(s.db)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		detail.Ingredients, err = parts.Ingredients(gctx, recipeID)
		return err
	})
	g.Go(func() (err error) {
		detail.Steps, err = parts.Steps(gctx, recipeID)
		return err
	})
	g.Go(func() (err error) {
		detail.Nutrition, err = parts.Nutrition(gctx, recipeID)
		return err
	})
	g.Go(func() (err error) {
		detail.Tags, err = parts.Tags(gctx, recipeID)
		return err
	})
	if viewer != "" {
		g.Go(func() (err error) {
			detail.Favorited, err = s.repomanager.Favorites(s.db).Exists(gctx, recipeID, viewer)
			return err
		})
		g.Go(func() error {
			rs, err := s.repomanager.Ratings(s.db).Summary(gctx, recipeID, viewer)
			detail.MyRating = rs.Mine
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error(ctx, "load recipe failed", "recipe_id", recipeID, "error", err)
		return nil, asError(err, common.ErrorInternal, common.MsgLoadData)
	}
	return detail, nil
}

// List returns live recipes, newest first.
func (s *RecipeService) List(ctx context.Context, q ListQuery) ([]models.RecipeSummary, error) {
	limit, offset, err := q.Page.limitOffset()
	if err != nil {
		return nil, err
	}
	if q.OwnerID != "" {
		if err := validateID(q.OwnerID); err != nil {
			return nil, err
		}
	}
	if q.TagID < 0 {
		return nil, invalidField("tag")
	}

	list, err := s.repomanager.Recipes(s.db).List(ctx, models.RecipeFilter{
		Search:  q.Search,
		TagID:   q.TagID,
		OwnerID: q.OwnerID,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		s.logger.Error(ctx, "list recipes failed", "error", err)
		return nil, asError(err, common.ErrorInternal, common.MsgLoadData)
	}
	return list, nil
}

// Delete soft-deletes a recipe owned by the caller.
func (s *RecipeService) Delete(ctx context.Context, caller Caller, recipeID string) error {
	if _, err := s.authorize(ctx, caller, recipeID); err != nil {
		return err
	}

	if err := s.repomanager.Recipes(s.db).SoftDelete(ctx, recipeID); err != nil {
		s.logger.Error(ctx, "delete recipe failed", "recipe_id", recipeID, "error", err)
		return loadOrPersist(err, common.MsgDeleteRecipe)
	}
	s.logger.Info(ctx, "recipe deleted", "recipe_id", recipeID)
	return nil
}

// loadOrPersist maps a failed write: a row that vanished since the ownership
// check is reported as not found.
func loadOrPersist(err error, format string) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.NewError(common.ErrorNotFound, common.MsgRecipeNotFound)
	}
	return asError(err, common.ErrorPersistence, format)
}
