package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dmitrijs2005/recipeshare/internal/common"
	"github.com/dmitrijs2005/recipeshare/internal/dbx"
	"github.com/dmitrijs2005/recipeshare/internal/logging"
	"github.com/dmitrijs2005/recipeshare/internal/server/attachments"
	"github.com/dmitrijs2005/recipeshare/internal/server/models"
	"github.com/dmitrijs2005/recipeshare/internal/server/repositories/repomanager"
)

type CommentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	protocol    *attachments.Protocol
	logger      logging.Logger
}

func NewCommentService(db *sql.DB, m repomanager.RepositoryManager, p *attachments.Protocol, logger logging.Logger) *CommentService {
	return &CommentService{db: db, repomanager: m, protocol: p, logger: logger.With("module", "comments")}
}

// Create posts a comment with an optional image on a live recipe.
func (s *CommentService) Create(ctx context.Context, caller Caller, recipeID, content string, file *attachments.Upload) (*models.CommentView, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if recipeID == "" || content == "" {
		return nil, common.NewError(common.ErrorValidation, common.MsgMissingFields)
	}
	if err := validateID(recipeID); err != nil {
		return nil, err
	}
	if _, err := s.repomanager.Recipes(s.db).GetOwnership(ctx, recipeID); err != nil {
		return nil, loadError(err, common.MsgRecipeNotFound)
	}

	var view *models.CommentView
	_, err := s.protocol.Run(ctx, attachments.Request{
		File: file,
		Persist: func(ctx context.Context, tx dbx.DBTX, url *string) (err error) {
			view, err = s.repomanager.Comments(tx).Create(ctx, &models.Comment{
				RecipeID:  recipeID,
				ProfileID: caller.ProfileID,
				Content:   content,
				ImageURL:  url,
			})
			if err != nil {
				return common.NewError(common.ErrorPersistence, common.MsgCreateComment, storeMessage(err))
			}
			return nil
		},
	})
	if err != nil {
		s.logger.Error(ctx, "create comment failed", "recipe_id", recipeID, "error", err)
		return nil, asError(err, common.ErrorPersistence, common.MsgCreateComment)
	}

	s.logger.Info(ctx, "comment created", "comment_id", view.ID, "recipe_id", recipeID)
	return view, nil
}

// ListByRecipe returns the live comments of a recipe, oldest first.
func (s *CommentService) ListByRecipe(ctx context.Context, recipeID string) ([]models.CommentView, error) {
	if err := validateID(recipeID); err != nil {
		return nil, err
	}
	if _, err := s.repomanager.Recipes(s.db).GetOwnership(ctx, recipeID); err != nil {
		return nil, loadError(err, common.MsgRecipeNotFound)
	}
	list, err := s.repomanager.Comments(s.db).ListByRecipe(ctx, recipeID)
	if err != nil {
		return nil, asError(err, common.ErrorInternal, common.MsgLoadData)
	}
	return list, nil
}

// Delete soft-deletes a comment. Its author and the recipe owner may do so.
// The image stays in the bucket.
func (s *CommentService) Delete(ctx context.Context, caller Caller, commentID string) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	if err := validateID(commentID); err != nil {
		return err
	}

	access, err := s.repomanager.Comments(s.db).GetAccess(ctx, commentID)
	if err != nil {
		return loadError(err, common.MsgCommentNotFound)
	}
	if caller.ProfileID != access.AuthorID && caller.ProfileID != access.RecipeOwnerID {
		return common.NewError(common.ErrorForbidden, common.MsgForbidden)
	}

	if err := s.repomanager.Comments(s.db).SoftDelete(ctx, commentID); err != nil {
		s.logger.Error(ctx, "delete comment failed", "comment_id", commentID, "error", err)
		if isNotFound(err) {
			return common.NewError(common.ErrorNotFound, common.MsgCommentNotFound)
		}
		return asError(err, common.ErrorPersistence, common.MsgDeleteComment)
	}
	s.logger.Info(ctx, "comment deleted", "comment_id", commentID, "by", caller.ProfileID)
	return nil
}
