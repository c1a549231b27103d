package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/recipeshare/internal/common"
	"github.com/dmitrijs2005/recipeshare/internal/server/models"
	"github.com/dmitrijs2005/recipeshare/internal/server/repositories/repomanager"
)

// FeedService serves the read-only listings that are not tied to a single
// recipe: the community photo feed and the tag catalog.
type FeedService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewFeedService(db *sql.DB, m repomanager.RepositoryManager) *FeedService {
	return &FeedService{db: db, repomanager: m}
}

// Photos lists comment images on live recipes, newest first.
func (s *FeedService) Photos(ctx context.Context, page Page) ([]models.Photo, error) {
	limit, offset, err := page.limitOffset()
	if err != nil {
		return nil, err
	}
	list, err := s.repomanager.Comments(s.db).Photos(ctx, limit, offset)
	if err != nil {
		return nil, asError(err, common.ErrorInternal, common.MsgLoadData)
	}
	return list, nil
}

func (s *FeedService) Tags(ctx context.Context) ([]models.Tag, error) {
	list, err := s.repomanager.Tags(s.db).List(ctx)
	if err != nil {
		return nil, asError(err, common.ErrorInternal, common.MsgLoadData)
	}
	return list, nil
}
