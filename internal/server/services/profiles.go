package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/recipeshare/internal/common"
	"github.com/dmitrijs2005/recipeshare/internal/logging"
	"github.com/dmitrijs2005/recipeshare/internal/server/auth"
	"github.com/dmitrijs2005/recipeshare/internal/server/models"
	"github.com/dmitrijs2005/recipeshare/internal/server/repositories/repomanager"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const profileCacheSize = 4096

// ProfileService maps identities from the token provider to internal profile
// ids, creating the profile on first sight.
type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       *expirable.LRU[string, string]
	logger      logging.Logger
}

// NewProfileService caches resolved ids for ttl. A zero ttl disables caching.
func NewProfileService(db *sql.DB, m repomanager.RepositoryManager, ttl time.Duration, logger logging.Logger) *ProfileService {
	s := &ProfileService{db: db, repomanager: m, logger: logger.With("module", "profiles")}
	if ttl > 0 {
		s.cache = expirable.NewLRU[string, string](profileCacheSize, nil, ttl)
	}
	return s
}

// Resolve returns the profile id of the identity, upserting the profile's
// public fields when it is not cached.
func (s *ProfileService) Resolve(ctx context.Context, id auth.Identity) (string, error) {
	if id.ExternalID == "" {
		return "", common.NewError(common.ErrorUnauthorized, common.MsgUnauthorized)
	}
	if s.cache != nil {
		if profileID, ok := s.cache.Get(id.ExternalID); ok {
			return profileID, nil
		}
	}

	profileID, err := s.repomanager.Profiles(s.db).Upsert(ctx, &models.Profile{
		ExternalID: id.ExternalID,
		Email:      id.Email,
		Name:       id.Name,
		PictureURL: id.PictureURL,
	})
	if err != nil {
		s.logger.Error(ctx, "profile upsert failed", "external_id", id.ExternalID, "error", err)
		return "", common.NewError(common.ErrorInternal, common.MsgProfileSync, storeMessage(err))
	}

	if s.cache != nil {
		s.cache.Add(id.ExternalID, profileID)
	}
	return profileID, nil
}
