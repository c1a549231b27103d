package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/recipeshare/internal/dbx"
	"github.com/dmitrijs2005/recipeshare/internal/server/repositories/comments"
	"github.com/dmitrijs2005/recipeshare/internal/server/repositories/favorites"
	"github.com/dmitrijs2005/recipeshare/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/recipeshare/internal/server/repositories/ratings"
	"github.com/dmitrijs2005/recipeshare/internal/server/repositories/recipeparts"
	"github.com/dmitrijs2005/recipeshare/internal/server/repositories/recipes"
	"github.com/dmitrijs2005/recipeshare/internal/server/repositories/tags"
)

// RepositoryManager hands out repositories bound to a DBTX, so services can
// use the same code against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Profiles(db dbx.DBTX) profiles.Repository
	Recipes(db dbx.DBTX) recipes.Repository
	RecipeParts(db dbx.DBTX) recipeparts.Repository
	Comments(db dbx.DBTX) comments.Repository
	Ratings(db dbx.DBTX) ratings.Repository
	Favorites(db dbx.DBTX) favorites.Repository
	Tags(db dbx.DBTX) tags.Repository
}
