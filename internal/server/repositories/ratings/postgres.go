package ratings

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/recipeshare/internal/common"
	"github.com/dmitrijs2005/recipeshare/internal/dbx"
	"github.com/dmitrijs2005/recipeshare/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert stores one rating per (recipe, profile). A foreign key violation
// means the recipe vanished and is reported as common.ErrorNotFound.
func (r *PostgresRepository) Upsert(ctx context.Context, rating models.Rating) error {
	query :=
		`INSERT INTO ratings (recipe_id, profile_id, stars)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (recipe_id, profile_id) DO UPDATE SET stars = EXCLUDED.stars, updated_at = now()
		 `

	if _, err := r.db.ExecContext(ctx, query, rating.RecipeID, rating.ProfileID, rating.Stars); err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Summary aggregates the ratings of a recipe. viewerID may be empty, in which
// case Mine stays nil.
func (r *PostgresRepository) Summary(ctx context.Context, recipeID, viewerID string) (models.RatingSummary, error) {
	query :=
		`SELECT COALESCE(ROUND(AVG(stars)::numeric, 2), 0)::float8,
			COUNT(*),
			MAX(stars) FILTER (WHERE profile_id::text = $2)
		 FROM ratings
		 WHERE recipe_id = $1
		 `

	var (
		s    models.RatingSummary
		mine sql.NullInt64
	)
	if err := r.db.QueryRowContext(ctx, query, recipeID, viewerID).Scan(&s.Average, &s.Count, &mine); err != nil {
		return models.RatingSummary{}, fmt.Errorf("db error: %w", err)
	}
	if mine.Valid {
		v := int(mine.Int64)
		s.Mine = &v
	}
	return s, nil
}
