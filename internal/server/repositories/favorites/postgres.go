package favorites

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/recipeshare/internal/common"
	"github.com/dmitrijs2005/recipeshare/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Add is idempotent: favoriting twice is not an error.
func (r *PostgresRepository) Add(ctx context.Context, recipeID, profileID string) error {
	query := `INSERT INTO favorites (recipe_id, profile_id) VALUES ($1, $2)`

	if _, err := r.db.ExecContext(ctx, query, recipeID, profileID); err != nil {
		switch {
		case dbx.IsUniqueViolation(err):
			return nil
		case dbx.IsForeignKeyViolation(err):
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Remove(ctx context.Context, recipeID, profileID string) error {
	query := `DELETE FROM favorites WHERE recipe_id = $1 AND profile_id = $2`

	if _, err := r.db.ExecContext(ctx, query, recipeID, profileID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Exists(ctx context.Context, recipeID, profileID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM favorites WHERE recipe_id = $1 AND profile_id = $2)`

	var ok bool
	if err := r.db.QueryRowContext(ctx, query, recipeID, profileID).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}
