package comments

import (
	"context"
	"database/sql"
	"errors"
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

// Create inserts the comment and returns it joined with its author's public
// profile fields in the same round trip.
func (r *PostgresRepository) Create(ctx context.Context, comment *models.Comment) (*models.CommentView, error) {
	query :=
		`WITH ins AS (
			INSERT INTO comments (recipe_id, profile_id, content, image_url)
			VALUES ($1, $2, $3, $4)
			RETURNING id, recipe_id, profile_id, content, image_url, created_at
		 )
		 SELECT ins.id, ins.recipe_id, ins.profile_id, ins.content, ins.image_url, ins.created_at,
			p.name, p.picture_url
		 FROM ins JOIN profiles p ON p.id = ins.profile_id
		 `

	v := &models.CommentView{}
	err := r.db.QueryRowContext(ctx, query,
		comment.RecipeID, comment.ProfileID, comment.Content, comment.ImageURL,
	).Scan(&v.ID, &v.RecipeID, &v.ProfileID, &v.Content, &v.ImageURL, &v.CreatedAt, &v.AuthorName, &v.AuthorPicture)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

// ListByRecipe returns live comments of a recipe, oldest first.
func (r *PostgresRepository) ListByRecipe(ctx context.Context, recipeID string) ([]models.CommentView, error) {
	query :=
		`SELECT c.id, c.recipe_id, c.profile_id, c.content, c.image_url, c.created_at, p.name, p.picture_url
		 FROM comments c JOIN profiles p ON p.id = c.profile_id
		 WHERE c.recipe_id = $1 AND c.is_deleted = false
		 ORDER BY c.created_at ASC
		 `

	rows, err := r.db.QueryContext(ctx, query, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to select comments: %w", err)
	}
	defer rows.Close()

	result := []models.CommentView{}
	for rows.Next() {
		var v models.CommentView
		if err := rows.Scan(&v.ID, &v.RecipeID, &v.ProfileID, &v.Content, &v.ImageURL, &v.CreatedAt, &v.AuthorName, &v.AuthorPicture); err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetAccess returns the author of a live comment and the owner of the recipe
// it belongs to.
func (r *PostgresRepository) GetAccess(ctx context.Context, id string) (*models.CommentAccess, error) {
	query :=
		`SELECT c.id, c.profile_id, rc.owner_id
		 FROM comments c JOIN recipes rc ON rc.id = c.recipe_id
		 WHERE c.id = $1 AND c.is_deleted = false
		 `

	a := &models.CommentAccess{}
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&a.CommentID, &a.AuthorID, &a.RecipeOwnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE comments SET is_deleted = true WHERE id = $1 AND is_deleted = false`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// Photos lists comment images for the community feed, newest first. Both the
// comment and its recipe must be live.
func (r *PostgresRepository) Photos(ctx context.Context, limit, offset int) ([]models.Photo, error) {
	query :=
		`SELECT c.id, c.recipe_id, rc.title, c.image_url, p.name, p.picture_url, c.created_at
		 FROM comments c
		 JOIN recipes rc ON rc.id = c.recipe_id
		 JOIN profiles p ON p.id = c.profile_id
		 WHERE c.image_url IS NOT NULL AND c.is_deleted = false AND rc.is_deleted = false
		 ORDER BY c.created_at DESC
		 LIMIT $1 OFFSET $2
		 `

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to select photos: %w", err)
	}
	defer rows.Close()

	result := []models.Photo{}
	for rows.Next() {
		var ph models.Photo
		if err := rows.Scan(&ph.CommentID, &ph.RecipeID, &ph.RecipeTitle, &ph.ImageURL, &ph.AuthorName, &ph.AuthorPicture, &ph.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, ph)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
