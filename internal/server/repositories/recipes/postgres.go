package recipes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/recipeshare/internal/common"
	"github.com/dmitrijs2005/recipeshare/internal/dbx"
	"github.com/dmitrijs2005/recipeshare/internal/server/models"
)

// summarySelect is shared by Get and List. Callers append WHERE conditions
// after the is_deleted filter and must finish with groupBy.
const summarySelect = `SELECT r.id, r.owner_id, r.title, r.description, r.image_url,
		r.prep_minutes, r.cook_minutes, r.servings, r.difficulty, r.created_at, r.updated_at,
		p.name, p.picture_url,
		COALESCE(ROUND(AVG(rt.stars)::numeric, 2), 0)::float8, COUNT(rt.stars)
	FROM recipes r
	JOIN profiles p ON p.id = r.owner_id
	LEFT JOIN ratings rt ON rt.recipe_id = r.id`

const groupBy = ` GROUP BY r.id, p.id`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, recipe *models.Recipe) (string, error) {
	query :=
		`INSERT INTO recipes (owner_id, title, description, image_url, prep_minutes, cook_minutes, servings, difficulty)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		recipe.OwnerID, recipe.Title, recipe.Description, recipe.ImageURL,
		recipe.PrepMinutes, recipe.CookMinutes, recipe.Servings, recipe.Difficulty,
	).Scan(&recipe.ID, &recipe.CreatedAt, &recipe.UpdatedAt)
	if err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}

	return recipe.ID, nil
}

// Update overwrites the scalar fields and image_url of a live recipe.
// Returns common.ErrorNotFound when the recipe is absent or soft-deleted.
func (r *PostgresRepository) Update(ctx context.Context, recipe *models.Recipe) error {
	query :=
		`UPDATE recipes SET title = $2, description = $3, image_url = $4,
			prep_minutes = $5, cook_minutes = $6, servings = $7, difficulty = $8,
			updated_at = now()
		 WHERE id = $1 AND is_deleted = false
		 `

	res, err := r.db.ExecContext(ctx, query,
		recipe.ID, recipe.Title, recipe.Description, recipe.ImageURL,
		recipe.PrepMinutes, recipe.CookMinutes, recipe.Servings, recipe.Difficulty)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

func (r *PostgresRepository) GetOwnership(ctx context.Context, id string) (*models.RecipeOwnership, error) {
	query :=
		`SELECT id, owner_id, image_url FROM recipes
		 WHERE id = $1 AND is_deleted = false
		 `

	o := &models.RecipeOwnership{}
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&o.ID, &o.OwnerID, &o.ImageURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return o, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.RecipeSummary, error) {
	query := summarySelect + ` WHERE r.id = $1 AND r.is_deleted = false` + groupBy

	s, err := scanSummary(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

// List returns live recipes matching filter, newest first, or newest
// favorite first when FavoritedBy is set.
func (r *PostgresRepository) List(ctx context.Context, filter models.RecipeFilter) ([]models.RecipeSummary, error) {
	query, args := buildListQuery(filter)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select recipes: %w", err)
	}
	defer rows.Close()

	result := []models.RecipeSummary{}
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SoftDelete flips is_deleted. A recipe that is already deleted counts as
// not found, so the transition happens at most once.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE recipes SET is_deleted = true, updated_at = now() WHERE id = $1 AND is_deleted = false`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

func buildListQuery(f models.RecipeFilter) (string, []any) {
	var (
		b    strings.Builder
		args []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	b.WriteString(summarySelect)
	if f.FavoritedBy != "" {
		b.WriteString(" JOIN favorites f ON f.recipe_id = r.id AND f.profile_id = " + arg(f.FavoritedBy))
	}
	b.WriteString(" WHERE r.is_deleted = false")
	if f.Search != "" {
		p := arg("%" + EscapeLike(f.Search) + "%")
		b.WriteString(" AND (r.title ILIKE " + p + " OR r.description ILIKE " + p + ")")
	}
	if f.TagID != 0 {
		b.WriteString(" AND EXISTS (SELECT 1 FROM recipe_tags t WHERE t.recipe_id = r.id AND t.tag_id = " + arg(f.TagID) + ")")
	}
	if f.OwnerID != "" {
		b.WriteString(" AND r.owner_id = " + arg(f.OwnerID))
	}
	b.WriteString(groupBy)
	if f.FavoritedBy != "" {
		b.WriteString(", f.created_at ORDER BY f.created_at DESC")
	} else {
		b.WriteString(" ORDER BY r.created_at DESC")
	}
	b.WriteString(" LIMIT " + arg(f.Limit))
	b.WriteString(" OFFSET " + arg(f.Offset))

	return b.String(), args
}

// EscapeLike escapes the ILIKE wildcards in s so user input matches
// literally.
func EscapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (*models.RecipeSummary, error) {
	s := &models.RecipeSummary{}
	err := row.Scan(
		&s.ID, &s.OwnerID, &s.Title, &s.Description, &s.ImageURL,
		&s.PrepMinutes, &s.CookMinutes, &s.Servings, &s.Difficulty, &s.CreatedAt, &s.UpdatedAt,
		&s.AuthorName, &s.AuthorPicture,
		&s.RatingAverage, &s.RatingCount,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
