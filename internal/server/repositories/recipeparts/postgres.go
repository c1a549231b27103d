package recipeparts

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/recipeshare/internal/dbx"
	"github.com/dmitrijs2005/recipeshare/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) InsertIngredients(ctx context.Context, recipeID string, items []models.Ingredient) error {
	if len(items) == 0 {
		return nil
	}
	args := make([]any, 0, len(items)*4)
	for _, it := range items {
		args = append(args, recipeID, it.Name, it.Amount, it.Optional)
	}
	query := `INSERT INTO ingredients (recipe_id, name, amount, is_optional) VALUES ` + dbx.Values(len(items), 4)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert ingredients: %w", err)
	}
	return nil
}

func (r *PostgresRepository) InsertSteps(ctx context.Context, recipeID string, items []models.Step) error {
	if len(items) == 0 {
		return nil
	}
	args := make([]any, 0, len(items)*3)
	for _, it := range items {
		args = append(args, recipeID, it.Content, it.Order)
	}
	query := `INSERT INTO steps (recipe_id, content, step_order) VALUES ` + dbx.Values(len(items), 3)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert steps: %w", err)
	}
	return nil
}

func (r *PostgresRepository) InsertNutrition(ctx context.Context, recipeID string, items []models.NutritionFact) error {
	if len(items) == 0 {
		return nil
	}
	args := make([]any, 0, len(items)*4)
	for _, it := range items {
		args = append(args, recipeID, it.Name, it.Amount, it.Unit)
	}
	query := `INSERT INTO nutrition_facts (recipe_id, name, amount, unit) VALUES ` + dbx.Values(len(items), 4)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert nutrition: %w", err)
	}
	return nil
}

func (r *PostgresRepository) InsertTags(ctx context.Context, recipeID string, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	args := make([]any, 0, len(tagIDs)*2)
	for _, id := range tagIDs {
		args = append(args, recipeID, id)
	}
	query := `INSERT INTO recipe_tags (recipe_id, tag_id) VALUES ` + dbx.Values(len(tagIDs), 2) +
		` ON CONFLICT DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert tags: %w", err)
	}
	return nil
}

// DeleteAll removes every dependent row of the recipe. It issues one
// statement per table and should run inside the same transaction as the
// inserts that replace them.
func (r *PostgresRepository) DeleteAll(ctx context.Context, recipeID string) error {
	for _, table := range []string{"ingredients", "steps", "nutrition_facts", "recipe_tags"} {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE recipe_id = $1`, recipeID); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	return nil
}

func (r *PostgresRepository) Ingredients(ctx context.Context, recipeID string) ([]models.Ingredient, error) {
	query := `SELECT name, amount, is_optional FROM ingredients WHERE recipe_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to select ingredients: %w", err)
	}
	defer rows.Close()

	result := []models.Ingredient{}
	for rows.Next() {
		it := models.Ingredient{RecipeID: recipeID}
		if err := rows.Scan(&it.Name, &it.Amount, &it.Optional); err != nil {
			return nil, err
		}
		result = append(result, it)
	}
	return result, rows.Err()
}

func (r *PostgresRepository) Steps(ctx context.Context, recipeID string) ([]models.Step, error) {
	query := `SELECT content, step_order FROM steps WHERE recipe_id = $1 ORDER BY step_order`
	rows, err := r.db.QueryContext(ctx, query, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to select steps: %w", err)
	}
	defer rows.Close()

	result := []models.Step{}
	for rows.Next() {
		it := models.Step{RecipeID: recipeID}
		if err := rows.Scan(&it.Content, &it.Order); err != nil {
			return nil, err
		}
		result = append(result, it)
	}
	return result, rows.Err()
}

func (r *PostgresRepository) Nutrition(ctx context.Context, recipeID string) ([]models.NutritionFact, error) {
	query := `SELECT name, amount, unit FROM nutrition_facts WHERE recipe_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to select nutrition: %w", err)
	}
	defer rows.Close()

	result := []models.NutritionFact{}
	for rows.Next() {
		it := models.NutritionFact{RecipeID: recipeID}
		if err := rows.Scan(&it.Name, &it.Amount, &it.Unit); err != nil {
			return nil, err
		}
		result = append(result, it)
	}
	return result, rows.Err()
}

func (r *PostgresRepository) Tags(ctx context.Context, recipeID string) ([]models.Tag, error) {
	query := `SELECT t.id, t.name FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id
		WHERE rt.recipe_id = $1 ORDER BY t.name`
	rows, err := r.db.QueryContext(ctx, query, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to select tags: %w", err)
	}
	defer rows.Close()

	result := []models.Tag{}
	for rows.Next() {
		var it models.Tag
		if err := rows.Scan(&it.ID, &it.Name); err != nil {
			return nil, err
		}
		result = append(result, it)
	}
	return result, rows.Err()
}
