package profiles

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

// Upsert maps an external identity to its profile row, creating it on first
// sight and refreshing the public fields afterwards. Returns the profile id.
func (r *PostgresRepository) Upsert(ctx context.Context, profile *models.Profile) (string, error) {
	query :=
		`INSERT INTO profiles (external_id, email, name, picture_url)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (external_id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			picture_url = EXCLUDED.picture_url,
			updated_at = now()
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		profile.ExternalID, profile.Email, profile.Name, profile.PictureURL).Scan(&profile.ID)
	if err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}

	return profile.ID, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query :=
		`SELECT id, external_id, email, name, picture_url, created_at, updated_at FROM profiles
		 WHERE id = $1
		 `

	p := &models.Profile{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&p.ID, &p.ExternalID, &p.Email, &p.Name, &p.PictureURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}
