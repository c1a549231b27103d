package profiles

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/recipeshare/internal/common"
	"github.com/dmitrijs2005/recipeshare/internal/server/models"
	"github.com/google/go-cmp/cmp"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const upsertQuery = `(?s)^INSERT\s+INTO\s+profiles\s*\(external_id,\s*email,\s*name,\s*picture_url\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*ON\s+CONFLICT\s*\(external_id\)\s*DO\s+UPDATE.+RETURNING\s+id\s*$`

func TestUpsert_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(upsertQuery).
		WithArgs("ext-1", "ana@example.com", "Ana", "https://img/ana.png").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("p-1"))

	p := &models.Profile{ExternalID: "ext-1", Email: "ana@example.com", Name: "Ana", PictureURL: "https://img/ana.png"}
	id, err := repo.Upsert(context.Background(), p)
	if err != nil {
		t.Fatalf("Upsert error: %v", err)
	}
	if id != "p-1" || p.ID != "p-1" {
		t.Fatalf("unexpected id %q / %q", id, p.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpsert_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(upsertQuery).WillReturnError(errors.New("db down"))

	_, err := repo.Upsert(context.Background(), &models.Profile{ExternalID: "ext-1"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByID(t *testing.T) {
	q := `(?s)^SELECT\s+id,\s*external_id,\s*email,\s*name,\s*picture_url,\s*created_at,\s*updated_at\s+FROM\s+profiles\s+WHERE\s+id\s*=\s*\$1\s*$`
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(q).WithArgs("p-1").WillReturnRows(
			sqlmock.NewRows([]string{"id", "external_id", "email", "name", "picture_url", "created_at", "updated_at"}).
				AddRow("p-1", "ext-1", "ana@example.com", "Ana", "", now, now))

		got, err := repo.GetByID(context.Background(), "p-1")
		if err != nil {
			t.Fatalf("GetByID error: %v", err)
		}
		want := &models.Profile{ID: "p-1", ExternalID: "ext-1", Email: "ana@example.com", Name: "Ana", CreatedAt: now, UpdatedAt: now}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("profile mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectQuery(q).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(context.Background(), "ghost")
		if !errors.Is(err, common.ErrorNotFound) {
			t.Fatalf("want common.ErrorNotFound, got %v", err)
		}
	})
}
