package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/recipeshare/internal/common"
	"github.com/dmitrijs2005/recipeshare/internal/server/config"
	"github.com/dmitrijs2005/recipeshare/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/recipeshare/internal/server/repositories/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingMigrations struct {
	*repotest.Manager
}

func (failingMigrations) RunMigrations(context.Context, *sql.DB) error {
	return errors.New("relation already exists")
}

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.StorageBackend = config.StorageMemory
	c.ShutdownTimeout = time.Second
	c.LogLevel = "error"
	return c
}

// swapSeams replaces the database and repository seams for one test.
func swapSeams(t *testing.T, rm repomanager.RepositoryManager) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	origOpen, origRM := openDB, newRepositoryManager
	openDB = func(string) (*sql.DB, error) { return db, nil }
	newRepositoryManager = func() repomanager.RepositoryManager { return rm }
	t.Cleanup(func() {
		openDB, newRepositoryManager = origOpen, origRM
		db.Close()
	})
	return mock
}

func TestNewApp_InvalidConfig(t *testing.T) {
	c := testConfig()
	c.SecretKey = ""

	_, err := NewApp(context.Background(), c)
	assert.ErrorIs(t, err, common.ErrorConfiguration)
}

func TestNewApp_OpenError(t *testing.T) {
	orig := openDB
	openDB = func(string) (*sql.DB, error) { return nil, errors.New("bad dsn") }
	t.Cleanup(func() { openDB = orig })

	_, err := NewApp(context.Background(), testConfig())
	assert.EqualError(t, err, "db init error: bad dsn")
}

func TestNewApp_MigrationError(t *testing.T) {
	mock := swapSeams(t, failingMigrations{repotest.NewStore().Manager()})
	mock.ExpectClose()

	_, err := NewApp(context.Background(), testConfig())
	assert.EqualError(t, err, "migrations: relation already exists")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_UnknownStorage(t *testing.T) {
	swapSeams(t, repotest.NewStore().Manager())
	c := testConfig()
	c.StorageBackend = "ftp"

	_, err := NewApp(context.Background(), c)
	assert.ErrorIs(t, err, common.ErrorConfiguration)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	mock := swapSeams(t, repotest.NewStore().Manager())
	mock.ExpectClose()

	app, err := NewApp(context.Background(), testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	require.NoError(t, mock.ExpectationsWereMet())
}
