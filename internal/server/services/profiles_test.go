package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/recipeshare/internal/common"
	"github.com/dmitrijs2005/recipeshare/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileService_ResolveCreatesOnce(t *testing.T) {
	f := newFixture(t)
	svc := NewProfileService(f.db, f.repo.Manager(), time.Minute, nopLogger())
	ctx := context.Background()
	id := auth.Identity{ExternalID: "google|123", Email: "ana@example.com", Name: "Ana"}

	first, err := svc.Resolve(ctx, id)
	require.NoError(t, err)
	second, err := svc.Resolve(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.repo.CallCount("profiles.Upsert"))
	assert.Equal(t, "Ana", f.repo.Profiles[first].Name)
}

func TestProfileService_ResolveWithoutCache(t *testing.T) {
	f := newFixture(t)
	svc := NewProfileService(f.db, f.repo.Manager(), 0, nopLogger())
	ctx := context.Background()

	first, err := svc.Resolve(ctx, auth.Identity{ExternalID: "x", Name: "Ana"})
	require.NoError(t, err)
	second, err := svc.Resolve(ctx, auth.Identity{ExternalID: "x", Name: "Ana María"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, f.repo.CallCount("profiles.Upsert"))
	assert.Equal(t, "Ana María", f.repo.Profiles[first].Name)
}

func TestProfileService_ResolveErrors(t *testing.T) {
	f := newFixture(t)
	svc := NewProfileService(f.db, f.repo.Manager(), time.Minute, nopLogger())

	_, err := svc.Resolve(context.Background(), auth.Identity{})
	assertKind(t, err, common.ErrorUnauthorized, common.MsgUnauthorized)

	f.repo.FailOn("profiles.Upsert", errors.New("connection refused"))
	_, err = svc.Resolve(context.Background(), auth.Identity{ExternalID: "x"})
	assertKind(t, err, common.ErrorInternal, "Error al sincronizar el perfil: connection refused")
}
