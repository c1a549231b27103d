package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/recipeshare/internal/common"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatingService_Rate(t *testing.T) {
	f := newFixture(t)
	ana := f.repo.AddProfile("ext-1", "Ana")
	luis := f.repo.AddProfile("ext-2", "Luis")
	recipe := f.repo.AddRecipe(ana, "Sopa", nil)
	svc := NewRatingService(f.db, f.repo.Manager(), nopLogger())
	ctx := context.Background()

	_, err := svc.Rate(ctx, Caller{ProfileID: ana}, recipe, 5)
	require.NoError(t, err)
	_, err = svc.Rate(ctx, Caller{ProfileID: luis}, recipe, 2)
	require.NoError(t, err)

	// rating again replaces the earlier stars
	sum, err := svc.Rate(ctx, Caller{ProfileID: luis}, recipe, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Count)
	assert.Equal(t, 4.5, sum.Average)
	require.NotNil(t, sum.Mine)
	assert.Equal(t, 4, *sum.Mine)

	anon, err := svc.Summary(ctx, recipe, "")
	require.NoError(t, err)
	assert.Nil(t, anon.Mine)
	assert.Equal(t, 2, anon.Count)
}

func TestRatingService_RateErrors(t *testing.T) {
	f := newFixture(t)
	ana := f.repo.AddProfile("ext-1", "Ana")
	recipe := f.repo.AddRecipe(ana, "Sopa", nil)
	svc := NewRatingService(f.db, f.repo.Manager(), nopLogger())
	ctx := context.Background()

	for _, stars := range []int{0, 6, -1} {
		_, err := svc.Rate(ctx, Caller{ProfileID: ana}, recipe, stars)
		assertKind(t, err, common.ErrorValidation, common.MsgInvalidStars)
	}

	_, err := svc.Rate(ctx, Caller{}, recipe, 3)
	assertKind(t, err, common.ErrorUnauthorized, common.MsgUnauthorized)

	_, err = svc.Rate(ctx, Caller{ProfileID: ana}, uuid.NewString(), 3)
	assertKind(t, err, common.ErrorNotFound, common.MsgRecipeNotFound)

	f.repo.FailOn("ratings.Upsert", errors.New("disk full"))
	_, err = svc.Rate(ctx, Caller{ProfileID: ana}, recipe, 3)
	assertKind(t, err, common.ErrorPersistence, "Error al guardar la calificación: disk full")
}
