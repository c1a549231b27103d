package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/recipeshare/internal/common"
	"github.com/dmitrijs2005/recipeshare/internal/server/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tartaInput() RecipeInput {
	return RecipeInput{
		Title:       "Tarta",
		Servings:    "4",
		Ingredients: `[{"name":"Harina","amount":"200g"}]`,
		Steps:       `["Mezclar","Hornear"]`,
		Nutrition:   `[{"name":"Azúcar","amount":"30","unit":"g"}]`,
		Tags:        `[2]`,
	}
}

func TestRecipeService_CreateWithImage(t *testing.T) {
	f := newFixture(t)
	owner := f.repo.AddProfile("ext-1", "Ana")
	f.expectCommit()

	id, err := f.recipes().Create(context.Background(), Caller{ProfileID: owner}, tartaInput(), png())
	require.NoError(t, err)

	rec := f.repo.Recipes[id]
	require.NotNil(t, rec)
	assert.Equal(t, owner, rec.OwnerID)
	require.NotNil(t, rec.ImageURL)
	path, ok := f.objects.PathFromURL(*rec.ImageURL)
	require.True(t, ok)
	_, stored := f.objects.Get(path)
	assert.True(t, stored)

	assert.Equal(t, []models.Step{{RecipeID: id, Content: "Mezclar", Order: 1}, {RecipeID: id, Content: "Hornear", Order: 2}}, f.repo.Steps[id])
	assert.Equal(t, []int64{2}, f.repo.RecipeTags[id])
	assert.Len(t, f.repo.Ingredients[id], 1)
	assert.Len(t, f.repo.Nutrition[id], 1)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestRecipeService_CreateWithExternalURL(t *testing.T) {
	f := newFixture(t)
	owner := f.repo.AddProfile("ext-1", "Ana")
	f.expectCommit()

	in := tartaInput()
	in.ImageURL = "https://example.com/tarta.jpg"
	id, err := f.recipes().Create(context.Background(), Caller{ProfileID: owner}, in, nil)
	require.NoError(t, err)

	assert.Equal(t, ptr("https://example.com/tarta.jpg"), f.repo.Recipes[id].ImageURL)
	assert.Equal(t, 0, f.objects.Len())
}

func TestRecipeService_CreateRequiresCaller(t *testing.T) {
	f := newFixture(t)
	_, err := f.recipes().Create(context.Background(), Caller{}, tartaInput(), png())
	assertKind(t, err, common.ErrorUnauthorized, common.MsgUnauthorized)
	assert.Empty(t, f.objects.Uploads())
}

func TestRecipeService_CreateInvalidPayloadUploadsNothing(t *testing.T) {
	f := newFixture(t)
	owner := f.repo.AddProfile("ext-1", "Ana")

	in := tartaInput()
	in.Steps = "no es json"
	_, err := f.recipes().Create(context.Background(), Caller{ProfileID: owner}, in, png())

	assertKind(t, err, common.ErrorValidation, "Formato inválido en el campo steps")
	assert.Empty(t, f.objects.Uploads())
	assert.Equal(t, 0, f.repo.CallCount("recipes.Create"))
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestRecipeService_CreateUploadFailure(t *testing.T) {
	f := newFixture(t)
	owner := f.repo.AddProfile("ext-1", "Ana")
	f.objects.UploadErr = errors.New("Bucket not found")

	_, err := f.recipes().Create(context.Background(), Caller{ProfileID: owner}, tartaInput(), png())

	assertKind(t, err, common.ErrorUploadFailed, "Falló la subida de imagen: Bucket not found")
	assert.Equal(t, 0, f.repo.CallCount("recipes.Create"))
}

func TestRecipeService_CreateDependentFailureRemovesUpload(t *testing.T) {
	tests := []struct {
		op  string
		msg string
	}{
		{"parts.InsertIngredients", "Error al guardar los ingredientes: Ingredient Error"},
		{"parts.InsertSteps", "Error al guardar los pasos: Ingredient Error"},
		{"parts.InsertNutrition", "Error al guardar la información nutricional: Ingredient Error"},
		{"parts.InsertTags", "Error al guardar las etiquetas: Ingredient Error"},
		{"recipes.Create", "Error al crear la receta: Ingredient Error"},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			f := newFixture(t)
			owner := f.repo.AddProfile("ext-1", "Ana")
			f.repo.FailOn(tt.op, errors.New("Ingredient Error"))
			f.expectRollback()

			_, err := f.recipes().Create(context.Background(), Caller{ProfileID: owner}, tartaInput(), png())

			assertKind(t, err, common.ErrorPersistence, tt.msg)
			uploads := f.objects.Uploads()
			require.Len(t, uploads, 1)
			assert.Equal(t, [][]string{{uploads[0]}}, f.objects.Removes())
			assert.Equal(t, 0, f.objects.Len())
			require.NoError(t, f.mock.ExpectationsWereMet())
		})
	}
}

func TestRecipeService_UpdateReplacesImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.repo.AddProfile("ext-1", "Ana")
	require.NoError(t, f.objects.Upload(ctx, "old.png", []byte("x"), "image/png"))
	id := f.repo.AddRecipe(owner, "Vieja", ptr(cdn+"/old.png"))
	f.repo.Steps[id] = []models.Step{{RecipeID: id, Content: "Antiguo", Order: 1}}
	f.expectCommit()

	got, err := f.recipes().Update(ctx, Caller{ProfileID: owner}, id, tartaInput(), png(), false)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	rec := f.repo.Recipes[id]
	assert.Equal(t, "Tarta", rec.Title)
	require.NotNil(t, rec.ImageURL)
	assert.NotEqual(t, cdn+"/old.png", *rec.ImageURL)
	assert.Len(t, f.repo.Steps[id], 2)
	assert.Equal(t, [][]string{{"old.png"}}, f.objects.Removes())
	_, oldKept := f.objects.Get("old.png")
	assert.False(t, oldKept)
}

func TestRecipeService_UpdateKeepImage(t *testing.T) {
	tests := []struct {
		name      string
		keepImage bool
		want      *string
	}{
		{"keep", true, ptr(cdn + "/old.png")},
		{"drop", false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			owner := f.repo.AddProfile("ext-1", "Ana")
			id := f.repo.AddRecipe(owner, "Vieja", ptr(cdn+"/old.png"))
			f.expectCommit()

			in := tartaInput()
			in.ImageURL = "https://ignored.example/x.jpg"
			_, err := f.recipes().Update(context.Background(), Caller{ProfileID: owner}, id, in, nil, tt.keepImage)
			require.NoError(t, err)

			assert.Equal(t, tt.want, f.repo.Recipes[id].ImageURL)
			assert.Empty(t, f.objects.Removes())
		})
	}
}

func TestRecipeService_UpdateFailureKeepsPreviousImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.repo.AddProfile("ext-1", "Ana")
	require.NoError(t, f.objects.Upload(ctx, "old.png", []byte("x"), "image/png"))
	id := f.repo.AddRecipe(owner, "Vieja", ptr(cdn+"/old.png"))
	f.repo.FailOn("parts.InsertSteps", errors.New("value too long"))
	f.expectRollback()

	_, err := f.recipes().Update(ctx, Caller{ProfileID: owner}, id, tartaInput(), png(), false)

	assertKind(t, err, common.ErrorPersistence, "Error al guardar los pasos: value too long")
	_, oldKept := f.objects.Get("old.png")
	assert.True(t, oldKept)
	assert.Equal(t, 1, f.objects.Len())
	require.Len(t, f.objects.Removes(), 1)
	assert.NotEqual(t, []string{"old.png"}, f.objects.Removes()[0])
}

func TestRecipeService_UpdateOwnershipCheckedFirst(t *testing.T) {
	f := newFixture(t)
	owner := f.repo.AddProfile("ext-1", "Ana")
	other := f.repo.AddProfile("ext-2", "Luis")
	id := f.repo.AddRecipe(owner, "Ajena", nil)

	in := RecipeInput{Title: ""}
	_, err := f.recipes().Update(context.Background(), Caller{ProfileID: other}, id, in, png(), false)

	assertKind(t, err, common.ErrorForbidden, common.MsgNotRecipeOwner)
	assert.Empty(t, f.objects.Uploads())
	assert.Equal(t, 0, f.repo.CallCount("recipes.Update"))
}

func TestRecipeService_Authorize(t *testing.T) {
	f := newFixture(t)
	owner := f.repo.AddProfile("ext-1", "Ana")
	other := f.repo.AddProfile("ext-2", "Luis")
	id := f.repo.AddRecipe(owner, "Propia", nil)
	svc := f.recipes()
	ctx := context.Background()

	assert.NoError(t, svc.Authorize(ctx, Caller{ProfileID: owner}, id))
	assertKind(t, svc.Authorize(ctx, Caller{ProfileID: other}, id), common.ErrorForbidden, common.MsgNotRecipeOwner)
	assertKind(t, svc.Authorize(ctx, Caller{}, id), common.ErrorUnauthorized, common.MsgUnauthorized)
	assertKind(t, svc.Authorize(ctx, Caller{ProfileID: owner}, ""), common.ErrorValidation, common.MsgMissingRecipeID)
	assertKind(t, svc.Authorize(ctx, Caller{ProfileID: owner}, "0b8c6a52-6f0e-4a8f-9c0e-0d7e5b3f6a11"), common.ErrorNotFound, common.MsgRecipeNotFound)
	assert.Equal(t, 0, f.repo.CallCount("recipes.Update"))
}

func TestRecipeService_UpdateErrors(t *testing.T) {
	f := newFixture(t)
	owner := f.repo.AddProfile("ext-1", "Ana")
	svc := f.recipes()
	ctx := context.Background()

	_, err := svc.Update(ctx, Caller{ProfileID: owner}, "", tartaInput(), nil, false)
	assertKind(t, err, common.ErrorValidation, common.MsgMissingRecipeID)

	_, err = svc.Update(ctx, Caller{ProfileID: owner}, "not-a-uuid", tartaInput(), nil, false)
	assertKind(t, err, common.ErrorValidation, common.MsgInvalidID)

	_, err = svc.Update(ctx, Caller{ProfileID: owner}, uuid.NewString(), tartaInput(), nil, false)
	assertKind(t, err, common.ErrorNotFound, common.MsgRecipeNotFound)
}

func TestRecipeService_Get(t *testing.T) {
	f := newFixture(t)
	owner := f.repo.AddProfile("ext-1", "Ana")
	viewer := f.repo.AddProfile("ext-2", "Luis")
	f.expectCommit()
	id, err := f.recipes().Create(context.Background(), Caller{ProfileID: owner}, tartaInput(), nil)
	require.NoError(t, err)

	rs := NewRatingService(f.db, f.repo.Manager(), nopLogger())
	_, err = rs.Rate(context.Background(), Caller{ProfileID: viewer}, id, 4)
	require.NoError(t, err)
	require.NoError(t, NewFavoriteService(f.db, f.repo.Manager(), nopLogger()).Add(context.Background(), Caller{ProfileID: viewer}, id))

	anon, err := f.recipes().Get(context.Background(), id, "")
	require.NoError(t, err)
	assert.Equal(t, "Ana", anon.AuthorName)
	assert.Equal(t, 1, anon.RatingCount)
	assert.Equal(t, 4.0, anon.RatingAverage)
	assert.False(t, anon.Favorited)
	assert.Nil(t, anon.MyRating)
	require.Len(t, anon.Tags, 1)
	assert.Equal(t, "Postre", anon.Tags[0].Name)
	assert.Len(t, anon.Steps, 2)

	mine, err := f.recipes().Get(context.Background(), id, viewer)
	require.NoError(t, err)
	assert.True(t, mine.Favorited)
	require.NotNil(t, mine.MyRating)
	assert.Equal(t, 4, *mine.MyRating)
}

func TestRecipeService_GetErrors(t *testing.T) {
	f := newFixture(t)
	owner := f.repo.AddProfile("ext-1", "Ana")
	id := f.repo.AddRecipe(owner, "Sopa", nil)
	svc := f.recipes()

	_, err := svc.Get(context.Background(), uuid.NewString(), "")
	assertKind(t, err, common.ErrorNotFound, common.MsgRecipeNotFound)

	f.repo.FailOn("parts.Steps", errors.New("connection reset"))
	_, err = svc.Get(context.Background(), id, "")
	assertKind(t, err, common.ErrorInternal, "Error al obtener los datos: connection reset")
}

func TestRecipeService_List(t *testing.T) {
	f := newFixture(t)
	ana := f.repo.AddProfile("ext-1", "Ana")
	luis := f.repo.AddProfile("ext-2", "Luis")
	f.repo.AddRecipe(ana, "Sopa de tomate", nil)
	f.repo.AddRecipe(ana, "Tarta de queso", nil)
	f.repo.AddRecipe(luis, "Sopa de ajo", nil)
	svc := f.recipes()
	ctx := context.Background()

	all, err := svc.List(ctx, ListQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Sopa de ajo", all[0].Title)

	sopas, err := svc.List(ctx, ListQuery{Search: "sopa"})
	require.NoError(t, err)
	assert.Len(t, sopas, 2)

	mine, err := svc.List(ctx, ListQuery{OwnerID: ana, Page: Page{Number: 2, Size: 1}})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Sopa de tomate", mine[0].Title)

	_, err = svc.List(ctx, ListQuery{Page: Page{Size: 500}})
	assertKind(t, err, common.ErrorValidation, common.MsgInvalidPage)

	_, err = svc.List(ctx, ListQuery{OwnerID: "ana"})
	assertKind(t, err, common.ErrorValidation, common.MsgInvalidID)
}

func TestRecipeService_Delete(t *testing.T) {
	f := newFixture(t)
	owner := f.repo.AddProfile("ext-1", "Ana")
	other := f.repo.AddProfile("ext-2", "Luis")
	id := f.repo.AddRecipe(owner, "Sopa", nil)
	svc := f.recipes()
	ctx := context.Background()

	assertKind(t, svc.Delete(ctx, Caller{ProfileID: other}, id), common.ErrorForbidden, common.MsgNotRecipeOwner)
	require.NoError(t, svc.Delete(ctx, Caller{ProfileID: owner}, id))
	assert.True(t, f.repo.Recipes[id].IsDeleted)

	assertKind(t, svc.Delete(ctx, Caller{ProfileID: owner}, id), common.ErrorNotFound, common.MsgRecipeNotFound)
	_, err := svc.Get(ctx, id, "")
	assertKind(t, err, common.ErrorNotFound, common.MsgRecipeNotFound)
}
