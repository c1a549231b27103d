// Package repotest provides an in-memory RepositoryManager for service and
// handler tests. Every repository operation can be made to fail with FailOn.
package repotest

import (
	"context"
	"database/sql"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/recipeshare/internal/common"
	"github.com/dmitrijs2005/recipeshare/internal/dbx"
	"github.com/dmitrijs2005/recipeshare/internal/server/models"
	"github.com/dmitrijs2005/recipeshare/internal/server/repositories/comments"
	"github.com/dmitrijs2005/recipeshare/internal/server/repositories/favorites"
	"github.com/dmitrijs2005/recipeshare/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/recipeshare/internal/server/repositories/ratings"
	"github.com/dmitrijs2005/recipeshare/internal/server/repositories/recipeparts"
	"github.com/dmitrijs2005/recipeshare/internal/server/repositories/recipes"
	"github.com/dmitrijs2005/recipeshare/internal/server/repositories/tags"
	"github.com/google/uuid"
)

type pair struct{ recipeID, profileID string }

// Store holds all rows. Fields are exported so tests can assert on them;
// take Lock/Unlock when reading them while requests may still be running.
type Store struct {
	sync.Mutex

	Profiles    map[string]*models.Profile
	Recipes     map[string]*models.Recipe
	Ingredients map[string][]models.Ingredient
	Steps       map[string][]models.Step
	Nutrition   map[string][]models.NutritionFact
	RecipeTags  map[string][]int64
	Tags        []models.Tag
	Comments    map[string]*models.Comment
	Ratings     map[pair]int
	Favorites   map[pair]time.Time

	// Calls lists every repository operation in order, e.g. "recipes.Create".
	Calls []string

	errs  map[string]error
	clock time.Time
}

func NewStore() *Store {
	return &Store{
		Profiles:    map[string]*models.Profile{},
		Recipes:     map[string]*models.Recipe{},
		Ingredients: map[string][]models.Ingredient{},
		Steps:       map[string][]models.Step{},
		Nutrition:   map[string][]models.NutritionFact{},
		RecipeTags:  map[string][]int64{},
		Tags:        []models.Tag{{ID: 1, Name: "Desayuno"}, {ID: 2, Name: "Postre"}, {ID: 3, Name: "Vegano"}},
		Comments:    map[string]*models.Comment{},
		Ratings:     map[pair]int{},
		Favorites:   map[pair]time.Time{},
		errs:        map[string]error{},
		clock:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// FailOn makes the named operation return err until cleared with a nil err.
func (s *Store) FailOn(op string, err error) {
	s.Lock()
	defer s.Unlock()
	if err == nil {
		delete(s.errs, op)
		return
	}
	s.errs[op] = err
}

// Manager returns a repomanager.RepositoryManager backed by s. The DBTX passed
// to the factories is ignored.
func (s *Store) Manager() *Manager {
	return &Manager{s: s}
}

// CallCount reports how many times op was invoked.
func (s *Store) CallCount(op string) int {
	s.Lock()
	defer s.Unlock()
	n := 0
	for _, c := range s.Calls {
		if c == op {
			n++
		}
	}
	return n
}

// AddProfile seeds a profile and returns its id.
func (s *Store) AddProfile(externalID, name string) string {
	s.Lock()
	defer s.Unlock()
	p := &models.Profile{ID: uuid.NewString(), ExternalID: externalID, Name: name, CreatedAt: s.tick()}
	p.UpdatedAt = p.CreatedAt
	s.Profiles[p.ID] = p
	return p.ID
}

// AddRecipe seeds a live recipe and returns its id.
func (s *Store) AddRecipe(ownerID, title string, imageURL *string) string {
	s.Lock()
	defer s.Unlock()
	r := &models.Recipe{ID: uuid.NewString(), OwnerID: ownerID, Title: title, ImageURL: imageURL, CreatedAt: s.tick()}
	r.UpdatedAt = r.CreatedAt
	s.Recipes[r.ID] = r
	return r.ID
}

// AddComment seeds a live comment and returns its id.
func (s *Store) AddComment(recipeID, profileID, content string, imageURL *string) string {
	s.Lock()
	defer s.Unlock()
	c := &models.Comment{ID: uuid.NewString(), RecipeID: recipeID, ProfileID: profileID, Content: content, ImageURL: imageURL, CreatedAt: s.tick()}
	s.Comments[c.ID] = c
	return c.ID
}

func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

// enter records the call and returns the injected error, if any. Callers must
// hold the lock.
func (s *Store) enter(op string) error {
	s.Calls = append(s.Calls, op)
	return s.errs[op]
}

func (s *Store) summary(r *models.Recipe) models.RecipeSummary {
	sum := models.RecipeSummary{Recipe: *r}
	if p, ok := s.Profiles[r.OwnerID]; ok {
		sum.AuthorName, sum.AuthorPicture = p.Name, p.PictureURL
	}
	total := 0
	for k, v := range s.Ratings {
		if k.recipeID == r.ID {
			total += v
			sum.RatingCount++
		}
	}
	if sum.RatingCount > 0 {
		sum.RatingAverage = math.Round(float64(total)/float64(sum.RatingCount)*100) / 100
	}
	return sum
}

// Manager implements repomanager.RepositoryManager.
type Manager struct {
	s *Store
}

func (m *Manager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *Manager) Profiles(dbx.DBTX) profiles.Repository       { return profileRepo{m.s} }
func (m *Manager) Recipes(dbx.DBTX) recipes.Repository         { return recipeRepo{m.s} }
func (m *Manager) RecipeParts(dbx.DBTX) recipeparts.Repository { return partsRepo{m.s} }
func (m *Manager) Comments(dbx.DBTX) comments.Repository       { return commentRepo{m.s} }
func (m *Manager) Ratings(dbx.DBTX) ratings.Repository         { return ratingRepo{m.s} }
func (m *Manager) Favorites(dbx.DBTX) favorites.Repository     { return favoriteRepo{m.s} }
func (m *Manager) Tags(dbx.DBTX) tags.Repository               { return tagRepo{m.s} }

type profileRepo struct{ s *Store }

func (r profileRepo) Upsert(_ context.Context, p *models.Profile) (string, error) {
	r.s.Lock()
	defer r.s.Unlock()
	if err := r.s.enter("profiles.Upsert"); err != nil {
		return "", err
	}
	for _, existing := range r.s.Profiles {
		if existing.ExternalID == p.ExternalID {
			existing.Email, existing.Name, existing.PictureURL = p.Email, p.Name, p.PictureURL
			existing.UpdatedAt = r.s.tick()
			p.ID = existing.ID
			return existing.ID, nil
		}
	}
	cp := *p
	cp.ID = uuid.NewString()
	cp.CreatedAt = r.s.tick()
	cp.UpdatedAt = cp.CreatedAt
	r.s.Profiles[cp.ID] = &cp
	p.ID = cp.ID
	return cp.ID, nil
}

func (r profileRepo) GetByID(_ context.Context, id string) (*models.Profile, error) {
	r.s.Lock()
	defer r.s.Unlock()
	if err := r.s.enter("profiles.GetByID"); err != nil {
		return nil, err
	}
	p, ok := r.s.Profiles[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

type recipeRepo struct{ s *Store }

func (r recipeRepo) Create(_ context.Context, rec *models.Recipe) (string, error) {
	r.s.Lock()
	defer r.s.Unlock()
	if err := r.s.enter("recipes.Create"); err != nil {
		return "", err
	}
	cp := *rec
	cp.ID = uuid.NewString()
	cp.CreatedAt = r.s.tick()
	cp.UpdatedAt = cp.CreatedAt
	r.s.Recipes[cp.ID] = &cp
	rec.ID, rec.CreatedAt, rec.UpdatedAt = cp.ID, cp.CreatedAt, cp.UpdatedAt
	return cp.ID, nil
}

func (r recipeRepo) Update(_ context.Context, rec *models.Recipe) error {
	r.s.Lock()
	defer r.s.Unlock()
	if err := r.s.enter("recipes.Update"); err != nil {
		return err
	}
	existing, ok := r.s.Recipes[rec.ID]
	if !ok || existing.IsDeleted {
		return common.ErrorNotFound
	}
	existing.Title, existing.Description, existing.ImageURL = rec.Title, rec.Description, rec.ImageURL
	existing.PrepMinutes, existing.CookMinutes, existing.Servings = rec.PrepMinutes, rec.CookMinutes, rec.Servings
	existing.Difficulty = rec.Difficulty
	existing.UpdatedAt = r.s.tick()
	return nil
}

func (r recipeRepo) GetOwnership(_ context.Context, id string) (*models.RecipeOwnership, error) {
	r.s.Lock()
	defer r.s.Unlock()
	if err := r.s.enter("recipes.GetOwnership"); err != nil {
		return nil, err
	}
	rec, ok := r.s.Recipes[id]
	if !ok || rec.IsDeleted {
		return nil, common.ErrorNotFound
	}
	return &models.RecipeOwnership{ID: rec.ID, OwnerID: rec.OwnerID, ImageURL: rec.ImageURL}, nil
}

func (r recipeRepo) Get(_ context.Context, id string) (*models.RecipeSummary, error) {
	r.s.Lock()
	defer r.s.Unlock()
	if err := r.s.enter("recipes.Get"); err != nil {
		return nil, err
	}
	rec, ok := r.s.Recipes[id]
	if !ok || rec.IsDeleted {
		return nil, common.ErrorNotFound
	}
	sum := r.s.summary(rec)
	return &sum, nil
}

func (r recipeRepo) List(_ context.Context, f models.RecipeFilter) ([]models.RecipeSummary, error) {
	r.s.Lock()
	defer r.s.Unlock()
	if err := r.s.enter("recipes.List"); err != nil {
		return nil, err
	}

	type row struct {
		sum models.RecipeSummary
		at  time.Time
	}
	var rows []row
	search := strings.ToLower(f.Search)
	for _, rec := range r.s.Recipes {
		if rec.IsDeleted {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(rec.Title), search) &&
			!strings.Contains(strings.ToLower(rec.Description), search) {
			continue
		}
		if f.TagID != 0 && !containsTag(r.s.RecipeTags[rec.ID], f.TagID) {
			continue
		}
		if f.OwnerID != "" && rec.OwnerID != f.OwnerID {
			continue
		}
		at := rec.CreatedAt
		if f.FavoritedBy != "" {
			favAt, ok := r.s.Favorites[pair{rec.ID, f.FavoritedBy}]
			if !ok {
				continue
			}
			at = favAt
		}
		rows = append(rows, row{sum: r.s.summary(rec), at: at})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].at.After(rows[j].at) })

	result := []models.RecipeSummary{}
	for i := f.Offset; i < len(rows) && (f.Limit <= 0 || len(result) < f.Limit); i++ {
		result = append(result, rows[i].sum)
	}
	return result, nil
}

func (r recipeRepo) SoftDelete(_ context.Context, id string) error {
	r.s.Lock()
	defer r.s.Unlock()
	if err := r.s.enter("recipes.SoftDelete"); err != nil {
		return err
	}
	rec, ok := r.s.Recipes[id]
	if !ok || rec.IsDeleted {
		return common.ErrorNotFound
	}
	rec.IsDeleted = true
	return nil
}

func containsTag(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

type partsRepo struct{ s *Store }

func (r partsRepo) InsertIngredients(_ context.Context, recipeID string, items []models.Ingredient) error {
	r.s.Lock()
	defer r.s.Unlock()
	if err := r.s.enter("parts.InsertIngredients"); err != nil {
		return err
	}
	for _, it := range items {
		it.RecipeID = recipeID
		r.s.Ingredients[recipeID] = append(r.s.Ingredients[recipeID], it)
	}
	return nil
}

func (r partsRepo) InsertSteps(_ context.Context, recipeID string, items []models.Step) error {
	r.s.Lock()
	defer r.s.Unlock()
	if err := r.s.enter("parts.InsertSteps"); err != nil {
		return err
	}
	for _, it := range items {
		it.RecipeID = recipeID
		r.s.Steps[recipeID] = append(r.s.Steps[recipeID], it)
	}
	return nil
}

func (r partsRepo) InsertNutrition(_ context.Context, recipeID string, items []models.NutritionFact) error {
	r.s.Lock()
	defer r.s.Unlock()
	if err := r.s.enter("parts.InsertNutrition"); err != nil {
		return err
	}
	for _, it := range items {
		it.RecipeID = recipeID
		r.s.Nutrition[recipeID] = append(r.s.Nutrition[recipeID], it)
	}
	return nil
}

func (r partsRepo) InsertTags(_ context.Context, recipeID string, tagIDs []int64) error {
	r.s.Lock()
	defer r.s.Unlock()
	if err := r.s.enter("parts.InsertTags"); err != nil {
		return err
	}
	for _, id := range tagIDs {
		if !containsTag(r.s.RecipeTags[recipeID], id) {
			r.s.RecipeTags[recipeID] = append(r.s.RecipeTags[recipeID], id)
		}
	}
	return nil
}

func (r partsRepo) DeleteAll(_ context.Context, recipeID string) error {
	r.s.Lock()
	defer r.s.Unlock()
	if err := r.s.enter("parts.DeleteAll"); err != nil {
		return err
	}
	delete(r.s.Ingredients, recipeID)
	delete(r.s.Steps, recipeID)
	delete(r.s.Nutrition, recipeID)
	delete(r.s.RecipeTags, recipeID)
	return nil
}

func (r partsRepo) Ingredients(_ context.Context, recipeID string) ([]models.Ingredient, error) {
	r.s.Lock()
	defer r.s.Unlock()
	if err := r.s.enter("parts.Ingredients"); err != nil {
		return nil, err
	}
	return append([]models.Ingredient{}, r.s.Ingredients[recipeID]...), nil
}

func (r partsRepo) Steps(_ context.Context, recipeID string) ([]models.Step, error) {
	r.s.Lock()
	defer r.s.Unlock()
	if err := r.s.enter("parts.Steps"); err != nil {
		return nil, err
	}
	out := append([]models.Step{}, r.s.Steps[recipeID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r partsRepo) Nutrition(_ context.Context, recipeID string) ([]models.NutritionFact, error) {
	r.s.Lock()
	defer r.s.Unlock()
	if err := r.s.enter("parts.Nutrition"); err != nil {
		return nil, err
	}
	return append([]models.NutritionFact{}, r.s.Nutrition[recipeID]...), nil
}

func (r partsRepo) Tags(_ context.Context, recipeID string) ([]models.Tag, error) {
	r.s.Lock()
	defer r.s.Unlock()
	if err := r.s.enter("parts.Tags"); err != nil {
		return nil, err
	}
	out := []models.Tag{}
	for _, t := range r.s.Tags {
		if containsTag(r.s.RecipeTags[recipeID], t.ID) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type commentRepo struct{ s *Store }

func (r commentRepo) view(c *models.Comment) models.CommentView {
	v := models.CommentView{Comment: *c}
	if p, ok := r.s.Profiles[c.ProfileID]; ok {
		v.AuthorName, v.AuthorPicture = p.Name, p.PictureURL
	}
	return v
}

func (r commentRepo) Create(_ context.Context, c *models.Comment) (*models.CommentView, error) {
	r.s.Lock()
	defer r.s.Unlock()
	if err := r.s.enter("comments.Create"); err != nil {
		return nil, err
	}
	cp := *c
	cp.ID = uuid.NewString()
	cp.CreatedAt = r.s.tick()
	r.s.Comments[cp.ID] = &cp
	v := r.view(&cp)
	return &v, nil
}

func (r commentRepo) ListByRecipe(_ context.Context, recipeID string) ([]models.CommentView, error) {
	r.s.Lock()
	defer r.s.Unlock()
	if err := r.s.enter("comments.ListByRecipe"); err != nil {
		return nil, err
	}
	out := []models.CommentView{}
	for _, c := range r.s.Comments {
		if c.RecipeID == recipeID && !c.IsDeleted {
			out = append(out, r.view(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r commentRepo) GetAccess(_ context.Context, id string) (*models.CommentAccess, error) {
	r.s.Lock()
	defer r.s.Unlock()
	if err := r.s.enter("comments.GetAccess"); err != nil {
		return nil, err
	}
	c, ok := r.s.Comments[id]
	if !ok || c.IsDeleted {
		return nil, common.ErrorNotFound
	}
	rec, ok := r.s.Recipes[c.RecipeID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &models.CommentAccess{CommentID: c.ID, AuthorID: c.ProfileID, RecipeOwnerID: rec.OwnerID}, nil
}

func (r commentRepo) SoftDelete(_ context.Context, id string) error {
	r.s.Lock()
	defer r.s.Unlock()
	if err := r.s.enter("comments.SoftDelete"); err != nil {
		return err
	}
	c, ok := r.s.Comments[id]
	if !ok || c.IsDeleted {
		return common.ErrorNotFound
	}
	c.IsDeleted = true
	return nil
}

func (r commentRepo) Photos(_ context.Context, limit, offset int) ([]models.Photo, error) {
	r.s.Lock()
	defer r.s.Unlock()
	if err := r.s.enter("comments.Photos"); err != nil {
		return nil, err
	}
	var all []models.Photo
	for _, c := range r.s.Comments {
		rec, ok := r.s.Recipes[c.RecipeID]
		if c.ImageURL == nil || c.IsDeleted || !ok || rec.IsDeleted {
			continue
		}
		v := r.view(c)
		all = append(all, models.Photo{
			CommentID: c.ID, RecipeID: rec.ID, RecipeTitle: rec.Title, ImageURL: *c.ImageURL,
			AuthorName: v.AuthorName, AuthorPicture: v.AuthorPicture, CreatedAt: c.CreatedAt,
		})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	out := []models.Photo{}
	for i := offset; i < len(all) && len(out) < limit; i++ {
		out = append(out, all[i])
	}
	return out, nil
}

type ratingRepo struct{ s *Store }

func (r ratingRepo) Upsert(_ context.Context, rating models.Rating) error {
	r.s.Lock()
	defer r.s.Unlock()
	if err := r.s.enter("ratings.Upsert"); err != nil {
		return err
	}
	if _, ok := r.s.Recipes[rating.RecipeID]; !ok {
		return common.ErrorNotFound
	}
	r.s.Ratings[pair{rating.RecipeID, rating.ProfileID}] = rating.Stars
	return nil
}

func (r ratingRepo) Summary(_ context.Context, recipeID, viewerID string) (models.RatingSummary, error) {
	r.s.Lock()
	defer r.s.Unlock()
	if err := r.s.enter("ratings.Summary"); err != nil {
		return models.RatingSummary{}, err
	}
	var (
		out   models.RatingSummary
		total int
	)
	for k, v := range r.s.Ratings {
		if k.recipeID != recipeID {
			continue
		}
		total += v
		out.Count++
		if viewerID != "" && k.profileID == viewerID {
			mine := v
			out.Mine = &mine
		}
	}
	if out.Count > 0 {
		out.Average = math.Round(float64(total)/float64(out.Count)*100) / 100
	}
	return out, nil
}

type favoriteRepo struct{ s *Store }

func (r favoriteRepo) Add(_ context.Context, recipeID, profileID string) error {
	r.s.Lock()
	defer r.s.Unlock()
	if err := r.s.enter("favorites.Add"); err != nil {
		return err
	}
	if _, ok := r.s.Recipes[recipeID]; !ok {
		return common.ErrorNotFound
	}
	k := pair{recipeID, profileID}
	if _, ok := r.s.Favorites[k]; !ok {
		r.s.Favorites[k] = r.s.tick()
	}
	return nil
}

func (r favoriteRepo) Remove(_ context.Context, recipeID, profileID string) error {
	r.s.Lock()
	defer r.s.Unlock()
	if err := r.s.enter("favorites.Remove"); err != nil {
		return err
	}
	delete(r.s.Favorites, pair{recipeID, profileID})
	return nil
}

func (r favoriteRepo) Exists(_ context.Context, recipeID, profileID string) (bool, error) {
	r.s.Lock()
	defer r.s.Unlock()
	if err := r.s.enter("favorites.Exists"); err != nil {
		return false, err
	}
	_, ok := r.s.Favorites[pair{recipeID, profileID}]
	return ok, nil
}

type tagRepo struct{ s *Store }

func (r tagRepo) List(context.Context) ([]models.Tag, error) {
	r.s.Lock()
	defer r.s.Unlock()
	if err := r.s.enter("tags.List"); err != nil {
		return nil, err
	}
	out := append([]models.Tag{}, r.s.Tags...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
