package httpapi

import (
	"time"

	"github.com/dmitrijs2005/recipeshare/internal/server/models"
)

type authorDTO struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Picture string `json:"picture_url"`
}

type ratingDTO struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
	Mine    *int    `json:"mine"`
}

type recipeSummaryDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    *string   `json:"image_url"`
	PrepMinutes int       `json:"prep_minutes"`
	CookMinutes int       `json:"cook_minutes"`
	Servings    int       `json:"servings"`
	Difficulty  string    `json:"difficulty"`
	Author      authorDTO `json:"author"`
	Rating      ratingDTO `json:"rating"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ingredientDTO struct {
	Name     string `json:"name"`
	Amount   string `json:"amount"`
	Optional bool   `json:"optional"`
}

type stepDTO struct {
	Order   int    `json:"order"`
	Content string `json:"content"`
}

type nutritionDTO struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Unit   string `json:"unit"`
}

type tagDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type recipeDetailDTO struct {
	recipeSummaryDTO
	Ingredients []ingredientDTO `json:"ingredients"`
	Steps       []stepDTO       `json:"steps"`
	Nutrition   []nutritionDTO  `json:"nutrition"`
	Tags        []tagDTO        `json:"tags"`
	Favorited   bool            `json:"favorited"`
}

type commentDTO struct {
	ID        string    `json:"id"`
	RecipeID  string    `json:"recipe_id"`
	Content   string    `json:"content"`
	ImageURL  *string   `json:"image_url"`
	Author    authorDTO `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

type photoDTO struct {
	CommentID   string    `json:"comment_id"`
	RecipeID    string    `json:"recipe_id"`
	RecipeTitle string    `json:"recipe_title"`
	ImageURL    string    `json:"image_url"`
	Author      authorDTO `json:"author"`
	CreatedAt   time.Time `json:"created_at"`
}

func toRecipeSummary(r models.RecipeSummary) recipeSummaryDTO {
	return recipeSummaryDTO{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		PrepMinutes: r.PrepMinutes,
		CookMinutes: r.CookMinutes,
		Servings:    r.Servings,
		Difficulty:  r.Difficulty,
		Author:      authorDTO{ID: r.OwnerID, Name: r.AuthorName, Picture: r.AuthorPicture},
		Rating:      ratingDTO{Average: r.RatingAverage, Count: r.RatingCount},
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toRecipeSummaries(list []models.RecipeSummary) []recipeSummaryDTO {
	out := make([]recipeSummaryDTO, 0, len(list))
	for _, r := range list {
		out = append(out, toRecipeSummary(r))
	}
	return out
}

func toRecipeDetail(d *models.RecipeDetail) recipeDetailDTO {
	out := recipeDetailDTO{
		recipeSummaryDTO: toRecipeSummary(d.RecipeSummary),
		Ingredients:      make([]ingredientDTO, 0, len(d.Ingredients)),
		Steps:            make([]stepDTO, 0, len(d.Steps)),
		Nutrition:        make([]nutritionDTO, 0, len(d.Nutrition)),
		Tags:             toTags(d.Tags),
		Favorited:        d.Favorited,
	}
	out.Rating.Mine = d.MyRating
	for _, it := range d.Ingredients {
		out.Ingredients = append(out.Ingredients, ingredientDTO{Name: it.Name, Amount: it.Amount, Optional: it.Optional})
	}
	for _, it := range d.Steps {
		out.Steps = append(out.Steps, stepDTO{Order: it.Order, Content: it.Content})
	}
	for _, it := range d.Nutrition {
		out.Nutrition = append(out.Nutrition, nutritionDTO{Name: it.Name, Amount: it.Amount, Unit: it.Unit})
	}
	return out
}

func toComment(c models.CommentView) commentDTO {
	return commentDTO{
		ID:        c.ID,
		RecipeID:  c.RecipeID,
		Content:   c.Content,
		ImageURL:  c.ImageURL,
		Author:    authorDTO{ID: c.ProfileID, Name: c.AuthorName, Picture: c.AuthorPicture},
		CreatedAt: c.CreatedAt,
	}
}

func toComments(list []models.CommentView) []commentDTO {
	out := make([]commentDTO, 0, len(list))
	for _, c := range list {
		out = append(out, toComment(c))
	}
	return out
}

func toPhotos(list []models.Photo) []photoDTO {
	out := make([]photoDTO, 0, len(list))
	for _, p := range list {
		out = append(out, photoDTO{
			CommentID:   p.CommentID,
			RecipeID:    p.RecipeID,
			RecipeTitle: p.RecipeTitle,
			ImageURL:    p.ImageURL,
			Author:      authorDTO{Name: p.AuthorName, Picture: p.AuthorPicture},
			CreatedAt:   p.CreatedAt,
		})
	}
	return out
}

func toTags(list []models.Tag) []tagDTO {
	out := make([]tagDTO, 0, len(list))
	for _, t := range list {
		out = append(out, tagDTO{ID: t.ID, Name: t.Name})
	}
	return out
}

func toRating(r models.RatingSummary) ratingDTO {
	return ratingDTO{Average: r.Average, Count: r.Count, Mine: r.Mine}
}
