package models

import "time"

// Recipe is a parent record. ImageURL is the public URL of its attachment,
// nil when the recipe has no image. Recipes are never physically removed;
// IsDeleted marks them as gone for every read path.
type Recipe struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	ImageURL    *string
	PrepMinutes int
	CookMinutes int
	Servings    int
	Difficulty  string
	IsDeleted   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Ingredient belongs to a recipe; Optional marks garnish-type entries.
type Ingredient struct {
	RecipeID string
	Name     string
	Amount   string
	Optional bool
}

// Step is one instruction. Order is 1-based and follows submission order.
type Step struct {
	RecipeID string
	Content  string
	Order    int
}

// NutritionFact is a single nutrient line, e.g. {"Proteína", "12", "g"}.
type NutritionFact struct {
	RecipeID string
	Name     string
	Amount   string
	Unit     string
}

// RecipeParts groups the dependent record sets of a recipe. They are always
// written and replaced together.
type RecipeParts struct {
	Ingredients []Ingredient
	Steps       []Step
	Nutrition   []NutritionFact
	TagIDs      []int64
}

// RecipeSummary is a list row: the recipe plus author and rating aggregates.
type RecipeSummary struct {
	Recipe
	AuthorName    string
	AuthorPicture string
	RatingAverage float64
	RatingCount   int
}

// RecipeDetail is a recipe with everything the detail page shows.
type RecipeDetail struct {
	RecipeSummary
	Ingredients []Ingredient
	Steps       []Step
	Nutrition   []NutritionFact
	Tags        []Tag
	Favorited   bool
	MyRating    *int
}

// RecipeFilter narrows List. Zero values mean "no filter". FavoritedBy
// restricts the list to one profile's favorites, newest favorite first.
type RecipeFilter struct {
	Search      string
	TagID       int64
	OwnerID     string
	FavoritedBy string
	Limit       int
	Offset      int
}

// RecipeOwnership is the minimum needed to authorize a mutation.
type RecipeOwnership struct {
	ID       string
	OwnerID  string
	ImageURL *string
}
