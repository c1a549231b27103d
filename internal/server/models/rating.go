package models

// Rating is one caller's stars for one recipe.
type Rating struct {
	RecipeID  string
	ProfileID string
	Stars     int
}

// RatingSummary aggregates ratings of a recipe. Mine is the viewer's own
// rating, nil when the viewer is anonymous or has not rated.
type RatingSummary struct {
	Average float64
	Count   int
	Mine    *int
}
