package models

import "time"

// Comment is a parent record attached to a recipe, optionally with an image.
type Comment struct {
	ID        string
	RecipeID  string
	ProfileID string
	Content   string
	ImageURL  *string
	IsDeleted bool
	CreatedAt time.Time
}

// CommentView is a comment joined with its author's public profile fields.
type CommentView struct {
	Comment
	AuthorName    string
	AuthorPicture string
}

// CommentAccess lists who may delete a comment: its author or the owner of
// the recipe it was posted on.
type CommentAccess struct {
	CommentID     string
	AuthorID      string
	RecipeOwnerID string
}

// Photo is one entry of the community photo feed.
type Photo struct {
	CommentID     string
	RecipeID      string
	RecipeTitle   string
	ImageURL      string
	AuthorName    string
	AuthorPicture string
	CreatedAt     time.Time
}
