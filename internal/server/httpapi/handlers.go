package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/recipeshare/internal/common"
	"github.com/dmitrijs2005/recipeshare/internal/server/services"
	"github.com/gin-gonic/gin"
)

const (
	fileField   = "file"
	pingTimeout = 2 * time.Second
)

type idURI struct {
	ID string `uri:"id" binding:"required"`
}

type pageQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

func (q pageQuery) page() services.Page {
	return services.Page{Number: q.Page, Size: q.PageSize}
}

type listRecipesQuery struct {
	pageQuery
	Search string `form:"q"`
	Tag    int64  `form:"tag"`
	Owner  string `form:"owner"`
	Mine   bool   `form:"mine"`
}

type rateRequest struct {
	Stars int `json:"stars"`
}

func bindID(c *gin.Context) (string, bool) {
	var uri idURI
	if err := c.ShouldBindUri(&uri); err != nil {
		abortWithError(c, common.NewError(common.ErrorValidation, common.MsgInvalidID))
		return "", false
	}
	return uri.ID, true
}

func bindPage(c *gin.Context, q any) bool {
	if err := c.ShouldBindQuery(q); err != nil {
		abortWithError(c, common.NewError(common.ErrorValidation, common.MsgInvalidPage))
		return false
	}
	return true
}

func recipeInputFrom(c *gin.Context) services.RecipeInput {
	return services.RecipeInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		ImageURL:    c.PostForm("image_url"),
		PrepMinutes: c.PostForm("prep_minutes"),
		CookMinutes: c.PostForm("cook_minutes"),
		Servings:    c.PostForm("servings"),
		Difficulty:  c.PostForm("difficulty"),
		Ingredients: c.PostForm("ingredients"),
		Steps:       c.PostForm("steps"),
		Nutrition:   c.PostForm("nutrition"),
		Tags:        c.PostForm("tags"),
	}
}

func (s *Server) createRecipe(c *gin.Context) {
	if err := parseForm(c, s.maxUploadBytes); err != nil {
		abortWithError(c, err)
		return
	}
	file, err := readUpload(c, fileField, s.maxUploadBytes)
	if err != nil {
		abortWithError(c, err)
		return
	}

	id, err := s.services.Recipes.Create(c.Request.Context(), callerFrom(c), recipeInputFrom(c), file)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "recipeId": id})
}

func (s *Server) updateRecipe(c *gin.Context) {
	if err := parseForm(c, s.maxUploadBytes); err != nil {
		abortWithError(c, err)
		return
	}
	caller, recipeID := callerFrom(c), c.PostForm("recipe_id")
	if err := s.services.Recipes.Authorize(c.Request.Context(), caller, recipeID); err != nil {
		abortWithError(c, err)
		return
	}
	file, err := readUpload(c, fileField, s.maxUploadBytes)
	if err != nil {
		abortWithError(c, err)
		return
	}

	keepImage := c.PostForm("keep_image") == "true"
	id, err := s.services.Recipes.Update(c.Request.Context(), caller, recipeID, recipeInputFrom(c), file, keepImage)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "recipeId": id})
}

func (s *Server) listRecipes(c *gin.Context) {
	var q listRecipesQuery
	if !bindPage(c, &q) {
		return
	}
	owner := q.Owner
	if q.Mine {
		caller := callerFrom(c)
		if !caller.Authenticated() {
			abortWithError(c, common.NewError(common.ErrorUnauthorized, common.MsgUnauthorized))
			return
		}
		owner = caller.ProfileID
	}

	list, err := s.services.Recipes.List(c.Request.Context(), services.ListQuery{
		Search:  q.Search,
		TagID:   q.Tag,
		OwnerID: owner,
		Page:    q.page(),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": toRecipeSummaries(list)})
}

func (s *Server) getRecipe(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	detail, err := s.services.Recipes.Get(c.Request.Context(), id, callerFrom(c).ProfileID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": toRecipeDetail(detail)})
}

func (s *Server) deleteRecipe(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	if err := s.services.Recipes.Delete(c.Request.Context(), callerFrom(c), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) createComment(c *gin.Context) {
	if err := parseForm(c, s.maxUploadBytes); err != nil {
		abortWithError(c, err)
		return
	}
	file, err := readUpload(c, fileField, s.maxUploadBytes)
	if err != nil {
		abortWithError(c, err)
		return
	}

	view, err := s.services.Comments.Create(c.Request.Context(), callerFrom(c), c.PostForm("recipe_id"), c.PostForm("content"), file)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "comment": toComment(*view)})
}

func (s *Server) listComments(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	list, err := s.services.Comments.ListByRecipe(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": toComments(list)})
}

func (s *Server) deleteComment(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	if err := s.services.Comments.Delete(c.Request.Context(), callerFrom(c), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) getRating(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	sum, err := s.services.Ratings.Summary(c.Request.Context(), id, callerFrom(c).ProfileID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rating": toRating(sum)})
}

func (s *Server) rateRecipe(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, common.NewError(common.ErrorValidation, common.MsgInvalidStars))
		return
	}
	sum, err := s.services.Ratings.Rate(c.Request.Context(), callerFrom(c), id, req.Stars)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "rating": toRating(sum)})
}

func (s *Server) addFavorite(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	if err := s.services.Favorites.Add(c.Request.Context(), callerFrom(c), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) removeFavorite(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	if err := s.services.Favorites.Remove(c.Request.Context(), callerFrom(c), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) listFavorites(c *gin.Context) {
	var q pageQuery
	if !bindPage(c, &q) {
		return
	}
	list, err := s.services.Favorites.List(c.Request.Context(), callerFrom(c), q.page())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": toRecipeSummaries(list)})
}

func (s *Server) listPhotos(c *gin.Context) {
	var q pageQuery
	if !bindPage(c, &q) {
		return
	}
	list, err := s.services.Feed.Photos(c.Request.Context(), q.page())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"photos": toPhotos(list)})
}

func (s *Server) listTags(c *gin.Context) {
	list, err := s.services.Feed.Tags(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": toTags(list)})
}

func (s *Server) healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn(ctx, "database ping failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
