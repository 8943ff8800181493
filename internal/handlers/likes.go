package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"recipe-api/internal/database"
	"recipe-api/internal/middleware"
	"recipe-api/internal/models"
)

type LikeStore interface {
	FindLike(userID, recipeID int64) (*models.Like, error)
	CreateLike(userID, recipeID int64) (*models.Like, int, error)
	LikeByID(id int64) (*models.Like, error)
	DeleteLike(id int64) error
}

type LikesHandler struct {
	db LikeStore
}

func NewLikesHandler(db LikeStore) *LikesHandler {
	return &LikesHandler{db: db}
}

// Lookup returns the single like for a (user, recipe) pair; the client
// uses it to render the heart's toggle state.
func (h *LikesHandler) Lookup(c *gin.Context) {
	userID, recipeID, ok := pairParams(c)
	if !ok {
		return
	}

	like, err := h.db.FindLike(userID, recipeID)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.MessageResponse{Message: "Like not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to find like"})
		return
	}

	c.JSON(http.StatusOK, like)
}

// Create inserts the like and bumps the recipe's counter in the same
// transaction; an unknown recipe id persists nothing.
func (h *LikesHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.MessageResponse{Message: "user id not found"})
		return
	}

	recipeID, ok := bindRecipeID(c)
	if !ok {
		return
	}

	like, count, err := h.db.CreateLike(userID, recipeID)
	if errors.Is(err, database.ErrRecipeNotFound) {
		c.JSON(http.StatusNotFound, models.MessageResponse{Message: "Recipe not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to create like"})
		return
	}

	c.JSON(http.StatusCreated, models.LikeResponse{Like: like, RecipeLikes: count})
}

func (h *LikesHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.MessageResponse{Message: "user id not found"})
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	like, err := h.db.LikeByID(id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.MessageResponse{Message: "Like not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to get like"})
		return
	}
	if like.UserID != userID {
		c.JSON(http.StatusForbidden, models.MessageResponse{Message: "This action is unauthorized."})
		return
	}

	if err := h.db.DeleteLike(id); err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to delete like"})
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Like was deleted"})
}

// pairParams reads user_id/recipe_id lookup queries, defaulting user_id
// to the authenticated user when the client omits it.
func pairParams(c *gin.Context) (userID, recipeID int64, ok bool) {
	recipeID, err := strconv.ParseInt(c.Query("recipe_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, models.ValidationErrorResponse{
			Message: "The recipe_id field is required.",
			Errors:  map[string][]string{"recipe_id": {"The recipe_id field is required."}},
		})
		return 0, 0, false
	}

	if raw := c.Query("user_id"); raw != "" {
		userID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, models.ValidationErrorResponse{
				Message: "The user_id field must be an integer.",
				Errors:  map[string][]string{"user_id": {"The user_id field must be an integer."}},
			})
			return 0, 0, false
		}
		return userID, recipeID, true
	}

	userID, ok = middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.MessageResponse{Message: "user id not found"})
		return 0, 0, false
	}
	return userID, recipeID, true
}

func bindRecipeID(c *gin.Context) (int64, bool) {
	var req models.ReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RecipeID == 0 {
		c.JSON(http.StatusUnprocessableEntity, models.ValidationErrorResponse{
			Message: "The recipe_id field is required.",
			Errors:  map[string][]string{"recipe_id": {"The recipe_id field is required."}},
		})
		return 0, false
	}
	return req.RecipeID, true
}
