package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"recipe-api/internal/middleware"
	"recipe-api/internal/models"
)

const bestRecipeLimit = 10

type QueryStore interface {
	UserRecipes(userID int64) ([]models.Recipe, error)
	BestRecipes(limit int) ([]models.Recipe, error)
	SearchRecipes(query string, page, perPage int) (*models.Page[models.Recipe], error)
}

type HomeHandler struct {
	db QueryStore
}

func NewHomeHandler(db QueryStore) *HomeHandler {
	return &HomeHandler{db: db}
}

// UserRecipes lists a user's recipes, newest first, unpaginated.
func (h *HomeHandler) UserRecipes(c *gin.Context) {
	var userID int64
	if raw := c.Query("user_id"); raw != "" {
		var err error
		userID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, models.ValidationErrorResponse{
				Message: "The user_id field must be an integer.",
				Errors:  map[string][]string{"user_id": {"The user_id field must be an integer."}},
			})
			return
		}
	} else {
		var ok bool
		userID, ok = middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.MessageResponse{Message: "user id not found"})
			return
		}
	}

	recipes, err := h.db.UserRecipes(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to list recipes"})
		return
	}
	if recipes == nil {
		recipes = []models.Recipe{}
	}

	c.JSON(http.StatusOK, recipes)
}

// BestRecipes returns the ten most liked recipes.
func (h *HomeHandler) BestRecipes(c *gin.Context) {
	recipes, err := h.db.BestRecipes(bestRecipeLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to list recipes"})
		return
	}
	if recipes == nil {
		recipes = []models.Recipe{}
	}

	c.JSON(http.StatusOK, recipes)
}

// Search matches the query against recipe names and descriptions,
// most-liked first. An empty query lists everything.
func (h *HomeHandler) Search(c *gin.Context) {
	page, err := h.db.SearchRecipes(c.Query("query"), pageParam(c), perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to search recipes"})
		return
	}

	c.JSON(http.StatusOK, page)
}
