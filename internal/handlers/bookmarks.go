package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"recipe-api/internal/database"
	"recipe-api/internal/middleware"
	"recipe-api/internal/models"
)

type BookmarkStore interface {
	FindBookmark(userID, recipeID int64) (*models.Bookmark, error)
	ListUserBookmarks(userID int64) ([]models.Bookmark, error)
	CreateBookmark(userID, recipeID int64) (*models.Bookmark, int, error)
	BookmarkByID(id int64) (*models.Bookmark, error)
	DeleteBookmark(id int64) error
}

type BookmarksHandler struct {
	db BookmarkStore
}

func NewBookmarksHandler(db BookmarkStore) *BookmarksHandler {
	return &BookmarksHandler{db: db}
}

// Index serves two shapes the collection screen depends on: with
// check_bookmark set it resolves the single (user, recipe) row, without
// it it lists the user's bookmarks with each recipe attached.
func (h *BookmarksHandler) Index(c *gin.Context) {
	if c.Query("check_bookmark") != "" {
		h.lookup(c)
		return
	}

	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.MessageResponse{Message: "user id not found"})
		return
	}

	bookmarks, err := h.db.ListUserBookmarks(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to list bookmarks"})
		return
	}
	if len(bookmarks) == 0 {
		c.JSON(http.StatusNotFound, models.MessageResponse{Message: "No bookmarks available"})
		return
	}

	c.JSON(http.StatusOK, bookmarks)
}

func (h *BookmarksHandler) lookup(c *gin.Context) {
	userID, recipeID, ok := pairParams(c)
	if !ok {
		return
	}

	bookmark, err := h.db.FindBookmark(userID, recipeID)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.MessageResponse{Message: "Bookmark not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to find bookmark"})
		return
	}

	c.JSON(http.StatusOK, bookmark)
}

func (h *BookmarksHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.MessageResponse{Message: "user id not found"})
		return
	}

	recipeID, ok := bindRecipeID(c)
	if !ok {
		return
	}

	bookmark, count, err := h.db.CreateBookmark(userID, recipeID)
	if errors.Is(err, database.ErrRecipeNotFound) {
		c.JSON(http.StatusNotFound, models.MessageResponse{Message: "Recipe not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to create bookmark"})
		return
	}

	c.JSON(http.StatusCreated, models.BookmarkResponse{Bookmark: bookmark, RecipeBookmarks: count})
}

func (h *BookmarksHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.MessageResponse{Message: "user id not found"})
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	bookmark, err := h.db.BookmarkByID(id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.MessageResponse{Message: "Bookmark not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to get bookmark"})
		return
	}
	if bookmark.UserID != userID {
		c.JSON(http.StatusForbidden, models.MessageResponse{Message: "This action is unauthorized."})
		return
	}

	if err := h.db.DeleteBookmark(id); err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to delete bookmark"})
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Bookmark was deleted"})
}
