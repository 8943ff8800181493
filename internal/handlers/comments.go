package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"recipe-api/internal/database"
	"recipe-api/internal/middleware"
	"recipe-api/internal/models"
	"recipe-api/internal/validation"
)

type CommentStore interface {
	ListComments(recipeID int64, page, perPage int) (*models.Page[models.Comment], error)
	CreateComment(userID, recipeID int64, description string) (*models.Comment, int, error)
	CommentByID(id int64) (*models.Comment, error)
	DeleteComment(id int64) error
}

type CommentsHandler struct {
	db CommentStore
}

func NewCommentsHandler(db CommentStore) *CommentsHandler {
	return &CommentsHandler{db: db}
}

// List returns a recipe's comments, newest first, with each commenter's
// public profile attached. An empty page is a 404, which the client
// renders as "no comments yet".
func (h *CommentsHandler) List(c *gin.Context) {
	recipeID, err := strconv.ParseInt(c.Query("recipe_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, models.ValidationErrorResponse{
			Message: "The recipe_id field is required.",
			Errors:  map[string][]string{"recipe_id": {"The recipe_id field is required."}},
		})
		return
	}

	page, err := h.db.ListComments(recipeID, pageParam(c), perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to list comments"})
		return
	}
	if len(page.Data) == 0 {
		c.JSON(http.StatusNotFound, models.MessageResponse{Message: "No comments available"})
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *CommentsHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.MessageResponse{Message: "user id not found"})
		return
	}

	var req models.CommentRequest
	bindErr := c.ShouldBindJSON(&req)

	errs := validation.NewErrors()
	if bindErr != nil || req.RecipeID == 0 {
		errs.Add("recipe_id", "The recipe_id field is required.")
	}
	if strings.TrimSpace(req.Description) == "" {
		errs.Add("description", "The description field is required.")
	}
	if errs.Any() {
		respondValidation(c, errs)
		return
	}

	comment, count, err := h.db.CreateComment(userID, req.RecipeID, req.Description)
	if errors.Is(err, database.ErrRecipeNotFound) {
		c.JSON(http.StatusNotFound, models.MessageResponse{Message: "Recipe not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to create comment"})
		return
	}

	c.JSON(http.StatusCreated, models.CommentResponse{Comment: comment, RecipeComment: count})
}

func (h *CommentsHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.MessageResponse{Message: "user id not found"})
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	comment, err := h.db.CommentByID(id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.MessageResponse{Message: "Comment not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to get comment"})
		return
	}
	if comment.UserID != userID {
		c.JSON(http.StatusForbidden, models.MessageResponse{Message: "This action is unauthorized."})
		return
	}

	if err := h.db.DeleteComment(id); err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Comment was deleted"})
}
