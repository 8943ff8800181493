package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"recipe-api/internal/database"
	"recipe-api/internal/middleware"
	"recipe-api/internal/models"
	"recipe-api/internal/storage"
	"recipe-api/internal/validation"
)

type UserStore interface {
	UserByID(id int64) (*models.User, error)
	UpdateUser(id int64, name string, image *string) (*models.User, error)
}

type UsersHandler struct {
	db    UserStore
	store storage.Store
}

func NewUsersHandler(db UserStore, store storage.Store) *UsersHandler {
	return &UsersHandler{db: db, store: store}
}

// Me returns the authenticated user's own profile.
func (h *UsersHandler) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.MessageResponse{Message: "user id not found"})
		return
	}

	user, err := h.db.UserByID(userID)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.MessageResponse{Message: "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to get user"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// Update changes the profile name and, optionally, the avatar. Users can
// only touch their own profile.
func (h *UsersHandler) Update(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.MessageResponse{Message: "user id not found"})
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if id != userID {
		c.JSON(http.StatusForbidden, models.MessageResponse{Message: "This action is unauthorized."})
		return
	}

	user, err := h.db.UserByID(id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.MessageResponse{Message: "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to get user"})
		return
	}

	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		c.JSON(http.StatusBadRequest, models.MessageResponse{Message: "failed to parse multipart form"})
		return
	}

	errs := validation.NewErrors()
	name := c.PostForm("name")
	errs.RequireString("name", name, validation.MaxNameLength)

	file, fileErr := c.FormFile("image")
	if fileErr == nil {
		errs.CheckImage("image", file.Filename, file.Size)
	}

	if errs.Any() {
		respondValidation(c, errs)
		return
	}

	var imagePath *string
	if file != nil {
		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to read image"})
			return
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to read image"})
			return
		}

		path, err := h.store.Save("user/images/"+imageFilename(name, file.Filename), data, contentTypeForExt(file.Filename))
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to store image"})
			return
		}
		imagePath = &path

		if user.Image != nil {
			if err := h.store.Delete(*user.Image); err != nil {
				log.Printf("failed to delete image %s: %v", *user.Image, err)
			}
		}
	}

	updated, err := h.db.UpdateUser(id, name, imagePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to update user"})
		return
	}

	c.JSON(http.StatusOK, updated)
}
