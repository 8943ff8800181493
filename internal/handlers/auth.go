package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"recipe-api/internal/config"
	"recipe-api/internal/database"
	"recipe-api/internal/middleware"
	"recipe-api/internal/models"
	"recipe-api/internal/validation"
)

const tokenLifetime = 30 * 24 * time.Hour

type AuthStore interface {
	CreateUser(name, email, passwordHash string) (*models.User, error)
	UserByEmail(email string) (*models.User, error)
	CreateToken(jti string, userID int64) error
	DeleteToken(jti string) error
}

type AuthHandler struct {
	cfg *config.Config
	db  AuthStore
}

func NewAuthHandler(cfg *config.Config, db AuthStore) *AuthHandler {
	return &AuthHandler{cfg: cfg, db: db}
}

// Register creates the account and immediately issues a token, so the
// app can log the user straight in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.MessageResponse{Message: "invalid request body"})
		return
	}

	errs := validation.NewErrors()
	errs.RequireString("name", req.Name, validation.MaxNameLength)
	errs.RequireString("email", req.Email, validation.MaxNameLength)
	if req.Email != "" {
		errs.CheckEmail("email", req.Email)
	}
	if len(req.Password) < 8 {
		errs.Add("password", "The password field must be at least 8 characters.")
	}
	if !errs.Any() {
		if _, err := h.db.UserByEmail(req.Email); err == nil {
			errs.Add("email", "The email has already been taken.")
		} else if !errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to check email"})
			return
		}
	}
	if errs.Any() {
		respondValidation(c, errs)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to hash password"})
		return
	}

	user, err := h.db.CreateUser(req.Name, req.Email, string(hash))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to create user"})
		return
	}

	token, err := h.issueToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to issue token"})
		return
	}

	c.JSON(http.StatusCreated, models.AuthResponse{User: user, Token: token})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.MessageResponse{Message: "invalid request body"})
		return
	}

	errs := validation.NewErrors()
	errs.RequireString("email", req.Email, 0)
	errs.RequireString("password", req.Password, 0)
	if errs.Any() {
		respondValidation(c, errs)
		return
	}

	user, err := h.db.UserByEmail(req.Email)
	if errors.Is(err, database.ErrNotFound) {
		h.badCredentials(c)
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to get user"})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		h.badCredentials(c)
		return
	}

	token, err := h.issueToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{User: user, Token: token})
}

// Logout revokes the presented token by deleting its id; the middleware
// rejects the JWT from then on.
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, exists := c.Get(middleware.TokenIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, models.MessageResponse{Message: "token id not found"})
		return
	}

	if err := h.db.DeleteToken(jti.(string)); err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to revoke token"})
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Logged out"})
}

func (h *AuthHandler) issueToken(userID int64) (string, error) {
	jti := uuid.NewString()
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"jti": jti,
		"iat": now.Unix(),
		"exp": now.Add(tokenLifetime).Unix(),
	})
	signed, err := token.SignedString([]byte(h.cfg.JWTSecret))
	if err != nil {
		return "", err
	}

	if err := h.db.CreateToken(jti, userID); err != nil {
		return "", err
	}
	return signed, nil
}

func (h *AuthHandler) badCredentials(c *gin.Context) {
	c.JSON(http.StatusUnprocessableEntity, models.ValidationErrorResponse{
		Message: "The provided credentials are incorrect.",
		Errors:  map[string][]string{"email": {"The provided credentials are incorrect."}},
	})
}
