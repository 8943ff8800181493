package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"recipe-api/internal/config"
)

const UserIDKey = "user_id"
const TokenIDKey = "token_id"

// TokenChecker reports whether an issued token id is still live. Logout
// deletes the row, which invalidates the JWT before its expiry.
type TokenChecker interface {
	TokenExists(jti string) (bool, error)
}

func AuthMiddleware(cfg *config.Config, tokens TokenChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid authorization header format"})
			c.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "empty token"})
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWTSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid token claims"})
			c.Abort()
			return
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "missing user id in token"})
			c.Abort()
			return
		}
		userID, err := strconv.ParseInt(sub, 10, 64)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid user id in token"})
			c.Abort()
			return
		}

		jti, ok := claims["jti"].(string)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "missing token id"})
			c.Abort()
			return
		}
		live, err := tokens.TokenExists(jti)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to verify token"})
			c.Abort()
			return
		}
		if !live {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "token has been revoked"})
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		c.Set(TokenIDKey, jti)
		c.Next()
	}
}

// UserID returns the authenticated user's id set by AuthMiddleware.
func UserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
