// Package handlers contains the gin resource handlers. Each handler
// depends on a narrow store interface implemented by *database.Client.
package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"

	"recipe-api/internal/models"
	"recipe-api/internal/validation"
)

const perPage = 20

func respondValidation(c *gin.Context, errs *validation.Errors) {
	c.JSON(http.StatusUnprocessableEntity, models.ValidationErrorResponse{
		Message: errs.Message(),
		Errors:  errs.Fields(),
	})
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, models.MessageResponse{Message: "Resource not found"})
		return 0, false
	}
	return id, true
}

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// formArray reads a repeated multipart field, accepting both the bare
// name and the PHP-style "name[]" key the mobile client sends. nil means
// the field was absent entirely.
func formArray(c *gin.Context, name string) []string {
	if values, ok := c.GetPostFormArray(name); ok {
		return values
	}
	if values, ok := c.GetPostFormArray(name + "[]"); ok {
		return values
	}
	return nil
}

// imageFilename builds the stored name: unix timestamp, slugified recipe
// name, original extension.
func imageFilename(name, originalFilename string) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	return fmt.Sprintf("%d-%s%s", time.Now().Unix(), slugify(name), ext)
}

func slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

func contentTypeForExt(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	default:
		return "image/jpeg"
	}
}
