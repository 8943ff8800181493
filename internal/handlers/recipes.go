package handlers

import (
	"bytes"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"

	"recipe-api/internal/database"
	"recipe-api/internal/middleware"
	"recipe-api/internal/models"
	"recipe-api/internal/storage"
	"recipe-api/internal/validation"
)

type RecipeStore interface {
	CreateRecipe(p database.CreateRecipeParams) (*models.Recipe, error)
	RecipeByID(id int64) (*models.Recipe, error)
	RecipeDetail(id int64) (*models.Recipe, error)
	UpdateRecipe(id int64, p database.UpdateRecipeParams) (*models.Recipe, error)
	DeleteRecipe(id int64) error
	ListRecipes(page, perPage int) (*models.Page[models.Recipe], error)
}

type RecipesHandler struct {
	db    RecipeStore
	store storage.Store
}

func NewRecipesHandler(db RecipeStore, store storage.Store) *RecipesHandler {
	return &RecipesHandler{db: db, store: store}
}

// List returns the paginated recipe listing, newest first.
func (h *RecipesHandler) List(c *gin.Context) {
	page, err := h.db.ListRecipes(pageParam(c), perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to list recipes"})
		return
	}
	c.JSON(http.StatusOK, page)
}

// Create stores the recipe aggregate: the image blob, the recipe row and
// the ordered ingredient/step rows. Row writes share one transaction;
// the blob write precedes it and is not rolled back on failure.
func (h *RecipesHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.MessageResponse{Message: "user id not found"})
		return
	}

	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		c.JSON(http.StatusBadRequest, models.MessageResponse{Message: "failed to parse multipart form"})
		return
	}

	errs := validation.NewErrors()

	name := c.PostForm("name")
	errs.RequireString("name", name, validation.MaxNameLength)

	description := c.PostForm("description")
	errs.RequireString("description", description, 0)

	duration := requireInt(c, errs, "duration")
	servings := requireInt(c, errs, "servings")

	media, hasMedia := c.GetPostForm("media")
	if hasMedia && media != "" {
		errs.CheckURL("media", media)
	}

	ingredients := formArray(c, "ingredients")
	errs.CheckStringList("ingredients", ingredients, validation.MaxNameLength)
	steps := formArray(c, "steps")
	errs.CheckStringList("steps", steps, 0)

	file, err := c.FormFile("image")
	if err != nil {
		errs.Add("image", "The image field is required.")
	} else {
		errs.CheckImage("image", file.Filename, file.Size)
	}

	if errs.Any() {
		respondValidation(c, errs)
		return
	}

	imagePath, err := h.saveImage(name, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to store image"})
		return
	}

	params := database.CreateRecipeParams{
		UserID:      userID,
		Name:        name,
		Description: description,
		Duration:    duration,
		Servings:    servings,
		Image:       imagePath,
		Ingredients: buildIngredients(ingredients),
		Steps:       buildSteps(steps),
	}
	if hasMedia && media != "" {
		params.Media = &media
	}

	recipe, err := h.db.CreateRecipe(params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to create recipe"})
		return
	}

	c.JSON(http.StatusCreated, recipe)
}

// Show returns one recipe with its ordered ingredients/steps and the
// owner's profile.
func (h *RecipesHandler) Show(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	recipe, err := h.db.RecipeDetail(id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.MessageResponse{Message: "Recipe not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to get recipe"})
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// Update applies any subset of the recipe fields. A present ingredients
// or steps array replaces the whole list; an absent one leaves it alone.
func (h *RecipesHandler) Update(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.MessageResponse{Message: "user id not found"})
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	recipe, err := h.db.RecipeByID(id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.MessageResponse{Message: "Recipe not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to get recipe"})
		return
	}
	if recipe.UserID != userID {
		c.JSON(http.StatusForbidden, models.MessageResponse{Message: "This action is unauthorized."})
		return
	}

	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		c.JSON(http.StatusBadRequest, models.MessageResponse{Message: "failed to parse multipart form"})
		return
	}

	errs := validation.NewErrors()
	var params database.UpdateRecipeParams

	if name, ok := c.GetPostForm("name"); ok {
		errs.RequireString("name", name, validation.MaxNameLength)
		params.Name = &name
	}
	if description, ok := c.GetPostForm("description"); ok {
		errs.RequireString("description", description, 0)
		params.Description = &description
	}
	if raw, ok := c.GetPostForm("duration"); ok {
		duration := checkInt(errs, "duration", raw)
		params.Duration = &duration
	}
	if raw, ok := c.GetPostForm("servings"); ok {
		servings := checkInt(errs, "servings", raw)
		params.Servings = &servings
	}
	if media, ok := c.GetPostForm("media"); ok {
		if media != "" {
			errs.CheckURL("media", media)
		}
		params.Media = &media
	}
	if ingredients := formArray(c, "ingredients"); ingredients != nil {
		errs.CheckStringList("ingredients", ingredients, validation.MaxNameLength)
		params.Ingredients = buildIngredients(ingredients)
	}
	if steps := formArray(c, "steps"); steps != nil {
		errs.CheckStringList("steps", steps, 0)
		params.Steps = buildSteps(steps)
	}

	file, fileErr := c.FormFile("image")
	if fileErr == nil {
		errs.CheckImage("image", file.Filename, file.Size)
	}

	if errs.Any() {
		respondValidation(c, errs)
		return
	}

	if file != nil {
		name := recipe.Name
		if params.Name != nil {
			name = *params.Name
		}
		imagePath, err := h.saveImage(name, file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to store image"})
			return
		}
		params.Image = &imagePath

		// Old blob removal is best-effort; a leftover file is not worth
		// failing the update over.
		if recipe.Image != nil {
			h.deleteImage(*recipe.Image)
		}
	}

	updated, err := h.db.UpdateRecipe(id, params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to update recipe"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete removes the blob then the row; child rows go with the row via
// the storage layer's cascade.
func (h *RecipesHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.MessageResponse{Message: "user id not found"})
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	recipe, err := h.db.RecipeByID(id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.MessageResponse{Message: "Recipe not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to get recipe"})
		return
	}
	if recipe.UserID != userID {
		c.JSON(http.StatusForbidden, models.MessageResponse{Message: "This action is unauthorized."})
		return
	}

	if recipe.Image != nil {
		h.deleteImage(*recipe.Image)
	}

	if err := h.db.DeleteRecipe(id); err != nil {
		c.JSON(http.StatusInternalServerError, models.MessageResponse{Message: "failed to delete recipe"})
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "The recipe was deleted"})
}

func (h *RecipesHandler) saveImage(recipeName string, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}

	filename := imageFilename(recipeName, file.Filename)
	imagePath, err := h.store.Save("recipes/images/"+filename, data, contentTypeForExt(filename))
	if err != nil {
		return "", err
	}

	if err := h.saveThumbnail(filename, data); err != nil {
		log.Printf("failed to generate thumbnail for %s: %v", imagePath, err)
	}

	return imagePath, nil
}

// saveThumbnail writes a 320px-wide rendition next to the original for
// the list screens.
func (h *RecipesHandler) saveThumbnail(filename string, data []byte) error {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}
	thumb := imaging.Resize(img, 320, 0, imaging.Lanczos)

	format, err := imaging.FormatFromFilename(filename)
	if err != nil {
		format = imaging.JPEG
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, format); err != nil {
		return err
	}

	_, err = h.store.Save("recipes/thumbs/"+filename, buf.Bytes(), contentTypeForExt(filename))
	return err
}

func (h *RecipesHandler) deleteImage(imagePath string) {
	if err := h.store.Delete(imagePath); err != nil {
		log.Printf("failed to delete image %s: %v", imagePath, err)
	}
	thumb := "recipes/thumbs/" + path.Base(imagePath)
	if err := h.store.Delete(thumb); err != nil {
		log.Printf("failed to delete thumbnail %s: %v", thumb, err)
	}
}

func buildIngredients(descriptions []string) []models.Ingredient {
	ingredients := make([]models.Ingredient, len(descriptions))
	for i, d := range descriptions {
		ingredients[i] = models.Ingredient{Order: i + 1, Description: d}
	}
	return ingredients
}

func buildSteps(descriptions []string) []models.Step {
	steps := make([]models.Step, len(descriptions))
	for i, d := range descriptions {
		steps[i] = models.Step{Order: i + 1, Description: d}
	}
	return steps
}

func requireInt(c *gin.Context, errs *validation.Errors, field string) int {
	raw, ok := c.GetPostForm(field)
	if !ok || raw == "" {
		errs.Add(field, "The "+field+" field is required.")
		return 0
	}
	return checkInt(errs, field, raw)
}

func checkInt(errs *validation.Errors, field, raw string) int {
	value, err := strconv.Atoi(raw)
	if err != nil {
		errs.Add(field, "The "+field+" field must be an integer.")
		return 0
	}
	errs.CheckMin(field, value, 1)
	return value
}
