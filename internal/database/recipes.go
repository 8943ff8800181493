package database

import (
	"database/sql"
	"errors"
	"fmt"

	"recipe-api/internal/models"
)

const recipeColumns = `id, user_id, name, description, duration, servings, image, media, "like", bookmark, comment, created_at, updated_at`

type CreateRecipeParams struct {
	UserID      int64
	Name        string
	Description string
	Duration    int
	Servings    int
	Image       string
	Media       *string
	Ingredients []models.Ingredient
	Steps       []models.Step
}

// UpdateRecipeParams applies only the fields that were present in the
// request. A nil Ingredients/Steps slice leaves the existing list alone;
// a non-nil slice replaces it wholesale.
type UpdateRecipeParams struct {
	Name        *string
	Description *string
	Duration    *int
	Servings    *int
	Image       *string
	Media       *string
	Ingredients []models.Ingredient
	Steps       []models.Step
}

// CreateRecipe inserts the recipe row and every ingredient/step row in a
// single transaction so a failure partway leaves nothing behind.
func (c *Client) CreateRecipe(p CreateRecipeParams) (*models.Recipe, error) {
	tx, err := c.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var recipe models.Recipe
	var image, media sql.NullString
	err = tx.QueryRow(`
		INSERT INTO recipes (user_id, name, description, duration, servings, image, media)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+recipeColumns+`
	`, p.UserID, p.Name, p.Description, p.Duration, p.Servings, p.Image, p.Media).Scan(
		&recipe.ID, &recipe.UserID, &recipe.Name, &recipe.Description,
		&recipe.Duration, &recipe.Servings, &image, &media,
		&recipe.Like, &recipe.Bookmark, &recipe.Comment,
		&recipe.CreatedAt, &recipe.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}
	recipe.Image = nullableString(image)
	recipe.Media = nullableString(media)

	recipe.Ingredients, err = insertIngredients(tx, recipe.ID, p.Ingredients)
	if err != nil {
		return nil, err
	}
	recipe.Steps, err = insertSteps(tx, recipe.ID, p.Steps)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit recipe: %w", err)
	}

	return &recipe, nil
}

// RecipeByID returns the bare recipe row.
func (c *Client) RecipeByID(id int64) (*models.Recipe, error) {
	row := c.db.QueryRow(`
		SELECT `+recipeColumns+`
		FROM recipes
		WHERE id = $1
	`, id)
	return scanRecipe(row)
}

// RecipeDetail returns the recipe with its ordered ingredients and steps
// and the owner's public profile attached.
func (c *Client) RecipeDetail(id int64) (*models.Recipe, error) {
	recipe, err := c.RecipeByID(id)
	if err != nil {
		return nil, err
	}

	var owner models.UserSummary
	var ownerImage sql.NullString
	err = c.db.QueryRow(`
		SELECT id, name, image
		FROM users
		WHERE id = $1
	`, recipe.UserID).Scan(&owner.ID, &owner.Name, &ownerImage)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe owner: %w", err)
	}
	owner.Image = nullableString(ownerImage)
	recipe.User = &owner

	recipe.Ingredients = []models.Ingredient{}
	rows, err := c.db.Query(`
		SELECT id, recipe_id, "order", description
		FROM ingredients
		WHERE recipe_id = $1
		ORDER BY "order" ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get ingredients: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ing models.Ingredient
		if err := rows.Scan(&ing.ID, &ing.RecipeID, &ing.Order, &ing.Description); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		recipe.Ingredients = append(recipe.Ingredients, ing)
	}

	recipe.Steps = []models.Step{}
	stepRows, err := c.db.Query(`
		SELECT id, recipe_id, "order", description
		FROM steps
		WHERE recipe_id = $1
		ORDER BY "order" ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get steps: %w", err)
	}
	defer stepRows.Close()
	for stepRows.Next() {
		var step models.Step
		if err := stepRows.Scan(&step.ID, &step.RecipeID, &step.Order, &step.Description); err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		recipe.Steps = append(recipe.Steps, step)
	}

	return recipe, nil
}

// UpdateRecipe applies the supplied fields and, when a child list is
// present, deletes and reinserts it with fresh 1..N order values. All of
// it runs in one transaction.
func (c *Client) UpdateRecipe(id int64, p UpdateRecipeParams) (*models.Recipe, error) {
	tx, err := c.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	set := "updated_at = NOW()"
	args := []interface{}{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		set += fmt.Sprintf(", %s = $%d", column, len(args))
	}
	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.Duration != nil {
		add("duration", *p.Duration)
	}
	if p.Servings != nil {
		add("servings", *p.Servings)
	}
	if p.Image != nil {
		add("image", *p.Image)
	}
	if p.Media != nil {
		add("media", *p.Media)
	}
	args = append(args, id)

	row := tx.QueryRow(fmt.Sprintf(`
		UPDATE recipes
		SET %s
		WHERE id = $%d
		RETURNING `+recipeColumns, set, len(args)), args...)
	recipe, err := scanRecipe(row)
	if err != nil {
		return nil, err
	}

	if p.Ingredients != nil {
		if _, err := tx.Exec(`DELETE FROM ingredients WHERE recipe_id = $1`, id); err != nil {
			return nil, fmt.Errorf("failed to clear ingredients: %w", err)
		}
		if recipe.Ingredients, err = insertIngredients(tx, id, p.Ingredients); err != nil {
			return nil, err
		}
	}
	if p.Steps != nil {
		if _, err := tx.Exec(`DELETE FROM steps WHERE recipe_id = $1`, id); err != nil {
			return nil, fmt.Errorf("failed to clear steps: %w", err)
		}
		if recipe.Steps, err = insertSteps(tx, id, p.Steps); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit recipe update: %w", err)
	}

	return recipe, nil
}

// DeleteRecipe removes the row; ingredient, step, like, bookmark and
// comment rows go with it via ON DELETE CASCADE.
func (c *Client) DeleteRecipe(id int64) error {
	result, err := c.db.Exec(`DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRecipes returns a page of recipes, newest first, with the owner's
// id and name attached.
func (c *Client) ListRecipes(page, perPage int) (*models.Page[models.Recipe], error) {
	var total int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM recipes`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}

	rows, err := c.db.Query(`
		SELECT r.id, r.user_id, r.name, r.description, r.duration, r.servings,
		       r.image, r.media, r."like", r.bookmark, r.comment, r.created_at, r.updated_at,
		       u.id, u.name
		FROM recipes r
		JOIN users u ON u.id = r.user_id
		ORDER BY r.created_at DESC
		LIMIT $1 OFFSET $2
	`, perPage, (page-1)*perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	recipes, err := scanRecipesWithOwner(rows)
	if err != nil {
		return nil, err
	}
	return models.NewPage(recipes, page, perPage, total), nil
}

// BestRecipes returns the top recipes by like count.
func (c *Client) BestRecipes(limit int) ([]models.Recipe, error) {
	rows, err := c.db.Query(`
		SELECT r.id, r.user_id, r.name, r.description, r.duration, r.servings,
		       r.image, r.media, r."like", r.bookmark, r.comment, r.created_at, r.updated_at,
		       u.id, u.name
		FROM recipes r
		JOIN users u ON u.id = r.user_id
		ORDER BY r."like" DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list best recipes: %w", err)
	}
	defer rows.Close()

	return scanRecipesWithOwner(rows)
}

// SearchRecipes matches the query as a case-insensitive substring of the
// name or description, most-liked first. An empty query matches every
// recipe, which is what the search screen expects for a cleared input.
func (c *Client) SearchRecipes(query string, page, perPage int) (*models.Page[models.Recipe], error) {
	pattern := "%" + query + "%"

	var total int
	err := c.db.QueryRow(`
		SELECT COUNT(*)
		FROM recipes
		WHERE name ILIKE $1 OR description ILIKE $1
	`, pattern).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count search results: %w", err)
	}

	rows, err := c.db.Query(`
		SELECT r.id, r.user_id, r.name, r.description, r.duration, r.servings,
		       r.image, r.media, r."like", r.bookmark, r.comment, r.created_at, r.updated_at,
		       u.id, u.name
		FROM recipes r
		JOIN users u ON u.id = r.user_id
		WHERE r.name ILIKE $1 OR r.description ILIKE $1
		ORDER BY r."like" DESC
		LIMIT $2 OFFSET $3
	`, pattern, perPage, (page-1)*perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to search recipes: %w", err)
	}
	defer rows.Close()

	recipes, err := scanRecipesWithOwner(rows)
	if err != nil {
		return nil, err
	}
	return models.NewPage(recipes, page, perPage, total), nil
}

// UserRecipes returns every recipe owned by the user, newest first.
func (c *Client) UserRecipes(userID int64) ([]models.Recipe, error) {
	rows, err := c.db.Query(`
		SELECT `+recipeColumns+`
		FROM recipes
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user recipes: %w", err)
	}
	defer rows.Close()

	var recipes []models.Recipe
	for rows.Next() {
		var recipe models.Recipe
		var image, media sql.NullString
		err := rows.Scan(
			&recipe.ID, &recipe.UserID, &recipe.Name, &recipe.Description,
			&recipe.Duration, &recipe.Servings, &image, &media,
			&recipe.Like, &recipe.Bookmark, &recipe.Comment,
			&recipe.CreatedAt, &recipe.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipe.Image = nullableString(image)
		recipe.Media = nullableString(media)
		recipes = append(recipes, recipe)
	}
	return recipes, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecipe(row rowScanner) (*models.Recipe, error) {
	var recipe models.Recipe
	var image, media sql.NullString
	err := row.Scan(
		&recipe.ID, &recipe.UserID, &recipe.Name, &recipe.Description,
		&recipe.Duration, &recipe.Servings, &image, &media,
		&recipe.Like, &recipe.Bookmark, &recipe.Comment,
		&recipe.CreatedAt, &recipe.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan recipe: %w", err)
	}
	recipe.Image = nullableString(image)
	recipe.Media = nullableString(media)
	return &recipe, nil
}

func scanRecipesWithOwner(rows *sql.Rows) ([]models.Recipe, error) {
	var recipes []models.Recipe
	for rows.Next() {
		var recipe models.Recipe
		var owner models.UserSummary
		var image, media sql.NullString
		err := rows.Scan(
			&recipe.ID, &recipe.UserID, &recipe.Name, &recipe.Description,
			&recipe.Duration, &recipe.Servings, &image, &media,
			&recipe.Like, &recipe.Bookmark, &recipe.Comment,
			&recipe.CreatedAt, &recipe.UpdatedAt,
			&owner.ID, &owner.Name,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipe.Image = nullableString(image)
		recipe.Media = nullableString(media)
		recipe.User = &owner
		recipes = append(recipes, recipe)
	}
	return recipes, nil
}

func insertIngredients(tx *sql.Tx, recipeID int64, ingredients []models.Ingredient) ([]models.Ingredient, error) {
	inserted := make([]models.Ingredient, 0, len(ingredients))
	for _, ing := range ingredients {
		err := tx.QueryRow(`
			INSERT INTO ingredients (recipe_id, "order", description)
			VALUES ($1, $2, $3)
			RETURNING id
		`, recipeID, ing.Order, ing.Description).Scan(&ing.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to create ingredient: %w", err)
		}
		ing.RecipeID = recipeID
		inserted = append(inserted, ing)
	}
	return inserted, nil
}

func insertSteps(tx *sql.Tx, recipeID int64, steps []models.Step) ([]models.Step, error) {
	inserted := make([]models.Step, 0, len(steps))
	for _, step := range steps {
		err := tx.QueryRow(`
			INSERT INTO steps (recipe_id, "order", description)
			VALUES ($1, $2, $3)
			RETURNING id
		`, recipeID, step.Order, step.Description).Scan(&step.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to create step: %w", err)
		}
		step.RecipeID = recipeID
		inserted = append(inserted, step)
	}
	return inserted, nil
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
