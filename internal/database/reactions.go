package database

import (
	"database/sql"
	"errors"
	"fmt"

	"recipe-api/internal/models"
)

// Reaction writes pair a child-row mutation with the counter adjustment
// on the parent recipe. Both run in one transaction: either the row and
// the counter move together or neither does, and a bad recipe id fails
// before anything is persisted.

func (c *Client) FindLike(userID, recipeID int64) (*models.Like, error) {
	var like models.Like
	err := c.db.QueryRow(`
		SELECT id, user_id, recipe_id, created_at
		FROM likes
		WHERE user_id = $1 AND recipe_id = $2
		LIMIT 1
	`, userID, recipeID).Scan(&like.ID, &like.UserID, &like.RecipeID, &like.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find like: %w", err)
	}
	return &like, nil
}

func (c *Client) CreateLike(userID, recipeID int64) (*models.Like, int, error) {
	var like models.Like
	var count int
	err := c.withReaction(recipeID, func(tx *sql.Tx) error {
		err := tx.QueryRow(`
			INSERT INTO likes (user_id, recipe_id)
			VALUES ($1, $2)
			RETURNING id, user_id, recipe_id, created_at
		`, userID, recipeID).Scan(&like.ID, &like.UserID, &like.RecipeID, &like.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create like: %w", err)
		}
		return tx.QueryRow(`
			UPDATE recipes SET "like" = "like" + 1 WHERE id = $1 RETURNING "like"
		`, recipeID).Scan(&count)
	})
	if err != nil {
		return nil, 0, err
	}
	return &like, count, nil
}

func (c *Client) LikeByID(id int64) (*models.Like, error) {
	var like models.Like
	err := c.db.QueryRow(`
		SELECT id, user_id, recipe_id, created_at
		FROM likes
		WHERE id = $1
	`, id).Scan(&like.ID, &like.UserID, &like.RecipeID, &like.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get like: %w", err)
	}
	return &like, nil
}

func (c *Client) DeleteLike(id int64) error {
	return c.deleteReaction(id, "likes", `"like"`)
}

func (c *Client) FindBookmark(userID, recipeID int64) (*models.Bookmark, error) {
	var bookmark models.Bookmark
	err := c.db.QueryRow(`
		SELECT id, user_id, recipe_id, created_at
		FROM bookmarks
		WHERE user_id = $1 AND recipe_id = $2
		LIMIT 1
	`, userID, recipeID).Scan(&bookmark.ID, &bookmark.UserID, &bookmark.RecipeID, &bookmark.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find bookmark: %w", err)
	}
	return &bookmark, nil
}

// ListUserBookmarks returns the user's bookmarks, newest first, each with
// its recipe and the recipe owner's id/name attached. The collection
// screen renders straight from this.
func (c *Client) ListUserBookmarks(userID int64) ([]models.Bookmark, error) {
	rows, err := c.db.Query(`
		SELECT b.id, b.user_id, b.recipe_id, b.created_at,
		       r.id, r.user_id, r.name, r.description, r.duration, r.servings,
		       r.image, r.media, r."like", r.bookmark, r.comment, r.created_at, r.updated_at,
		       u.id, u.name
		FROM bookmarks b
		JOIN recipes r ON r.id = b.recipe_id
		JOIN users u ON u.id = r.user_id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	defer rows.Close()

	var bookmarks []models.Bookmark
	for rows.Next() {
		var bookmark models.Bookmark
		var recipe models.Recipe
		var owner models.UserSummary
		var image, media sql.NullString
		err := rows.Scan(
			&bookmark.ID, &bookmark.UserID, &bookmark.RecipeID, &bookmark.CreatedAt,
			&recipe.ID, &recipe.UserID, &recipe.Name, &recipe.Description,
			&recipe.Duration, &recipe.Servings, &image, &media,
			&recipe.Like, &recipe.Bookmark, &recipe.Comment,
			&recipe.CreatedAt, &recipe.UpdatedAt,
			&owner.ID, &owner.Name,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		recipe.Image = nullableString(image)
		recipe.Media = nullableString(media)
		recipe.User = &owner
		bookmark.Recipe = &recipe
		bookmarks = append(bookmarks, bookmark)
	}
	return bookmarks, nil
}

func (c *Client) CreateBookmark(userID, recipeID int64) (*models.Bookmark, int, error) {
	var bookmark models.Bookmark
	var count int
	err := c.withReaction(recipeID, func(tx *sql.Tx) error {
		err := tx.QueryRow(`
			INSERT INTO bookmarks (user_id, recipe_id)
			VALUES ($1, $2)
			RETURNING id, user_id, recipe_id, created_at
		`, userID, recipeID).Scan(&bookmark.ID, &bookmark.UserID, &bookmark.RecipeID, &bookmark.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create bookmark: %w", err)
		}
		return tx.QueryRow(`
			UPDATE recipes SET bookmark = bookmark + 1 WHERE id = $1 RETURNING bookmark
		`, recipeID).Scan(&count)
	})
	if err != nil {
		return nil, 0, err
	}
	return &bookmark, count, nil
}

func (c *Client) BookmarkByID(id int64) (*models.Bookmark, error) {
	var bookmark models.Bookmark
	err := c.db.QueryRow(`
		SELECT id, user_id, recipe_id, created_at
		FROM bookmarks
		WHERE id = $1
	`, id).Scan(&bookmark.ID, &bookmark.UserID, &bookmark.RecipeID, &bookmark.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmark: %w", err)
	}
	return &bookmark, nil
}

func (c *Client) DeleteBookmark(id int64) error {
	return c.deleteReaction(id, "bookmarks", "bookmark")
}

func (c *Client) CreateComment(userID, recipeID int64, description string) (*models.Comment, int, error) {
	var comment models.Comment
	var count int
	err := c.withReaction(recipeID, func(tx *sql.Tx) error {
		err := tx.QueryRow(`
			INSERT INTO comments (user_id, recipe_id, description)
			VALUES ($1, $2, $3)
			RETURNING id, user_id, recipe_id, description, created_at
		`, userID, recipeID, description).Scan(
			&comment.ID, &comment.UserID, &comment.RecipeID, &comment.Description, &comment.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}
		return tx.QueryRow(`
			UPDATE recipes SET comment = comment + 1 WHERE id = $1 RETURNING comment
		`, recipeID).Scan(&count)
	})
	if err != nil {
		return nil, 0, err
	}
	return &comment, count, nil
}

func (c *Client) CommentByID(id int64) (*models.Comment, error) {
	var comment models.Comment
	err := c.db.QueryRow(`
		SELECT id, user_id, recipe_id, description, created_at
		FROM comments
		WHERE id = $1
	`, id).Scan(&comment.ID, &comment.UserID, &comment.RecipeID, &comment.Description, &comment.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return &comment, nil
}

func (c *Client) DeleteComment(id int64) error {
	return c.deleteReaction(id, "comments", "comment")
}

// ListComments returns a page of a recipe's comments, newest first, with
// each commenter's public profile attached.
func (c *Client) ListComments(recipeID int64, page, perPage int) (*models.Page[models.Comment], error) {
	var total int
	err := c.db.QueryRow(`SELECT COUNT(*) FROM comments WHERE recipe_id = $1`, recipeID).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}

	rows, err := c.db.Query(`
		SELECT c.id, c.user_id, c.recipe_id, c.description, c.created_at,
		       u.id, u.name, u.image
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.recipe_id = $1
		ORDER BY c.created_at DESC
		LIMIT $2 OFFSET $3
	`, recipeID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var comment models.Comment
		var user models.UserSummary
		var userImage sql.NullString
		err := rows.Scan(
			&comment.ID, &comment.UserID, &comment.RecipeID, &comment.Description, &comment.CreatedAt,
			&user.ID, &user.Name, &userImage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		user.Image = nullableString(userImage)
		comment.User = &user
		comments = append(comments, comment)
	}
	return models.NewPage(comments, page, perPage, total), nil
}

// withReaction locks the parent recipe row, runs the child mutation and
// counter update, and commits. A missing recipe yields ErrRecipeNotFound
// with no rows written.
func (c *Client) withReaction(recipeID int64, fn func(tx *sql.Tx) error) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRow(`SELECT id FROM recipes WHERE id = $1 FOR UPDATE`, recipeID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRecipeNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock recipe: %w", err)
	}

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reaction: %w", err)
	}
	return nil
}

func (c *Client) deleteReaction(id int64, table, counterColumn string) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var recipeID int64
	err = tx.QueryRow(fmt.Sprintf(`SELECT recipe_id FROM %s WHERE id = $1`, table), id).Scan(&recipeID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get %s row: %w", table, err)
	}

	_, err = tx.Exec(fmt.Sprintf(`
		UPDATE recipes SET %s = %s - 1 WHERE id = $1
	`, counterColumn, counterColumn), recipeID)
	if err != nil {
		return fmt.Errorf("failed to decrement counter: %w", err)
	}

	if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id); err != nil {
		return fmt.Errorf("failed to delete %s row: %w", table, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reaction delete: %w", err)
	}
	return nil
}
