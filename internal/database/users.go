package database

import (
	"database/sql"
	"errors"
	"fmt"

	"recipe-api/internal/models"
)

func (c *Client) CreateUser(name, email, passwordHash string) (*models.User, error) {
	var user models.User
	var image sql.NullString
	err := c.db.QueryRow(`
		INSERT INTO users (name, email, password)
		VALUES ($1, $2, $3)
		RETURNING id, name, email, password, image, created_at, updated_at
	`, name, email, passwordHash).Scan(
		&user.ID, &user.Name, &user.Email, &user.Password, &image,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.Image = nullableString(image)
	return &user, nil
}

func (c *Client) UserByEmail(email string) (*models.User, error) {
	return c.userBy(`email = $1`, email)
}

func (c *Client) UserByID(id int64) (*models.User, error) {
	return c.userBy(`id = $1`, id)
}

func (c *Client) userBy(where string, arg interface{}) (*models.User, error) {
	var user models.User
	var image sql.NullString
	err := c.db.QueryRow(`
		SELECT id, name, email, password, image, created_at, updated_at
		FROM users
		WHERE `+where, arg).Scan(
		&user.ID, &user.Name, &user.Email, &user.Password, &image,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.Image = nullableString(image)
	return &user, nil
}

// UpdateUser replaces the profile name and, when image is non-nil, the
// stored image path.
func (c *Client) UpdateUser(id int64, name string, image *string) (*models.User, error) {
	var user models.User
	var imageCol sql.NullString
	var row *sql.Row
	if image != nil {
		row = c.db.QueryRow(`
			UPDATE users
			SET name = $1, image = $2, updated_at = NOW()
			WHERE id = $3
			RETURNING id, name, email, password, image, created_at, updated_at
		`, name, *image, id)
	} else {
		row = c.db.QueryRow(`
			UPDATE users
			SET name = $1, updated_at = NOW()
			WHERE id = $2
			RETURNING id, name, email, password, image, created_at, updated_at
		`, name, id)
	}
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.Password, &imageCol,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	user.Image = nullableString(imageCol)
	return &user, nil
}

// Access tokens back the logout flow: the JWT carries a jti and the
// middleware only accepts tokens whose jti row still exists.

func (c *Client) CreateToken(jti string, userID int64) error {
	_, err := c.db.Exec(`
		INSERT INTO access_tokens (id, user_id)
		VALUES ($1, $2)
	`, jti, userID)
	if err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}
	return nil
}

func (c *Client) TokenExists(jti string) (bool, error) {
	var count int
	err := c.db.QueryRow(`SELECT COUNT(*) FROM access_tokens WHERE id = $1`, jti).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check token: %w", err)
	}
	return count > 0, nil
}

func (c *Client) DeleteToken(jti string) error {
	_, err := c.db.Exec(`DELETE FROM access_tokens WHERE id = $1`, jti)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
